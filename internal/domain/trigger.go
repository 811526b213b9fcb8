package domain

import (
	"time"
)

// DefaultTriggerFunction 是宿主触发器子系统动态查找的回调函数名约定。
const DefaultTriggerFunction = "mail_from_trigger"

// TriggerBinding 表示宿主的"记录创建/变更"触发规则与邮件模板的绑定。
//
// 绑定由宿主触发器子系统维护，本模块只读取它来定位模板；
// Model 与 Function 的默认值在创建时按约定填充。
type TriggerBinding struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string    `json:"name" gorm:"type:varchar(255)"`
	Model      string    `json:"model" gorm:"type:varchar(128);index;not null"` // 来源业务模型
	TemplateID string    `json:"templateId" gorm:"type:varchar(36);index;not null"`
	Function   string    `json:"function" gorm:"type:varchar(64)"` // 回调函数名，默认 mail_from_trigger
	OnCreate   bool      `json:"onCreate"`
	OnWrite    bool      `json:"onWrite"`
	CreatedAt  time.Time `json:"createdAt"`
}
