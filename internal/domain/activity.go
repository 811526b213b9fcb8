package domain

import (
	"time"
)

// Activity 表示一条外发邮件的活动审计记录，关联到某个联系人。
//
// 活动记录是可选能力：对应的存储未接入时整个子系统不生效。
type Activity struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Party       string    `json:"party" gorm:"type:varchar(64);index;not null"` // 联系人标识
	Resource    string    `json:"resource" gorm:"type:varchar(128)"`            // 指向邮件记录，如 "mail:<id>"
	Subject     string    `json:"subject" gorm:"type:varchar(500)"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"createdAt"`
}
