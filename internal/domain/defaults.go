package domain

import (
	"time"
)

// MailDefaults 是"电子邮件配置"单例：模板未指定邮箱时的全局回退。
type MailDefaults struct {
	ID              uint      `json:"-" gorm:"primaryKey"` // 恒为 1，保证单例
	SentMailboxID   string    `json:"sentMailboxId" gorm:"type:varchar(36)"`
	OutboxMailboxID string    `json:"outboxMailboxId" gorm:"type:varchar(36)"`
	DraftMailboxID  string    `json:"draftMailboxId" gorm:"type:varchar(36)"`
	Language        string    `json:"language" gorm:"type:varchar(16)"` // 默认语言代码
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DefaultMailDefaults 返回空的默认配置单例。
func DefaultMailDefaults() *MailDefaults {
	return &MailDefaults{ID: 1, Language: "en"}
}
