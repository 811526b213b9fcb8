package domain

import (
	"time"
)

// MailboxRole 表示邮箱的用途分类。
type MailboxRole string

const (
	// RoleSent 已发送邮箱
	RoleSent MailboxRole = "sent"
	// RoleDraft 草稿箱，收件人校验失败的邮件会被移入
	RoleDraft MailboxRole = "draft"
	// RoleOutbox 发件队列，Queue 模板的邮件落在这里等待后续投递
	RoleOutbox MailboxRole = "outbox"
)

// Mailbox 表示持久化邮件记录的归属桶。
type Mailbox struct {
	ID        string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string      `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	Role      MailboxRole `json:"role" gorm:"type:varchar(16);index;not null"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ValidMailboxRole 判断给定值是否为已知邮箱角色。
func ValidMailboxRole(r MailboxRole) bool {
	switch r {
	case RoleSent, RoleDraft, RoleOutbox:
		return true
	}
	return false
}
