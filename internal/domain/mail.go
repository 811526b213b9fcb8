package domain

import (
	"time"
)

// MailRecord 表示一封已渲染并持久化的外发邮件。
//
// 邮箱归属会随投递结果变化：收件人校验失败移入草稿箱，
// Queue 模板固定落在发件队列。
type MailRecord struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MailboxID  string    `json:"mailboxId" gorm:"type:varchar(36);index;not null"`
	TemplateID string    `json:"templateId" gorm:"type:varchar(36);index"`
	Model      string    `json:"model" gorm:"type:varchar(128)"` // 来源业务模型
	RecordID   string    `json:"recordId" gorm:"type:varchar(64)"`
	From       string    `json:"from" gorm:"column:from_addr;type:varchar(255)"`
	To         string    `json:"to" gorm:"column:to_addrs;type:text"` // 分号分隔的地址串
	Cc         string    `json:"cc" gorm:"type:text"`
	Bcc        string    `json:"bcc" gorm:"type:text"`
	Subject    string    `json:"subject" gorm:"type:varchar(500)"`
	Plain      string    `json:"plain" gorm:"type:text"`
	HTML       string    `json:"html" gorm:"type:text"`
	Raw        []byte    `json:"-"` // 完整的 RFC 5322 字节流
	Sent       bool      `json:"sent" gorm:"default:false;index"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Recipients 返回 to/cc/bcc 的全部地址并集，用于 SMTP 信封。
func (m *MailRecord) Recipients() []string {
	out := make([]string, 0, 4)
	for _, field := range []string{m.To, m.Cc, m.Bcc} {
		out = append(out, SplitAddresses(field)...)
	}
	return out
}
