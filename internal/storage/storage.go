// Package storage 定义各实体的存取接口，实现见 memory 与 sql 子包。
package storage

import (
	"errors"

	"erpmail/backend/internal/domain"
)

var (
	// ErrTemplateNotFound 模板不存在
	ErrTemplateNotFound = errors.New("template not found")
	// ErrMailboxNotFound 邮箱不存在
	ErrMailboxNotFound = errors.New("mailbox not found")
	// ErrMailNotFound 邮件记录不存在
	ErrMailNotFound = errors.New("mail record not found")
	// ErrTriggerNotFound 触发器绑定不存在
	ErrTriggerNotFound = errors.New("trigger binding not found")
	// ErrMailboxExists 邮箱名已存在
	ErrMailboxExists = errors.New("mailbox already exists")
)

// TemplateRepository 定义邮件模板的存取操作。
type TemplateRepository interface {
	SaveTemplate(tpl *domain.Template) error
	GetTemplate(id string) (*domain.Template, error)
	ListTemplates() ([]domain.Template, error)
	DeleteTemplate(id string) error
}

// MailboxRepository 定义邮箱的存取操作。
type MailboxRepository interface {
	SaveMailbox(mailbox *domain.Mailbox) error
	GetMailbox(id string) (*domain.Mailbox, error)
	GetMailboxByName(name string) (*domain.Mailbox, error)
	ListMailboxes() ([]domain.Mailbox, error)
	DeleteMailbox(id string) error
}

// MailRecordRepository 定义邮件记录的存取操作。
type MailRecordRepository interface {
	SaveMail(mail *domain.MailRecord) error
	GetMail(id string) (*domain.MailRecord, error)
	ListMails(mailboxID string) ([]domain.MailRecord, error)
	DeleteMail(id string) error
}

// TriggerRepository 定义触发器绑定的存取操作。
type TriggerRepository interface {
	SaveTrigger(binding *domain.TriggerBinding) error
	GetTrigger(id string) (*domain.TriggerBinding, error)
	ListTriggers() ([]domain.TriggerBinding, error)
	DeleteTrigger(id string) error
}

// ActivityRepository 定义活动记录的存取操作，属于可选能力。
type ActivityRepository interface {
	SaveActivity(activity *domain.Activity) error
	ListActivities(party string) ([]domain.Activity, error)
}

// DefaultsRepository 定义"电子邮件配置"单例的存取操作。
type DefaultsRepository interface {
	GetDefaults() (*domain.MailDefaults, error)
	SaveDefaults(defaults *domain.MailDefaults) error
}

// Store 聚合全部仓库接口。
type Store interface {
	TemplateRepository
	MailboxRepository
	MailRecordRepository
	TriggerRepository
	ActivityRepository
	DefaultsRepository

	Health() error
	Close() error
}
