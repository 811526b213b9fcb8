package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/storage"
)

// ErrMailboxNameRequired 邮箱名不能为空
var ErrMailboxNameRequired = errors.New("mailbox name is required")

// MailboxService 提供邮箱的增删改查以及默认邮箱的初始化。
type MailboxService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewMailboxService 创建邮箱服务。
func NewMailboxService(store storage.Store, logger *zap.Logger) *MailboxService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailboxService{store: store, logger: logger}
}

// CreateMailbox 新建邮箱。角色缺省为 sent。
func (s *MailboxService) CreateMailbox(ctx context.Context, name string, role domain.MailboxRole) (*domain.Mailbox, error) {
	if name == "" {
		return nil, ErrMailboxNameRequired
	}
	if role == "" {
		role = domain.RoleSent
	}
	if !domain.ValidMailboxRole(role) {
		return nil, fmt.Errorf("unknown mailbox role: %s", role)
	}

	mailbox := &domain.Mailbox{
		ID:        uuid.NewString(),
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveMailbox(mailbox); err != nil {
		return nil, err
	}
	s.logger.Info("mailbox created",
		zap.String("mailbox_id", mailbox.ID),
		zap.String("name", name),
		zap.String("role", string(role)),
	)
	return mailbox, nil
}

// EnsureMailbox 按名字查找邮箱，不存在则创建。用于启动时准备默认邮箱。
func (s *MailboxService) EnsureMailbox(ctx context.Context, name string, role domain.MailboxRole) (*domain.Mailbox, error) {
	mailbox, err := s.store.GetMailboxByName(name)
	if err == nil {
		return mailbox, nil
	}
	if !errors.Is(err, storage.ErrMailboxNotFound) {
		return nil, err
	}
	return s.CreateMailbox(ctx, name, role)
}

// GetMailbox 按 ID 查询邮箱。
func (s *MailboxService) GetMailbox(ctx context.Context, id string) (*domain.Mailbox, error) {
	return s.store.GetMailbox(id)
}

// ListMailboxes 列出全部邮箱。
func (s *MailboxService) ListMailboxes(ctx context.Context) ([]domain.Mailbox, error) {
	return s.store.ListMailboxes()
}

// DeleteMailbox 删除邮箱。
func (s *MailboxService) DeleteMailbox(ctx context.Context, id string) error {
	if err := s.store.DeleteMailbox(id); err != nil {
		return err
	}
	s.logger.Info("mailbox deleted", zap.String("mailbox_id", id))
	return nil
}

// GetDefaults 读取"电子邮件配置"单例。
func (s *MailboxService) GetDefaults(ctx context.Context) (*domain.MailDefaults, error) {
	return s.store.GetDefaults()
}

// SaveDefaults 更新"电子邮件配置"单例。
func (s *MailboxService) SaveDefaults(ctx context.Context, defaults *domain.MailDefaults) error {
	defaults.ID = 1
	defaults.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveDefaults(defaults); err != nil {
		return err
	}
	s.logger.Info("mail defaults updated",
		zap.String("sent_mailbox", defaults.SentMailboxID),
		zap.String("outbox_mailbox", defaults.OutboxMailboxID),
		zap.String("draft_mailbox", defaults.DraftMailboxID),
	)
	return nil
}
