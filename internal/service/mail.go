package service

import (
	"context"

	"go.uber.org/zap"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/storage"
)

// MailService 提供邮件记录的查询和删除。
type MailService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewMailService 创建邮件记录服务。
func NewMailService(store storage.Store, logger *zap.Logger) *MailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailService{store: store, logger: logger}
}

// GetMail 按 ID 查询邮件记录。
func (s *MailService) GetMail(ctx context.Context, id string) (*domain.MailRecord, error) {
	return s.store.GetMail(id)
}

// ListMails 列出某个邮箱下的邮件记录。
func (s *MailService) ListMails(ctx context.Context, mailboxID string) ([]domain.MailRecord, error) {
	if _, err := s.store.GetMailbox(mailboxID); err != nil {
		return nil, err
	}
	return s.store.ListMails(mailboxID)
}

// DeleteMail 删除邮件记录。
func (s *MailService) DeleteMail(ctx context.Context, id string) error {
	if err := s.store.DeleteMail(id); err != nil {
		return err
	}
	s.logger.Info("mail deleted", zap.String("mail_id", id))
	return nil
}
