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

var (
	// ErrTemplateNameRequired 模板名不能为空
	ErrTemplateNameRequired = errors.New("template name is required")
	// ErrTemplateModelRequired 模板必须绑定一个模型
	ErrTemplateModelRequired = errors.New("template model is required")
)

// TemplateService 提供邮件模板的增删改查。
type TemplateService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewTemplateService 创建模板服务。
func NewTemplateService(store storage.Store, logger *zap.Logger) *TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemplateService{store: store, logger: logger}
}

// SaveTemplateInput 保存模板的入参。
type SaveTemplateInput struct {
	ID              string
	Name            string
	Model           string
	Engine          domain.Engine
	From            string
	Sender          string
	To              string
	Cc              string
	Bcc             string
	ReplyTo         string
	Subject         string
	MessageID       string
	InReplyTo       string
	Plain           string
	HTML            string
	Language        string
	Signature       bool
	CreateMessageID bool
	Style           string
	CustomStyle     string
	Party           string
	Queue           bool
	MailboxID       string
	DraftMailboxID  string
	OutboxMailboxID string
	Reports         []domain.ReportLink
}

// SaveTemplate 新建或更新模板。引擎缺省为 raw。
func (s *TemplateService) SaveTemplate(ctx context.Context, in SaveTemplateInput) (*domain.Template, error) {
	if in.Name == "" {
		return nil, ErrTemplateNameRequired
	}
	if in.Model == "" {
		return nil, ErrTemplateModelRequired
	}
	if in.Engine == "" {
		in.Engine = domain.EngineRaw
	}
	if !domain.ValidEngine(in.Engine) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownEngine, in.Engine)
	}

	now := time.Now().UTC()
	tpl := &domain.Template{
		ID:              in.ID,
		Name:            in.Name,
		Model:           in.Model,
		Engine:          in.Engine,
		From:            in.From,
		Sender:          in.Sender,
		To:              in.To,
		Cc:              in.Cc,
		Bcc:             in.Bcc,
		ReplyTo:         in.ReplyTo,
		Subject:         in.Subject,
		MessageID:       in.MessageID,
		InReplyTo:       in.InReplyTo,
		Plain:           in.Plain,
		HTML:            in.HTML,
		Language:        in.Language,
		Signature:       in.Signature,
		CreateMessageID: in.CreateMessageID,
		Style:           in.Style,
		CustomStyle:     in.CustomStyle,
		Party:           in.Party,
		Queue:           in.Queue,
		MailboxID:       in.MailboxID,
		DraftMailboxID:  in.DraftMailboxID,
		OutboxMailboxID: in.OutboxMailboxID,
		Reports:         in.Reports,
		UpdatedAt:       now,
	}

	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
		tpl.CreatedAt = now
	} else {
		existing, err := s.store.GetTemplate(tpl.ID)
		if err != nil {
			return nil, err
		}
		tpl.CreatedAt = existing.CreatedAt
	}

	for i := range tpl.Reports {
		if tpl.Reports[i].ID == "" {
			tpl.Reports[i].ID = uuid.NewString()
		}
		tpl.Reports[i].TemplateID = tpl.ID
	}

	if err := s.store.SaveTemplate(tpl); err != nil {
		return nil, err
	}
	s.logger.Info("template saved",
		zap.String("template_id", tpl.ID),
		zap.String("name", tpl.Name),
		zap.String("engine", string(tpl.Engine)),
	)
	return tpl, nil
}

// GetTemplate 按 ID 查询模板。
func (s *TemplateService) GetTemplate(ctx context.Context, id string) (*domain.Template, error) {
	return s.store.GetTemplate(id)
}

// ListTemplates 列出全部模板。
func (s *TemplateService) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	return s.store.ListTemplates()
}

// DeleteTemplate 删除模板。
func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.store.DeleteTemplate(id); err != nil {
		return err
	}
	s.logger.Info("template deleted", zap.String("template_id", id))
	return nil
}
