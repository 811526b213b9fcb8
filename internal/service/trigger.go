package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/storage"
)

// TriggerService 是宿主"记录变更"触发机制的接入点。
type TriggerService struct {
	store      storage.Store
	dispatcher *Dispatcher
	metrics    MetricsSink
	logger     *zap.Logger
}

// MetricsSink 触发器关心的指标子集。
type MetricsSink interface {
	TriggerFired(triggerID string, records, failures int)
}

// NewTriggerService 创建触发器服务。
func NewTriggerService(store storage.Store, dispatcher *Dispatcher, logger *zap.Logger) *TriggerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriggerService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// SetMetrics 注入指标接收端。
func (s *TriggerService) SetMetrics(metrics MetricsSink) {
	s.metrics = metrics
}

// MailFromTrigger 是宿主触发器按约定名查找的回调入口。
//
// 解析绑定引用的模板后对批次里的每条记录渲染并投递；
// 记录之间互相独立，单条失败不会中止批次，错误合并返回。
func (s *TriggerService) MailFromTrigger(ctx context.Context, rc domain.RenderContext, triggerID string, records []*domain.Record) ([]*domain.MailRecord, error) {
	binding, err := s.store.GetTrigger(triggerID)
	if err != nil {
		return nil, err
	}

	mails, dispatchErr := s.dispatcher.RenderAndSend(ctx, rc, binding.TemplateID, records)
	if s.metrics != nil {
		failures := len(records) - len(mails)
		if failures < 0 {
			failures = 0
		}
		s.metrics.TriggerFired(triggerID, len(records), failures)
	}
	if dispatchErr != nil {
		s.logger.Warn("trigger batch completed with failures",
			zap.String("trigger", triggerID),
			zap.Int("records", len(records)),
			zap.Error(dispatchErr),
		)
	}
	return mails, dispatchErr
}

// SaveTrigger 创建或更新触发器绑定，按约定补全默认值。
func (s *TriggerService) SaveTrigger(binding *domain.TriggerBinding) (*domain.TriggerBinding, error) {
	if binding.TemplateID == "" {
		return nil, &domain.ConfigurationError{Reason: "trigger binding requires a template"}
	}
	tpl, err := s.store.GetTemplate(binding.TemplateID)
	if err != nil {
		return nil, err
	}

	if binding.ID == "" {
		binding.ID = uuid.NewString()
		binding.CreatedAt = time.Now().UTC()
	}
	// 绑定创建自模板时按约定填充来源模型和回调函数名
	if binding.Model == "" {
		binding.Model = tpl.Model
	}
	if binding.Function == "" {
		binding.Function = domain.DefaultTriggerFunction
	}
	if err := s.store.SaveTrigger(binding); err != nil {
		return nil, err
	}
	return binding, nil
}

// GetTrigger 按 ID 取触发器绑定。
func (s *TriggerService) GetTrigger(id string) (*domain.TriggerBinding, error) {
	return s.store.GetTrigger(id)
}

// ListTriggers 列出全部触发器绑定。
func (s *TriggerService) ListTriggers() ([]domain.TriggerBinding, error) {
	return s.store.ListTriggers()
}

// DeleteTrigger 删除触发器绑定。
func (s *TriggerService) DeleteTrigger(id string) error {
	return s.store.DeleteTrigger(id)
}
