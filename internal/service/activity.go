package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/engine"
	"erpmail/backend/internal/storage"
)

// ActivityRecorder 在发送成功后补记一条联系人活动。
//
// 这是可选能力：对应存储未部署时整个记录器不会被注入。
// 所有失败只记日志，绝不影响已经完成的发送。
type ActivityRecorder struct {
	activities storage.ActivityRepository
	logger     *zap.Logger
}

// NewActivityRecorder 创建活动记录器。
func NewActivityRecorder(activities storage.ActivityRepository, logger *zap.Logger) *ActivityRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRecorder{
		activities: activities,
		logger:     logger,
	}
}

// Record 对配置了 Party 表达式的模板补记活动，尽力而为。
func (r *ActivityRecorder) Record(ctx context.Context, rc domain.RenderContext, tpl *domain.Template, record *domain.Record, mail *domain.MailRecord, rendered *domain.RenderedMessage) {
	if tpl.Party == "" {
		return
	}

	party, err := engine.Evaluate(tpl.Engine, tpl.Party, record, rc.Language)
	if err != nil || party == "" {
		r.logger.Debug("skip activity, party expression yielded nothing",
			zap.String("template", tpl.Name),
			zap.Error(err),
		)
		return
	}

	activity := &domain.Activity{
		ID:          uuid.NewString(),
		Party:       party,
		Resource:    "mail:" + mail.ID,
		Subject:     rendered.Header("Subject"),
		Description: rendered.Plain,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.activities.SaveActivity(activity); err != nil {
		r.logger.Warn("failed to record outgoing mail activity",
			zap.String("party", party),
			zap.String("mail_id", mail.ID),
			zap.Error(err),
		)
	}
}
