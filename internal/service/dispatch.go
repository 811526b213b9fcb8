package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/engine"
	"erpmail/backend/internal/monitoring"
	"erpmail/backend/internal/render"
	"erpmail/backend/internal/smtp"
	"erpmail/backend/internal/storage"
)

// ErrMailAlreadySent 邮件记录已经发送过
var ErrMailAlreadySent = errors.New("mail already sent")

// Dispatcher 接收渲染产物，决定归属邮箱、落库并按需投递。
type Dispatcher struct {
	store    storage.Store
	renderer *render.Renderer
	client   smtp.Client       // 可为 nil：纯排队/草稿部署
	limiter  *smtp.SendLimiter // 可为 nil
	activity *ActivityRecorder // 可选能力，启动时注入一次
	metrics  *monitoring.Metrics
	logger   *zap.Logger
}

// NewDispatcher 创建投递器。
func NewDispatcher(store storage.Store, renderer *render.Renderer, client smtp.Client, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:    store,
		renderer: renderer,
		client:   client,
		logger:   logger,
	}
}

// SetActivityRecorder 注入可选的活动记录能力。
func (d *Dispatcher) SetActivityRecorder(recorder *ActivityRecorder) {
	d.activity = recorder
}

// SetLimiter 注入出站限流器。
func (d *Dispatcher) SetLimiter(limiter *smtp.SendLimiter) {
	d.limiter = limiter
}

// SetMetrics 注入监控指标。
func (d *Dispatcher) SetMetrics(metrics *monitoring.Metrics) {
	d.metrics = metrics
}

// Dispatch 处理一封渲染完成的邮件。
//
// 邮箱选择规则：Queue 模板走发件队列（模板自己的或全局默认的），
// 否则走已发送邮箱；两者都未配置时本条记录不做任何处理，
// 作为配置错误上报。收件人校验失败的邮件移入草稿箱且不触发
// SMTP 投递，这是可恢复分支而不是异常路径。
func (d *Dispatcher) Dispatch(ctx context.Context, rc domain.RenderContext, tpl *domain.Template, record *domain.Record, rendered *domain.RenderedMessage) (*domain.MailRecord, error) {
	// bcc 带外求值，绝不进入传输头部
	bcc, err := engine.Evaluate(tpl.Engine, tpl.Bcc, record, rc.Language)
	if err != nil {
		return nil, err
	}

	defaults, err := d.store.GetDefaults()
	if err != nil {
		return nil, err
	}

	mailboxID := tpl.MailboxID
	if tpl.Queue {
		mailboxID = tpl.OutboxMailboxID
		if mailboxID == "" {
			mailboxID = defaults.OutboxMailboxID
		}
	} else if mailboxID == "" {
		mailboxID = defaults.SentMailboxID
	}
	if mailboxID == "" {
		return nil, &domain.ConfigurationError{
			Reason: fmt.Sprintf("template %q has no mailbox and no global default is set", tpl.Name),
			Err:    domain.ErrNoMailbox,
		}
	}

	raw, err := render.BuildMIME(rendered)
	if err != nil {
		return nil, err
	}

	recordID := ""
	model := ""
	if record != nil {
		recordID = record.ID
		model = record.Model
	}

	mail := &domain.MailRecord{
		ID:         uuid.NewString(),
		MailboxID:  mailboxID,
		TemplateID: tpl.ID,
		Model:      model,
		RecordID:   recordID,
		From:       rendered.Header("From"),
		To:         domain.JoinAddresses(domain.SplitAddresses(rendered.Header("To"))),
		Cc:         domain.JoinAddresses(domain.SplitAddresses(rendered.Header("Cc"))),
		Bcc:        domain.JoinAddresses(domain.SplitAddresses(bcc)),
		Subject:    rendered.Header("Subject"),
		Plain:      rendered.Plain,
		HTML:       rendered.HTML,
		Raw:        raw,
		CreatedAt:  time.Now().UTC(),
	}

	if err := d.store.SaveMail(mail); err != nil {
		return nil, err
	}

	if tpl.Queue {
		d.countDispatch("outbox")
		return mail, nil
	}

	recipients := mail.Recipients()
	if !domain.ValidAddresses(recipients) {
		return d.rerouteToDraft(tpl, defaults, mail, recipients)
	}

	if err := d.transmit(ctx, mail, recipients); err != nil {
		return mail, err
	}
	d.countDispatch("sent")
	return mail, nil
}

// rerouteToDraft 把收件人校验失败的邮件移入草稿箱。
func (d *Dispatcher) rerouteToDraft(tpl *domain.Template, defaults *domain.MailDefaults, mail *domain.MailRecord, recipients []string) (*domain.MailRecord, error) {
	recipientsErr := &domain.RecipientsError{Recipients: recipients}
	d.logger.Warn("invalid recipients, rerouting to draft mailbox",
		zap.String("template", tpl.Name),
		zap.String("mail_id", mail.ID),
		zap.Error(recipientsErr),
	)
	d.countDispatch("draft")

	draftID := tpl.DraftMailboxID
	if draftID == "" {
		draftID = defaults.DraftMailboxID
	}
	if draftID == "" {
		// 没有草稿箱可去，只能原地留在目标邮箱里并上报
		return mail, &domain.ConfigurationError{
			Reason: fmt.Sprintf("template %q has no draft mailbox for invalid recipients", tpl.Name),
			Err:    domain.ErrNoMailbox,
		}
	}

	mail.MailboxID = draftID
	if err := d.store.SaveMail(mail); err != nil {
		return mail, err
	}
	return mail, nil
}

// transmit 把邮件交给中继，成功后置位已发送。
func (d *Dispatcher) transmit(ctx context.Context, mail *domain.MailRecord, recipients []string) error {
	if d.client == nil {
		return &domain.ConfigurationError{Reason: "no smtp relay configured"}
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return &domain.SmtpError{Err: err}
		}
	}

	start := time.Now()
	if err := d.client.Sendmail(mail.From, recipients, mail.Raw); err != nil {
		if d.metrics != nil {
			d.metrics.SmtpFailures.Inc()
		}
		// 记录保持未发送状态，等待人工重试
		return &domain.SmtpError{Err: err}
	}
	if d.metrics != nil {
		d.metrics.SmtpSends.Inc()
		d.metrics.SendDuration.Observe(time.Since(start).Seconds())
	}

	now := time.Now().UTC()
	mail.Sent = true
	mail.SentAt = &now
	return d.store.SaveMail(mail)
}

// RenderAndSend 对一批记录逐条渲染并投递。
//
// 单条记录的失败不会中断批次里其余记录，所有失败最后合并上报。
func (d *Dispatcher) RenderAndSend(ctx context.Context, rc domain.RenderContext, templateID string, records []*domain.Record) ([]*domain.MailRecord, error) {
	tpl, err := d.store.GetTemplate(templateID)
	if err != nil {
		return nil, err
	}

	var mails []*domain.MailRecord
	var errs []error
	for _, record := range records {
		renderStart := time.Now()
		rendered, err := d.renderer.Render(ctx, rc, tpl, record)
		d.countRender(tpl.Engine, err, time.Since(renderStart))
		if err != nil {
			d.logger.Error("render failed",
				zap.String("template", tpl.Name),
				zap.String("record", record.ID),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("record %s: %w", record.ID, err))
			continue
		}

		mail, err := d.Dispatch(ctx, rc, tpl, record, rendered)
		if err != nil {
			d.logger.Error("dispatch failed",
				zap.String("template", tpl.Name),
				zap.String("record", record.ID),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("record %s: %w", record.ID, err))
		}
		if mail != nil {
			mails = append(mails, mail)
			if err == nil && d.activity != nil {
				d.activity.Record(ctx, rc, tpl, record, mail, rendered)
			}
		}
	}
	return mails, errors.Join(errs...)
}

// Resend 重新投递一封未发送的邮件记录（如中继故障后的人工重试）。
func (d *Dispatcher) Resend(ctx context.Context, mailID string) (*domain.MailRecord, error) {
	mail, err := d.store.GetMail(mailID)
	if err != nil {
		return nil, err
	}
	if mail.Sent {
		return mail, ErrMailAlreadySent
	}

	recipients := mail.Recipients()
	if !domain.ValidAddresses(recipients) {
		// 永久非法的收件人重试多少次都不会变好，移入草稿箱
		if err := d.rerouteUnsendable(mail, recipients); err != nil {
			return mail, err
		}
		return mail, &domain.RecipientsError{Recipients: recipients}
	}
	if err := d.transmit(ctx, mail, recipients); err != nil {
		return mail, err
	}
	d.countDispatch("sent")
	return mail, nil
}

// rerouteUnsendable 把收件人非法的存量邮件移入草稿箱，
// 优先用邮件所属模板的草稿箱。
func (d *Dispatcher) rerouteUnsendable(mail *domain.MailRecord, recipients []string) error {
	defaults, err := d.store.GetDefaults()
	if err != nil {
		return err
	}
	tpl := &domain.Template{}
	if mail.TemplateID != "" {
		if existing, err := d.store.GetTemplate(mail.TemplateID); err == nil {
			tpl = existing
		}
	}
	_, err = d.rerouteToDraft(tpl, defaults, mail, recipients)
	return err
}

func (d *Dispatcher) countDispatch(outcome string) {
	if d.metrics != nil {
		d.metrics.MailsDispatched.WithLabelValues(outcome).Inc()
	}
}

func (d *Dispatcher) countRender(eng domain.Engine, err error, duration time.Duration) {
	if d.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	d.metrics.RecordRender(string(eng), result, duration)
}
