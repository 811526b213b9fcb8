package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/pool"
	"erpmail/backend/internal/storage"
)

// OutboxFlusher 周期性清空发件队列。
//
// 排队模板产生的邮件只落在队列邮箱里，由这里的后台任务批量
// 投递。投递并发走协程池，成功的邮件移入已发送邮箱，失败的
// 留在队列等待下一轮。
type OutboxFlusher struct {
	store      storage.Store
	dispatcher *Dispatcher
	workers    *pool.WorkerPool
	interval   time.Duration
	logger     *zap.Logger
}

// NewOutboxFlusher 创建队列投递任务。
func NewOutboxFlusher(store storage.Store, dispatcher *Dispatcher, workers int, interval time.Duration, logger *zap.Logger) *OutboxFlusher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	p := pool.NewWorkerPool(workers, workers*4)
	p.OnPanic(func(r any) {
		logger.Error("outbox worker panic", zap.Any("error", r))
	})
	return &OutboxFlusher{
		store:      store,
		dispatcher: dispatcher,
		workers:    p,
		interval:   interval,
		logger:     logger,
	}
}

// Run 按固定间隔清空队列，直到上下文取消。
func (f *OutboxFlusher) Run(ctx context.Context) error {
	f.workers.Start(ctx)
	defer f.workers.Stop()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Info("outbox flusher started", zap.Duration("interval", f.interval))
	for {
		select {
		case <-ctx.Done():
			f.logger.Info("outbox flusher stopped")
			return nil
		case <-ticker.C:
			f.Flush(ctx)
		}
	}
}

// Flush 投递所有发件队列里未发送的邮件。
//
// 排队模板可以指定自己的队列邮箱，所以除全局默认队列外，
// 所有角色为 outbox 的邮箱都要清空。
func (f *OutboxFlusher) Flush(ctx context.Context) {
	defaults, err := f.store.GetDefaults()
	if err != nil {
		f.logger.Error("failed to read mail defaults", zap.Error(err))
		return
	}

	seen := map[string]bool{}
	var outboxIDs []string
	if defaults.OutboxMailboxID != "" {
		seen[defaults.OutboxMailboxID] = true
		outboxIDs = append(outboxIDs, defaults.OutboxMailboxID)
	}
	mailboxes, err := f.store.ListMailboxes()
	if err != nil {
		f.logger.Error("failed to list mailboxes", zap.Error(err))
	} else {
		for i := range mailboxes {
			mb := mailboxes[i]
			if mb.Role == domain.RoleOutbox && !seen[mb.ID] {
				seen[mb.ID] = true
				outboxIDs = append(outboxIDs, mb.ID)
			}
		}
	}

	for _, id := range outboxIDs {
		f.flushMailbox(ctx, id, defaults)
	}
}

// flushMailbox 把单个队列邮箱里的未发送邮件交给协程池。
func (f *OutboxFlusher) flushMailbox(ctx context.Context, mailboxID string, defaults *domain.MailDefaults) {
	mails, err := f.store.ListMails(mailboxID)
	if err != nil {
		f.logger.Error("failed to list outbox",
			zap.String("mailbox_id", mailboxID),
			zap.Error(err),
		)
		return
	}

	for i := range mails {
		mail := mails[i]
		if mail.Sent {
			continue
		}
		if !f.workers.TrySubmit(func() { f.deliver(ctx, &mail, defaults) }) {
			// 协程池队列已满，剩余的留到下一轮
			return
		}
	}
}

// deliver 投递单封排队邮件，成功后移入已发送邮箱。
func (f *OutboxFlusher) deliver(ctx context.Context, mail *domain.MailRecord, defaults *domain.MailDefaults) {
	sent, err := f.dispatcher.Resend(ctx, mail.ID)
	var recipientsErr *domain.RecipientsError
	if errors.As(err, &recipientsErr) {
		// 收件人永久非法，Resend 已把邮件移入草稿箱，不再重试
		f.logger.Warn("queued mail has no valid recipients, moved to draft mailbox",
			zap.String("mail_id", mail.ID),
		)
		return
	}
	if err != nil {
		f.logger.Warn("queued mail delivery failed, will retry",
			zap.String("mail_id", mail.ID),
			zap.Error(err),
		)
		return
	}

	if defaults.SentMailboxID != "" && sent.MailboxID != defaults.SentMailboxID {
		sent.MailboxID = defaults.SentMailboxID
		if err := f.store.SaveMail(sent); err != nil {
			f.logger.Error("failed to move mail to sent mailbox",
				zap.String("mail_id", sent.ID),
				zap.Error(err),
			)
			return
		}
	}
	f.logger.Info("queued mail delivered", zap.String("mail_id", sent.ID))
}
