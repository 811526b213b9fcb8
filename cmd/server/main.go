package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"erpmail/backend/internal/config"
	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/engine"
	"erpmail/backend/internal/health"
	"erpmail/backend/internal/logger"
	"erpmail/backend/internal/monitoring"
	"erpmail/backend/internal/render"
	"erpmail/backend/internal/report"
	"erpmail/backend/internal/service"
	"erpmail/backend/internal/smtp"
	"erpmail/backend/internal/storage"
	"erpmail/backend/internal/storage/memory"
	sqlstore "erpmail/backend/internal/storage/sql"
	httptransport "erpmail/backend/internal/transport/http"
)

// main 启动邮件模板服务：HTTP API + 出站投递。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting erpmail server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	var store storage.Store
	var sqlDB *sql.DB
	if cfg.Database.Type != "" {
		sqlStore, err := sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			log.Fatal("failed to initialize database storage", zap.Error(err))
		}
		store = sqlStore
		sqlDB = sqlStore.DB()
		log.Info("using database storage", zap.String("type", cfg.Database.Type))
	} else {
		store = memory.NewStore()
		log.Info("using memory storage (development mode)")
	}
	defer store.Close()

	// 监控与健康检查
	metrics := monitoring.NewMetrics()
	healthChecker := health.NewHealthChecker(store, log)
	healthChecker.AddDatabaseCheck(sqlDB)

	// 出站中继（未配置时纯排队/草稿运行）
	var relay smtp.Client
	if cfg.Relay.Host != "" {
		relay = smtp.NewRelayClient(smtp.Config{
			Host:     cfg.Relay.Host,
			Port:     cfg.Relay.Port,
			Username: cfg.Relay.Username,
			Password: cfg.Relay.Password,
			StartTLS: cfg.Relay.StartTLS,
			Timeout:  cfg.Relay.Timeout,
		})
		healthChecker.AddRelayCheck(relay)
		log.Info("smtp relay configured",
			zap.String("host", cfg.Relay.Host),
			zap.Int("port", cfg.Relay.Port),
			zap.Bool("starttls", cfg.Relay.StartTLS),
		)
	} else {
		log.Warn("no smtp relay configured, mails will only be queued or drafted")
	}

	// 渲染管线：报表注册表复用表达式引擎
	reports := report.NewRegistry(engine.Evaluate)
	renderer := render.NewRenderer(store, reports, log)

	// 投递器及可选能力
	dispatcher := service.NewDispatcher(store, renderer, relay, log)
	dispatcher.SetMetrics(metrics)
	dispatcher.SetActivityRecorder(service.NewActivityRecorder(store, log))
	if cfg.Relay.MaxPerSecond > 0 {
		dispatcher.SetLimiter(smtp.NewSendLimiter(cfg.Relay.MaxPerSecond, cfg.Relay.Burst))
		log.Info("outbound rate limit enabled",
			zap.Float64("per_second", cfg.Relay.MaxPerSecond),
			zap.Int("burst", cfg.Relay.Burst),
		)
	}

	// 服务层
	templateService := service.NewTemplateService(store, log)
	mailboxService := service.NewMailboxService(store, log)
	mailService := service.NewMailService(store, log)
	triggerService := service.NewTriggerService(store, dispatcher, log)
	triggerService.SetMetrics(metrics)

	// 准备默认邮箱并写入全局配置
	if err := ensureDefaults(context.Background(), cfg, mailboxService, log); err != nil {
		log.Fatal("failed to prepare default mailboxes", zap.Error(err))
	}

	// HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:          cfg,
		TemplateService: templateService,
		MailboxService:  mailboxService,
		MailService:     mailService,
		TriggerService:  triggerService,
		Dispatcher:      dispatcher,
		Reports:         reports,
		Metrics:         metrics,
		Health:          healthChecker,
		Logger:          log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// 发件队列后台投递（只有配置了中继才有意义）
	if relay != nil {
		flusher := service.NewOutboxFlusher(store, dispatcher, cfg.Mail.FlushWorkers, cfg.Mail.FlushInterval, log)
		group.Go(func() error {
			return flusher.Run(groupCtx)
		})
	}

	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 优雅关闭
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}

// ensureDefaults 启动时创建配置的默认邮箱，并把全局邮件配置指向它们。
// 已经指定过邮箱的配置字段不会被覆盖。
func ensureDefaults(ctx context.Context, cfg *config.Config, mailboxes *service.MailboxService, log *zap.Logger) error {
	sent, err := mailboxes.EnsureMailbox(ctx, cfg.Mail.SentMailbox, domain.RoleSent)
	if err != nil {
		return err
	}
	outbox, err := mailboxes.EnsureMailbox(ctx, cfg.Mail.OutboxMailbox, domain.RoleOutbox)
	if err != nil {
		return err
	}
	draft, err := mailboxes.EnsureMailbox(ctx, cfg.Mail.DraftMailbox, domain.RoleDraft)
	if err != nil {
		return err
	}

	defaults, err := mailboxes.GetDefaults(ctx)
	if err != nil {
		return err
	}

	changed := false
	if defaults.SentMailboxID == "" {
		defaults.SentMailboxID = sent.ID
		changed = true
	}
	if defaults.OutboxMailboxID == "" {
		defaults.OutboxMailboxID = outbox.ID
		changed = true
	}
	if defaults.DraftMailboxID == "" {
		defaults.DraftMailboxID = draft.ID
		changed = true
	}
	if defaults.Language == "" {
		defaults.Language = cfg.Mail.Language
		changed = true
	}
	if !changed {
		return nil
	}

	log.Info("default mailboxes prepared",
		zap.String("sent", sent.Name),
		zap.String("outbox", outbox.Name),
		zap.String("draft", draft.Name),
	)
	return mailboxes.SaveDefaults(ctx, defaults)
}
