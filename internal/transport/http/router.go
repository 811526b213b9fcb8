package httptransport

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"erpmail/backend/internal/config"
	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/health"
	"erpmail/backend/internal/middleware"
	"erpmail/backend/internal/monitoring"
	"erpmail/backend/internal/render"
	"erpmail/backend/internal/report"
	"erpmail/backend/internal/service"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config          *config.Config
	TemplateService *service.TemplateService
	MailboxService  *service.MailboxService
	MailService     *service.MailService
	TriggerService  *service.TriggerService
	Dispatcher      *service.Dispatcher
	Reports         *report.Registry
	Metrics         *monitoring.Metrics
	Health          *health.HealthChecker
	Logger          *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryHandler(deps.Logger, deps.Metrics))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(10 * 1024 * 1024))
	if deps.Metrics != nil {
		router.Use(middleware.HTTPMetrics(deps.Metrics))
	}

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	templateHandler := NewTemplateHandler(deps.TemplateService, deps.Dispatcher, deps.Config.Mail.Language)
	mailboxHandler := NewMailboxHandler(deps.MailboxService)
	mailHandler := NewMailHandler(deps.MailService, deps.Dispatcher)
	triggerHandler := NewTriggerHandler(deps.TriggerService, deps.Config.Mail.Language)

	// 监控与探针
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))
	}
	if deps.Health != nil {
		router.GET("/healthz/live", gin.WrapF(deps.Health.LiveEndpoint))
		router.GET("/healthz/ready", gin.WrapF(deps.Health.ReadyEndpoint))
	}

	// V1 API
	v1 := router.Group("/v1")
	{
		// ========== Template Routes ==========
		templateRoutes := v1.Group("/templates")
		{
			templateRoutes.POST("", templateHandler.CreateTemplate)
			templateRoutes.GET("", templateHandler.ListTemplates)
			templateRoutes.GET("/:id", templateHandler.GetTemplate)
			templateRoutes.PUT("/:id", templateHandler.UpdateTemplate)
			templateRoutes.DELETE("/:id", templateHandler.DeleteTemplate)

			// 渲染并投递
			templateRoutes.POST("/:id/send", templateHandler.Send)
		}

		// ========== Mailbox Routes ==========
		mailboxRoutes := v1.Group("/mailboxes")
		{
			mailboxRoutes.POST("", mailboxHandler.CreateMailbox)
			mailboxRoutes.GET("", mailboxHandler.ListMailboxes)
			mailboxRoutes.GET("/:id", mailboxHandler.GetMailbox)
			mailboxRoutes.DELETE("/:id", mailboxHandler.DeleteMailbox)
			mailboxRoutes.GET("/:id/mails", mailHandler.ListMails)
		}

		// ========== Mail Routes ==========
		mailRoutes := v1.Group("/mails")
		{
			mailRoutes.GET("/:id", mailHandler.GetMail)
			mailRoutes.DELETE("/:id", mailHandler.DeleteMail)
			mailRoutes.POST("/:id/resend", mailHandler.ResendMail)
		}

		// ========== Trigger Routes ==========
		triggerRoutes := v1.Group("/triggers")
		{
			triggerRoutes.POST("", triggerHandler.CreateTrigger)
			triggerRoutes.GET("", triggerHandler.ListTriggers)
			triggerRoutes.GET("/:id", triggerHandler.GetTrigger)
			triggerRoutes.DELETE("/:id", triggerHandler.DeleteTrigger)
			triggerRoutes.POST("/:id/fire", triggerHandler.FireTrigger)
		}

		// ========== Report Routes ==========
		if deps.Reports != nil {
			reportHandler := NewReportHandler(deps.Reports)
			reportRoutes := v1.Group("/reports")
			{
				reportRoutes.POST("", reportHandler.SaveReport)
				reportRoutes.GET("", reportHandler.ListReports)
				reportRoutes.DELETE("/:id", reportHandler.DeleteReport)
			}
		}

		// ========== Defaults Routes ==========
		v1.GET("/defaults", mailboxHandler.GetDefaults)
		v1.PUT("/defaults", mailboxHandler.UpdateDefaults)

		// ========== Meta Routes ==========
		metaRoutes := v1.Group("/meta")
		{
			metaRoutes.GET("/engines", func(c *gin.Context) {
				Success(c, domain.Engines())
			})
			metaRoutes.GET("/styles", func(c *gin.Context) {
				Success(c, render.StyleNames())
			})
		}
	}

	return router
}
