package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"erpmail/backend/internal/smtp"
	"erpmail/backend/internal/storage"
)

// HealthChecker 健康检查器
type HealthChecker struct {
	health healthcheck.Handler
	store  storage.Store
	logger *zap.Logger
}

// NewHealthChecker 创建健康检查器
func NewHealthChecker(store storage.Store, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		health: healthcheck.NewHandler(),
		store:  store,
		logger: logger,
	}

	hc.health.AddLivenessCheck("storage", func() error {
		return hc.store.Health()
	})

	return hc
}

// AddRelayCheck 注册 SMTP 中继可达性检查（就绪检查，不阻塞存活探针）。
func (hc *HealthChecker) AddRelayCheck(client smtp.Client) {
	if client == nil {
		return
	}
	hc.health.AddReadinessCheck("smtp-relay", func() error {
		return client.Noop()
	})
}

// AddDatabaseCheck 注册数据库连通性检查（就绪检查）。
func (hc *HealthChecker) AddDatabaseCheck(db *sql.DB) {
	if db == nil {
		return
	}
	hc.health.AddReadinessCheck("database", DatabaseHealthCheck(db))
}

// Handler 返回健康检查处理器
func (hc *HealthChecker) Handler() http.Handler {
	return hc.health
}

// LiveEndpoint 存活探针
func (hc *HealthChecker) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.LiveEndpoint(w, r)
}

// ReadyEndpoint 就绪探针
func (hc *HealthChecker) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.ReadyEndpoint(w, r)
}

// DatabaseHealthCheck 数据库健康检查
func DatabaseHealthCheck(db *sql.DB) healthcheck.Check {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return db.PingContext(ctx)
	}
}
