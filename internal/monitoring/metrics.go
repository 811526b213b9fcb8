package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 渲染指标
	RendersTotal   *prometheus.CounterVec
	RenderDuration prometheus.Histogram

	// 投递指标：outcome 取 sent / outbox / draft
	MailsDispatched *prometheus.CounterVec
	SmtpSends       prometheus.Counter
	SmtpFailures    prometheus.Counter
	SendDuration    prometheus.Histogram

	// 触发器指标
	TriggersFired   *prometheus.CounterVec
	TriggerRecords  *prometheus.CounterVec
	TriggerFailures *prometheus.CounterVec

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpmail_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "erpmail_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		RendersTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpmail_renders_total",
				Help: "Total number of template renders",
			},
			[]string{"engine", "result"},
		),

		RenderDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "erpmail_render_duration_seconds",
				Help:    "Template render duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		MailsDispatched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpmail_mails_dispatched_total",
				Help: "Total number of dispatched mails by outcome",
			},
			[]string{"outcome"},
		),

		SmtpSends: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "erpmail_smtp_sends_total",
				Help: "Total number of successful SMTP deliveries",
			},
		),

		SmtpFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "erpmail_smtp_failures_total",
				Help: "Total number of failed SMTP deliveries",
			},
		),

		SendDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "erpmail_smtp_send_duration_seconds",
				Help:    "SMTP delivery duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		TriggersFired: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpmail_triggers_fired_total",
				Help: "Total number of trigger firings",
			},
			[]string{"trigger"},
		),

		TriggerRecords: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpmail_trigger_records_total",
				Help: "Total number of records processed by triggers",
			},
			[]string{"trigger"},
		),

		TriggerFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpmail_trigger_failures_total",
				Help: "Total number of records that failed during trigger processing",
			},
			[]string{"trigger"},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erpmail_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "erpmail_panics_total",
				Help: "Total number of panics",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRender 记录一次模板渲染
func (m *Metrics) RecordRender(engine, result string, duration time.Duration) {
	m.RendersTotal.WithLabelValues(engine, result).Inc()
	m.RenderDuration.Observe(duration.Seconds())
}

// TriggerFired 记录一次触发器执行
func (m *Metrics) TriggerFired(triggerID string, records, failures int) {
	m.TriggersFired.WithLabelValues(triggerID).Inc()
	m.TriggerRecords.WithLabelValues(triggerID).Add(float64(records))
	if failures > 0 {
		m.TriggerFailures.WithLabelValues(triggerID).Add(float64(failures))
	}
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
