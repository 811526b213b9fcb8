package httptransport

import (
	"github.com/gin-gonic/gin"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/report"
)

// ReportHandler 内置报表定义API处理器
type ReportHandler struct {
	reports *report.Registry
}

// NewReportHandler 创建报表处理器
func NewReportHandler(reports *report.Registry) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// SaveReportRequest 登记报表定义请求
type SaveReportRequest struct {
	ID        string `json:"id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Extension string `json:"extension"`
	Engine    string `json:"engine"`
	Body      string `json:"body" binding:"required"`
}

// SaveReport 登记报表定义，同名覆盖
func (h *ReportHandler) SaveReport(c *gin.Context) {
	var req SaveReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	eng := domain.Engine(req.Engine)
	if eng == "" {
		eng = domain.EngineRaw
	}
	if !domain.ValidEngine(eng) {
		BadRequest(c, "不支持的求值引擎")
		return
	}

	def := report.Definition{
		ID:        req.ID,
		Name:      req.Name,
		Extension: req.Extension,
		Engine:    eng,
		Body:      req.Body,
	}
	h.reports.Register(def)
	Created(c, def)
}

// ListReports 获取报表定义列表
func (h *ReportHandler) ListReports(c *gin.Context) {
	Success(c, h.reports.List())
}

// DeleteReport 移除报表定义
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	if !h.reports.Remove(c.Param("id")) {
		NotFound(c, "报表不存在")
		return
	}
	NoContent(c)
}
