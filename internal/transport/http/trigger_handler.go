package httptransport

import (
	"github.com/gin-gonic/gin"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/service"
)

// TriggerHandler 触发器绑定API处理器
type TriggerHandler struct {
	triggers *service.TriggerService
	language string
}

// NewTriggerHandler 创建触发器处理器
func NewTriggerHandler(triggers *service.TriggerService, defaultLanguage string) *TriggerHandler {
	return &TriggerHandler{
		triggers: triggers,
		language: defaultLanguage,
	}
}

// SaveTriggerRequest 创建触发器绑定请求
type SaveTriggerRequest struct {
	Name       string `json:"name" binding:"required"`
	TemplateID string `json:"templateId" binding:"required"`
	Model      string `json:"model"`
	OnCreate   bool   `json:"onCreate"`
	OnWrite    bool   `json:"onWrite"`
}

// CreateTrigger 创建触发器绑定
func (h *TriggerHandler) CreateTrigger(c *gin.Context) {
	var req SaveTriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	binding, err := h.triggers.SaveTrigger(&domain.TriggerBinding{
		Name:       req.Name,
		TemplateID: req.TemplateID,
		Model:      req.Model,
		OnCreate:   req.OnCreate,
		OnWrite:    req.OnWrite,
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	Created(c, binding)
}

// GetTrigger 获取触发器详情
func (h *TriggerHandler) GetTrigger(c *gin.Context) {
	binding, err := h.triggers.GetTrigger(c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, binding)
}

// ListTriggers 获取触发器列表
func (h *TriggerHandler) ListTriggers(c *gin.Context) {
	bindings, err := h.triggers.ListTriggers()
	if err != nil {
		InternalError(c, MsgTriggerListFailed)
		return
	}
	Success(c, bindings)
}

// DeleteTrigger 删除触发器绑定
func (h *TriggerHandler) DeleteTrigger(c *gin.Context) {
	if err := h.triggers.DeleteTrigger(c.Param("id")); err != nil {
		WriteError(c, err)
		return
	}
	NoContent(c)
}

// FireTrigger 手动触发一次触发器（宿主记录变更的模拟入口）
func (h *TriggerHandler) FireTrigger(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	if req.Language == "" {
		req.Language = h.language
	}
	rc := domain.RenderContext{Language: req.Language, User: req.User}

	records := make([]*domain.Record, 0, len(req.Records))
	for i := range req.Records {
		records = append(records, req.Records[i].toDomain())
	}

	mails, err := h.triggers.MailFromTrigger(c.Request.Context(), rc, c.Param("id"), records)
	if err != nil && len(mails) == 0 {
		WriteError(c, err)
		return
	}

	result := SendResult{Mails: mails}
	if err != nil {
		result.Errors = splitJoined(err)
		SuccessWithMsg(c, "部分记录发送失败", result)
		return
	}
	Success(c, result)
}
