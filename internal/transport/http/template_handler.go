package httptransport

import (
	"github.com/gin-gonic/gin"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/service"
)

// TemplateHandler 邮件模板API处理器
type TemplateHandler struct {
	templates  *service.TemplateService
	dispatcher *service.Dispatcher
	language   string
}

// NewTemplateHandler 创建模板处理器
func NewTemplateHandler(templates *service.TemplateService, dispatcher *service.Dispatcher, defaultLanguage string) *TemplateHandler {
	return &TemplateHandler{
		templates:  templates,
		dispatcher: dispatcher,
		language:   defaultLanguage,
	}
}

// ReportLinkRequest 模板关联报表
type ReportLinkRequest struct {
	ReportID string `json:"reportId" binding:"required"`
	Filename string `json:"filename"`
}

// SaveTemplateRequest 创建/更新模板请求
type SaveTemplateRequest struct {
	Name            string              `json:"name" binding:"required"`
	Model           string              `json:"model" binding:"required"`
	Engine          string              `json:"engine"`
	From            string              `json:"from"`
	Sender          string              `json:"sender"`
	To              string              `json:"to"`
	Cc              string              `json:"cc"`
	Bcc             string              `json:"bcc"`
	ReplyTo         string              `json:"replyTo"`
	Subject         string              `json:"subject"`
	MessageID       string              `json:"messageId"`
	InReplyTo       string              `json:"inReplyTo"`
	Plain           string              `json:"plain"`
	HTML            string              `json:"html"`
	Language        string              `json:"language"`
	Signature       bool                `json:"signature"`
	CreateMessageID bool                `json:"createMessageId"`
	Style           string              `json:"style"`
	CustomStyle     string              `json:"customStyle"`
	Party           string              `json:"party"`
	Queue           bool                `json:"queue"`
	MailboxID       string              `json:"mailboxId"`
	DraftMailboxID  string              `json:"draftMailboxId"`
	OutboxMailboxID string              `json:"outboxMailboxId"`
	Reports         []ReportLinkRequest `json:"reports"`
}

func (r *SaveTemplateRequest) toInput(id string) service.SaveTemplateInput {
	reports := make([]domain.ReportLink, 0, len(r.Reports))
	for _, link := range r.Reports {
		reports = append(reports, domain.ReportLink{
			ReportID: link.ReportID,
			Filename: link.Filename,
		})
	}
	return service.SaveTemplateInput{
		ID:              id,
		Name:            r.Name,
		Model:           r.Model,
		Engine:          domain.Engine(r.Engine),
		From:            r.From,
		Sender:          r.Sender,
		To:              r.To,
		Cc:              r.Cc,
		Bcc:             r.Bcc,
		ReplyTo:         r.ReplyTo,
		Subject:         r.Subject,
		MessageID:       r.MessageID,
		InReplyTo:       r.InReplyTo,
		Plain:           r.Plain,
		HTML:            r.HTML,
		Language:        r.Language,
		Signature:       r.Signature,
		CreateMessageID: r.CreateMessageID,
		Style:           r.Style,
		CustomStyle:     r.CustomStyle,
		Party:           r.Party,
		Queue:           r.Queue,
		MailboxID:       r.MailboxID,
		DraftMailboxID:  r.DraftMailboxID,
		OutboxMailboxID: r.OutboxMailboxID,
		Reports:         reports,
	}
}

// CreateTemplate 创建模板
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	tpl, err := h.templates.SaveTemplate(c.Request.Context(), req.toInput(""))
	if err != nil {
		WriteError(c, err)
		return
	}
	Created(c, tpl)
}

// UpdateTemplate 更新模板
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req SaveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	tpl, err := h.templates.SaveTemplate(c.Request.Context(), req.toInput(c.Param("id")))
	if err != nil {
		WriteError(c, err)
		return
	}
	SuccessWithMsg(c, "模板更新成功", tpl)
}

// GetTemplate 获取模板详情
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.templates.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, tpl)
}

// ListTemplates 获取模板列表
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templates.ListTemplates(c.Request.Context())
	if err != nil {
		InternalError(c, MsgTemplateListFailed)
		return
	}
	Success(c, templates)
}

// DeleteTemplate 删除模板
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	if err := h.templates.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		WriteError(c, err)
		return
	}
	NoContent(c)
}

// RecordPayload 业务记录载荷
type RecordPayload struct {
	Model        string                    `json:"model"`
	ID           string                    `json:"id"`
	Fields       map[string]any            `json:"fields"`
	Translations map[string]map[string]any `json:"translations"`
}

func (p *RecordPayload) toDomain() *domain.Record {
	return &domain.Record{
		Model:        p.Model,
		ID:           p.ID,
		Fields:       p.Fields,
		Translations: p.Translations,
	}
}

// SendRequest 按模板发送请求
type SendRequest struct {
	Language string          `json:"language"`
	User     *domain.Sender  `json:"user"`
	Records  []RecordPayload `json:"records" binding:"required,min=1"`
}

// SendResult 发送结果
type SendResult struct {
	Mails  []*domain.MailRecord `json:"mails"`
	Errors []string             `json:"errors,omitempty"`
}

// Send 对一批记录渲染并投递
func (h *TemplateHandler) Send(c *gin.Context) {
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

	mails, err := h.dispatcher.RenderAndSend(c.Request.Context(), rc, c.Param("id"), records)
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
