package httptransport

import (
	"github.com/gin-gonic/gin"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/service"
)

// MailboxHandler 邮箱API处理器
type MailboxHandler struct {
	mailboxes *service.MailboxService
}

// NewMailboxHandler 创建邮箱处理器
func NewMailboxHandler(mailboxes *service.MailboxService) *MailboxHandler {
	return &MailboxHandler{mailboxes: mailboxes}
}

// CreateMailboxRequest 创建邮箱请求
type CreateMailboxRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role"`
}

// CreateMailbox 创建邮箱
func (h *MailboxHandler) CreateMailbox(c *gin.Context) {
	var req CreateMailboxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	mailbox, err := h.mailboxes.CreateMailbox(c.Request.Context(), req.Name, domain.MailboxRole(req.Role))
	if err != nil {
		WriteError(c, err)
		return
	}
	Created(c, mailbox)
}

// GetMailbox 获取邮箱详情
func (h *MailboxHandler) GetMailbox(c *gin.Context) {
	mailbox, err := h.mailboxes.GetMailbox(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, mailbox)
}

// ListMailboxes 获取邮箱列表
func (h *MailboxHandler) ListMailboxes(c *gin.Context) {
	mailboxes, err := h.mailboxes.ListMailboxes(c.Request.Context())
	if err != nil {
		InternalError(c, MsgMailboxListFailed)
		return
	}
	Success(c, mailboxes)
}

// DeleteMailbox 删除邮箱
func (h *MailboxHandler) DeleteMailbox(c *gin.Context) {
	if err := h.mailboxes.DeleteMailbox(c.Request.Context(), c.Param("id")); err != nil {
		WriteError(c, err)
		return
	}
	NoContent(c)
}

// GetDefaults 获取全局邮件配置
func (h *MailboxHandler) GetDefaults(c *gin.Context) {
	defaults, err := h.mailboxes.GetDefaults(c.Request.Context())
	if err != nil {
		InternalError(c, MsgDefaultsGetFailed)
		return
	}
	Success(c, defaults)
}

// UpdateDefaultsRequest 更新全局邮件配置请求
type UpdateDefaultsRequest struct {
	SentMailboxID   string `json:"sentMailboxId"`
	OutboxMailboxID string `json:"outboxMailboxId"`
	DraftMailboxID  string `json:"draftMailboxId"`
	Language        string `json:"language"`
}

// UpdateDefaults 更新全局邮件配置
func (h *MailboxHandler) UpdateDefaults(c *gin.Context) {
	var req UpdateDefaultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	defaults := &domain.MailDefaults{
		SentMailboxID:   req.SentMailboxID,
		OutboxMailboxID: req.OutboxMailboxID,
		DraftMailboxID:  req.DraftMailboxID,
		Language:        req.Language,
	}
	if err := h.mailboxes.SaveDefaults(c.Request.Context(), defaults); err != nil {
		InternalError(c, MsgDefaultsSaveFailed)
		return
	}
	SuccessWithMsg(c, "邮件配置更新成功", defaults)
}
