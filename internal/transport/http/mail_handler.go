package httptransport

import (
	"github.com/gin-gonic/gin"

	"erpmail/backend/internal/service"
)

// MailHandler 邮件记录API处理器
type MailHandler struct {
	mails      *service.MailService
	dispatcher *service.Dispatcher
}

// NewMailHandler 创建邮件记录处理器
func NewMailHandler(mails *service.MailService, dispatcher *service.Dispatcher) *MailHandler {
	return &MailHandler{
		mails:      mails,
		dispatcher: dispatcher,
	}
}

// ListMails 获取邮箱下的邮件列表
func (h *MailHandler) ListMails(c *gin.Context) {
	mails, err := h.mails.ListMails(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, mails)
}

// GetMail 获取邮件详情
func (h *MailHandler) GetMail(c *gin.Context) {
	mail, err := h.mails.GetMail(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, mail)
}

// DeleteMail 删除邮件记录
func (h *MailHandler) DeleteMail(c *gin.Context) {
	if err := h.mails.DeleteMail(c.Request.Context(), c.Param("id")); err != nil {
		WriteError(c, err)
		return
	}
	NoContent(c)
}

// ResendMail 重新投递未发送的邮件
func (h *MailHandler) ResendMail(c *gin.Context) {
	mail, err := h.dispatcher.Resend(c.Request.Context(), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	SuccessWithMsg(c, "邮件已重新投递", mail)
}
