package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/service"
	"erpmail/backend/internal/storage"
)

// 错误消息映射表（业务错误 -> 中文消息）
var errorMessages = map[error]string{
	// 存储层错误
	storage.ErrTemplateNotFound: "模板不存在",
	storage.ErrMailboxNotFound:  "邮箱不存在",
	storage.ErrMailNotFound:     "邮件记录不存在",
	storage.ErrTriggerNotFound:  "触发器不存在",
	storage.ErrMailboxExists:    "邮箱名已存在",

	// 服务层错误
	service.ErrTemplateNameRequired:  "模板名称不能为空",
	service.ErrTemplateModelRequired: "模板必须绑定模型",
	service.ErrMailboxNameRequired:   "邮箱名称不能为空",
	service.ErrMailAlreadySent:       "邮件已发送，不能重复投递",

	// 领域错误
	domain.ErrUnknownEngine: "不支持的表达式引擎",
	domain.ErrNoMailbox:     "未配置目标邮箱",
	domain.ErrNoRecipients:  "没有有效的收件人",
}

// GetErrorMessage 获取错误的中文消息
func GetErrorMessage(err error) string {
	for key, msg := range errorMessages {
		if errors.Is(err, key) {
			return msg
		}
	}
	return err.Error()
}

// WriteError 把业务错误映射为响应
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrTemplateNotFound),
		errors.Is(err, storage.ErrMailboxNotFound),
		errors.Is(err, storage.ErrMailNotFound),
		errors.Is(err, storage.ErrTriggerNotFound):
		NotFound(c, GetErrorMessage(err))
	case errors.Is(err, storage.ErrMailboxExists),
		errors.Is(err, service.ErrMailAlreadySent):
		Conflict(c, GetErrorMessage(err))
	case errors.Is(err, service.ErrTemplateNameRequired),
		errors.Is(err, service.ErrTemplateModelRequired),
		errors.Is(err, service.ErrMailboxNameRequired),
		errors.Is(err, domain.ErrUnknownEngine):
		BadRequest(c, GetErrorMessage(err))
	default:
		var evalErr *domain.EvaluationError
		var cfgErr *domain.ConfigurationError
		var recErr *domain.RecipientsError
		var smtpErr *domain.SmtpError
		switch {
		case errors.As(err, &evalErr):
			UnprocessableEntity(c, "表达式求值失败: "+evalErr.Error())
		case errors.As(err, &cfgErr):
			UnprocessableEntity(c, "配置不完整: "+cfgErr.Reason)
		case errors.As(err, &recErr):
			UnprocessableEntity(c, GetErrorMessage(domain.ErrNoRecipients))
		case errors.As(err, &smtpErr):
			BadGateway(c, "邮件投递失败，请稍后重试")
		default:
			InternalError(c, MsgInternalError)
		}
	}
}

// splitJoined 把合并错误拆成逐条消息
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		msgs := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}

// 通用错误消息
const (
	MsgInvalidRequest = "请求参数格式错误"
	MsgInternalError  = "服务器内部错误，请稍后重试"

	MsgTemplateSaveFailed = "保存模板失败"
	MsgTemplateListFailed = "获取模板列表失败"
	MsgMailboxListFailed  = "获取邮箱列表失败"
	MsgMailListFailed     = "获取邮件列表失败"
	MsgTriggerListFailed  = "获取触发器列表失败"
	MsgDefaultsGetFailed  = "获取邮件配置失败"
	MsgDefaultsSaveFailed = "保存邮件配置失败"
)
