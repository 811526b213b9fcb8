package domain

import (
	"errors"
	"fmt"
)

// 投递与渲染相关的哨兵错误
var (
	// ErrUnknownEngine 模板引用了未注册的求值引擎
	ErrUnknownEngine = errors.New("unknown template engine")
	// ErrNoMailbox 模板与全局配置都没有给出目标邮箱
	ErrNoMailbox = errors.New("no mailbox configured")
	// ErrNoRecipients to/cc/bcc 求值后没有任何收件人
	ErrNoRecipients = errors.New("no valid recipients")
)

// EvaluationError 表示表达式求值失败，携带引擎与出错的表达式。
type EvaluationError struct {
	Engine     Engine
	Expression string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %s expression %q: %v", e.Engine, e.Expression, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// RecipientsError 表示发送时刻没有一个合法的收件人地址。
//
// 投递器不会用它中断请求：邮件被移入草稿箱，错误仅用于上报。
type RecipientsError struct {
	Recipients []string
}

func (e *RecipientsError) Error() string {
	return fmt.Sprintf("no valid recipient among %v", e.Recipients)
}

func (e *RecipientsError) Unwrap() error { return ErrNoRecipients }

// SmtpError 表示与邮件中继的传输层故障，邮件保持未发送以便人工重试。
type SmtpError struct {
	Err error
}

func (e *SmtpError) Error() string {
	return fmt.Sprintf("smtp relay: %v", e.Err)
}

func (e *SmtpError) Unwrap() error { return e.Err }

// ConfigurationError 表示缺少必要配置（默认邮箱、中继服务器等），
// 只中止当前记录的处理。
type ConfigurationError struct {
	Reason string
	Err    error // 可选的哨兵，如 ErrNoMailbox
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
