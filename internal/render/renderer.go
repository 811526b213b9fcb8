// Package render 把邮件模板和一条业务记录组装成一封完整的邮件。
package render

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/engine"
	"erpmail/backend/internal/report"
	"erpmail/backend/internal/security"
)

// TemplateSource 渲染前用于重读模板，避免使用上下文里的过期字段值。
type TemplateSource interface {
	GetTemplate(id string) (*domain.Template, error)
}

// Renderer 消费模板与记录，产出 RenderedMessage。
//
// 渲染是只读操作：不修改模板实体，不做任何持久化。
type Renderer struct {
	templates TemplateSource // 可选
	reports   report.Engine  // 可选，没有报表的模板不需要
	policy    *security.AttachmentPolicy
	logger    *zap.Logger
}

// NewRenderer 创建渲染器。templates 与 reports 都允许为 nil。
func NewRenderer(templates TemplateSource, reports report.Engine, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{
		templates: templates,
		reports:   reports,
		policy:    security.NewAttachmentPolicy(),
		logger:    logger,
	}
}

// 简单头部与其表达式来源的对应关系，按信头惯用顺序排列。
type headerField struct {
	header string
	expr   func(*domain.Template) string
}

var headerFields = []headerField{
	{"From", func(t *domain.Template) string { return t.From }},
	{"Sender", func(t *domain.Template) string { return t.Sender }},
	{"Reply-To", func(t *domain.Template) string { return t.ReplyTo }},
	{"To", func(t *domain.Template) string { return t.To }},
	{"Cc", func(t *domain.Template) string { return t.Cc }},
	{"Subject", func(t *domain.Template) string { return t.Subject }},
	{"Message-Id", func(t *domain.Template) string { return t.MessageID }},
	{"In-Reply-To", func(t *domain.Template) string { return t.InReplyTo }},
}

// Render 对模板的每个表达式字段按记录求值并组装邮件。
//
// Bcc 刻意不在这里求值：它由投递器带外处理，避免泄漏到传输头部。
// 求值失败原样向上传递，不做吞没。
func (r *Renderer) Render(ctx context.Context, rc domain.RenderContext, tpl *domain.Template, record *domain.Record) (*domain.RenderedMessage, error) {
	// 重读模板，保证拿到的是库里最新的字段值
	if r.templates != nil && tpl.ID != "" {
		fresh, err := r.templates.GetTemplate(tpl.ID)
		if err != nil {
			return nil, err
		}
		tpl = fresh
	}

	// 解析本次渲染使用的语言
	lang := rc.Language
	if tpl.Language != "" {
		evaluated, err := engine.Evaluate(tpl.Engine, tpl.Language, record, lang)
		if err != nil {
			return nil, err
		}
		if evaluated != "" {
			lang = evaluated
		}
	}

	msg := &domain.RenderedMessage{
		Headers: make(map[string]string),
		Date:    time.Now().UTC(),
	}

	for _, field := range headerFields {
		value, err := engine.Evaluate(tpl.Engine, field.expr(tpl), record, lang)
		if err != nil {
			return nil, err
		}
		msg.SetHeader(field.header, value)
	}

	if tpl.CreateMessageID && msg.Header("Message-Id") == "" {
		msg.SetHeader("Message-Id", fmt.Sprintf("<%s@erpmail>", uuid.NewString()))
	}

	if err := r.attachReports(ctx, tpl, record, lang, msg); err != nil {
		return nil, err
	}

	plain, err := engine.Evaluate(tpl.Engine, tpl.Plain, record, lang)
	if err != nil {
		return nil, err
	}
	html, err := engine.Evaluate(tpl.Engine, tpl.HTML, record, lang)
	if err != nil {
		return nil, err
	}

	if tpl.Signature && rc.User != nil {
		plain, html = appendSignature(plain, html, rc.User)
	}

	if css := resolveStyle(tpl); css != "" && html != "" {
		html = wrapStyled(html, css)
	}

	msg.Plain = plain
	msg.HTML = html
	return msg, nil
}

// attachReports 执行模板关联的全部报表并作为附件挂载，顺序与模板一致。
func (r *Renderer) attachReports(ctx context.Context, tpl *domain.Template, record *domain.Record, lang string, msg *domain.RenderedMessage) error {
	if len(tpl.Reports) == 0 {
		return nil
	}
	if r.reports == nil {
		return &domain.ConfigurationError{Reason: "template has reports but no report engine is wired"}
	}

	for _, link := range tpl.Reports {
		result, err := r.reports.Execute(ctx, link.ReportID, record)
		if err != nil {
			return fmt.Errorf("report %s: %w", link.ReportID, err)
		}

		name := result.Filename
		if link.Filename != "" {
			evaluated, err := engine.Evaluate(tpl.Engine, link.Filename, record, lang)
			if err != nil {
				return err
			}
			if evaluated != "" {
				name = evaluated
			}
		}

		filename := AttachmentFilename(name, result.Extension)
		if err := r.policy.Check(filename, int64(len(result.Data))); err != nil {
			return fmt.Errorf("report %s: %w", link.ReportID, err)
		}

		msg.Attachments = append(msg.Attachments, domain.RenderedAttachment{
			Filename:    filename,
			ContentType: contentTypeFor(filename),
			Data:        result.Data,
		})
	}
	return nil
}

// AttachmentFilename 拼出最终附件文件名：有扩展名为 name.ext，否则就是 name。
func AttachmentFilename(name, extension string) string {
	if extension == "" {
		return name
	}
	return name + "." + extension
}

// contentTypeFor 按扩展名推断 MIME 类型，未知时用二进制流兜底。
func contentTypeFor(filename string) string {
	if ctype := mime.TypeByExtension(filepath.Ext(filename)); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}

// appendSignature 把发信用户签名追加到两个正文上。
// 没有配置 HTML 签名时，由纯文本签名换行转 <br> 得到。
func appendSignature(plain, html string, user *domain.Sender) (string, string) {
	if user.SignatureHTML != "" {
		html = html + "<br>--<br>" + user.SignatureHTML
	}
	if user.Signature != "" {
		plain = plain + "\n--\n" + user.Signature
		if user.SignatureHTML == "" {
			html = html + "<br>--<br>" + strings.ReplaceAll(user.Signature, "\n", "<br>")
		}
	}
	return plain, html
}
