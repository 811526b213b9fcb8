package domain

import (
	"time"
)

// Engine 表示模板表达式的求值引擎。
//
// 引擎集合是封闭的：新增引擎需要同时扩展 engine 包的分发逻辑，
// 不支持运行时注册。
type Engine string

const (
	// EngineRaw 把表达式当作沙箱表达式求值，record 是唯一的自由变量
	EngineRaw Engine = "raw"
	// EngineText 使用 text/template 语法渲染表达式
	EngineText Engine = "text"
	// EngineJinja 使用 Django/Jinja 风格的 pongo2 语法渲染表达式
	EngineJinja Engine = "jinja"
)

// Engines 返回全部已注册的引擎键。
func Engines() []Engine {
	return []Engine{EngineRaw, EngineText, EngineJinja}
}

// ValidEngine 判断给定值是否为已注册引擎。
func ValidEngine(e Engine) bool {
	switch e {
	case EngineRaw, EngineText, EngineJinja:
		return true
	}
	return false
}

// Template 表示一条邮件模板配置：描述如何把一条业务记录变成一封外发邮件。
//
// From/Sender/To/Cc/Bcc/Subject 等字段保存的是表达式源码，
// 渲染时逐条用选定引擎对目标记录求值。
type Template struct {
	ID    string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name  string `json:"name" gorm:"type:varchar(255);not null"`
	Model string `json:"model" gorm:"type:varchar(128);index;not null"` // 绑定的业务模型名，如 "sale.order"

	// 头部表达式，求值结果为空则不生成对应头部
	From      string `json:"from" gorm:"column:from_expr;type:text"`
	Sender    string `json:"sender" gorm:"type:text"`
	To        string `json:"to" gorm:"column:to_expr;type:text"`
	Cc        string `json:"cc" gorm:"type:text"`
	Bcc       string `json:"bcc" gorm:"type:text"` // 单独求值，不写入传输头部
	ReplyTo   string `json:"replyTo" gorm:"type:text"`
	Subject   string `json:"subject" gorm:"type:text"`
	MessageID string `json:"messageId" gorm:"type:text"`
	InReplyTo string `json:"inReplyTo" gorm:"type:text"`

	// 正文表达式
	Plain string `json:"plain" gorm:"type:text"`
	HTML  string `json:"html" gorm:"type:text"`

	// Language 表达式用于解析 ISO 语言代码，决定记录翻译字段的取值语言
	Language string `json:"language" gorm:"type:varchar(255)"`

	Engine          Engine `json:"engine" gorm:"type:varchar(16);not null"`
	Signature       bool   `json:"signature"`                            // 追加发信用户签名
	CreateMessageID bool   `json:"createMessageId"`                      // 发送时自动生成 Message-Id
	Style           string `json:"style" gorm:"type:varchar(64)"`        // 内置样式名
	CustomStyle     string `json:"customStyle" gorm:"type:text"`         // 自定义 CSS，优先于 Style
	Party           string `json:"party" gorm:"type:text"`               // 求值得到联系人标识，用于活动记录
	Queue           bool   `json:"queue"`                                // 仅入发件队列，不立即投递

	// 目标邮箱；为空时回退到全局默认配置
	MailboxID       string `json:"mailboxId" gorm:"type:varchar(36)"`
	DraftMailboxID  string `json:"draftMailboxId" gorm:"type:varchar(36)"`
	OutboxMailboxID string `json:"outboxMailboxId" gorm:"type:varchar(36)"`

	Reports []ReportLink `json:"reports,omitempty" gorm:"foreignKey:TemplateID"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReportLink 表示模板与报表的关联，一个模板可以附带多份报表。
type ReportLink struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TemplateID string `json:"templateId" gorm:"type:varchar(36);index;not null"`
	ReportID   string `json:"reportId" gorm:"type:varchar(64);not null"`
	// Filename 表达式，求值结果覆盖报表的默认文件名（不含扩展名）
	Filename string `json:"filename" gorm:"type:text"`
}
