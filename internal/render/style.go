package render

import (
	"erpmail/backend/internal/domain"
)

// 内置的命名样式，模板通过 Style 字段按名引用。
var namedStyles = map[string]string{
	"plain": "body { font-family: sans-serif; font-size: 14px; color: #222; }",
	"corporate": `body { font-family: Helvetica, Arial, sans-serif; font-size: 14px; color: #333; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ddd; padding: 6px 10px; }
a { color: #1a5fb4; }`,
	"compact": "body { font-family: sans-serif; font-size: 12px; line-height: 1.3; margin: 0; }",
}

// StyleNames 返回全部内置样式名。
func StyleNames() []string {
	return []string{"plain", "corporate", "compact"}
}

// resolveStyle 解析模板选用的 CSS，自定义样式优先于内置样式。
func resolveStyle(tpl *domain.Template) string {
	if tpl.CustomStyle != "" {
		return tpl.CustomStyle
	}
	if tpl.Style != "" {
		return namedStyles[tpl.Style]
	}
	return ""
}

// wrapStyled 把 HTML 正文包进带内联样式的最小 HTML 信封。
func wrapStyled(body, css string) string {
	return `<html><head><meta charset="utf-8"><style type="text/css">` +
		css + `</style></head><body>` + body + `</body></html>`
}
