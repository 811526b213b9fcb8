package engine

import (
	"bytes"
	"text/template"

	"erpmail/backend/internal/domain"
)

// evalText 用 text/template 语法渲染表达式，
// 如 `Order {{.record.reference}} confirmed`。
func evalText(expression string, env map[string]any) (string, error) {
	var tpl *template.Template
	if cached, ok := compileCache.Get(cacheKey("text", expression)); ok {
		tpl = cached.(*template.Template)
	} else {
		parsed, err := template.New("expression").Option("missingkey=zero").Parse(expression)
		if err != nil {
			return "", &domain.EvaluationError{Engine: domain.EngineText, Expression: expression, Err: err}
		}
		compileCache.Set(cacheKey("text", expression), parsed, 0)
		tpl = parsed
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, env); err != nil {
		return "", &domain.EvaluationError{Engine: domain.EngineText, Expression: expression, Err: err}
	}
	return buf.String(), nil
}
