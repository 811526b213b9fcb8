package engine

import (
	"github.com/flosch/pongo2/v6"

	"erpmail/backend/internal/domain"
)

// evalJinja 用 pongo2 渲染 Django/Jinja 风格的表达式，
// 如 `Order {{ record.reference }} confirmed`。
func evalJinja(expression string, env map[string]any) (string, error) {
	var tpl *pongo2.Template
	if cached, ok := compileCache.Get(cacheKey("jinja", expression)); ok {
		tpl = cached.(*pongo2.Template)
	} else {
		parsed, err := pongo2.FromString(expression)
		if err != nil {
			return "", &domain.EvaluationError{Engine: domain.EngineJinja, Expression: expression, Err: err}
		}
		compileCache.Set(cacheKey("jinja", expression), parsed, 0)
		tpl = parsed
	}

	out, err := tpl.Execute(pongo2.Context(env))
	if err != nil {
		return "", &domain.EvaluationError{Engine: domain.EngineJinja, Expression: expression, Err: err}
	}
	return out, nil
}
