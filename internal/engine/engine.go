// Package engine 实现模板表达式的求值：同一份契约下的三种可替换策略。
package engine

import (
	"fmt"

	"erpmail/backend/internal/domain"
)

// Evaluate 用指定引擎对表达式求值，record 是唯一的自由变量。
//
// 空表达式直接得到空串，不会进入底层引擎；其余失败一律包装为
// EvaluationError 原样向上传递。求值是纯函数，语言上下文通过 lang
// 显式传入，影响记录可翻译字段的取值。
func Evaluate(eng domain.Engine, expression string, record *domain.Record, lang string) (string, error) {
	if expression == "" {
		return "", nil
	}

	env := map[string]any{"record": map[string]any{}}
	if record != nil {
		env = record.Env(lang)
	}

	switch eng {
	case domain.EngineRaw:
		return evalRaw(expression, env)
	case domain.EngineText:
		return evalText(expression, env)
	case domain.EngineJinja:
		return evalJinja(expression, env)
	default:
		return "", &domain.EvaluationError{
			Engine:     eng,
			Expression: expression,
			Err:        domain.ErrUnknownEngine,
		}
	}
}

// stringify 把求值结果规整为字符串，nil 视为空。
func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []byte:
		return string(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
