package engine

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"erpmail/backend/internal/domain"
)

// evalRaw 在沙箱里对表达式求值，如 `record.reference + "/confirmed"`。
//
// expr 只允许表达式语义，没有语句和副作用操作，
// 取代不受约束的脚本 eval。未定义的标识符求值为零值。
func evalRaw(expression string, env map[string]any) (string, error) {
	var program *vm.Program
	if cached, ok := compileCache.Get(cacheKey("raw", expression)); ok {
		program = cached.(*vm.Program)
	} else {
		compiled, err := expr.Compile(expression, expr.AllowUndefinedVariables())
		if err != nil {
			return "", &domain.EvaluationError{Engine: domain.EngineRaw, Expression: expression, Err: err}
		}
		compileCache.Set(cacheKey("raw", expression), compiled, 0)
		program = compiled
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return "", &domain.EvaluationError{Engine: domain.EngineRaw, Expression: expression, Err: err}
	}
	return stringify(out), nil
}
