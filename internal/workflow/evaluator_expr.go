package workflow

import (
	"sync"

	"github.com/awmpietro/workflow-graph-engine/internal/workflow/cond"
)

// ExprEvaluator evaluates conditions with the cond grammar, keeping one
// compiled program per distinct expression.
type ExprEvaluator struct {
	compiled sync.Map
}

func NewExprEvaluator() *ExprEvaluator { return &ExprEvaluator{} }

func (e *ExprEvaluator) Eval(expression string, vars map[string]any) (bool, error) {
	if c, ok := e.compiled.Load(expression); ok {
		return c.(*cond.Compiled).Eval(vars)
	}

	c, err := cond.Compile(expression)
	if err != nil {
		return false, err
	}
	e.compiled.Store(expression, c)
	return c.Eval(vars)
}
