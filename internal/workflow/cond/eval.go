// Package cond evaluates workflow conditions such as
// "quality_score >= 70 or iteration >= 3" against a state map.
package cond

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Compiled is a parsed and grammar-checked condition.
type Compiled struct {
	Source  string
	Vars    []string
	program *vm.Program
}

func Compile(cond string) (*Compiled, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return &Compiled{}, nil
	}

	vars, err := parse(cond)
	if err != nil {
		return nil, err
	}

	program, err := expr.Compile(cond, expr.DisableAllBuiltins())
	if err != nil {
		return nil, &SyntaxError{Cond: cond, Err: err}
	}

	return &Compiled{Source: cond, Vars: vars, program: program}, nil
}

// Eval runs the condition against vars. An empty condition is true.
func (c *Compiled) Eval(vars map[string]any) (bool, error) {
	if c == nil || c.program == nil {
		return true, nil
	}

	env := make(map[string]any, len(c.Vars))
	var missing []string
	for _, name := range c.Vars {
		v, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		if !isScalar(v) {
			return false, &NonScalarError{Key: name, Type: fmt.Sprintf("%T", v)}
		}
		env[name] = v
	}
	if len(missing) > 0 {
		return false, &MissingVariablesError{Vars: missing}
	}

	out, err := expr.Run(c.program, env)
	if err != nil {
		return false, err
	}

	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("cond must evaluate to bool (got %T)", out)
	}

	return b, nil
}

func Eval(cond string, vars map[string]any) (bool, error) {
	c, err := Compile(cond)
	if err != nil {
		return false, err
	}
	return c.Eval(vars)
}

func isScalar(v any) bool {
	if v == nil {
		return true
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
