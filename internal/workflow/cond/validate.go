package cond

import (
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var allowedBinary = map[string]struct{}{
	"==": {}, "!=": {}, "<": {}, ">": {}, "<=": {}, ">=": {},
	"and": {}, "or": {}, "&&": {}, "||": {},
}

var allowedUnary = map[string]struct{}{
	"not": {}, "!": {}, "-": {}, "+": {},
}

// Validate reports whether cond stays inside the condition grammar:
// state keys, literals, comparisons and boolean logic.
func Validate(cond string) error {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return nil
	}
	_, err := parse(cond)
	return err
}

// parse returns the sorted state keys referenced by cond.
func parse(cond string) ([]string, error) {
	tree, err := parser.Parse(cond)
	if err != nil {
		return nil, &SyntaxError{Cond: cond, Err: err}
	}

	v := &grammarVisitor{idents: map[string]struct{}{}}
	ast.Walk(&tree.Node, v)
	if v.err != nil {
		return nil, &SyntaxError{Cond: cond, Err: v.err}
	}

	idents := make([]string, 0, len(v.idents))
	for name := range v.idents {
		idents = append(idents, name)
	}
	sort.Strings(idents)
	return idents, nil
}

type grammarVisitor struct {
	idents map[string]struct{}
	err    error
}

func (v *grammarVisitor) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		v.idents[n.Value] = struct{}{}
	case *ast.IntegerNode, *ast.FloatNode, *ast.StringNode, *ast.BoolNode, *ast.NilNode:
	case *ast.BinaryNode:
		if _, ok := allowedBinary[n.Operator]; !ok {
			v.err = fmt.Errorf("operator %q is not allowed", n.Operator)
		}
	case *ast.UnaryNode:
		if _, ok := allowedUnary[n.Operator]; !ok {
			v.err = fmt.Errorf("operator %q is not allowed", n.Operator)
		}
	case *ast.CallNode, *ast.BuiltinNode:
		v.err = fmt.Errorf("function calls are not allowed")
	case *ast.MemberNode, *ast.ChainNode:
		v.err = fmt.Errorf("member access is not allowed")
	default:
		v.err = fmt.Errorf("unsupported expression %T", n)
	}
}
