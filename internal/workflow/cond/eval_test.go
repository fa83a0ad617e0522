package cond

import (
	"errors"
	"testing"
)

func TestEval_ComparisonsAndLogic(t *testing.T) {
	vars := map[string]any{
		"quality_score": 65,
		"iteration":     3,
	}

	ok, err := Eval(`quality_score >= 70 or iteration >= 3`, vars)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("expected true")
	}

	ok, err = Eval(`quality_score >= 70 and iteration >= 3`, vars)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("expected false")
	}
}

func TestEval_StringEquality(t *testing.T) {
	vars := map[string]any{"complexity_level": "high"}

	ok, err := Eval(`complexity_level == "high"`, vars)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("expected true")
	}

	ok, err = Eval(`complexity_level != 'high'`, vars)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatalf("expected false")
	}
}

func TestEval_NotAndParentheses(t *testing.T) {
	vars := map[string]any{"a": true, "b": false, "c": true}

	ok, err := Eval(`a and not (b or not c)`, vars)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("expected true")
	}
}

func TestEval_MixedNumericTypes(t *testing.T) {
	// JSON input decodes numbers as float64 while tools write ints.
	ok, err := Eval(`score < 50 and issue_count == 2`, map[string]any{"score": 40.0, "issue_count": 2})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("expected true")
	}
}

func TestEval_NoSubstringCollisionBetweenKeys(t *testing.T) {
	vars := map[string]any{"score": 10, "quality_score": 90}

	ok, err := Eval(`quality_score > 50`, vars)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("expected quality_score to resolve independently of score")
	}
}

func TestEval_EmptyIsTrue(t *testing.T) {
	ok, err := Eval("  ", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatalf("expected true")
	}
}

func TestEval_MissingVariables(t *testing.T) {
	_, err := Eval(`age >= 18 and score > 700`, map[string]any{"age": 20})
	var mv *MissingVariablesError
	if !errors.As(err, &mv) {
		t.Fatalf("expected MissingVariablesError, got %v", err)
	}
	if len(mv.Vars) != 1 || mv.Vars[0] != "score" {
		t.Fatalf("unexpected missing vars: %#v", mv.Vars)
	}
}

func TestEval_NonScalarIsAnError(t *testing.T) {
	_, err := Eval(`issues == 0`, map[string]any{"issues": []any{"x"}})
	var ns *NonScalarError
	if !errors.As(err, &ns) {
		t.Fatalf("expected NonScalarError, got %v", err)
	}
	if ns.Key != "issues" {
		t.Fatalf("unexpected key %q", ns.Key)
	}
}

func TestEval_TypeMismatchIsAnError(t *testing.T) {
	_, err := Eval(`label > 5`, map[string]any{"label": "abc"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestEval_NonBoolResultIsAnError(t *testing.T) {
	_, err := Eval(`score`, map[string]any{"score": 1})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidate_BlocksArithmetic(t *testing.T) {
	_, err := Eval(`x+1==2`, map[string]any{"x": 1})
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
}

func TestValidate_BlocksFunctionCall(t *testing.T) {
	_, err := Eval(`len(x)==1`, map[string]any{"x": 1})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidate_BlocksMemberAccess(t *testing.T) {
	if err := Validate(`user.age > 1`); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidate_Malformed(t *testing.T) {
	if err := Validate(`score >= `); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCompile_CollectsVars(t *testing.T) {
	c, err := Compile(`quality_score >= 70 or iteration >= 3 or quality_score < 0`)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Vars) != 2 || c.Vars[0] != "iteration" || c.Vars[1] != "quality_score" {
		t.Fatalf("unexpected vars: %#v", c.Vars)
	}
}
