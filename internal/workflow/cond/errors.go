package cond

import (
	"fmt"
	"strings"
)

type SyntaxError struct {
	Cond string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid condition %q: %v", e.Cond, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// MissingVariablesError lists referenced keys absent from the state.
type MissingVariablesError struct {
	Vars []string
}

func (e *MissingVariablesError) Error() string {
	return fmt.Sprintf("missing state keys [%s]", strings.Join(e.Vars, ", "))
}

// NonScalarError is returned when a referenced key holds a list or mapping.
type NonScalarError struct {
	Key  string
	Type string
}

func (e *NonScalarError) Error() string {
	return fmt.Sprintf("state key %q holds non-scalar %s", e.Key, e.Type)
}
