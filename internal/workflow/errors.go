package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrNodeNotFound = errors.New("node not found")
	ErrToolNotFound = errors.New("tool not found")
	ErrToolFailed   = errors.New("tool failed")
	ErrInvalidGraph = errors.New("invalid graph")
)

// NodeError ties a fatal run error to the node being executed.
type NodeError struct {
	Node string
	Tool string
	Err  error
}

func (e *NodeError) Error() string {
	if e.Tool == "" {
		return fmt.Sprintf("node %q: %v", e.Node, e.Err)
	}
	return fmt.Sprintf("node %q (tool %q): %v", e.Node, e.Tool, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }
