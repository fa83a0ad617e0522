// Package tools holds the registry of named state-transforming functions
// that workflow nodes call.
package tools

import (
	"fmt"
	"sort"
	"sync"

	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
)

// Tool transforms the workflow state. It may mutate and return its input.
type Tool func(state workflow.State) (workflow.State, error)

// Registry is filled at startup and read concurrently by runs afterwards.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

var _ workflow.ToolInvoker = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

func (r *Registry) Register(name string, tool Tool) error {
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if tool == nil {
		return fmt.Errorf("tool %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = tool
	return nil
}

func (r *Registry) MustRegister(name string, tool Tool) {
	if err := r.Register(name, tool); err != nil {
		panic(err)
	}
}

func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", workflow.ErrToolNotFound, name)
	}
	return tool, nil
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named tool. Tool errors and panics come back wrapped in
// workflow.ErrToolFailed.
func (r *Registry) Invoke(name string, state workflow.State) (out workflow.State, err error) {
	tool, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("%w: panic: %v", workflow.ErrToolFailed, rec)
		}
	}()

	out, err = tool(state)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", workflow.ErrToolFailed, err)
	}
	return out, nil
}
