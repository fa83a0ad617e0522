package workflow

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const DefaultMaxIterations = 100

// Evaluator decides a condition against the current state.
type Evaluator interface {
	Eval(cond string, vars map[string]any) (bool, error)
}

// ToolInvoker runs the tool registered under name.
type ToolInvoker interface {
	Invoke(name string, state State) (State, error)
}

type Engine struct {
	invoker         ToolInvoker
	eval            Evaluator
	maxIterations int
	observer      NodeObserver
	logger        *slog.Logger
	now           func() time.Time
	newRunID      func() string
}

type EngineOption func(*Engine)

// WithNodeObserver receives one observation per tool invocation.
func WithNodeObserver(observer NodeObserver) EngineOption {
	return func(e *Engine) {
		e.observer = observer
	}
}

// WithMaxIterations sets the iteration ceiling; values below 1 are ignored.
func WithMaxIterations(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithRunIDGenerator(fn func() string) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.newRunID = fn
		}
	}
}

func NewEngine(invoker ToolInvoker, eval Evaluator, opts ...EngineOption) *Engine {
	e := &Engine{
		invoker:       invoker,
		eval:          eval,
		maxIterations: DefaultMaxIterations,
		logger:        slog.Default(),
		now:           time.Now,
		newRunID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) MaxIterations() int { return e.maxIterations }

// Run executes g from its start node on a private copy of initial.
//
// Fatal errors (unknown node, unknown or failing tool) stop the run; the
// returned result is still populated with the partial trace and marked
// failed. Hitting the iteration ceiling is not an error: the result is
// completed and flagged as truncated.
func (e *Engine) Run(g *GraphDefinition, initial State) (*RunResult, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: graph is nil", ErrInvalidGraph)
	}

	res := &RunResult{
		RunID:  e.newRunID(),
		Status: StatusCompleted,
		Logs:   []ExecutionLog{},
	}
	logger := e.logger.With("run_id", res.RunID)
	logger.Info("run started", "start_node", g.StartNode)

	idx := buildIndex(g)
	state := initial.Clone()
	current := g.StartNode

	for current != "" && res.Iterations < e.maxIterations {
		res.Iterations++

		if idx.isEnd(current) {
			logger.Debug("end node reached", "node", current)
			break
		}

		node, ok := idx.nodes[current]
		if !ok {
			return e.fail(logger, res, state, current, &NodeError{Node: current, Err: ErrNodeNotFound})
		}

		nodeStart := time.Now()
		before := state.Clone()

		out, err := e.invoker.Invoke(node.Tool, state)
		e.observe(NodeObservation{
			RunID:     res.RunID,
			Node:      current,
			Type:      node.Type,
			Tool:      node.Tool,
			Iteration: res.Iterations,
			Duration:  time.Since(nodeStart),
			Err:       err,
		})
		if err != nil {
			return e.fail(logger, res, before, current, &NodeError{Node: current, Tool: node.Tool, Err: err})
		}
		if out == nil {
			out = State{}
		}
		state = out

		res.Logs = append(res.Logs, ExecutionLog{
			NodeName:    current,
			StateBefore: before,
			StateAfter:  state.Clone(),
			Timestamp:   e.now(),
		})
		logger.Debug("node executed", "node", current, "type", node.Type, "tool", node.Tool)

		t := e.next(logger, node, idx.outgoing[current], state)
		switch t.kind {
		case repeat:
			logger.Debug("loop continues", "node", current)
		case halt:
			logger.Debug("no outgoing edge, stopping", "node", current)
			current = ""
		default:
			if node.Type == NodeLoop {
				logger.Debug("loop exited", "node", current, "next", t.target)
			}
			current = t.target
		}
	}

	if current != "" && !idx.isEnd(current) {
		res.Truncated = true
		res.CurrentNode = current
		res.Warning = fmt.Sprintf("max iterations (%d) reached before a terminal node; pending node %q", e.maxIterations, current)
		logger.Warn("run truncated", "max_iterations", e.maxIterations, "pending_node", current)
	}

	res.FinalState = state
	logger.Info("run completed",
		"iterations", res.Iterations,
		"steps", len(res.Logs),
		"truncated", res.Truncated,
	)
	return res, nil
}

func (e *Engine) fail(logger *slog.Logger, res *RunResult, state State, current string, err error) (*RunResult, error) {
	res.Status = StatusFailed
	res.FinalState = state
	res.CurrentNode = current
	res.Error = err.Error()
	logger.Error("run failed", "node", current, "error", err)
	return res, err
}

func (e *Engine) observe(obs NodeObservation) {
	if e.observer == nil {
		return
	}
	e.observer.ObserveNode(obs)
}
