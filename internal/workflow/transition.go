package workflow

import (
	"log/slog"
	"strings"
)

type transitionKind int

const (
	// advance moves to target.
	advance transitionKind = iota
	// repeat runs the current loop node again.
	repeat
	// halt ends the run: the node has no usable outgoing edge.
	halt
)

type transition struct {
	kind   transitionKind
	target string
}

func advanceTo(target string) transition { return transition{kind: advance, target: target} }

// next decides where a run goes after node executed against state.
func (e *Engine) next(logger *slog.Logger, node *Node, edges []Edge, state State) transition {
	if len(edges) == 0 {
		return transition{kind: halt}
	}

	switch node.Type {
	case NodeConditional:
		for _, edge := range edges {
			if isDefaultEdge(edge) {
				continue
			}
			if e.check(logger, node.Name, edge.Condition, state) {
				return advanceTo(edge.To)
			}
		}
		for _, edge := range edges {
			if isDefaultEdge(edge) {
				return advanceTo(edge.To)
			}
		}
		return transition{kind: halt}

	case NodeLoop:
		expression := node.Expression()
		if expression != "" && !e.check(logger, node.Name, expression, state) {
			return transition{kind: repeat}
		}
		return advanceTo(exitEdge(edges).To)

	default:
		return advanceTo(edges[0].To)
	}
}

// isDefaultEdge reports whether edge carries no condition. Blank
// conditions count as absent.
func isDefaultEdge(edge Edge) bool {
	return strings.TrimSpace(edge.Condition) == ""
}

// exitEdge picks the first edge labelled "exit", else the last edge.
func exitEdge(edges []Edge) Edge {
	for _, edge := range edges {
		if strings.Contains(strings.ToLower(edge.Condition), "exit") {
			return edge
		}
	}
	return edges[len(edges)-1]
}

// check evaluates a condition; evaluation errors count as false.
func (e *Engine) check(logger *slog.Logger, nodeName, condition string, state State) bool {
	ok, err := e.eval.Eval(condition, state)
	if err != nil {
		logger.Warn("condition evaluation failed, treating as false",
			"node", nodeName,
			"condition", condition,
			"error", err,
		)
		return false
	}
	return ok
}
