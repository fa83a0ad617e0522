package workflow

import (
	"errors"
	"fmt"
)

// Validate checks the structure of g: unique node names, a resolvable start
// node, edges between known nodes and loop nodes with a condition. End nodes
// are never executed and may omit their tool.
func Validate(g *GraphDefinition) error {
	if g == nil {
		return fmt.Errorf("%w: graph is nil", ErrInvalidGraph)
	}

	ends := make(map[string]struct{}, len(g.EndNodes))
	for _, name := range g.EndNodes {
		ends[name] = struct{}{}
	}

	var errs []error
	known := make(map[string]struct{}, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.Name == "" {
			errs = append(errs, fmt.Errorf("node #%d has no name", i))
			continue
		}
		if _, dup := known[n.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate node %q", n.Name))
		}
		known[n.Name] = struct{}{}

		if _, isEnd := ends[n.Name]; n.Tool == "" && !isEnd {
			errs = append(errs, fmt.Errorf("node %q has no tool", n.Name))
		}
		switch n.Type {
		case "", NodeSimple, NodeConditional:
		case NodeLoop:
			if n.Expression() == "" {
				errs = append(errs, fmt.Errorf("loop node %q has no condition expression", n.Name))
			}
		default:
			errs = append(errs, fmt.Errorf("node %q has unknown type %q", n.Name, n.Type))
		}
	}
	if g.StartNode == "" {
		errs = append(errs, errors.New("start_node is required"))
	} else if _, ok := known[g.StartNode]; !ok {
		errs = append(errs, fmt.Errorf("start node %q is not defined", g.StartNode))
	}

	for _, e := range g.Edges {
		if _, ok := known[e.From]; !ok {
			errs = append(errs, fmt.Errorf("edge references unknown source node %q", e.From))
		}
		if _, ok := known[e.To]; !ok {
			errs = append(errs, fmt.Errorf("edge references unknown destination node %q", e.To))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidGraph, errors.Join(errs...))
}
