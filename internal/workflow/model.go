package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
)

type NodeType string

const (
	NodeSimple      NodeType = "simple"
	NodeConditional NodeType = "conditional"
	NodeLoop        NodeType = "loop"
)

// ParseNodeType accepts the lower or upper case spelling; empty means simple.
func ParseNodeType(raw string) (NodeType, error) {
	switch NodeType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", NodeSimple:
		return NodeSimple, nil
	case NodeConditional:
		return NodeConditional, nil
	case NodeLoop:
		return NodeLoop, nil
	}
	return "", fmt.Errorf("unknown node type %q", raw)
}

func (t *NodeType) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	nt, err := ParseNodeType(raw)
	if err != nil {
		return err
	}
	*t = nt
	return nil
}

type NodeCondition struct {
	Expression string `json:"expression"`
}

type Node struct {
	Name      string         `json:"name"`
	Type      NodeType       `json:"node_type"`
	Tool      string         `json:"tool_name"`
	Condition *NodeCondition `json:"condition,omitempty"`
}

// Expression returns the loop condition, or "" when the node has none.
func (n Node) Expression() string {
	if n.Condition == nil {
		return ""
	}
	return strings.TrimSpace(n.Condition.Expression)
}

type Edge struct {
	From      string `json:"from_node"`
	To        string `json:"to_node"`
	Condition string `json:"condition,omitempty"`
}

type GraphDefinition struct {
	Nodes     []Node   `json:"nodes"`
	Edges     []Edge   `json:"edges"`
	StartNode string   `json:"start_node"`
	EndNodes  []string `json:"end_nodes"`
}

// Clone returns a copy sharing no slices with g.
func (g *GraphDefinition) Clone() *GraphDefinition {
	if g == nil {
		return nil
	}
	out := &GraphDefinition{
		Nodes:     make([]Node, len(g.Nodes)),
		Edges:     append([]Edge(nil), g.Edges...),
		StartNode: g.StartNode,
		EndNodes:  append([]string(nil), g.EndNodes...),
	}
	for i, n := range g.Nodes {
		if n.Condition != nil {
			c := *n.Condition
			n.Condition = &c
		}
		out.Nodes[i] = n
	}
	return out
}

// index is the per-run lookup built from a definition.
type index struct {
	nodes    map[string]*Node
	outgoing map[string][]Edge
	ends     map[string]struct{}
}

func buildIndex(g *GraphDefinition) *index {
	idx := &index{
		nodes:    make(map[string]*Node, len(g.Nodes)),
		outgoing: make(map[string][]Edge, len(g.Nodes)),
		ends:     make(map[string]struct{}, len(g.EndNodes)),
	}
	for i := range g.Nodes {
		idx.nodes[g.Nodes[i].Name] = &g.Nodes[i]
	}
	for _, e := range g.Edges {
		idx.outgoing[e.From] = append(idx.outgoing[e.From], e)
	}
	for _, name := range g.EndNodes {
		idx.ends[name] = struct{}{}
	}
	return idx
}

func (idx *index) isEnd(name string) bool {
	_, ok := idx.ends[name]
	return ok
}
