// internal/workflow/compiler.go
package workflow

import (
	"fmt"
	"strings"

	"github.com/awalterschulze/gographviz"
)

// Compiler turns a Graphviz DOT workflow into a GraphDefinition.
//
//	digraph review {
//	  start="extract"; end="end"
//	  extract [tool="extract_functions"]
//	  gate    [type="conditional", tool="check_complexity"]
//	  quality [type="loop", tool="calculate_quality_score", condition="quality_score >= 70"]
//	  end     [type="end"]
//	  extract -> gate -> quality
//	  quality -> end [cond="exit"]
//	}
//
// Edges keep their textual order. Without a start attribute the node named
// "start" is used, else the first declared node.
type Compiler struct{}

func NewCompiler() *Compiler { return &Compiler{} }

func (c *Compiler) Compile(dot string) (*GraphDefinition, error) {
	ast, err := gographviz.ParseString(dot)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DOT: %w", err)
	}

	b := newDOTBuilder()
	if err := gographviz.Analyse(ast, b); err != nil {
		return nil, fmt.Errorf("failed to analyze DOT: %w", err)
	}

	g, err := b.definition()
	if err != nil {
		return nil, err
	}
	if err := Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

// dotBuilder receives the analysed graph through gographviz.Interface,
// which keeps arbitrary attribute names and edge order intact.
type dotBuilder struct {
	name       string
	graphAttrs map[string]string
	order      []string
	nodeAttrs  map[string]map[string]string
	edges      []Edge
}

var _ gographviz.Interface = (*dotBuilder)(nil)

func newDOTBuilder() *dotBuilder {
	return &dotBuilder{
		graphAttrs: map[string]string{},
		nodeAttrs:  map[string]map[string]string{},
	}
}

func (b *dotBuilder) SetStrict(bool) error { return nil }

func (b *dotBuilder) SetDir(directed bool) error {
	if !directed {
		return fmt.Errorf("workflow must be a digraph")
	}
	return nil
}

func (b *dotBuilder) SetName(name string) error {
	b.name = name
	return nil
}

func (b *dotBuilder) AddPortEdge(src, _, dst, _ string, directed bool, attrs map[string]string) error {
	return b.AddEdge(src, dst, directed, attrs)
}

func (b *dotBuilder) AddEdge(src, dst string, _ bool, attrs map[string]string) error {
	b.touch(src)
	b.touch(dst)

	cond := getAttr(attrs, "cond")
	if cond == "" {
		cond = getAttr(attrs, "condition")
	}
	b.edges = append(b.edges, Edge{From: unquote(src), To: unquote(dst), Condition: cond})
	return nil
}

func (b *dotBuilder) AddNode(_ string, name string, attrs map[string]string) error {
	b.touch(name)
	for k, v := range attrs {
		b.nodeAttrs[unquote(name)][k] = v
	}
	return nil
}

func (b *dotBuilder) AddAttr(_ string, field, value string) error {
	b.graphAttrs[field] = value
	return nil
}

func (b *dotBuilder) AddSubGraph(string, string, map[string]string) error {
	return fmt.Errorf("subgraphs are not supported in workflows")
}

func (b *dotBuilder) String() string { return b.name }

func (b *dotBuilder) touch(name string) {
	name = unquote(name)
	if _, ok := b.nodeAttrs[name]; ok {
		return
	}
	b.nodeAttrs[name] = map[string]string{}
	b.order = append(b.order, name)
}

func (b *dotBuilder) definition() (*GraphDefinition, error) {
	g := &GraphDefinition{
		Nodes: make([]Node, 0, len(b.order)),
		Edges: b.edges,
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}

	ends := map[string]struct{}{}
	for _, name := range splitList(getAttr(b.graphAttrs, "end")) {
		ends[name] = struct{}{}
	}

	for _, name := range b.order {
		attrs := b.nodeAttrs[name]
		rawType := getAttr(attrs, "type")
		if strings.EqualFold(rawType, "end") {
			ends[name] = struct{}{}
			rawType = ""
		}

		nt, err := ParseNodeType(rawType)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}

		n := Node{Name: name, Type: nt, Tool: getAttr(attrs, "tool")}
		if expr := getAttr(attrs, "condition"); expr != "" {
			n.Condition = &NodeCondition{Expression: expr}
		}
		g.Nodes = append(g.Nodes, n)
	}

	for _, name := range b.order {
		if _, ok := ends[name]; ok {
			g.EndNodes = append(g.EndNodes, name)
		}
	}

	g.StartNode = getAttr(b.graphAttrs, "start")
	if g.StartNode == "" {
		if _, ok := b.nodeAttrs["start"]; ok {
			g.StartNode = "start"
		} else if len(b.order) > 0 {
			g.StartNode = b.order[0]
		}
	}

	return g, nil
}

// getAttr reads a Graphviz attribute, which usually arrives quoted.
func getAttr(attrs map[string]string, key string) string {
	val, ok := attrs[key]
	if !ok {
		return ""
	}
	return unquote(strings.TrimSpace(val))
}

func unquote(val string) string {
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
		val = strings.ReplaceAll(val, `\"`, `"`)
	}
	return strings.TrimSpace(val)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
