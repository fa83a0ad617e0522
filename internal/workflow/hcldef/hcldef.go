// Package hcldef loads workflow graphs, and optionally the initial state to
// run them with, from HCL files.
//
//	workflow "code_review" {
//	  start = "extract"
//	  end   = ["end"]
//	}
//
//	node "extract" { tool = "extract_functions" }
//	node "quality_check" {
//	  type      = "loop"
//	  tool      = "calculate_quality_score"
//	  condition = "quality_score >= 70 or iteration >= 3"
//	}
//	node "end" {}
//
//	edge "extract" "quality_check" {}
//	edge "quality_check" "end" { condition = "exit" }
//
//	initial_state = {
//	  code = "def f():\n    pass\n"
//	}
//
// Edges keep their order in the file, which decides branch priority.
package hcldef

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
)

// Workflow is a decoded HCL workflow file.
type Workflow struct {
	Name         string
	Description  string
	Graph        *workflow.GraphDefinition
	InitialState workflow.State
}

type hclFile struct {
	Workflow     *hclWorkflow   `hcl:"workflow,block"`
	Nodes        []*hclNode     `hcl:"node,block"`
	Edges        []*hclEdge     `hcl:"edge,block"`
	InitialState hcl.Expression `hcl:"initial_state,optional"`
}

type hclWorkflow struct {
	Name        string   `hcl:"name,label"`
	Description string   `hcl:"description,optional"`
	Start       string   `hcl:"start"`
	End         []string `hcl:"end,optional"`
}

type hclNode struct {
	Name      string `hcl:"name,label"`
	Type      string `hcl:"type,optional"`
	Tool      string `hcl:"tool,optional"`
	Condition string `hcl:"condition,optional"`
}

type hclEdge struct {
	From      string `hcl:"from,label"`
	To        string `hcl:"to,label"`
	Condition string `hcl:"condition,optional"`
}

// LoadFile reads and decodes the workflow at path.
func LoadFile(path string) (*Workflow, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(f, path)
}

// Parse decodes src; filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Workflow, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(f, filename)
}

func decode(f *hcl.File, filename string) (*Workflow, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(f.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	if parsed.Workflow == nil {
		return nil, fmt.Errorf("%s: missing workflow block", filename)
	}

	g := &workflow.GraphDefinition{
		Nodes:     make([]workflow.Node, 0, len(parsed.Nodes)),
		Edges:     make([]workflow.Edge, 0, len(parsed.Edges)),
		StartNode: parsed.Workflow.Start,
		EndNodes:  parsed.Workflow.End,
	}
	for _, n := range parsed.Nodes {
		nt, err := workflow.ParseNodeType(n.Type)
		if err != nil {
			return nil, fmt.Errorf("%s: node %q: %w", filename, n.Name, err)
		}
		node := workflow.Node{Name: n.Name, Type: nt, Tool: n.Tool}
		if n.Condition != "" {
			node.Condition = &workflow.NodeCondition{Expression: n.Condition}
		}
		g.Nodes = append(g.Nodes, node)
	}
	for _, e := range parsed.Edges {
		g.Edges = append(g.Edges, workflow.Edge{From: e.From, To: e.To, Condition: e.Condition})
	}
	if err := workflow.Validate(g); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	state, err := initialState(parsed.InitialState)
	if err != nil {
		return nil, fmt.Errorf("%s: initial_state: %w", filename, err)
	}

	return &Workflow{
		Name:         parsed.Workflow.Name,
		Description:  parsed.Workflow.Description,
		Graph:        g,
		InitialState: state,
	}, nil
}

func initialState(expr hcl.Expression) (workflow.State, error) {
	if expr == nil {
		return workflow.State{}, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return workflow.State{}, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("expected an object, got %s", val.Type().FriendlyName())
	}

	v, err := fromCty(val)
	if err != nil {
		return nil, err
	}
	return workflow.State(v.(map[string]any)), nil
}
