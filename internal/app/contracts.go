package app

import (
	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow/store"
)

type WorkflowService interface {
	CreateGraph(def *workflow.GraphDefinition, name string) (string, error)
	CreateGraphFromDOT(dot, name string) (string, *workflow.GraphDefinition, error)
	RunGraph(graphID string, initial workflow.State) (*workflow.RunResult, error)
	GetRun(runID string) (*workflow.RunResult, error)
	ListGraphs() []store.GraphSummary
	ListTools() []string
	ExampleWorkflow() (*Example, error)
}
