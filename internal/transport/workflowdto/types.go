package workflowdto

import (
	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow/store"
)

const APIVersion = "1.0.0"

// CreateGraphRequest carries either a JSON definition or a DOT source.
type CreateGraphRequest struct {
	Name       string                    `json:"name,omitempty" validate:"max=128"`
	Definition *workflow.GraphDefinition `json:"graph_definition,omitempty" validate:"required_without=DOT,excluded_with=DOT"`
	DOT        string                    `json:"graph_dot,omitempty"`
}

type CreateGraphResponse struct {
	GraphID    string                    `json:"graph_id"`
	Message    string                    `json:"message"`
	Definition *workflow.GraphDefinition `json:"graph_definition,omitempty"`
}

type RunGraphRequest struct {
	GraphID      string         `json:"graph_id" validate:"required"`
	InitialState workflow.State `json:"initial_state"`
}

// RunGraphResponse is returned for completed runs and, with Error set, for
// runs that stopped on a fatal error.
type RunGraphResponse struct {
	RunID      string                  `json:"run_id"`
	GraphID    string                  `json:"graph_id"`
	FinalState workflow.State          `json:"final_state"`
	Logs       []workflow.ExecutionLog `json:"execution_logs"`
	Status     string                  `json:"status"`
	Iterations int                     `json:"iterations"`
	Truncated  bool                    `json:"truncated"`
	Warning    string                  `json:"warning,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

type StateResponse struct {
	RunID        string                  `json:"run_id"`
	CurrentState workflow.State          `json:"current_state"`
	CurrentNode  *string                 `json:"current_node"`
	Status       string                  `json:"status"`
	Logs         []workflow.ExecutionLog `json:"execution_logs"`
	Truncated    bool                    `json:"truncated"`
	Warning      string                  `json:"warning,omitempty"`
}

type ToolsResponse struct {
	Tools []string `json:"tools"`
}

type GraphsResponse struct {
	Graphs []store.GraphSummary `json:"graphs"`
}

type IndexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Run     *RunGraphResponse `json:"run,omitempty"`
}

func NewRunGraphResponse(res *workflow.RunResult) RunGraphResponse {
	logs := res.Logs
	if logs == nil {
		logs = []workflow.ExecutionLog{}
	}
	return RunGraphResponse{
		RunID:      res.RunID,
		GraphID:    res.GraphID,
		FinalState: res.FinalState,
		Logs:       logs,
		Status:     res.Status,
		Iterations: res.Iterations,
		Truncated:  res.Truncated,
		Warning:    res.Warning,
		Error:      res.Error,
	}
}

func NewStateResponse(res *workflow.RunResult) StateResponse {
	out := StateResponse{
		RunID:        res.RunID,
		CurrentState: res.FinalState,
		Status:       res.Status,
		Logs:         res.Logs,
		Truncated:    res.Truncated,
		Warning:      res.Warning,
	}
	if out.Logs == nil {
		out.Logs = []workflow.ExecutionLog{}
	}
	if res.CurrentNode != "" {
		node := res.CurrentNode
		out.CurrentNode = &node
	}
	return out
}

func NewIndexResponse() IndexResponse {
	return IndexResponse{
		Message: "Workflow Engine API",
		Version: APIVersion,
		Endpoints: map[string]string{
			"POST /graph/create":        "Create a new graph from a JSON definition or DOT source",
			"POST /graph/run":           "Run a graph with initial state",
			"GET /graph/state/{run_id}": "Get the state of a run",
			"GET /graph/example":        "Get example code review workflow",
			"GET /graphs":               "List created graphs",
			"GET /tools":                "List registered tools",
		},
	}
}
