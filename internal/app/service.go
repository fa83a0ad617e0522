// internal/app/service.go
package app

import (
	"fmt"
	"strings"

	"github.com/awmpietro/workflow-graph-engine/internal/catalog"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow/store"
)

var (
	ErrGraphNotFound = store.ErrGraphNotFound
	ErrRunNotFound   = store.ErrRunNotFound
)

type Compiler interface {
	Compile(dot string) (*workflow.GraphDefinition, error)
}

type Engine interface {
	Run(g *workflow.GraphDefinition, initial workflow.State) (*workflow.RunResult, error)
}

type Cache interface {
	GetOrCompute(dot string, fn func() (*workflow.GraphDefinition, error)) (*workflow.GraphDefinition, error)
}

type GraphStore interface {
	Create(def *workflow.GraphDefinition, name string) (string, error)
	Get(id string) (*workflow.GraphDefinition, error)
	List() []store.GraphSummary
}

type RunStore interface {
	Save(res *workflow.RunResult) error
	Get(runID string) (*workflow.RunResult, error)
}

type ToolCatalog interface {
	Names() []string
}

// Example is the bundled code-review workflow, registered on demand.
type Example struct {
	GraphID      string                    `json:"graph_id"`
	Name         string                    `json:"name"`
	Definition   *workflow.GraphDefinition `json:"workflow_definition"`
	InitialState workflow.State            `json:"example_initial_state"`
	Description  string                    `json:"description"`
}

type Service struct {
	compiler Compiler
	engine   Engine
	cache    Cache
	graphs   GraphStore
	runs     RunStore
	tools    ToolCatalog
}

var _ WorkflowService = (*Service)(nil)

func NewService(compiler Compiler, engine Engine, cache Cache, graphs GraphStore, runs RunStore, tools ToolCatalog) *Service {
	return &Service{
		compiler: compiler,
		engine:   engine,
		cache:    cache,
		graphs:   graphs,
		runs:     runs,
		tools:    tools,
	}
}

func (s *Service) CreateGraph(def *workflow.GraphDefinition, name string) (string, error) {
	if def == nil {
		return "", fmt.Errorf("%w: graph_definition is required", workflow.ErrInvalidGraph)
	}
	return s.graphs.Create(def, name)
}

// CreateGraphFromDOT compiles dot (cached by source) and stores the result.
func (s *Service) CreateGraphFromDOT(dot, name string) (string, *workflow.GraphDefinition, error) {
	if strings.TrimSpace(dot) == "" {
		return "", nil, fmt.Errorf("%w: graph_dot is required", workflow.ErrInvalidGraph)
	}

	g, err := s.cache.GetOrCompute(dot, func() (*workflow.GraphDefinition, error) {
		return s.compiler.Compile(dot)
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", workflow.ErrInvalidGraph, err)
	}

	id, err := s.graphs.Create(g, name)
	if err != nil {
		return "", nil, err
	}
	return id, g, nil
}

// RunGraph executes the stored graph on a copy of initial. The run is
// recorded even when it fails, so its partial trace stays queryable.
func (s *Service) RunGraph(graphID string, initial workflow.State) (*workflow.RunResult, error) {
	g, err := s.graphs.Get(graphID)
	if err != nil {
		return nil, err
	}
	if initial == nil {
		initial = workflow.State{}
	}

	res, runErr := s.engine.Run(g, initial)
	if res == nil {
		return nil, runErr
	}
	res.GraphID = graphID

	if err := s.runs.Save(res); err != nil {
		return res, fmt.Errorf("failed to record run %s: %w", res.RunID, err)
	}
	return res, runErr
}

func (s *Service) GetRun(runID string) (*workflow.RunResult, error) {
	return s.runs.Get(runID)
}

func (s *Service) ListGraphs() []store.GraphSummary {
	return s.graphs.List()
}

func (s *Service) ListTools() []string {
	return s.tools.Names()
}

// ExampleWorkflow registers a fresh copy of the code-review workflow.
func (s *Service) ExampleWorkflow() (*Example, error) {
	def := catalog.CodeReview()
	id, err := s.graphs.Create(def, catalog.CodeReviewName)
	if err != nil {
		return nil, err
	}
	return &Example{
		GraphID:      id,
		Name:         catalog.CodeReviewName,
		Definition:   def,
		InitialState: catalog.CodeReviewInitialState(),
		Description:  catalog.CodeReviewDescription,
	}, nil
}
