// internal/app/service_test.go
package app

import (
	"errors"
	"fmt"
	"testing"

	"github.com/awmpietro/workflow-graph-engine/internal/catalog"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow/store"
)

type fakeCompiler struct {
	calls int
	g     *workflow.GraphDefinition
	err   error
}

func (f *fakeCompiler) Compile(dot string) (*workflow.GraphDefinition, error) {
	f.calls++
	return f.g, f.err
}

type fakeEngine struct {
	calls int
	fn    func(g *workflow.GraphDefinition, initial workflow.State) (*workflow.RunResult, error)
}

func (f *fakeEngine) Run(g *workflow.GraphDefinition, initial workflow.State) (*workflow.RunResult, error) {
	f.calls++
	return f.fn(g, initial)
}

type fakeCache struct {
	calls int
}

func (c *fakeCache) GetOrCompute(dot string, fn func() (*workflow.GraphDefinition, error)) (*workflow.GraphDefinition, error) {
	c.calls++
	return fn()
}

type fakeTools []string

func (f fakeTools) Names() []string { return f }

func simpleGraph() *workflow.GraphDefinition {
	return &workflow.GraphDefinition{
		Nodes:     []workflow.Node{{Name: "a", Tool: "t"}},
		Edges:     []workflow.Edge{},
		StartNode: "a",
	}
}

func newTestService(comp Compiler, eng Engine) (*Service, *store.Runs) {
	runs := store.NewRuns()
	return NewService(comp, eng, &fakeCache{}, store.NewGraphs(), runs, fakeTools{"t"}), runs
}

func completed(id string) func(g *workflow.GraphDefinition, initial workflow.State) (*workflow.RunResult, error) {
	return func(g *workflow.GraphDefinition, initial workflow.State) (*workflow.RunResult, error) {
		out := initial.Clone()
		out["done"] = true
		return &workflow.RunResult{RunID: id, Status: workflow.StatusCompleted, FinalState: out}, nil
	}
}

func TestService_CreateGraph_RejectsNil(t *testing.T) {
	s, _ := newTestService(&fakeCompiler{}, &fakeEngine{})
	_, err := s.CreateGraph(nil, "x")
	if !errors.Is(err, workflow.ErrInvalidGraph) {
		t.Fatalf("expected ErrInvalidGraph, got %v", err)
	}
}

func TestService_RunGraph_RecordsRun(t *testing.T) {
	eng := &fakeEngine{fn: completed("run-1")}
	s, _ := newTestService(&fakeCompiler{}, eng)

	id, err := s.CreateGraph(simpleGraph(), "g")
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.RunGraph(id, workflow.State{"x": 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.GraphID != id {
		t.Fatalf("expected graph id %q, got %q", id, res.GraphID)
	}

	stored, err := s.GetRun("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.FinalState["done"] != true || stored.FinalState["x"] != 1 {
		t.Fatalf("unexpected stored state: %#v", stored.FinalState)
	}
}

func TestService_RunGraph_UnknownGraph(t *testing.T) {
	eng := &fakeEngine{fn: completed("r")}
	s, _ := newTestService(&fakeCompiler{}, eng)

	_, err := s.RunGraph("missing", nil)
	if !errors.Is(err, ErrGraphNotFound) {
		t.Fatalf("expected ErrGraphNotFound, got %v", err)
	}
	if eng.calls != 0 {
		t.Fatalf("engine must not run for an unknown graph")
	}
}

func TestService_RunGraph_NilStateBecomesEmpty(t *testing.T) {
	var got workflow.State
	eng := &fakeEngine{fn: func(g *workflow.GraphDefinition, initial workflow.State) (*workflow.RunResult, error) {
		got = initial
		return &workflow.RunResult{RunID: "r"}, nil
	}}
	s, _ := newTestService(&fakeCompiler{}, eng)
	id, _ := s.CreateGraph(simpleGraph(), "")

	if _, err := s.RunGraph(id, nil); err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatalf("expected a non-nil initial state")
	}
}

func TestService_RunGraph_FailedRunIsStillRecorded(t *testing.T) {
	runErr := &workflow.NodeError{Node: "a", Tool: "t", Err: workflow.ErrToolNotFound}
	eng := &fakeEngine{fn: func(g *workflow.GraphDefinition, initial workflow.State) (*workflow.RunResult, error) {
		return &workflow.RunResult{RunID: "r-fail", Status: workflow.StatusFailed, CurrentNode: "a", Error: runErr.Error()}, runErr
	}}
	s, _ := newTestService(&fakeCompiler{}, eng)
	id, _ := s.CreateGraph(simpleGraph(), "")

	res, err := s.RunGraph(id, workflow.State{})
	if !errors.Is(err, workflow.ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
	if res == nil || res.RunID != "r-fail" {
		t.Fatalf("expected the failed result to be returned, got %+v", res)
	}

	stored, err := s.GetRun("r-fail")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != workflow.StatusFailed || stored.CurrentNode != "a" {
		t.Fatalf("unexpected stored run: %+v", stored)
	}
}

func TestService_GetRun_Unknown(t *testing.T) {
	s, _ := newTestService(&fakeCompiler{}, &fakeEngine{})
	if _, err := s.GetRun("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestService_CreateGraphFromDOT(t *testing.T) {
	comp := &fakeCompiler{g: simpleGraph()}
	s, _ := newTestService(comp, &fakeEngine{})

	id, g, err := s.CreateGraphFromDOT(`digraph { a [tool="t"] }`, "dot")
	if err != nil {
		t.Fatal(err)
	}
	if id == "" || g.StartNode != "a" || comp.calls != 1 {
		t.Fatalf("unexpected result id=%q g=%+v calls=%d", id, g, comp.calls)
	}
	if list := s.ListGraphs(); len(list) != 1 || list[0].Name != "dot" {
		t.Fatalf("unexpected graph list: %+v", list)
	}
}

func TestService_CreateGraphFromDOT_Errors(t *testing.T) {
	comp := &fakeCompiler{err: fmt.Errorf("compile fail")}
	s, _ := newTestService(comp, &fakeEngine{})

	if _, _, err := s.CreateGraphFromDOT("   ", ""); !errors.Is(err, workflow.ErrInvalidGraph) {
		t.Fatalf("expected ErrInvalidGraph for empty DOT, got %v", err)
	}
	if comp.calls != 0 {
		t.Fatalf("compiler must not run on empty input")
	}

	_, _, err := s.CreateGraphFromDOT("digraph {}", "")
	if !errors.Is(err, workflow.ErrInvalidGraph) {
		t.Fatalf("expected compile errors to be invalid graphs, got %v", err)
	}
}

func TestService_ExampleWorkflow(t *testing.T) {
	s, _ := newTestService(&fakeCompiler{}, &fakeEngine{})

	ex, err := s.ExampleWorkflow()
	if err != nil {
		t.Fatal(err)
	}
	if ex.GraphID == "" || ex.Name != catalog.CodeReviewName {
		t.Fatalf("unexpected example: %+v", ex)
	}
	if ex.InitialState["code"] != catalog.CodeReviewSample {
		t.Fatalf("unexpected sample state")
	}

	again, err := s.ExampleWorkflow()
	if err != nil {
		t.Fatal(err)
	}
	if again.GraphID == ex.GraphID {
		t.Fatalf("expected each call to register a new graph")
	}
}

func TestService_ListTools(t *testing.T) {
	s, _ := newTestService(&fakeCompiler{}, &fakeEngine{})
	if got := s.ListTools(); len(got) != 1 || got[0] != "t" {
		t.Fatalf("unexpected tools %v", got)
	}
}
