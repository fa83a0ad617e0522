package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/awmpietro/workflow-graph-engine/internal/app"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow/store"
)

type svcStub struct {
	createFn    func(def *workflow.GraphDefinition, name string) (string, error)
	createDOTFn func(dot, name string) (string, *workflow.GraphDefinition, error)
	runFn       func(graphID string, initial workflow.State) (*workflow.RunResult, error)
	getRunFn    func(runID string) (*workflow.RunResult, error)
}

func (s *svcStub) CreateGraph(def *workflow.GraphDefinition, name string) (string, error) {
	return s.createFn(def, name)
}

func (s *svcStub) CreateGraphFromDOT(dot, name string) (string, *workflow.GraphDefinition, error) {
	return s.createDOTFn(dot, name)
}

func (s *svcStub) RunGraph(graphID string, initial workflow.State) (*workflow.RunResult, error) {
	return s.runFn(graphID, initial)
}

func (s *svcStub) GetRun(runID string) (*workflow.RunResult, error) {
	return s.getRunFn(runID)
}

func (s *svcStub) ListGraphs() []store.GraphSummary {
	return []store.GraphSummary{{ID: "g1", Name: "one"}}
}

func (s *svcStub) ListTools() []string { return []string{"a", "b"} }

func (s *svcStub) ExampleWorkflow() (*app.Example, error) {
	return &app.Example{GraphID: "ex", Name: "code_review_example"}, nil
}

func serve(t *testing.T, svc app.WorkflowService, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Buffer
	if body != "" {
		rdr = bytes.NewBufferString(body)
	} else {
		rdr = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rdr)
	rr := httptest.NewRecorder()
	NewHandler(svc, nil).Routes().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json body %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	rr := serve(t, &svcStub{}, http.MethodGet, "/graph/run", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	rr := serve(t, &svcStub{}, http.MethodGet, "/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestHandler_InvalidJSON(t *testing.T) {
	rr := serve(t, &svcStub{}, http.MethodPost, "/graph/create", "{")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandler_Index(t *testing.T) {
	rr := serve(t, &svcStub{}, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	out := decodeBody(t, rr)
	if out["version"] != "1.0.0" || out["endpoints"] == nil {
		t.Fatalf("unexpected index body: %#v", out)
	}

	rr = serve(t, &svcStub{}, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || decodeBody(t, rr)["status"] != "ok" {
		t.Fatalf("unexpected healthz response: %d %s", rr.Code, rr.Body.String())
	}
}

func TestHandler_CORSHeadersAndPreflight(t *testing.T) {
	rr := serve(t, &svcStub{}, http.MethodOptions, "/graph/run", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected CORS header")
	}

	rr = serve(t, &svcStub{}, http.MethodGet, "/tools", "")
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected CORS header on regular responses")
	}
}

func TestHandler_CreateGraph_JSONDefinition(t *testing.T) {
	var gotName string
	var gotDef *workflow.GraphDefinition
	svc := &svcStub{createFn: func(def *workflow.GraphDefinition, name string) (string, error) {
		gotName, gotDef = name, def
		return "g-1", nil
	}}

	body := `{"graph_definition":{"nodes":[{"name":"a","node_type":"SIMPLE","tool_name":"t"}],"edges":[],"start_node":"a","end_nodes":[]}}`
	rr := serve(t, svc, http.MethodPost, "/graph/create", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	out := decodeBody(t, rr)
	if out["graph_id"] != "g-1" || out["message"] != "Graph 'unnamed_graph' created successfully" {
		t.Fatalf("unexpected body: %#v", out)
	}
	if gotName != "unnamed_graph" || gotDef.Nodes[0].Type != workflow.NodeSimple {
		t.Fatalf("unexpected service input name=%q def=%+v", gotName, gotDef)
	}
}

func TestHandler_CreateGraph_DOT(t *testing.T) {
	svc := &svcStub{createDOTFn: func(dot, name string) (string, *workflow.GraphDefinition, error) {
		return "g-dot", &workflow.GraphDefinition{StartNode: "a"}, nil
	}}

	rr := serve(t, svc, http.MethodPost, "/graph/create", `{"name":"d","graph_dot":"digraph { a [tool=\"t\"] }"}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	out := decodeBody(t, rr)
	if out["graph_definition"] == nil || out["message"] != "Graph 'd' created successfully" {
		t.Fatalf("unexpected body: %#v", out)
	}
}

func TestHandler_CreateGraph_InvalidGraphIs400(t *testing.T) {
	svc := &svcStub{createFn: func(def *workflow.GraphDefinition, name string) (string, error) {
		return "", fmt.Errorf("%w: start node missing", workflow.ErrInvalidGraph)
	}}

	rr := serve(t, svc, http.MethodPost, "/graph/create", `{"graph_definition":{"nodes":[],"edges":[],"start_node":"x","end_nodes":[]}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestHandler_RunGraph_ErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		res     *workflow.RunResult
		err     error
		status  int
		withRun bool
	}{
		{name: "graph not found", err: fmt.Errorf("%w: \"x\"", app.ErrGraphNotFound), status: http.StatusNotFound},
		{
			name:    "tool not found",
			res:     &workflow.RunResult{RunID: "r", Status: workflow.StatusFailed},
			err:     &workflow.NodeError{Node: "a", Tool: "t", Err: workflow.ErrToolNotFound},
			status:  http.StatusUnprocessableEntity,
			withRun: true,
		},
		{
			name:    "node not found",
			res:     &workflow.RunResult{RunID: "r", Status: workflow.StatusFailed},
			err:     &workflow.NodeError{Node: "ghost", Err: workflow.ErrNodeNotFound},
			status:  http.StatusUnprocessableEntity,
			withRun: true,
		},
		{name: "unexpected", err: fmt.Errorf("disk on fire"), status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &svcStub{runFn: func(graphID string, initial workflow.State) (*workflow.RunResult, error) {
				return tc.res, tc.err
			}}
			rr := serve(t, svc, http.MethodPost, "/graph/run", `{"graph_id":"x","initial_state":{}}`)
			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
			out := decodeBody(t, rr)
			if _, ok := out["run"]; ok != tc.withRun {
				t.Fatalf("run attached=%v, want %v: %#v", ok, tc.withRun, out)
			}
		})
	}
}

func TestHandler_RunGraph_Success(t *testing.T) {
	svc := &svcStub{runFn: func(graphID string, initial workflow.State) (*workflow.RunResult, error) {
		return &workflow.RunResult{
			RunID:      "r-1",
			GraphID:    graphID,
			Status:     workflow.StatusCompleted,
			FinalState: workflow.State{"score": initial["score"]},
		}, nil
	}}

	rr := serve(t, svc, http.MethodPost, "/graph/run", `{"graph_id":"g","initial_state":{"score":7}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	out := decodeBody(t, rr)
	if out["run_id"] != "r-1" || out["status"] != "completed" {
		t.Fatalf("unexpected body: %#v", out)
	}
	if out["final_state"].(map[string]any)["score"] != float64(7) {
		t.Fatalf("unexpected final state: %#v", out["final_state"])
	}
	if logs, ok := out["execution_logs"].([]any); !ok || len(logs) != 0 {
		t.Fatalf("expected empty execution_logs array, got %#v", out["execution_logs"])
	}
}

func TestHandler_GetState(t *testing.T) {
	svc := &svcStub{getRunFn: func(runID string) (*workflow.RunResult, error) {
		if runID != "r-1" {
			return nil, fmt.Errorf("%w: %q", app.ErrRunNotFound, runID)
		}
		return &workflow.RunResult{RunID: "r-1", Status: workflow.StatusCompleted, FinalState: workflow.State{"k": "v"}}, nil
	}}

	rr := serve(t, svc, http.MethodGet, "/graph/state/r-1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	out := decodeBody(t, rr)
	if out["run_id"] != "r-1" || out["current_node"] != nil {
		t.Fatalf("unexpected body: %#v", out)
	}
	if out["current_state"].(map[string]any)["k"] != "v" {
		t.Fatalf("unexpected current_state: %#v", out["current_state"])
	}

	rr = serve(t, svc, http.MethodGet, "/graph/state/other", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestHandler_ListingEndpoints(t *testing.T) {
	rr := serve(t, &svcStub{}, http.MethodGet, "/tools", "")
	if tools := decodeBody(t, rr)["tools"].([]any); len(tools) != 2 {
		t.Fatalf("unexpected tools: %#v", tools)
	}

	rr = serve(t, &svcStub{}, http.MethodGet, "/graphs", "")
	if graphs := decodeBody(t, rr)["graphs"].([]any); len(graphs) != 1 {
		t.Fatalf("unexpected graphs: %#v", graphs)
	}

	rr = serve(t, &svcStub{}, http.MethodGet, "/graph/example", "")
	if decodeBody(t, rr)["graph_id"] != "ex" {
		t.Fatalf("unexpected example body: %s", rr.Body.String())
	}
}

func TestHandler_RequestValidation(t *testing.T) {
	rr := serve(t, &svcStub{}, http.MethodPost, "/graph/run", `{"initial_state":{}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if out := decodeBody(t, rr); out["error"] != "invalid request" {
		t.Fatalf("unexpected body: %#v", out)
	}

	rr = serve(t, &svcStub{}, http.MethodPost, "/graph/create", `{"graph_dot":"digraph {}","graph_definition":{"nodes":[],"edges":[],"start_node":"a","end_nodes":[]}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}
