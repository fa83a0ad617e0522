package httptransport

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/awmpietro/workflow-graph-engine/internal/app"
	"github.com/awmpietro/workflow-graph-engine/internal/transport/workflowdto"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	svc    app.WorkflowService
	logger *slog.Logger
}

func NewHandler(svc app.WorkflowService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes returns the API mux wrapped with permissive CORS.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("POST /graph/create", h.CreateGraph)
	mux.HandleFunc("POST /graph/run", h.RunGraph)
	mux.HandleFunc("GET /graph/state/{run_id}", h.GetState)
	mux.HandleFunc("GET /graph/example", h.Example)
	mux.HandleFunc("GET /graphs", h.ListGraphs)
	mux.HandleFunc("GET /tools", h.ListTools)
	return withCORS(mux)
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, workflowdto.NewIndexResponse())
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateGraph(w http.ResponseWriter, r *http.Request) {
	var in workflowdto.CreateGraphRequest
	if !h.decode(w, r, &in) {
		return
	}

	name := in.Name
	if name == "" {
		name = "unnamed_graph"
	}

	var (
		id  string
		err error
		out workflowdto.CreateGraphResponse
	)
	switch {
	case in.DOT != "":
		id, out.Definition, err = h.svc.CreateGraphFromDOT(in.DOT, name)
	default:
		id, err = h.svc.CreateGraph(in.Definition, name)
	}
	if err != nil {
		writeJSON(w, workflowdto.StatusFor(err), workflowdto.NewErrorResponse("create graph failed", err, nil))
		return
	}

	h.logger.Info("graph created", "graph_id", id, "name", name)
	out.GraphID = id
	out.Message = fmt.Sprintf("Graph '%s' created successfully", name)
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) RunGraph(w http.ResponseWriter, r *http.Request) {
	var in workflowdto.RunGraphRequest
	if !h.decode(w, r, &in) {
		return
	}

	res, err := h.svc.RunGraph(in.GraphID, in.InitialState)
	if err != nil {
		status := workflowdto.StatusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("run graph failed", "graph_id", in.GraphID, "error", err)
		}
		writeJSON(w, status, workflowdto.NewErrorResponse("run graph failed", err, res))
		return
	}
	writeJSON(w, http.StatusOK, workflowdto.NewRunGraphResponse(res))
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run_id")
	res, err := h.svc.GetRun(runID)
	if err != nil {
		writeJSON(w, workflowdto.StatusFor(err), workflowdto.NewErrorResponse("run not found", err, nil))
		return
	}
	writeJSON(w, http.StatusOK, workflowdto.NewStateResponse(res))
}

func (h *Handler) Example(w http.ResponseWriter, r *http.Request) {
	ex, err := h.svc.ExampleWorkflow()
	if err != nil {
		writeJSON(w, workflowdto.StatusFor(err), workflowdto.NewErrorResponse("example failed", err, nil))
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (h *Handler) ListGraphs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, workflowdto.GraphsResponse{Graphs: h.svc.ListGraphs()})
}

func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, workflowdto.ToolsResponse{Tools: h.svc.ListTools()})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, workflowdto.ErrorResponse{Error: "invalid json", Details: err.Error()})
		return false
	}
	if err := workflowdto.Validate(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, workflowdto.ErrorResponse{Error: "invalid request", Details: err.Error()})
		return false
	}
	return true
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
