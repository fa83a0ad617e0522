package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/awmpietro/workflow-graph-engine/internal/app"
	"github.com/awmpietro/workflow-graph-engine/internal/transport/workflowdto"
)

const statePrefix = "/graph/state/"

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

// Handle dispatches an API Gateway v2 request to the workflow API.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := req.RequestContext.HTTP.Method
	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}

	if method == http.MethodOptions {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNoContent, Headers: corsHeaders()}, nil
	}

	if runID, ok := strings.CutPrefix(path, statePrefix); ok && runID != "" {
		if method != http.MethodGet {
			return methodNotAllowed(), nil
		}
		return h.getState(runID), nil
	}

	type route struct {
		method string
		fn     func(req events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse
	}
	routes := map[string]route{
		"/":              {http.MethodGet, h.index},
		"/healthz":       {http.MethodGet, h.healthz},
		"/graph/create":  {http.MethodPost, h.createGraph},
		"/graph/run":     {http.MethodPost, h.runGraph},
		"/graph/example": {http.MethodGet, h.example},
		"/graphs":        {http.MethodGet, h.listGraphs},
		"/tools":         {http.MethodGet, h.listTools},
	}

	r, ok := routes[path]
	if !ok {
		return jsonResp(http.StatusNotFound, workflowdto.ErrorResponse{Error: "not found", Details: path}), nil
	}
	if r.method != method {
		return methodNotAllowed(), nil
	}
	return r.fn(req), nil
}

func (h *Handler) index(events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	return jsonResp(http.StatusOK, workflowdto.NewIndexResponse())
}

func (h *Handler) healthz(events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	return jsonResp(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) createGraph(req events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	var in workflowdto.CreateGraphRequest
	if resp, ok := decode(req, &in); !ok {
		return resp
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
	if in.DOT != "" {
		id, out.Definition, err = h.svc.CreateGraphFromDOT(in.DOT, name)
	} else {
		id, err = h.svc.CreateGraph(in.Definition, name)
	}
	if err != nil {
		return jsonResp(workflowdto.StatusFor(err), workflowdto.NewErrorResponse("create graph failed", err, nil))
	}

	h.logger.Info("graph created", "graph_id", id, "name", name)
	out.GraphID = id
	out.Message = fmt.Sprintf("Graph '%s' created successfully", name)
	return jsonResp(http.StatusOK, out)
}

func (h *Handler) runGraph(req events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	var in workflowdto.RunGraphRequest
	if resp, ok := decode(req, &in); !ok {
		return resp
	}

	res, err := h.svc.RunGraph(in.GraphID, in.InitialState)
	if err != nil {
		status := workflowdto.StatusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("run graph failed", "graph_id", in.GraphID, "error", err)
		}
		return jsonResp(status, workflowdto.NewErrorResponse("run graph failed", err, res))
	}
	return jsonResp(http.StatusOK, workflowdto.NewRunGraphResponse(res))
}

func (h *Handler) getState(runID string) events.APIGatewayV2HTTPResponse {
	res, err := h.svc.GetRun(runID)
	if err != nil {
		return jsonResp(workflowdto.StatusFor(err), workflowdto.NewErrorResponse("run not found", err, nil))
	}
	return jsonResp(http.StatusOK, workflowdto.NewStateResponse(res))
}

func (h *Handler) example(events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	ex, err := h.svc.ExampleWorkflow()
	if err != nil {
		return jsonResp(workflowdto.StatusFor(err), workflowdto.NewErrorResponse("example failed", err, nil))
	}
	return jsonResp(http.StatusOK, ex)
}

func (h *Handler) listGraphs(events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	return jsonResp(http.StatusOK, workflowdto.GraphsResponse{Graphs: h.svc.ListGraphs()})
}

func (h *Handler) listTools(events.APIGatewayV2HTTPRequest) events.APIGatewayV2HTTPResponse {
	return jsonResp(http.StatusOK, workflowdto.ToolsResponse{Tools: h.svc.ListTools()})
}

func decode(req events.APIGatewayV2HTTPRequest, dst any) (events.APIGatewayV2HTTPResponse, bool) {
	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, workflowdto.ErrorResponse{Error: "invalid body", Details: err.Error()}), false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return jsonResp(http.StatusBadRequest, workflowdto.ErrorResponse{Error: "invalid json", Details: err.Error()}), false
	}
	if err := workflowdto.Validate(dst); err != nil {
		return jsonResp(http.StatusBadRequest, workflowdto.ErrorResponse{Error: "invalid request", Details: err.Error()}), false
	}
	return events.APIGatewayV2HTTPResponse{}, true
}

func readBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

func methodNotAllowed() events.APIGatewayV2HTTPResponse {
	return jsonResp(http.StatusMethodNotAllowed, workflowdto.ErrorResponse{Error: "method not allowed"})
}

func corsHeaders() map[string]string {
	return map[string]string{
		"access-control-allow-origin":  "*",
		"access-control-allow-methods": "*",
		"access-control-allow-headers": "*",
	}
}

func jsonResp(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	headers := corsHeaders()
	headers["content-type"] = "application/json"
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(b),
	}
}
