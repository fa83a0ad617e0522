package workflowdto

import (
	"errors"
	"net/http"

	"github.com/awmpietro/workflow-graph-engine/internal/app"
	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
)

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrGraphNotFound), errors.Is(err, app.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidGraph), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrNodeNotFound),
		errors.Is(err, workflow.ErrToolNotFound),
		errors.Is(err, workflow.ErrToolFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse describes err; a non-nil res attaches the partial run.
func NewErrorResponse(summary string, err error, res *workflow.RunResult) ErrorResponse {
	body := ErrorResponse{Error: summary, Details: err.Error()}
	if res != nil {
		run := NewRunGraphResponse(res)
		body.Run = &run
	}
	return body
}
