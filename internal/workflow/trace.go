package workflow

import "time"

const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type ExecutionLog struct {
	NodeName    string    `json:"node_name"`
	StateBefore State     `json:"state_before"`
	StateAfter  State     `json:"state_after"`
	Timestamp   time.Time `json:"timestamp"`
}

// RunResult is the terminal record of one run. CurrentNode names the failing
// node of a failed run or the pending node of a truncated one.
type RunResult struct {
	RunID       string         `json:"run_id"`
	GraphID     string         `json:"graph_id,omitempty"`
	FinalState  State          `json:"final_state"`
	Logs        []ExecutionLog `json:"execution_logs"`
	Status      string         `json:"status"`
	CurrentNode string         `json:"current_node,omitempty"`
	Iterations  int            `json:"iterations"`
	Truncated   bool           `json:"truncated"`
	Warning     string         `json:"warning,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// NodeNames lists the executed nodes in order.
func (r *RunResult) NodeNames() []string {
	out := make([]string, len(r.Logs))
	for i, l := range r.Logs {
		out[i] = l.NodeName
	}
	return out
}

func (r *RunResult) Clone() *RunResult {
	if r == nil {
		return nil
	}
	out := *r
	out.FinalState = r.FinalState.Clone()
	out.Logs = make([]ExecutionLog, len(r.Logs))
	for i, l := range r.Logs {
		out.Logs[i] = ExecutionLog{
			NodeName:    l.NodeName,
			StateBefore: l.StateBefore.Clone(),
			StateAfter:  l.StateAfter.Clone(),
			Timestamp:   l.Timestamp,
		}
	}
	return &out
}
