package workflow

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// NodeObservation describes one tool invocation inside a run.
type NodeObservation struct {
	RunID     string
	Node      string
	Type      NodeType
	Tool      string
	Iteration int
	Duration  time.Duration
	Err       error
}

type NodeObserver interface {
	ObserveNode(obs NodeObservation)
}

// Observers fans each observation out to every non-nil member.
type Observers []NodeObserver

func (o Observers) ObserveNode(obs NodeObservation) {
	for _, next := range o {
		if next != nil {
			next.ObserveNode(obs)
		}
	}
}

// NodeLogObserver writes one record per executed node.
type NodeLogObserver struct {
	logger *slog.Logger
}

func NewNodeLogObserver(logger *slog.Logger) *NodeLogObserver {
	return &NodeLogObserver{logger: logger}
}

func (l *NodeLogObserver) ObserveNode(obs NodeObservation) {
	if l == nil || l.logger == nil {
		return
	}
	attrs := []any{
		"run_id", obs.RunID,
		"node", obs.Node,
		"node_type", obs.Type,
		"tool", obs.Tool,
		"iteration", obs.Iteration,
		"duration_ms", float64(obs.Duration.Microseconds()) / 1000.0,
	}
	if obs.Err != nil {
		l.logger.Warn("workflow node failed", append(attrs, "error", obs.Err)...)
		return
	}
	l.logger.Info("workflow node executed", attrs...)
}

type ToolStats struct {
	Tool     string        `json:"tool"`
	Calls    int           `json:"calls"`
	Failures int           `json:"failures"`
	Total    time.Duration `json:"total_ns"`
	Max      time.Duration `json:"max_ns"`
}

func (s ToolStats) Mean() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// ToolStatsObserver aggregates call counts and durations per tool.
type ToolStatsObserver struct {
	mu    sync.Mutex
	stats map[string]*ToolStats
}

func NewToolStatsObserver() *ToolStatsObserver {
	return &ToolStatsObserver{stats: map[string]*ToolStats{}}
}

func (s *ToolStatsObserver) ObserveNode(obs NodeObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stats[obs.Tool]
	if !ok {
		st = &ToolStats{Tool: obs.Tool}
		s.stats[obs.Tool] = st
	}
	st.Calls++
	if obs.Err != nil {
		st.Failures++
	}
	st.Total += obs.Duration
	if obs.Duration > st.Max {
		st.Max = obs.Duration
	}
}

// Snapshot returns the stats sorted by tool name.
func (s *ToolStatsObserver) Snapshot() []ToolStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ToolStats, 0, len(s.stats))
	for _, st := range s.stats {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tool < out[j].Tool })
	return out
}

// AsyncNodeObserver forwards observations to next from one background
// goroutine. Observations that find the queue full, or arrive after
// Close, are counted as dropped.
type AsyncNodeObserver struct {
	next    NodeObserver
	queue   chan NodeObservation
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

func NewAsyncNodeObserver(next NodeObserver, buffer int) *AsyncNodeObserver {
	if buffer <= 0 {
		buffer = 1
	}
	o := &AsyncNodeObserver{
		next:  next,
		queue: make(chan NodeObservation, buffer),
		done:  make(chan struct{}),
	}
	go o.drain()
	return o
}

func (o *AsyncNodeObserver) drain() {
	defer close(o.done)
	for obs := range o.queue {
		if o.next != nil {
			o.next.ObserveNode(obs)
		}
	}
}

func (o *AsyncNodeObserver) ObserveNode(obs NodeObservation) {
	if o == nil {
		return
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.dropped.Add(1)
		return
	}
	select {
	case o.queue <- obs:
	default:
		o.dropped.Add(1)
	}
}

func (o *AsyncNodeObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

// Close delivers queued observations and waits for the worker to exit.
// Later calls return immediately.
func (o *AsyncNodeObserver) Close() {
	if o == nil {
		return
	}
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()
	<-o.done
}
