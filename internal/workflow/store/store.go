// Package store keeps graph definitions and run results in memory.
// Every value is cloned on the way in and out.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
)

var (
	ErrGraphNotFound = errors.New("graph not found")
	ErrRunNotFound   = errors.New("run not found")
)

const DefaultGraphName = "unnamed_graph"

type GraphSummary struct {
	ID        string    `json:"graph_id"`
	Name      string    `json:"name"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
	CreatedAt time.Time `json:"created_at"`
}

type graphEntry struct {
	summary GraphSummary
	def     *workflow.GraphDefinition
}

type Graphs struct {
	mu     sync.RWMutex
	graphs map[string]graphEntry
	newID  func() string
	now    func() time.Time
}

func NewGraphs() *Graphs {
	return &Graphs{
		graphs: make(map[string]graphEntry),
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// Create validates def and stores a copy of it under a fresh id.
func (s *Graphs) Create(def *workflow.GraphDefinition, name string) (string, error) {
	if err := workflow.Validate(def); err != nil {
		return "", err
	}
	if name == "" {
		name = DefaultGraphName
	}

	id := s.newID()
	entry := graphEntry{
		summary: GraphSummary{
			ID:        id,
			Name:      name,
			NodeCount: len(def.Nodes),
			EdgeCount: len(def.Edges),
			CreatedAt: s.now(),
		},
		def: def.Clone(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[id] = entry
	return id, nil
}

func (s *Graphs) Get(id string) (*workflow.GraphDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.graphs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGraphNotFound, id)
	}
	return entry.def.Clone(), nil
}

// List returns summaries ordered by creation time, then id.
func (s *Graphs) List() []GraphSummary {
	s.mu.RLock()
	out := make([]GraphSummary, 0, len(s.graphs))
	for _, entry := range s.graphs {
		out = append(out, entry.summary)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type Runs struct {
	mu   sync.RWMutex
	runs map[string]*workflow.RunResult
}

func NewRuns() *Runs {
	return &Runs{runs: make(map[string]*workflow.RunResult)}
}

// Save stores a copy of res keyed by its run id, replacing any earlier one.
func (s *Runs) Save(res *workflow.RunResult) error {
	if res == nil || res.RunID == "" {
		return errors.New("run result has no run id")
	}
	cp := res.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[cp.RunID] = cp
	return nil
}

func (s *Runs) Get(runID string) (*workflow.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	return res.Clone(), nil
}
