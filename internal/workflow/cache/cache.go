package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/awmpietro/workflow-graph-engine/internal/workflow"
)

// InMemory memoizes compiled graph definitions by the hash of their DOT
// source. Concurrent misses for the same source share one compilation.
// Failed compilations are never stored; once max entries are held new
// results are returned without being cached.
type InMemory struct {
	mu    sync.RWMutex
	max   int
	items map[string]*workflow.GraphDefinition
	group singleflight.Group
}

func NewInMemory(max int) *InMemory {
	return &InMemory{
		max:   max,
		items: make(map[string]*workflow.GraphDefinition, max),
	}
}

// GetOrCompute returns a private copy of the cached definition for dot,
// calling fn on a miss.
func (c *InMemory) GetOrCompute(dot string, fn func() (*workflow.GraphDefinition, error)) (*workflow.GraphDefinition, error) {
	key := hash(dot)

	c.mu.RLock()
	g, ok := c.items[key]
	c.mu.RUnlock()
	if ok {
		return g.Clone(), nil
	}

	v, err, _ := c.group.Do(key, func() (v any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("graph compilation panicked: %v", r)
			}
		}()

		c.mu.RLock()
		cached, ok := c.items[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		g, err := fn()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if len(c.items) < c.max {
			c.items[key] = g
		}
		c.mu.Unlock()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*workflow.GraphDefinition).Clone(), nil
}

func (c *InMemory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
