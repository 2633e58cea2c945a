package engine

import (
	"sync"

	"github.com/fusegraph/backend/pkg/kg"

	"golang.org/x/sync/singleflight"
)

// graphCache loads and caches one graph per domain id. Concurrent requests
// for the same domain share a single load; once loaded, a graph is served
// from memory for the process lifetime.
type graphCache struct {
	mu     sync.RWMutex
	graphs map[string]*kg.Graph
	group  singleflight.Group
}

func newGraphCache() *graphCache {
	return &graphCache{
		graphs: make(map[string]*kg.Graph),
	}
}

// get returns the cached graph for the domain, loading it from path on
// first use. Load failures are not cached, so a later request retries.
func (c *graphCache) get(domainID string, path string) (*kg.Graph, error) {
	c.mu.RLock()
	g, ok := c.graphs[domainID]
	c.mu.RUnlock()
	if ok {
		return g, nil
	}

	v, err, _ := c.group.Do(domainID, func() (any, error) {
		c.mu.RLock()
		g, ok := c.graphs[domainID]
		c.mu.RUnlock()
		if ok {
			return g, nil
		}

		g, err := kg.LoadFile(path)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.graphs[domainID] = g
		c.mu.Unlock()
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*kg.Graph), nil
}

// peek returns the cached graph without triggering a load.
func (c *graphCache) peek(domainID string) (*kg.Graph, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.graphs[domainID]
	return g, ok
}
