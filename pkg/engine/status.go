package engine

import (
	"github.com/fusegraph/backend/pkg/logger"
)

// DomainStatus reports one registered domain together with the load state
// of its knowledge graph.
type DomainStatus struct {
	DomainID             string `json:"domain_id"`
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	DefaultVectorStoreID string `json:"default_vectorstore_id,omitempty"`
	KGLoaded             bool   `json:"kg_loaded"`
	KGNodes              int    `json:"kg_nodes"`
	KGEdges              int    `json:"kg_edges"`
}

// Domains lists the registered domains in registration order. Counts are
// reported for graphs that are already cached; unloaded graphs show as
// not loaded rather than triggering a load.
func (e *Engine) Domains() []DomainStatus {
	configs := e.registry.List()
	statuses := make([]DomainStatus, 0, len(configs))
	for _, cfg := range configs {
		status := DomainStatus{
			DomainID:             cfg.DomainID,
			Name:                 cfg.Name,
			Description:          cfg.Description,
			DefaultVectorStoreID: cfg.DefaultVectorStoreID,
		}
		if g, ok := e.cache.peek(cfg.DomainID); ok {
			status.KGLoaded = true
			status.KGNodes = g.NodeCount()
			status.KGEdges = g.EdgeCount()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Warmup eagerly loads every registered domain graph. Individual load
// failures are logged, not returned; the affected domain keeps serving
// passage-only answers.
func (e *Engine) Warmup() {
	for _, cfg := range e.registry.List() {
		if _, err := e.cache.get(cfg.DomainID, cfg.KGPath); err != nil {
			logger.Warn("[Engine] Graph warmup failed", "domain", cfg.DomainID, "error", err)
		}
	}
}
