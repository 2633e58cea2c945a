package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fusegraph/backend/pkg/logger"
)

// ErrUnknownDomain indicates a request for a domain id that is not
// registered. It surfaces to the caller as a bad-request condition.
var ErrUnknownDomain = errors.New("unknown domain")

// Config describes one domain: where its knowledge graph description
// lives and which external document index answers passage queries by
// default.
type Config struct {
	DomainID             string `json:"domain_id"`
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	KGPath               string `json:"kg_path"`
	DefaultVectorStoreID string `json:"default_vectorstore_id,omitempty"`
}

// Registry holds the configured domains. It is built once at startup and
// read-only afterwards.
type Registry struct {
	byID    map[string]Config
	ordered []Config
}

// NewRegistry creates a registry from the given configs. Later configs
// with a duplicate id overwrite earlier ones with a warning.
func NewRegistry(configs ...Config) *Registry {
	r := &Registry{
		byID: make(map[string]Config, len(configs)),
	}
	for _, cfg := range configs {
		if cfg.DomainID == "" {
			logger.Warn("[Domain] Skipping config with empty domain id", "name", cfg.Name)
			continue
		}
		if _, exists := r.byID[cfg.DomainID]; exists {
			logger.Warn("[Domain] Duplicate domain id, overwriting", "domain_id", cfg.DomainID)
			for i := range r.ordered {
				if r.ordered[i].DomainID == cfg.DomainID {
					r.ordered[i] = cfg
					break
				}
			}
		} else {
			r.ordered = append(r.ordered, cfg)
		}
		r.byID[cfg.DomainID] = cfg
	}
	return r
}

// LoadRegistry reads a registry description from a JSON file of the shape
// {"domains": [...]}.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read domain registry %s: %w", path, err)
	}

	var desc struct {
		Domains []Config `json:"domains"`
	}
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse domain registry %s: %w", path, err)
	}
	if len(desc.Domains) == 0 {
		return nil, fmt.Errorf("domain registry %s contains no domains", path)
	}

	logger.Info("[Domain] Registry loaded", "path", path, "domains", len(desc.Domains))
	return NewRegistry(desc.Domains...), nil
}

// Get returns the config for the given domain id, or ErrUnknownDomain.
func (r *Registry) Get(domainID string) (Config, error) {
	cfg, ok := r.byID[domainID]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownDomain, domainID)
	}
	return cfg, nil
}

// Exists reports whether the domain id is registered.
func (r *Registry) Exists(domainID string) bool {
	_, ok := r.byID[domainID]
	return ok
}

// List returns all registered domains in registration order.
func (r *Registry) List() []Config {
	out := make([]Config, len(r.ordered))
	copy(out, r.ordered)
	return out
}
