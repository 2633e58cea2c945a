package mode

import (
	"strings"

	"github.com/fusegraph/backend/pkg/logger"
)

// Profile bundles the traversal depth, evidence volume, token budget and
// generation model for one request mode.
type Profile struct {
	Name         string
	MaxHops      int
	MaxFacts     int
	PassageCount int
	MaxEvidence  int
	TokenBudget  int
	Model        string
}

const (
	// DefaultName is used when a request does not specify a mode.
	DefaultName = "balanced"

	defaultModel = "gpt-4o"
)

var profiles = map[string]Profile{
	"concise": {
		Name:         "concise",
		MaxHops:      1,
		MaxFacts:     24,
		PassageCount: 6,
		MaxEvidence:  12,
		TokenBudget:  1500,
		Model:        defaultModel,
	},
	"balanced": {
		Name:         "balanced",
		MaxHops:      1,
		MaxFacts:     40,
		PassageCount: 10,
		MaxEvidence:  24,
		TokenBudget:  6000,
		Model:        defaultModel,
	},
	"deep": {
		Name:         "deep",
		MaxHops:      2,
		MaxFacts:     80,
		PassageCount: 22,
		MaxEvidence:  48,
		TokenBudget:  20000,
		Model:        defaultModel,
	},
}

// Names returns the recognized preset names.
func Names() []string {
	return []string{"concise", "balanced", "deep"}
}

// Lookup returns the profile for the given preset name. An empty name
// selects the default; an unrecognized name falls back to the default
// with a warning rather than failing.
func Lookup(name string) Profile {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return profiles[DefaultName]
	}
	profile, ok := profiles[key]
	if !ok {
		logger.Warn("[Mode] Unknown mode, falling back to default", "mode", name, "default", DefaultName)
		return profiles[DefaultName]
	}
	return profile
}
