package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fusegraph/backend/internal/util"
	"github.com/fusegraph/backend/pkg/ai"
	"github.com/fusegraph/backend/pkg/evidence"
	"github.com/fusegraph/backend/pkg/logger"
	"github.com/fusegraph/backend/pkg/mode"
)

// Subrequirement is one aspect of a structured requirement, used to build
// a focused retrieval query.
type Subrequirement struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// StructuredRequest analyses a requirement against the document index
// under a caller-supplied system prompt. Unlike free-text questions it
// skips the knowledge graph and retrieves per subrequirement.
type StructuredRequest struct {
	Domain          string
	VectorStoreID   string
	Mode            string
	SystemPrompt    string
	Requirement     string
	Profile         map[string]any
	Subrequirements []Subrequirement
}

// StructuredResult is the outcome of a structured analysis. Data holds
// the parsed JSON when the model's answer contained any; Answer always
// holds the raw prose.
type StructuredResult struct {
	ResponseID string         `json:"response_id"`
	Answer     string         `json:"answer"`
	Data       map[string]any `json:"data,omitempty"`
	Sources    []string       `json:"sources,omitempty"`
	Model      string         `json:"model"`
	Queries    []string       `json:"queries"`
}

// AnswerStructured retrieves evidence for each subrequirement, asks the
// model under the supplied system prompt and best-effort parses JSON out
// of the reply. A reply without parseable JSON is not an error.
func (e *Engine) AnswerStructured(ctx context.Context, req StructuredRequest) (StructuredResult, error) {
	if strings.TrimSpace(req.Requirement) == "" && len(req.Subrequirements) == 0 {
		return StructuredResult{}, ErrEmptyQuestion
	}

	cfg, err := e.registry.Get(req.Domain)
	if err != nil {
		return StructuredResult{}, err
	}

	profile := mode.Lookup(req.Mode)
	vectorStoreID := req.VectorStoreID
	if vectorStoreID == "" {
		vectorStoreID = cfg.DefaultVectorStoreID
	}

	queries := structuredQueries(req)

	var items []evidence.Item
	if e.retriever != nil && vectorStoreID != "" {
		pool, err := e.retrievePool(ctx, queries, vectorStoreID, profile.PassageCount)
		if err != nil {
			logger.Warn("[Engine] Passage retrieval unavailable for structured request",
				"domain", cfg.DomainID, "error", err)
		} else {
			items = evidence.Fuse(nil, pool, evidence.FuseParams{
				TokenBudget: profile.TokenBudget,
				MaxItems:    profile.MaxEvidence,
			})
		}
	}
	block, sources := buildEvidenceBlock(items)

	contextJSON, err := json.Marshal(map[string]any{
		"requirement":     req.Requirement,
		"profile":         req.Profile,
		"subrequirements": req.Subrequirements,
	})
	if err != nil {
		return StructuredResult{}, fmt.Errorf("failed to encode structured context: %w", err)
	}

	prompts := []string{}
	if req.SystemPrompt != "" {
		prompts = append(prompts, req.SystemPrompt)
	}
	prompts = append(prompts, fmt.Sprintf(ai.StructuredAnswerContextPrompt, req.Requirement, contextJSON))
	if block != "" {
		prompts = append(prompts, fmt.Sprintf(ai.GroundedAnswerPrompt, block))
	}

	question := req.Requirement
	if question == "" {
		question = queries[0]
	}

	result, err := e.synthesizer.Synthesize(ctx, question, block,
		ai.WithModel(profile.Model),
		ai.WithSystemPrompts(prompts...),
	)
	if err != nil {
		return StructuredResult{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	responseID := result.ContinuationToken
	if responseID == "" {
		responseID, err = util.NewResponseID()
		if err != nil {
			return StructuredResult{}, fmt.Errorf("failed to generate response id: %w", err)
		}
	}

	var data map[string]any
	if err := ai.UnmarshalFlexible(result.Text, &data); err != nil {
		data = nil
	}

	return StructuredResult{
		ResponseID: responseID,
		Answer:     result.Text,
		Data:       data,
		Sources:    sources,
		Model:      result.Model,
		Queries:    queries,
	}, nil
}

// structuredQueries derives one focused retrieval query per
// subrequirement from its title, the leading words of its description and
// the leading words of the requirement.
func structuredQueries(req StructuredRequest) []string {
	var queries []string
	for _, sub := range req.Subrequirements {
		var parts []string
		if sub.Title != "" {
			parts = append(parts, sub.Title)
		}
		if sub.Description != "" {
			parts = append(parts, firstWords(sub.Description, 10))
		}
		if req.Requirement != "" {
			parts = append(parts, firstWords(req.Requirement, 5))
		}
		if len(parts) > 0 {
			queries = append(queries, strings.Join(parts, " "))
		}
	}

	if len(queries) == 0 && req.Requirement != "" {
		queries = []string{req.Requirement}
	}
	if len(queries) == 0 {
		queries = []string{"internal capabilities documentation"}
	}
	return queries
}

func firstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
