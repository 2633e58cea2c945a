// Package engine orchestrates the answer pipeline: it resolves question
// mentions against the domain's knowledge graph, extracts a relevant
// subgraph, retrieves document passages from the external semantic index,
// fuses both into a bounded evidence list and hands it to the generation
// service.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fusegraph/backend/internal/util"
	"github.com/fusegraph/backend/pkg/ai"
	"github.com/fusegraph/backend/pkg/conversation"
	"github.com/fusegraph/backend/pkg/domain"
	"github.com/fusegraph/backend/pkg/evidence"
	"github.com/fusegraph/backend/pkg/export"
	"github.com/fusegraph/backend/pkg/kg"
	"github.com/fusegraph/backend/pkg/logger"
	"github.com/fusegraph/backend/pkg/mode"
	"github.com/fusegraph/backend/pkg/retrieval"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyQuestion indicates a request without a question.
var ErrEmptyQuestion = errors.New("question must not be empty")

// Engine wires the retrieval and generation components into one answer
// pipeline. It is safe for concurrent use.
//
// An Engine should be created using NewEngine.
type Engine struct {
	registry    *domain.Registry
	retriever   retrieval.PassageRetriever
	synthesizer ai.Synthesizer
	resolver    *kg.Resolver
	tracker     *conversation.Tracker
	cache       *graphCache
	exportDir   string
}

// NewEngineParams defines the configuration parameters for creating a new
// Engine.
//
// Retriever may be nil, in which case every answer uses graph-only
// evidence. ExportDir enables markdown export when non-empty.
// MaxTrackedResponses bounds the conversation tracker (0 means unbounded).
type NewEngineParams struct {
	Registry            *domain.Registry
	Retriever           retrieval.PassageRetriever
	Synthesizer         ai.Synthesizer
	ExportDir           string
	MaxTrackedResponses int
}

// NewEngine creates an Engine configured with the provided parameters.
func NewEngine(params NewEngineParams) *Engine {
	return &Engine{
		registry:    params.Registry,
		retriever:   params.Retriever,
		synthesizer: params.Synthesizer,
		resolver:    kg.NewResolver(kg.NewResolverParams{}),
		tracker:     conversation.NewTracker(params.MaxTrackedResponses),
		cache:       newGraphCache(),
		exportDir:   params.ExportDir,
	}
}

// RequestParams carries per-request overrides of the mode preset.
type RequestParams struct {
	PassageCount int     `json:"max_chunks,omitempty"`
	TokenBudget  int     `json:"token_budget,omitempty"`
	Model        string  `json:"model,omitempty"`
	Lambda       float64 `json:"lambda,omitempty"`
}

// AnswerRequest is one question to answer.
type AnswerRequest struct {
	Question       string
	Domain         string
	Mode           string
	VectorStoreID  string
	ResponseID     string
	ConversationID string
	Params         *RequestParams
}

// AnswerMeta describes how an answer was produced.
type AnswerMeta struct {
	Domain           string `json:"domain"`
	Mode             string `json:"mode"`
	Model            string `json:"model"`
	IsConversational bool   `json:"is_conversational"`
	Degraded         bool   `json:"degraded"`
	ExportPath       string `json:"export_path,omitempty"`
}

// AnswerResult is a finished answer. ResponseID identifies this exchange
// for follow-up requests.
type AnswerResult struct {
	ResponseID string     `json:"response_id"`
	Markdown   string     `json:"markdown"`
	Sources    []string   `json:"sources,omitempty"`
	Meta       AnswerMeta `json:"meta"`
}

// Answer runs the full pipeline for one question. Failures of individual
// evidence sources degrade the answer instead of failing it: a broken
// graph description falls back to passage-only evidence and an
// unavailable document index falls back to graph-only evidence. Only an
// unknown domain or a generation failure is returned as an error.
func (e *Engine) Answer(ctx context.Context, req AnswerRequest) (AnswerResult, error) {
	if strings.TrimSpace(req.Question) == "" {
		return AnswerResult{}, ErrEmptyQuestion
	}

	cfg, err := e.registry.Get(req.Domain)
	if err != nil {
		return AnswerResult{}, err
	}

	profile := mode.Lookup(req.Mode)
	lambda := 0.0
	if req.Params != nil {
		if req.Params.PassageCount > 0 {
			profile.PassageCount = req.Params.PassageCount
		}
		if req.Params.TokenBudget > 0 {
			profile.TokenBudget = req.Params.TokenBudget
		}
		if req.Params.Model != "" {
			profile.Model = req.Params.Model
		}
		lambda = req.Params.Lambda
	}

	vectorStoreID := req.VectorStoreID
	if vectorStoreID == "" {
		vectorStoreID = cfg.DefaultVectorStoreID
	}

	token, conversational := e.tracker.Resume(req.ConversationID, req.ResponseID)

	degraded := false
	g, err := e.cache.get(cfg.DomainID, cfg.KGPath)
	if err != nil {
		logger.Warn("[Engine] Graph unavailable, continuing with passages only",
			"domain", cfg.DomainID, "error", err)
		degraded = true
		g = nil
	}

	var matches []kg.Match
	if g != nil {
		matches = e.resolver.Resolve(req.Question, g)
	}

	var facts []kg.Fact
	var passages []retrieval.Passage

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if g == nil || len(matches) == 0 {
			return nil
		}
		seeds := make([]string, len(matches))
		for i, m := range matches {
			seeds[i] = m.NodeID
		}
		facts = kg.Extract(seeds, g, profile.MaxHops, profile.MaxFacts)
		return nil
	})
	group.Go(func() error {
		if e.retriever == nil || vectorStoreID == "" || profile.PassageCount <= 0 {
			return nil
		}
		pool, err := e.retrievePool(groupCtx, expandQueries(req.Question, matches, g), vectorStoreID, profile.PassageCount)
		if err != nil {
			logger.Warn("[Engine] Passage retrieval unavailable, continuing with graph only",
				"domain", cfg.DomainID, "error", err)
			degraded = true
			return nil
		}
		passages = pool
		return nil
	})
	if err := group.Wait(); err != nil {
		return AnswerResult{}, err
	}

	items := evidence.Fuse(facts, passages, evidence.FuseParams{
		TokenBudget: profile.TokenBudget,
		MaxItems:    profile.MaxEvidence,
		Lambda:      lambda,
	})
	block, sources := buildEvidenceBlock(items)

	opts := []ai.SynthesizeOption{ai.WithModel(profile.Model)}
	if token != "" {
		opts = append(opts, ai.WithPreviousResponseID(token))
	}

	result, err := e.synthesizer.Synthesize(ctx, req.Question, block, opts...)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	responseID := result.ContinuationToken
	if responseID == "" {
		responseID, err = util.NewResponseID()
		if err != nil {
			return AnswerResult{}, fmt.Errorf("failed to generate response id: %w", err)
		}
	}
	e.tracker.Record(responseID, conversation.State{
		ContinuationToken: result.ContinuationToken,
		Domain:            cfg.DomainID,
		Mode:              profile.Name,
	}, req.ConversationID)

	doc := export.Document{Question: req.Question, Answer: result.Text, Sources: sources}
	exportPath, err := export.WriteFile(e.exportDir, doc)
	if err != nil {
		logger.Warn("[Engine] Answer export failed", "error", err)
		exportPath = ""
	}

	return AnswerResult{
		ResponseID: responseID,
		Markdown:   doc.Markdown(),
		Sources:    sources,
		Meta: AnswerMeta{
			Domain:           cfg.DomainID,
			Mode:             profile.Name,
			Model:            result.Model,
			IsConversational: conversational,
			Degraded:         degraded,
			ExportPath:       exportPath,
		},
	}, nil
}

// retrievePool runs the expanded sub-queries against the document index
// in parallel and concatenates the results in query order, so the pool is
// deterministic for a fixed query list.
func (e *Engine) retrievePool(
	ctx context.Context,
	queries []string,
	vectorStoreID string,
	k int,
) ([]retrieval.Passage, error) {
	slots := make([][]retrieval.Passage, len(queries))
	group, ctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		group.Go(func() error {
			result, err := e.retriever.Retrieve(ctx, query, vectorStoreID, k)
			if err != nil {
				return err
			}
			slots[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var pool []retrieval.Passage
	for _, slot := range slots {
		pool = append(pool, slot...)
	}
	return pool, nil
}

// expandQueries widens a question into retrieval sub-queries: the question
// itself, explain/summarize reformulations and one entity-anchored variant
// per resolved graph node.
func expandQueries(question string, matches []kg.Match, g *kg.Graph) []string {
	queries := []string{
		question,
		"Explain: " + question,
		"Summarize: " + question,
	}

	seen := make(map[string]struct{})
	var anchored []string
	for _, m := range matches {
		node, ok := g.LookupByID(m.NodeID)
		if !ok || node.Name == "" {
			continue
		}
		q := question + " " + node.Name
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		anchored = append(anchored, q)
	}
	sort.Strings(anchored)

	return append(queries, anchored...)
}
