package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fusegraph/backend/pkg/ai"
	"github.com/fusegraph/backend/pkg/domain"
	"github.com/fusegraph/backend/pkg/retrieval"
)

type fakeRetriever struct {
	mu      sync.Mutex
	queries []string
	fail    bool
	byQuery map[string][]retrieval.Passage
}

func (r *fakeRetriever) Retrieve(_ context.Context, query string, _ string, _ int) ([]retrieval.Passage, error) {
	r.mu.Lock()
	r.queries = append(r.queries, query)
	r.mu.Unlock()

	if r.fail {
		return nil, fmt.Errorf("%w: connection refused", retrieval.ErrUnavailable)
	}
	if r.byQuery != nil {
		return r.byQuery[query], nil
	}
	return []retrieval.Passage{
		{Text: "Payments are settled overnight by the clearing system.", Citation: "settlement.pdf", Score: 0.9},
	}, nil
}

type fakeSynthesizer struct {
	mu         sync.Mutex
	lastOpts   ai.SynthesizeOptions
	evidence   string
	token      string
	answerJSON string
	fail       bool
}

func (s *fakeSynthesizer) Synthesize(_ context.Context, question string, evidence string, opts ...ai.SynthesizeOption) (ai.Result, error) {
	if s.fail {
		return ai.Result{}, errors.New("model backend down")
	}

	options := ai.SynthesizeOptions{}
	for _, o := range opts {
		o(&options)
	}
	s.mu.Lock()
	s.lastOpts = options
	s.evidence = evidence
	s.mu.Unlock()

	text := "Answer about " + question
	if s.answerJSON != "" {
		text = s.answerJSON
	}
	return ai.Result{
		Text:              text,
		ContinuationToken: s.token,
		Model:             options.Model,
	}, nil
}

func writeGraphFixture(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kg.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write graph fixture: %v", err)
	}
	return path
}

const paymentsGraph = `{
	"nodes": [
		{"id": "n1", "type": "System", "name": "Payment Gateway"},
		{"id": "n2", "type": "System", "name": "Clearing System"},
		{"id": "n3", "type": "Report", "name": "Settlement Report"}
	],
	"edges": [
		{"source": "n1", "target": "n2", "type": "SETTLES_VIA"},
		{"source": "n2", "target": "n3", "type": "PRODUCES"}
	]
}`

func testEngine(t *testing.T, kgContents string, retriever retrieval.PassageRetriever, synth ai.Synthesizer) *Engine {
	t.Helper()
	path := writeGraphFixture(t, kgContents)
	registry := domain.NewRegistry(domain.Config{
		DomainID:             "payments",
		Name:                 "Payments",
		KGPath:               path,
		DefaultVectorStoreID: "vs_test",
	})
	return NewEngine(NewEngineParams{
		Registry:    registry,
		Retriever:   retriever,
		Synthesizer: synth,
	})
}

func TestAnswerEndToEnd(t *testing.T) {
	retriever := &fakeRetriever{}
	synth := &fakeSynthesizer{token: "resp_openai_1"}
	e := testEngine(t, paymentsGraph, retriever, synth)

	res, err := e.Answer(context.Background(), AnswerRequest{
		Question: "How does the payment gateway settle?",
		Domain:   "payments",
	})
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}

	if res.ResponseID != "resp_openai_1" {
		t.Errorf("expected continuation token as response id, got %q", res.ResponseID)
	}
	if res.Meta.Domain != "payments" || res.Meta.Mode != "balanced" {
		t.Errorf("unexpected meta: %+v", res.Meta)
	}
	if res.Meta.IsConversational {
		t.Error("first turn must not be conversational")
	}
	if res.Meta.Degraded {
		t.Error("expected non-degraded answer")
	}
	if !strings.Contains(synth.evidence, "Payment Gateway — SETTLES_VIA → Clearing System") {
		t.Errorf("expected graph fact in evidence block, got %q", synth.evidence)
	}
	if !strings.Contains(synth.evidence, "settlement.pdf") {
		t.Errorf("expected passage citation in evidence block, got %q", synth.evidence)
	}
	if len(res.Sources) == 0 || res.Sources[0] != "knowledge graph" {
		t.Errorf("expected knowledge graph as first source, got %v", res.Sources)
	}
	if !strings.Contains(res.Markdown, "## Sources") {
		t.Errorf("expected sources section in markdown, got %q", res.Markdown)
	}
}

func TestAnswerUnknownDomain(t *testing.T) {
	e := testEngine(t, paymentsGraph, &fakeRetriever{}, &fakeSynthesizer{})

	_, err := e.Answer(context.Background(), AnswerRequest{
		Question: "anything",
		Domain:   "nonexistent",
	})
	if !errors.Is(err, domain.ErrUnknownDomain) {
		t.Fatalf("expected ErrUnknownDomain, got %v", err)
	}
}

func TestAnswerEmptyQuestion(t *testing.T) {
	e := testEngine(t, paymentsGraph, &fakeRetriever{}, &fakeSynthesizer{})

	_, err := e.Answer(context.Background(), AnswerRequest{Question: "   ", Domain: "payments"})
	if !errors.Is(err, ErrEmptyQuestion) {
		t.Fatalf("expected ErrEmptyQuestion, got %v", err)
	}
}

func TestAnswerDegradesWhenRetrievalUnavailable(t *testing.T) {
	retriever := &fakeRetriever{fail: true}
	synth := &fakeSynthesizer{}
	e := testEngine(t, paymentsGraph, retriever, synth)

	res, err := e.Answer(context.Background(), AnswerRequest{
		Question: "How does the payment gateway settle?",
		Domain:   "payments",
	})
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}

	if !res.Meta.Degraded {
		t.Error("expected degraded answer when retrieval is unavailable")
	}
	if !strings.Contains(synth.evidence, "Payment Gateway") {
		t.Errorf("expected graph-only evidence, got %q", synth.evidence)
	}
	if strings.Contains(synth.evidence, "settlement.pdf") {
		t.Errorf("expected no passages in evidence block, got %q", synth.evidence)
	}
}

func TestAnswerDegradesWhenGraphMalformed(t *testing.T) {
	retriever := &fakeRetriever{}
	synth := &fakeSynthesizer{}
	e := testEngine(t, `{"nodes": []}`, retriever, synth)

	res, err := e.Answer(context.Background(), AnswerRequest{
		Question: "How are payments settled?",
		Domain:   "payments",
	})
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}

	if !res.Meta.Degraded {
		t.Error("expected degraded answer when graph fails to load")
	}
	if !strings.Contains(synth.evidence, "settlement.pdf") {
		t.Errorf("expected passage-only evidence, got %q", synth.evidence)
	}
	if strings.Contains(synth.evidence, "Knowledge graph facts") {
		t.Errorf("expected no graph facts, got %q", synth.evidence)
	}
}

func TestAnswerPassageOnlyWhenNoEntitiesResolve(t *testing.T) {
	retriever := &fakeRetriever{}
	synth := &fakeSynthesizer{}
	e := testEngine(t, paymentsGraph, retriever, synth)

	res, err := e.Answer(context.Background(), AnswerRequest{
		Question: "zzz qqq xxx",
		Domain:   "payments",
	})
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}

	if res.Meta.Degraded {
		t.Error("unresolved entities are not a degradation")
	}
	if strings.Contains(synth.evidence, "Knowledge graph facts") {
		t.Errorf("expected no graph facts, got %q", synth.evidence)
	}
}

func TestAnswerConversationalFollowUp(t *testing.T) {
	retriever := &fakeRetriever{}
	synth := &fakeSynthesizer{token: "resp_turn_1"}
	e := testEngine(t, paymentsGraph, retriever, synth)

	first, err := e.Answer(context.Background(), AnswerRequest{
		Question: "How does the payment gateway settle?",
		Domain:   "payments",
	})
	if err != nil {
		t.Fatalf("first Answer returned error: %v", err)
	}

	synth.token = "resp_turn_2"
	second, err := e.Answer(context.Background(), AnswerRequest{
		Question:   "And how often?",
		Domain:     "payments",
		ResponseID: first.ResponseID,
	})
	if err != nil {
		t.Fatalf("second Answer returned error: %v", err)
	}

	if !second.Meta.IsConversational {
		t.Error("follow-up with known response id must be conversational")
	}
	if synth.lastOpts.PreviousResponseID != "resp_turn_1" {
		t.Errorf("expected continuation token forwarded, got %q", synth.lastOpts.PreviousResponseID)
	}
}

func TestAnswerUnknownResponseIDStartsFresh(t *testing.T) {
	synth := &fakeSynthesizer{token: "resp_x"}
	e := testEngine(t, paymentsGraph, &fakeRetriever{}, synth)

	res, err := e.Answer(context.Background(), AnswerRequest{
		Question:   "How does the payment gateway settle?",
		Domain:     "payments",
		ResponseID: "resp_never_issued",
	})
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}

	if res.Meta.IsConversational {
		t.Error("unknown response id must start a fresh context")
	}
	if synth.lastOpts.PreviousResponseID != "" {
		t.Errorf("expected no continuation token, got %q", synth.lastOpts.PreviousResponseID)
	}
}

func TestAnswerGeneratesResponseIDWithoutContinuation(t *testing.T) {
	synth := &fakeSynthesizer{}
	e := testEngine(t, paymentsGraph, &fakeRetriever{}, synth)

	res, err := e.Answer(context.Background(), AnswerRequest{
		Question: "How does the payment gateway settle?",
		Domain:   "payments",
	})
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if res.ResponseID == "" {
		t.Fatal("expected generated response id")
	}
	if !strings.HasPrefix(res.ResponseID, "resp_") {
		t.Errorf("expected resp_ prefix, got %q", res.ResponseID)
	}
}

func TestAnswerParamOverrides(t *testing.T) {
	synth := &fakeSynthesizer{}
	e := testEngine(t, paymentsGraph, &fakeRetriever{}, synth)

	_, err := e.Answer(context.Background(), AnswerRequest{
		Question: "How does the payment gateway settle?",
		Domain:   "payments",
		Mode:     "concise",
		Params:   &RequestParams{Model: "gpt-4o-mini"},
	})
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if synth.lastOpts.Model != "gpt-4o-mini" {
		t.Errorf("expected model override, got %q", synth.lastOpts.Model)
	}
}

func TestAnswerQueryExpansion(t *testing.T) {
	retriever := &fakeRetriever{}
	e := testEngine(t, paymentsGraph, retriever, &fakeSynthesizer{})

	_, err := e.Answer(context.Background(), AnswerRequest{
		Question: "How does the payment gateway settle?",
		Domain:   "payments",
	})
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}

	seen := make(map[string]bool)
	retriever.mu.Lock()
	for _, q := range retriever.queries {
		seen[q] = true
	}
	retriever.mu.Unlock()

	if !seen["How does the payment gateway settle?"] {
		t.Error("expected the raw question as a retrieval query")
	}
	if !seen["Explain: How does the payment gateway settle?"] {
		t.Error("expected an explain reformulation")
	}
	if !seen["How does the payment gateway settle? Payment Gateway"] {
		t.Errorf("expected an entity-anchored query, got %v", retriever.queries)
	}
}

func TestAnswerSynthesizerFailure(t *testing.T) {
	e := testEngine(t, paymentsGraph, &fakeRetriever{}, &fakeSynthesizer{fail: true})

	_, err := e.Answer(context.Background(), AnswerRequest{
		Question: "How does the payment gateway settle?",
		Domain:   "payments",
	})
	if err == nil {
		t.Fatal("expected error when generation fails")
	}
}

func TestAnswerExport(t *testing.T) {
	dir := t.TempDir()
	path := writeGraphFixture(t, paymentsGraph)
	registry := domain.NewRegistry(domain.Config{DomainID: "payments", Name: "Payments", KGPath: path})
	e := NewEngine(NewEngineParams{
		Registry:    registry,
		Synthesizer: &fakeSynthesizer{},
		ExportDir:   dir,
	})

	res, err := e.Answer(context.Background(), AnswerRequest{
		Question: "How does the payment gateway settle?",
		Domain:   "payments",
	})
	if err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if res.Meta.ExportPath == "" {
		t.Fatal("expected export path in meta")
	}
	if _, err := os.Stat(res.Meta.ExportPath); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
}

func TestDomainsReportsLoadState(t *testing.T) {
	e := testEngine(t, paymentsGraph, &fakeRetriever{}, &fakeSynthesizer{})

	before := e.Domains()
	if len(before) != 1 || before[0].KGLoaded {
		t.Fatalf("expected one unloaded domain, got %+v", before)
	}

	e.Warmup()

	after := e.Domains()
	if !after[0].KGLoaded || after[0].KGNodes != 3 || after[0].KGEdges != 2 {
		t.Fatalf("expected loaded domain with counts, got %+v", after)
	}
}

func TestAnswerStructured(t *testing.T) {
	retriever := &fakeRetriever{}
	synth := &fakeSynthesizer{answerJSON: `{"assessment": "covered", "score": 4}`}
	e := testEngine(t, paymentsGraph, retriever, synth)

	res, err := e.AnswerStructured(context.Background(), StructuredRequest{
		Domain:       "payments",
		SystemPrompt: "You are a capability analyst.",
		Requirement:  "Support real-time settlement notifications for institutional clients",
		Subrequirements: []Subrequirement{
			{Title: "Notification latency", Description: "Notifications must arrive within five seconds of settlement"},
		},
	})
	if err != nil {
		t.Fatalf("AnswerStructured returned error: %v", err)
	}

	if res.Data == nil || res.Data["assessment"] != "covered" {
		t.Fatalf("expected parsed JSON data, got %+v", res.Data)
	}
	if len(res.Queries) != 1 {
		t.Fatalf("expected one derived query, got %v", res.Queries)
	}
	if !strings.Contains(res.Queries[0], "Notification latency") {
		t.Errorf("expected subrequirement title in query, got %q", res.Queries[0])
	}
	if !strings.Contains(strings.Join(synth.lastOpts.SystemPrompts, "\n"), "capability analyst") {
		t.Error("expected custom system prompt forwarded")
	}
}

func TestAnswerStructuredNonJSONAnswer(t *testing.T) {
	synth := &fakeSynthesizer{}
	e := testEngine(t, paymentsGraph, &fakeRetriever{}, synth)

	res, err := e.AnswerStructured(context.Background(), StructuredRequest{
		Domain:      "payments",
		Requirement: "Support settlement notifications",
	})
	if err != nil {
		t.Fatalf("AnswerStructured returned error: %v", err)
	}
	if res.Data != nil {
		t.Errorf("expected nil data for prose answer, got %+v", res.Data)
	}
	if res.Answer == "" {
		t.Error("expected raw answer text")
	}
}
