package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fusegraph/backend/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

// ChatSynthesizer generates answers via a locally-hosted Ollama instance.
// Ollama keeps no server-side conversation state, so the continuation
// token is always empty and every exchange starts fresh.
//
// A ChatSynthesizer should be created using NewChatSynthesizer.
type ChatSynthesizer struct {
	defaultModel string
	reqLock      *semaphore.Weighted
	client       *api.Client
}

// NewChatSynthesizerParams contains configuration options for creating a
// new ChatSynthesizer.
type NewChatSynthesizerParams struct {
	Model   string
	BaseURL string
	ApiKey  string

	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	rt := t.rt
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(r)
}

// NewChatSynthesizer creates a synthesizer backed by the Ollama chat API.
func NewChatSynthesizer(params NewChatSynthesizerParams) (*ChatSynthesizer, error) {
	baseURL, err := url.Parse(params.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}

	httpClient := http.DefaultClient
	if params.ApiKey != "" {
		httpClient = &http.Client{
			Transport: &headerTransport{
				headers: map[string]string{
					"Authorization": "Bearer " + params.ApiKey,
				},
			},
		}
	}

	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &ChatSynthesizer{
		defaultModel: params.Model,
		reqLock:      semaphore.NewWeighted(maxConcurrent),
		client:       api.NewClient(baseURL, httpClient),
	}, nil
}

// Synthesize sends the question and evidence to the model and returns the
// generated prose. When no system prompts are supplied, the evidence is
// framed with the default grounded-answer prompt; empty evidence falls
// back to the insufficient-information prompt.
func (s *ChatSynthesizer) Synthesize(
	ctx context.Context,
	question string,
	evidence string,
	opts ...ai.SynthesizeOption,
) (ai.Result, error) {
	options := ai.SynthesizeOptions{
		Model:       s.defaultModel,
		Temperature: 0.3,
	}
	for _, o := range opts {
		o(&options)
	}

	system := strings.Join(options.SystemPrompts, "\n\n")
	if system == "" {
		if evidence != "" {
			system = fmt.Sprintf(ai.GroundedAnswerPrompt, evidence)
		} else {
			system = fmt.Sprintf(ai.NoEvidencePrompt, question)
		}
	}

	if err := s.reqLock.Acquire(ctx, 1); err != nil {
		return ai.Result{}, err
	}
	defer s.reqLock.Release(1)

	stream := false
	req := &api.ChatRequest{
		Model: options.Model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: question},
		},
		Stream:  &stream,
		Options: map[string]any{"temperature": options.Temperature},
	}
	if options.MaxOutputTokens > 0 {
		req.Options["num_predict"] = options.MaxOutputTokens
	}

	var final api.ChatResponse
	if err := s.client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
		}
		return nil
	}); err != nil {
		return ai.Result{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	return ai.Result{
		Text:  final.Message.Content,
		Model: options.Model,
	}, nil
}
