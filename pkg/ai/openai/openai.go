package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/fusegraph/backend/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// ResponsesSynthesizer generates answers via the OpenAI Responses API.
// The API keeps conversation state server-side: each response id doubles
// as the continuation token for the follow-up call.
//
// A ResponsesSynthesizer should be created using NewResponsesSynthesizer.
type ResponsesSynthesizer struct {
	defaultModel string
	client       *openai.Client
}

// NewResponsesSynthesizerParams defines the configuration parameters for
// creating a new ResponsesSynthesizer.
type NewResponsesSynthesizerParams struct {
	Model   string
	BaseURL string
	ApiKey  string
}

// NewResponsesSynthesizer creates a synthesizer backed by the OpenAI
// Responses API.
func NewResponsesSynthesizer(params NewResponsesSynthesizerParams) *ResponsesSynthesizer {
	options := []option.RequestOption{
		option.WithAPIKey(params.ApiKey),
	}
	if params.BaseURL != "" {
		options = append(options, option.WithBaseURL(params.BaseURL))
	}

	client := openai.NewClient(options...)
	return &ResponsesSynthesizer{
		defaultModel: params.Model,
		client:       &client,
	}
}

// Synthesize sends the question and evidence to the model and returns the
// generated prose plus the new continuation token. When no system prompts
// are supplied, the evidence is framed with the default grounded-answer
// prompt; empty evidence falls back to the insufficient-information prompt
// so the model declines to speculate.
func (s *ResponsesSynthesizer) Synthesize(
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

	instructions := strings.Join(options.SystemPrompts, "\n\n")
	if instructions == "" {
		if evidence != "" {
			instructions = fmt.Sprintf(ai.GroundedAnswerPrompt, evidence)
		} else {
			instructions = fmt.Sprintf(ai.NoEvidencePrompt, question)
		}
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(options.Model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(question),
		},
		Instructions: openai.String(instructions),
		Temperature:  openai.Float(options.Temperature),
	}
	if options.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(options.MaxOutputTokens))
	}
	if options.PreviousResponseID != "" {
		params.PreviousResponseID = openai.String(options.PreviousResponseID)
	}

	response, err := s.client.Responses.New(ctx, params)
	if err != nil {
		return ai.Result{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	return ai.Result{
		Text:              response.OutputText(),
		ContinuationToken: response.ID,
		Model:             options.Model,
	}, nil
}
