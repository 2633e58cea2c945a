package ai

import (
	"context"
)

// SynthesizeOptions holds configuration for answer synthesis requests.
type SynthesizeOptions struct {
	Model              string   // Model identifier to use for generation
	SystemPrompts      []string // System prompts prepended to the request
	Temperature        float64  // Sampling temperature (0.0-2.0)
	MaxOutputTokens    int      // Cap on generated tokens (0 = provider default)
	PreviousResponseID string   // Continuation token from a prior synthesis
}

// SynthesizeOption is a functional option for configuring synthesis requests.
type SynthesizeOption func(*SynthesizeOptions)

// WithModel returns an option that sets the model to use for synthesis.
func WithModel(model string) SynthesizeOption {
	return func(o *SynthesizeOptions) {
		o.Model = model
	}
}

// WithSystemPrompts returns an option that sets the system prompts to
// prepend to the synthesis request.
func WithSystemPrompts(prompts ...string) SynthesizeOption {
	return func(o *SynthesizeOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature returns an option that sets the sampling temperature.
func WithTemperature(temp float64) SynthesizeOption {
	return func(o *SynthesizeOptions) {
		o.Temperature = temp
	}
}

// WithMaxOutputTokens returns an option that caps the generated output length.
func WithMaxOutputTokens(tokens int) SynthesizeOption {
	return func(o *SynthesizeOptions) {
		o.MaxOutputTokens = tokens
	}
}

// WithPreviousResponseID returns an option that resumes a prior exchange
// using the continuation token the generation service issued for it.
func WithPreviousResponseID(id string) SynthesizeOption {
	return func(o *SynthesizeOptions) {
		o.PreviousResponseID = id
	}
}

// Result is the outcome of one synthesis call. ContinuationToken is an
// opaque identifier from the generation service; presenting it on a
// follow-up call resumes the prior context. Providers without server-side
// context leave it empty.
type Result struct {
	Text              string
	ContinuationToken string
	Model             string
}

// Synthesizer is the interface to the external text-generation service.
// Given a question and fused evidence it returns prose plus a continuation
// token for multi-turn exchanges.
type Synthesizer interface {
	Synthesize(
		ctx context.Context,
		question string,
		evidence string,
		opts ...SynthesizeOption,
	) (Result, error)
}
