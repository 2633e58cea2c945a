package retrieval

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the external semantic-search service could not
// be reached or returned an error status. Callers recover locally by
// degrading to graph-only evidence instead of failing the whole answer.
var ErrUnavailable = errors.New("passage retrieval unavailable")

// Passage is a scored text chunk returned by the external semantic-search
// service, together with its source citation. Passages are ephemeral,
// produced per query.
type Passage struct {
	Text     string  `json:"text"`
	Citation string  `json:"citation"`
	Score    float64 `json:"score"`
}

// PassageRetriever is the interface to the external semantic document
// index. Implementations are thin pass-throughs: they issue the search and
// map results, nothing more.
type PassageRetriever interface {
	Retrieve(ctx context.Context, query string, indexID string, k int) ([]Passage, error)
}
