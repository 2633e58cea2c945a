package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/fusegraph/backend/internal/util"
	"github.com/fusegraph/backend/pkg/logger"
	"github.com/fusegraph/backend/pkg/retrieval"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const searchMaxTries = 2

// VectorStoreRetriever retrieves passages from an OpenAI vector store via
// the vector store search endpoint. It implements retrieval.PassageRetriever.
//
// A VectorStoreRetriever should be created using NewVectorStoreRetriever.
type VectorStoreRetriever struct {
	client *openai.Client
}

// NewVectorStoreRetrieverParams defines the configuration parameters for
// creating a new VectorStoreRetriever.
type NewVectorStoreRetrieverParams struct {
	BaseURL string
	ApiKey  string
}

// NewVectorStoreRetriever creates a retriever backed by the OpenAI vector
// store search API.
func NewVectorStoreRetriever(params NewVectorStoreRetrieverParams) *VectorStoreRetriever {
	options := []option.RequestOption{
		option.WithAPIKey(params.ApiKey),
	}
	if params.BaseURL != "" {
		options = append(options, option.WithBaseURL(params.BaseURL))
	}

	client := openai.NewClient(options...)
	return &VectorStoreRetriever{
		client: &client,
	}
}

// Retrieve runs a semantic search against the vector store identified by
// indexID and returns up to k scored passages. Service failures are
// reported as retrieval.ErrUnavailable so the caller can degrade to
// graph-only evidence.
func (r *VectorStoreRetriever) Retrieve(
	ctx context.Context,
	query string,
	indexID string,
	k int,
) ([]retrieval.Passage, error) {
	if k <= 0 {
		return nil, nil
	}

	passages, err := util.RetryWithContext(ctx, searchMaxTries, func(ctx context.Context) ([]retrieval.Passage, error) {
		page, err := r.client.VectorStores.Search(ctx, indexID, openai.VectorStoreSearchParams{
			Query: openai.VectorStoreSearchParamsQueryUnion{
				OfString: openai.String(query),
			},
			MaxNumResults: openai.Int(int64(k)),
		})
		if err != nil {
			return nil, err
		}

		passages := make([]retrieval.Passage, 0, len(page.Data))
		for _, row := range page.Data {
			var text strings.Builder
			for _, content := range row.Content {
				if content.Text == "" {
					continue
				}
				if text.Len() > 0 {
					text.WriteByte('\n')
				}
				text.WriteString(content.Text)
			}
			if text.Len() == 0 {
				continue
			}

			citation := row.Filename
			if citation == "" {
				citation = row.FileID
			}

			passages = append(passages, retrieval.Passage{
				Text:     text.String(),
				Citation: citation,
				Score:    row.Score,
			})
		}
		return passages, nil
	})
	if err != nil {
		logger.Warn("[Retrieval] Vector store search failed", "index_id", indexID, "err", err)
		return nil, fmt.Errorf("%w: %v", retrieval.ErrUnavailable, err)
	}

	return passages, nil
}
