package evidence

import (
	"math"
	"strings"
	"sync"

	"github.com/fusegraph/backend/pkg/logger"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator estimates the token cost of a piece of text.
type Estimator func(text string) int

const (
	tokenEncoding = "o200k_base"

	// Whitespace tokens undercount BPE tokens, so the fallback applies a
	// small overhead factor.
	fallbackOverhead = 1.3
)

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// EstimateTokens estimates the token cost of text using the o200k_base
// encoding when available, falling back to a whitespace-token count with
// an overhead factor otherwise.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	encoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tokenEncoding)
		if err != nil {
			logger.Warn("[Evidence] Token encoder unavailable, using whitespace estimate", "err", err)
			return
		}
		encoder = enc
	})

	if encoder != nil {
		return len(encoder.Encode(text, nil, nil))
	}
	words := len(strings.Fields(text))
	return int(math.Ceil(float64(words) * fallbackOverhead))
}
