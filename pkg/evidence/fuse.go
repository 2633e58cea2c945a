package evidence

import (
	"strings"

	"github.com/fusegraph/backend/pkg/kg"
	"github.com/fusegraph/backend/pkg/retrieval"
)

const (
	defaultLambda = 0.7

	// Passages from the same source with at least this much token overlap
	// are treated as near-identical duplicates.
	dedupeOverlap = 0.9
)

// FuseParams configures a fusion pass.
//
// TokenBudget caps the summed estimated token cost of the selection; a
// budget of zero yields an empty result. MaxItems caps the number of
// selected items (0 means no cap). Lambda is the MMR relevance/diversity
// trade-off, defaulting to 0.7 (relevance-favoring). Estimator overrides
// the token cost estimator, defaulting to EstimateTokens.
type FuseParams struct {
	TokenBudget int
	MaxItems    int
	Lambda      float64
	Estimator   Estimator
}

// Fuse merges graph facts and retrieved passages into a single ranked
// evidence list. Scores from the two sources are normalized independently
// onto [0,1], near-identical passages are deduplicated, and a greedy
// maximal-marginal-relevance selection packs the result under the token
// budget. Output ordering is the selection order, most marginally
// valuable first. Empty input never fails; it yields an empty result.
func Fuse(facts []kg.Fact, passages []retrieval.Passage, params FuseParams) []Item {
	if params.TokenBudget <= 0 {
		return nil
	}
	lambda := params.Lambda
	if lambda <= 0 {
		lambda = defaultLambda
	}
	estimate := params.Estimator
	if estimate == nil {
		estimate = EstimateTokens
	}

	items := buildItems(facts, passages, estimate)
	items = dedupePassages(items)

	maxItems := params.MaxItems
	if maxItems <= 0 {
		maxItems = len(items)
	}

	return selectMMR(items, lambda, params.TokenBudget, maxItems)
}

// buildItems wraps facts and passages into evidence items, normalizing
// each source's scores against its own range since raw scores from the
// two sources are not comparable.
func buildItems(facts []kg.Fact, passages []retrieval.Passage, estimate Estimator) []Item {
	items := make([]Item, 0, len(facts)+len(passages))

	factScores := make([]float64, len(facts))
	for i, fact := range facts {
		factScores[i] = fact.Score
	}
	normalizeScores(factScores)
	for i := range facts {
		item := Item{Fact: &facts[i], Relevance: factScores[i]}
		item.Tokens = estimate(item.Text())
		items = append(items, item)
	}

	passageScores := make([]float64, len(passages))
	for i, passage := range passages {
		passageScores[i] = passage.Score
	}
	normalizeScores(passageScores)
	for i := range passages {
		item := Item{Passage: &passages[i], Relevance: passageScores[i]}
		item.Tokens = estimate(item.Text())
		items = append(items, item)
	}

	return items
}

// normalizeScores min-max normalizes scores in place onto [0,1]. A
// degenerate range maps everything to 1.0.
func normalizeScores(scores []float64) {
	if len(scores) == 0 {
		return
	}
	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if max == min {
		for i := range scores {
			scores[i] = 1.0
		}
		return
	}
	for i := range scores {
		scores[i] = (scores[i] - min) / (max - min)
	}
}

// dedupePassages drops passages that share a source citation with an
// earlier passage and overlap it by at least 90%, keeping the
// higher-scored instance.
func dedupePassages(items []Item) []Item {
	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Passage == nil {
			kept = append(kept, item)
			continue
		}

		duplicate := -1
		for k, existing := range kept {
			if existing.Passage == nil || existing.Passage.Citation != item.Passage.Citation {
				continue
			}
			if tokenOverlap(tokenSet(existing.Text()), tokenSet(item.Text())) >= dedupeOverlap {
				duplicate = k
				break
			}
		}
		if duplicate == -1 {
			kept = append(kept, item)
			continue
		}
		if item.Relevance > kept[duplicate].Relevance {
			kept[duplicate] = item
		}
	}
	return kept
}

// selectMMR greedily selects the unselected item maximizing
// lambda*relevance - (1-lambda)*maxSimilarity(item, selected), packing
// items under the token budget. An item that does not fit the remaining
// budget is discarded, never partially included, and selection continues
// with the next-best item until nothing fits or maxItems is reached.
func selectMMR(items []Item, lambda float64, budget int, maxItems int) []Item {
	tokenSets := make([]map[string]struct{}, len(items))
	for i := range items {
		tokenSets[i] = tokenSet(items[i].Text())
	}

	used := make([]bool, len(items))
	var selected []Item
	var selectedSets []map[string]struct{}
	remaining := budget

	for len(selected) < maxItems {
		best := -1
		bestScore := 0.0
		for i := range items {
			if used[i] {
				continue
			}
			maxSim := 0.0
			for _, set := range selectedSets {
				if sim := jaccard(tokenSets[i], set); sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*items[i].Relevance - (1-lambda)*maxSim
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best == -1 {
			break
		}

		used[best] = true
		if items[best].Tokens > remaining {
			continue
		}
		remaining -= items[best].Tokens
		selected = append(selected, items[best])
		selectedSets = append(selectedSets, tokenSets[best])
	}

	return selected
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		set[tok] = struct{}{}
	}
	return set
}

// jaccard computes token-overlap similarity |A∩B| / |A∪B|.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	intersection := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// tokenOverlap computes |A∩B| relative to the smaller set, the measure
// used for near-duplicate detection.
func tokenOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	intersection := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			intersection++
		}
	}
	return float64(intersection) / float64(len(small))
}
