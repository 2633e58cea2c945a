package kg

import (
	"sort"
	"strings"
)

// Match is a question mention resolved to a graph node.
type Match struct {
	NodeID     string
	Confidence float64

	exact  bool
	length int
	order  int
}

// Resolver maps free-text mentions in a question to graph node ids using
// exact and approximate matching against the normalized name index.
//
// A Resolver should be created using NewResolver.
type Resolver struct {
	maxWindow int
	threshold float64
	maxSeeds  int
}

// NewResolverParams defines the configuration parameters for creating a
// new Resolver.
//
// MaxWindow bounds the n-gram window size in words.
// Threshold is the minimum edit-distance similarity for approximate matches.
// MaxSeeds caps the number of returned matches to bound traversal cost.
type NewResolverParams struct {
	MaxWindow int
	Threshold float64
	MaxSeeds  int
}

// NewResolver creates a Resolver configured with the provided parameters,
// applying defaults for any zero value (window 4, threshold 0.82, 8 seeds).
func NewResolver(params NewResolverParams) *Resolver {
	r := &Resolver{
		maxWindow: params.MaxWindow,
		threshold: params.Threshold,
		maxSeeds:  params.MaxSeeds,
	}
	if r.maxWindow <= 0 {
		r.maxWindow = 4
	}
	if r.threshold <= 0 {
		r.threshold = 0.82
	}
	if r.maxSeeds <= 0 {
		r.maxSeeds = 8
	}
	return r
}

// Resolve tokenizes the question into candidate n-grams and matches each
// against the graph's name index, first exactly and then approximately by
// edit-distance ratio. Longer exact matches win over shorter approximate
// ones on tie. No match is not an error: an empty slice is returned and
// the caller degrades to passage-only evidence.
func (r *Resolver) Resolve(question string, g *Graph) []Match {
	words := strings.Fields(NormalizeName(question))
	if len(words) == 0 {
		return nil
	}

	var keys []string
	best := make(map[string]Match)
	order := 0

	for n := r.maxWindow; n >= 1; n-- {
		for i := 0; i+n <= len(words); i++ {
			phrase := strings.Join(words[i:i+n], " ")

			if ids := g.nameIndex[phrase]; len(ids) > 0 {
				for _, id := range ids {
					order++
					record(best, Match{
						NodeID:     id,
						Confidence: 1.0,
						exact:      true,
						length:     n,
						order:      order,
					})
				}
				continue
			}

			// Very short fragments produce spurious approximate hits.
			if len(phrase) < 3 {
				continue
			}
			if keys == nil {
				keys = g.indexKeys()
				sort.Strings(keys)
			}
			for _, key := range keys {
				ratio := similarityRatio(phrase, key)
				if ratio < r.threshold {
					continue
				}
				for _, id := range g.nameIndex[key] {
					order++
					record(best, Match{
						NodeID:     id,
						Confidence: ratio,
						length:     n,
						order:      order,
					})
				}
			}
		}
	}

	matches := make([]Match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].exact != matches[b].exact {
			return matches[a].exact
		}
		if matches[a].length != matches[b].length {
			return matches[a].length > matches[b].length
		}
		if matches[a].Confidence != matches[b].Confidence {
			return matches[a].Confidence > matches[b].Confidence
		}
		return matches[a].order < matches[b].order
	})

	if len(matches) > r.maxSeeds {
		matches = matches[:r.maxSeeds]
	}
	return matches
}

func record(best map[string]Match, m Match) {
	existing, ok := best[m.NodeID]
	if !ok || better(m, existing) {
		best[m.NodeID] = m
	}
}

func better(a, b Match) bool {
	if a.exact != b.exact {
		return a.exact
	}
	if a.length != b.length {
		return a.length > b.length
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.order < b.order
}

// similarityRatio computes an edit-distance based similarity between two
// strings: 1 - distance/maxLen, in [0,1].
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0.0
	}
	return 1 - float64(levenshteinDistance(a, b))/float64(maxLen)
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for j := 0; j <= len(a); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(b); i++ {
		curr[0] = i
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				curr[j] = prev[j-1]
			} else {
				min := prev[j-1]
				if curr[j-1] < min {
					min = curr[j-1]
				}
				if prev[j] < min {
					min = prev[j]
				}
				curr[j] = min + 1
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}
