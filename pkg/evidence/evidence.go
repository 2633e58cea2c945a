package evidence

import (
	"fmt"

	"github.com/fusegraph/backend/pkg/kg"
	"github.com/fusegraph/backend/pkg/retrieval"
)

// Item is the unit the fuser operates on: a tagged union of a graph fact
// or a retrieved passage, carrying a normalized relevance score and an
// estimated token cost.
type Item struct {
	Fact    *kg.Fact
	Passage *retrieval.Passage

	Relevance float64
	Tokens    int
}

// IsFact reports whether the item wraps a graph fact.
func (i Item) IsFact() bool {
	return i.Fact != nil
}

// Text returns the item's text representation, used for similarity
// computation and prompt assembly. Facts render as
// "subject — edgeType → object".
func (i Item) Text() string {
	if i.Fact != nil {
		return fmt.Sprintf("%s — %s → %s", i.Fact.Subject.Name, i.Fact.Type, i.Fact.Object.Name)
	}
	if i.Passage != nil {
		return i.Passage.Text
	}
	return ""
}

// Citation returns the item's source citation. Facts cite the knowledge
// graph; passages cite their source document.
func (i Item) Citation() string {
	if i.Fact != nil {
		return "knowledge graph"
	}
	if i.Passage != nil {
		return i.Passage.Citation
	}
	return ""
}
