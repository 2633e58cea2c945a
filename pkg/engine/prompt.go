package engine

import (
	"fmt"
	"strings"

	"github.com/fusegraph/backend/pkg/evidence"
)

// buildEvidenceBlock renders the fused evidence list into the text block
// handed to the synthesizer, and returns the citation labels in index
// order. Each item is tagged with the bracketed index of its citation so
// the model can cite sources the same way the rendered answer does.
func buildEvidenceBlock(items []evidence.Item) (string, []string) {
	if len(items) == 0 {
		return "", nil
	}

	var sources []string
	indexOf := make(map[string]int)
	cite := func(label string) int {
		if idx, ok := indexOf[label]; ok {
			return idx
		}
		sources = append(sources, label)
		indexOf[label] = len(sources)
		return len(sources)
	}

	var facts, passages []string
	for _, item := range items {
		idx := cite(item.Citation())
		if item.IsFact() {
			facts = append(facts, fmt.Sprintf("- %s [%d]", item.Text(), idx))
		} else {
			passages = append(passages, fmt.Sprintf("[%d] (%s)\n%s", idx, item.Passage.Citation, item.Text()))
		}
	}

	var sb strings.Builder
	if len(facts) > 0 {
		sb.WriteString("## Knowledge graph facts\n\n")
		sb.WriteString(strings.Join(facts, "\n"))
		sb.WriteString("\n")
	}
	if len(passages) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("## Document passages\n\n")
		sb.WriteString(strings.Join(passages, "\n\n"))
		sb.WriteString("\n")
	}

	return sb.String(), sources
}
