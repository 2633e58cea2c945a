package kg

import (
	"strings"
	"unicode"
)

// Node is a single entity in a domain knowledge graph. The fixed schema
// (ID, Type, Name, Aliases) covers everything the engine reasons about;
// any further domain-specific fields from the source description are kept
// in the Attributes side-table and passed through untouched.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Aliases    []string       `json:"aliases,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Edge is a typed, directed connection between two nodes. The graph is a
// multigraph: multiple edges of different types may connect the same
// ordered pair of nodes.
type Edge struct {
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Graph is the in-memory store for one domain's knowledge graph. It owns
// the node and edge collections plus two derived lookup indexes built once
// at load time. A Graph is never mutated after construction and is safe to
// share across concurrent requests.
type Graph struct {
	nodes []Node
	edges []Edge

	byID      map[string]*Node
	nameIndex map[string][]string

	// adjacency maps node id to the indexes of incident edges in both
	// directions, in edge insertion order. Built once at load time for
	// the undirected traversal view.
	adjacency map[string][]int

	aliasCount int
}

// LookupByID returns the node with the given identifier, or false if it
// does not exist.
func (g *Graph) LookupByID(id string) (*Node, bool) {
	node, ok := g.byID[id]
	return node, ok
}

// LookupByName returns the ids of all nodes whose display name or alias
// normalizes to the same string as text. Returns an empty slice when
// nothing matches.
func (g *Graph) LookupByName(text string) []string {
	ids := g.nameIndex[NormalizeName(text)]
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Edge returns the edge at the given index.
func (g *Graph) Edge(i int) Edge {
	return g.edges[i]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// AliasCount returns the number of distinct normalized alias strings in
// the name index.
func (g *Graph) AliasCount() int {
	return g.aliasCount
}

// indexKeys returns all normalized alias strings in the name index, in an
// unspecified order. Used by the resolver for approximate matching.
func (g *Graph) indexKeys() []string {
	keys := make([]string, 0, len(g.nameIndex))
	for key := range g.nameIndex {
		keys = append(keys, key)
	}
	return keys
}

// NormalizeName lowercases text and collapses any run of whitespace or
// punctuation into a single space. Both the name index and resolver
// candidates go through this so lookups are insensitive to case, spacing
// and punctuation.
func NormalizeName(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSpace = true
	}
	return b.String()
}
