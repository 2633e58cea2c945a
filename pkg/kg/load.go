package kg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fusegraph/backend/pkg/logger"
)

// ErrMalformedGraph indicates a graph description that cannot be loaded:
// missing node or edge arrays, invalid JSON, or duplicate node identifiers.
// A malformed description fails that domain's load only; it never crashes
// the process.
var ErrMalformedGraph = errors.New("malformed graph description")

// Description is the JSON shape of a domain knowledge graph on disk.
type Description struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// LoadFile reads a graph description from path and builds a Graph.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph description %s: %w", path, err)
	}
	return Load(data)
}

// Load parses a JSON graph description and builds the Graph with its
// lookup indexes. Edges referencing unknown node ids are dropped with a
// warning rather than failing the whole load. Returns ErrMalformedGraph
// when the description lacks the required node or edge arrays or contains
// duplicate node ids.
func Load(data []byte) (*Graph, error) {
	var desc struct {
		Nodes *[]Node `json:"nodes"`
		Edges *[]Edge `json:"edges"`
	}
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGraph, err)
	}
	if desc.Nodes == nil || desc.Edges == nil {
		return nil, fmt.Errorf("%w: missing nodes or edges array", ErrMalformedGraph)
	}

	return Build(Description{Nodes: *desc.Nodes, Edges: *desc.Edges})
}

// Build constructs a Graph from an already-parsed description.
func Build(desc Description) (*Graph, error) {
	g := &Graph{
		nodes:     make([]Node, 0, len(desc.Nodes)),
		byID:      make(map[string]*Node, len(desc.Nodes)),
		nameIndex: make(map[string][]string),
		adjacency: make(map[string][]int),
	}

	for _, node := range desc.Nodes {
		if node.ID == "" {
			return nil, fmt.Errorf("%w: node with empty id", ErrMalformedGraph)
		}
		if _, exists := g.byID[node.ID]; exists {
			return nil, fmt.Errorf("%w: duplicate node id %q", ErrMalformedGraph, node.ID)
		}
		g.nodes = append(g.nodes, node)
		g.byID[node.ID] = &g.nodes[len(g.nodes)-1]
	}

	for i := range g.nodes {
		node := &g.nodes[i]
		indexAlias(g, node.Name, node.ID)
		for _, alias := range node.Aliases {
			indexAlias(g, alias, node.ID)
		}
	}
	g.aliasCount = len(g.nameIndex)

	dropped := 0
	for _, edge := range desc.Edges {
		_, srcOK := g.byID[edge.Source]
		_, tgtOK := g.byID[edge.Target]
		if !srcOK || !tgtOK {
			dropped++
			continue
		}
		g.edges = append(g.edges, edge)
		idx := len(g.edges) - 1
		g.adjacency[edge.Source] = append(g.adjacency[edge.Source], idx)
		if edge.Target != edge.Source {
			g.adjacency[edge.Target] = append(g.adjacency[edge.Target], idx)
		}
	}

	if dropped > 0 {
		logger.Warn("[KG] Dropped edges referencing unknown nodes", "dropped", dropped)
	}
	logger.Info("[KG] Graph loaded",
		"nodes", len(g.nodes),
		"edges", len(g.edges),
		"aliases", g.aliasCount,
	)

	return g, nil
}

func indexAlias(g *Graph, alias string, id string) {
	key := NormalizeName(alias)
	if key == "" {
		return
	}
	for _, existing := range g.nameIndex[key] {
		if existing == id {
			return
		}
	}
	g.nameIndex[key] = append(g.nameIndex[key], id)
}
