package kg

import "sort"

// Fact is a realized edge discovered during traversal: subject, edge type,
// object, plus a relevance score derived from the hop distance at which
// the edge was first reached. Facts are ephemeral, produced per query.
type Fact struct {
	Subject *Node
	Type    string
	Object  *Node
	Score   float64
	Hops    int
}

// Extract performs a multi-source breadth-first traversal over the
// undirected view of the graph, starting simultaneously from all seed
// nodes and bounded to maxHops. Each edge becomes a candidate Fact the
// first time it is visited, with hop distance equal to the BFS depth.
// Facts are scored 1/(1+hops) and returned ordered by score descending
// with discovery order as the tie-break, truncated to maxFacts. The
// ordering is deterministic for a fixed seed order and edge iteration
// order. Empty seeds produce an empty result, not an error.
func Extract(seeds []string, g *Graph, maxHops int, maxFacts int) []Fact {
	if len(seeds) == 0 || maxHops <= 0 || maxFacts <= 0 {
		return nil
	}

	type queued struct {
		id    string
		depth int
	}

	visited := make(map[string]struct{}, len(seeds))
	queue := make([]queued, 0, len(seeds))
	for _, id := range seeds {
		if _, ok := g.byID[id]; !ok {
			continue
		}
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		queue = append(queue, queued{id: id, depth: 0})
	}

	seenEdges := make(map[int]struct{})
	var facts []Fact

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth >= maxHops {
			continue
		}

		for _, edgeIdx := range g.adjacency[current.id] {
			if _, ok := seenEdges[edgeIdx]; ok {
				continue
			}
			seenEdges[edgeIdx] = struct{}{}

			edge := g.edges[edgeIdx]
			hops := current.depth + 1
			facts = append(facts, Fact{
				Subject: g.byID[edge.Source],
				Type:    edge.Type,
				Object:  g.byID[edge.Target],
				Score:   1.0 / float64(1+hops),
				Hops:    hops,
			})

			// First visit wins: BFS guarantees the shortest hop distance.
			neighbor := edge.Target
			if neighbor == current.id {
				neighbor = edge.Source
			}
			if _, ok := visited[neighbor]; !ok {
				visited[neighbor] = struct{}{}
				queue = append(queue, queued{id: neighbor, depth: hops})
			}
		}
	}

	sort.SliceStable(facts, func(a, b int) bool {
		return facts[a].Score > facts[b].Score
	})
	if len(facts) > maxFacts {
		facts = facts[:maxFacts]
	}
	return facts
}
