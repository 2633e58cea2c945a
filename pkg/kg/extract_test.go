package kg

import "testing"

func TestExtractTwoHopChain(t *testing.T) {
	g, err := Build(testDescription())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	facts := Extract([]string{"1"}, g, 2, 100)
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}

	first, second := facts[0], facts[1]
	if first.Subject.ID != "1" || first.Type != "PROCESSES" || first.Object.ID != "2" || first.Hops != 1 {
		t.Fatalf("unexpected first fact: %+v", first)
	}
	if second.Subject.ID != "2" || second.Type != "FEEDS" || second.Object.ID != "3" || second.Hops != 2 {
		t.Fatalf("unexpected second fact: %+v", second)
	}
	if first.Score <= second.Score {
		t.Fatalf("hop-1 score %v not greater than hop-2 score %v", first.Score, second.Score)
	}
}

func TestExtractRespectsMaxHops(t *testing.T) {
	g, err := Build(testDescription())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	facts := Extract([]string{"1"}, g, 1, 100)
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
	for _, f := range facts {
		if f.Hops > 1 {
			t.Fatalf("fact %+v exceeds max hops 1", f)
		}
	}
}

func TestExtractUndirectedTraversal(t *testing.T) {
	g, err := Build(testDescription())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// Seeding from the target of an edge must still discover it.
	facts := Extract([]string{"3"}, g, 1, 100)
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
	if facts[0].Type != "FEEDS" || facts[0].Hops != 1 {
		t.Fatalf("unexpected fact: %+v", facts[0])
	}
}

func TestExtractMultiSource(t *testing.T) {
	g, err := Build(testDescription())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	facts := Extract([]string{"1", "3"}, g, 1, 100)
	if len(facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(facts))
	}
	for _, f := range facts {
		if f.Hops != 1 {
			t.Fatalf("fact %+v should be hop 1 from one of the seeds", f)
		}
	}
}

func TestExtractMaxFacts(t *testing.T) {
	g, err := Build(testDescription())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	facts := Extract([]string{"1"}, g, 2, 1)
	if len(facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(facts))
	}
	if facts[0].Hops != 1 {
		t.Fatalf("truncation must keep the best-scored fact, got %+v", facts[0])
	}
}

func TestExtractEdgeCases(t *testing.T) {
	g, err := Build(testDescription())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	tests := []struct {
		name    string
		seeds   []string
		maxHops int
	}{
		{"no seeds", nil, 2},
		{"unknown seed", []string{"missing"}, 2},
		{"zero hops", []string{"1"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if facts := Extract(tt.seeds, g, tt.maxHops, 100); len(facts) != 0 {
				t.Fatalf("got %d facts, want 0", len(facts))
			}
		})
	}
}

func TestExtractDeterministic(t *testing.T) {
	g, err := Build(Description{
		Nodes: []Node{
			{ID: "a", Name: "A"}, {ID: "b", Name: "B"},
			{ID: "c", Name: "C"}, {ID: "d", Name: "D"},
		},
		Edges: []Edge{
			{Source: "a", Target: "b", Type: "CONTAINS"},
			{Source: "a", Target: "c", Type: "FEEDS"},
			{Source: "b", Target: "d", Type: "VALIDATES"},
			{Source: "c", Target: "d", Type: "PROCESSES"},
			{Source: "a", Target: "b", Type: "DISPLAYED_ON"},
		},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	first := Extract([]string{"a"}, g, 2, 100)
	for i := 0; i < 5; i++ {
		again := Extract([]string{"a"}, g, 2, 100)
		if len(again) != len(first) {
			t.Fatalf("run %d: got %d facts, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d: fact %d differs: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}

	// Parallel edges between the same pair are distinct facts.
	types := map[string]bool{}
	for _, f := range first {
		if f.Subject.ID == "a" && f.Object.ID == "b" {
			types[f.Type] = true
		}
	}
	if !types["CONTAINS"] || !types["DISPLAYED_ON"] {
		t.Fatalf("parallel edges missing from facts: %v", types)
	}
}
