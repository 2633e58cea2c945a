package kg

import (
	"errors"
	"testing"
)

func testDescription() Description {
	return Description{
		Nodes: []Node{
			{ID: "1", Type: "Entity", Name: "Order", Aliases: []string{"Purchase Order"}},
			{ID: "2", Type: "System", Name: "Payment"},
			{ID: "3", Type: "Report", Name: "Invoice", Aliases: []string{"Billing Document"}},
		},
		Edges: []Edge{
			{Source: "1", Target: "2", Type: "PROCESSES"},
			{Source: "2", Target: "3", Type: "FEEDS"},
		},
	}
}

func TestLoad(t *testing.T) {
	t.Run("valid description", func(t *testing.T) {
		data := []byte(`{
			"nodes": [
				{"id": "n1", "type": "Entity", "name": "OTP Service", "aliases": ["OTP Verification"]},
				{"id": "n2", "type": "System", "name": "Login Flow"}
			],
			"edges": [
				{"source": "n1", "target": "n2", "type": "VALIDATES"}
			]
		}`)
		g, err := Load(data)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if g.NodeCount() != 2 || g.EdgeCount() != 1 {
			t.Fatalf("got %d nodes, %d edges, want 2 nodes, 1 edge", g.NodeCount(), g.EdgeCount())
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := Load([]byte(`{"nodes": [`))
		if !errors.Is(err, ErrMalformedGraph) {
			t.Fatalf("got error %v, want ErrMalformedGraph", err)
		}
	})

	t.Run("missing nodes array", func(t *testing.T) {
		_, err := Load([]byte(`{"edges": []}`))
		if !errors.Is(err, ErrMalformedGraph) {
			t.Fatalf("got error %v, want ErrMalformedGraph", err)
		}
	})

	t.Run("missing edges array", func(t *testing.T) {
		_, err := Load([]byte(`{"nodes": []}`))
		if !errors.Is(err, ErrMalformedGraph) {
			t.Fatalf("got error %v, want ErrMalformedGraph", err)
		}
	})

	t.Run("duplicate node id", func(t *testing.T) {
		_, err := Build(Description{
			Nodes: []Node{{ID: "a", Name: "A"}, {ID: "a", Name: "A again"}},
			Edges: []Edge{},
		})
		if !errors.Is(err, ErrMalformedGraph) {
			t.Fatalf("got error %v, want ErrMalformedGraph", err)
		}
	})
}

func TestBuildDropsDanglingEdges(t *testing.T) {
	desc := testDescription()
	desc.Edges = append(desc.Edges, Edge{Source: "1", Target: "missing", Type: "FEEDS"})

	g, err := Build(desc)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("got %d edges, want 2 (dangling edge dropped)", g.EdgeCount())
	}

	// No dangling references survive load: every edge endpoint resolves.
	for i := 0; i < g.EdgeCount(); i++ {
		edge := g.Edge(i)
		if _, ok := g.LookupByID(edge.Source); !ok {
			t.Errorf("edge %d source %q not resolvable", i, edge.Source)
		}
		if _, ok := g.LookupByID(edge.Target); !ok {
			t.Errorf("edge %d target %q not resolvable", i, edge.Target)
		}
	}
}

func TestLookupByName(t *testing.T) {
	g, err := Build(testDescription())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"canonical name", "Order", []string{"1"}},
		{"case insensitive", "oRdEr", []string{"1"}},
		{"alias", "Purchase Order", []string{"1"}},
		{"alias with extra whitespace", "  purchase   order ", []string{"1"}},
		{"punctuation collapse", "billing-document", []string{"3"}},
		{"no match", "nonexistent thing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.LookupByName(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("LookupByName(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("LookupByName(%q) = %v, want %v", tt.text, got, tt.want)
				}
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "OTP Verification", "otp verification"},
		{"collapse whitespace", "  OTP \t Verification  ", "otp verification"},
		{"strip punctuation", "maker/checker (4-eyes)", "maker checker 4 eyes"},
		{"empty", "", ""},
		{"only punctuation", "---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.in); got != tt.want {
				t.Fatalf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
