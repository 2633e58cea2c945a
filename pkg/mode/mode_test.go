package mode

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantName    string
		wantHops    int
		wantBudget  int
		wantPassage int
	}{
		{"concise", "concise", "concise", 1, 1500, 6},
		{"balanced", "balanced", "balanced", 1, 6000, 10},
		{"deep", "deep", "deep", 2, 20000, 22},
		{"empty defaults to balanced", "", "balanced", 1, 6000, 10},
		{"unknown falls back to balanced", "supersonic", "balanced", 1, 6000, 10},
		{"case insensitive", "DEEP", "deep", 2, 20000, 22},
		{"whitespace trimmed", "  concise ", "concise", 1, 1500, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lookup(tt.in)
			if got.Name != tt.wantName {
				t.Fatalf("Lookup(%q).Name = %q, want %q", tt.in, got.Name, tt.wantName)
			}
			if got.MaxHops != tt.wantHops {
				t.Fatalf("Lookup(%q).MaxHops = %d, want %d", tt.in, got.MaxHops, tt.wantHops)
			}
			if got.TokenBudget != tt.wantBudget {
				t.Fatalf("Lookup(%q).TokenBudget = %d, want %d", tt.in, got.TokenBudget, tt.wantBudget)
			}
			if got.PassageCount != tt.wantPassage {
				t.Fatalf("Lookup(%q).PassageCount = %d, want %d", tt.in, got.PassageCount, tt.wantPassage)
			}
		})
	}
}

func TestProfilesHaveModels(t *testing.T) {
	for _, name := range Names() {
		if Lookup(name).Model == "" {
			t.Fatalf("profile %q has no model", name)
		}
	}
}
