package util

import (
	"strings"
	"testing"
)

func TestIsNanoid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"Valid21Chars", "sGvgBXbBcVCjBIKCLS2Os", true},
		{"TooShort", "abc123", false},
		{"TooLong", "sGvgBXbBcVCjBIKCLS2OsX", false},
		{"WithSpace", "sGvgBXbBcVCjBIKCL 2Os", false},
		{"WithComma", "sGvgBXbBcVCjBIKCL,2Os", false},
		{"Empty", "", false},
		{"AllDashes", "---------------------", true},
		{"MixedValid", "Aa0_-Bb1_-Cc2_-Dd3_-E", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := IsNanoid(tc.in)
			if got != tc.want {
				t.Fatalf("IsNanoid(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewResponseID(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		id, err := NewResponseID()
		if err != nil {
			t.Fatalf("NewResponseID() error: %v", err)
		}
		if !strings.HasPrefix(id, "resp_") {
			t.Fatalf("response id %q missing prefix", id)
		}
		if !IsNanoid(strings.TrimPrefix(id, "resp_")) {
			t.Fatalf("response id %q has invalid suffix", id)
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate response id %q", id)
		}
		seen[id] = struct{}{}
	}
}
