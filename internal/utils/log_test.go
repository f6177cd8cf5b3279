package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "no budget", input: "Senior Go Engineer", limit: 0, expect: ""},
		{name: "fits", input: "Senior Go Engineer", limit: 40, expect: "Senior Go Engineer"},
		{name: "cut", input: "Senior Go Engineer", limit: 9, expect: "Senior Go..."},
		{name: "multi line prompt", input: "Skills:\n  - go\n  - kafka\n", limit: 40, expect: "Skills: - go - kafka"},
		{name: "runes not bytes", input: "Café für Entwickler", limit: 4, expect: "Café..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
