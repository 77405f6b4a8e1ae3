package logger

import "testing"

func TestNew(t *testing.T) {
	t.Parallel()

	for _, json := range []bool{true, false} {
		for _, debug := range []bool{true, false} {
			l, err := New(json, debug)
			if err != nil {
				t.Fatalf("New(%v, %v) returned error: %v", json, debug, err)
			}
			if l == nil {
				t.Fatalf("New(%v, %v) returned nil logger", json, debug)
			}
		}
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "backend engineer",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "intern",
			limit:  20,
			expect: "intern",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "senior backend engineer",
			limit:  6,
			expect: "senior...",
		},
		{
			name:   "trims surrounding whitespace",
			input:  "  spaced  ",
			limit:  3,
			expect: "spa...",
		},
		{
			name:   "counts runes, not bytes",
			input:  "développeur",
			limit:  4,
			expect: "déve...",
		},
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
