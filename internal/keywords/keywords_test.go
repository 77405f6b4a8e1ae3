package keywords

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	e := NewExtractor(Config{})

	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:   "lowercases and splits on word boundaries",
			input:  "Senior Go Developer (Remote)",
			expect: []string{"developer", "go", "remote", "senior"},
		},
		{
			name:   "drops stop words and short tokens",
			input:  "experience with the Go language and c, for real",
			expect: []string{"experience", "go", "language", "real"},
		},
		{
			name:   "keeps c++ and c# tokens",
			input:  "C++ or C# welcome",
			expect: []string{"c#", "c++", "or", "welcome"},
		},
		{
			name:   "collapses duplicates",
			input:  "python python PYTHON",
			expect: []string{"python"},
		},
		{
			name:   "empty input",
			input:  "",
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := e.Extract(SourcePosting, tt.input).Tokens()
			if !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	t.Parallel()

	e := NewExtractor(Config{})
	text := "Build distributed systems in Go, Kubernetes and PostgreSQL."

	first := e.Extract(SourceProfile, text)
	second := e.Extract(SourceProfile, text)

	if !reflect.DeepEqual(first.Tokens(), second.Tokens()) {
		t.Fatalf("same input produced different sets: %v vs %v", first.Tokens(), second.Tokens())
	}
}

func TestExtractorConfig(t *testing.T) {
	t.Parallel()

	e := NewExtractor(Config{
		MinTokenLength: 4,
		ExtraStopWords: []string{"Engineer"},
	})

	got := e.Extract(SourcePosting, "Go engineer builds fast APIs").Tokens()
	expect := []string{"apis", "builds", "fast"}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}
}

func TestSetIntersect(t *testing.T) {
	t.Parallel()

	e := NewExtractor(Config{})
	a := e.Extract(SourcePosting, "python kubernetes microservices")
	b := e.Extract(SourceProfile, "python sql distributed systems")

	if got := a.Intersect(b); !reflect.DeepEqual(got, []string{"python"}) {
		t.Fatalf("expected [python], got %v", got)
	}
	if got := a.Intersect(NewSet(SourceProfile)); got != nil {
		t.Fatalf("expected empty intersection, got %v", got)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	if got := Normalize("  Distributed   Systems "); got != "distributed systems" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}
