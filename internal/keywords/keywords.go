package keywords

import (
	"sort"
	"strings"
	"unicode"
)

// Source tells which side of the match a keyword set was built from.
type Source string

const (
	SourceProfile Source = "profile"
	SourcePosting Source = "posting"
)

// DefaultMinTokenLength drops one-letter noise while keeping short skill
// names such as "go" or "c#".
const DefaultMinTokenLength = 2

var defaultStopWords = []string{
	"the", "and", "for", "with", "you", "your", "our", "are", "will",
	"have", "has", "that", "this", "from", "about", "who", "what",
	"can", "not", "all", "any", "per", "etc",
}

// Set is a normalized lowercase token set. Token order carries no meaning;
// Tokens returns them sorted so results are stable.
type Set struct {
	Source Source
	tokens map[string]struct{}
}

func NewSet(source Source) *Set {
	return &Set{Source: source, tokens: make(map[string]struct{})}
}

func (s *Set) Add(tokens ...string) {
	for _, t := range tokens {
		if t == "" {
			continue
		}
		s.tokens[t] = struct{}{}
	}
}

func (s *Set) Has(token string) bool {
	_, ok := s.tokens[token]
	return ok
}

func (s *Set) Len() int {
	return len(s.tokens)
}

func (s *Set) Tokens() []string {
	out := make([]string, 0, len(s.tokens))
	for t := range s.tokens {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the tokens present in both sets, sorted.
func (s *Set) Intersect(other *Set) []string {
	if s == nil || other == nil {
		return nil
	}
	var out []string
	for t := range s.tokens {
		if other.Has(t) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// Extractor turns free text into keyword sets. A single extractor is
// configured once and shared by the scorer and the selector so both sides
// of a match are normalized identically.
type Extractor struct {
	minLen int
	stop   map[string]struct{}
}

// Config controls token normalization.
type Config struct {
	MinTokenLength int
	// ExtraStopWords are merged into the built-in stop word set.
	ExtraStopWords []string
}

func NewExtractor(cfg Config) *Extractor {
	minLen := cfg.MinTokenLength
	if minLen <= 0 {
		minLen = DefaultMinTokenLength
	}

	stop := make(map[string]struct{}, len(defaultStopWords)+len(cfg.ExtraStopWords))
	for _, w := range defaultStopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	for _, w := range cfg.ExtraStopWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stop[w] = struct{}{}
		}
	}

	return &Extractor{minLen: minLen, stop: stop}
}

// Extract tokenizes the given texts into a single set. It is deterministic
// and free of side effects: the same input always produces the same set.
func (e *Extractor) Extract(source Source, texts ...string) *Set {
	set := NewSet(source)
	for _, text := range texts {
		for _, token := range e.Tokenize(text) {
			set.Add(token)
		}
	}
	return set
}

// Tokenize lowercases the text, splits on word boundaries and filters out
// stop words and short tokens. Duplicates are kept; callers that need set
// semantics use Extract.
func (e *Extractor) Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		// '+' and '#' stay so tokens like "c++" and "c#" survive.
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < e.minLen {
			continue
		}
		if _, stopped := e.stop[f]; stopped {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Normalize collapses a skill or tag name to its canonical lowercase form
// used for verbatim matching.
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), " ")
}
