package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-tailor/internal/keywords"
	"job-tailor/internal/posting"
	"job-tailor/internal/profile"
)

func testProfile(skills ...string) *profile.Profile {
	p := &profile.Profile{ID: "default"}
	for _, s := range skills {
		p.Skills = append(p.Skills, profile.Skill{Name: s})
	}
	return p
}

func newTestScorer() *Scorer {
	return NewScorer(keywords.NewExtractor(keywords.Config{}), DefaultThresholds, DefaultTagWeight)
}

func TestScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prof    *profile.Profile
		post    *posting.Posting
		score   float64
		tier    Tier
		matched []string
	}{
		{
			name: "tag match counts double",
			prof: testProfile("Python", "SQL", "Distributed Systems"),
			post: &posting.Posting{
				ID:          "p1",
				Tags:        []string{"Python", "Kubernetes"},
				Description: "python microservices",
			},
			// posting keywords: python, kubernetes, microservices. One
			// overlap plus a verbatim skill tag gives 2/3.
			score:   2.0 / 3.0,
			tier:    TierHigh,
			matched: []string{"python"},
		},
		{
			name: "score at the high threshold lands high",
			prof: testProfile("Python"),
			post: &posting.Posting{
				ID:    "p2",
				Title: "Python Kubernetes",
			},
			score:   0.5,
			tier:    TierHigh,
			matched: []string{"python"},
		},
		{
			name: "score at the medium threshold lands medium",
			prof: testProfile("Rust"),
			post: &posting.Posting{
				ID:    "p3",
				Title: "rust alpha beta gamma",
			},
			score:   0.25,
			tier:    TierMedium,
			matched: []string{"rust"},
		},
		{
			name: "no overlap scores zero",
			prof: testProfile("Haskell"),
			post: &posting.Posting{
				ID:    "p4",
				Title: "Forklift Operator",
			},
			score: 0,
			tier:  TierLow,
		},
		{
			name:  "posting without keywords is degenerate, not an error",
			prof:  testProfile("Python"),
			post:  &posting.Posting{ID: "p5"},
			score: 0,
			tier:  TierLow,
		},
		{
			name: "score is clamped to one",
			prof: testProfile("Go"),
			post: &posting.Posting{
				ID:   "p6",
				Tags: []string{"Go"},
			},
			score:   1,
			tier:    TierHigh,
			matched: []string{"go"},
		},
	}

	s := newTestScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := s.Score(tt.prof, tt.post)

			require.Equal(t, tt.post.ID, got.PostingID)
			require.Equal(t, tt.prof.ID, got.ProfileID)
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.Equal(t, tt.tier, got.Tier)
			assert.Equal(t, tt.tier.String(), got.TierName)
			assert.Equal(t, tt.matched, got.Matched)
		})
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()

	s := newTestScorer()
	prof := testProfile("Go", "PostgreSQL", "Kubernetes")
	post := &posting.Posting{
		ID:          "p1",
		Title:       "Backend Engineer",
		Tags:        []string{"Go", "gRPC"},
		Description: "Go services on Kubernetes backed by PostgreSQL.",
	}

	first := s.Score(prof, post)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Score(prof, post))
	}
}

func TestScoreMonotonicity(t *testing.T) {
	t.Parallel()

	// Adding a matching skill to the profile never lowers the score of the
	// same posting.
	s := newTestScorer()
	post := &posting.Posting{
		ID:    "p1",
		Title: "Go Kubernetes PostgreSQL Terraform",
	}

	skills := []string{"Go", "Kubernetes", "PostgreSQL", "Terraform"}
	prev := s.Score(testProfile(), post).Score
	for i := range skills {
		cur := s.Score(testProfile(skills[:i+1]...), post).Score
		require.GreaterOrEqual(t, cur, prev, "adding %q lowered the score", skills[i])
		prev = cur
	}
	assert.InDelta(t, 1.0, prev, 1e-9)
}

func TestTierBoundaries(t *testing.T) {
	t.Parallel()

	th := DefaultThresholds
	tests := []struct {
		score float64
		tier  Tier
	}{
		{0, TierLow},
		{0.24, TierLow},
		{0.25, TierMedium},
		{0.49, TierMedium},
		{0.5, TierHigh},
		{1, TierHigh},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.tier, th.Tier(tt.score))
		})
	}
}
