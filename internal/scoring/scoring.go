// Package scoring computes how well a posting fits a profile. Scoring is a
// pure computation: the same (profile, posting) pair always yields the same
// result, and nothing here touches the store or the network.
package scoring

import (
	"job-tailor/internal/keywords"
	"job-tailor/internal/posting"
	"job-tailor/internal/profile"
)

// Tier is the coarse fit bucket derived from the continuous score.
// The ordering Low < Medium < High is part of the contract.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// Thresholds map a score to a tier. Boundaries are inclusive: a score
// exactly at a threshold falls into the higher tier.
type Thresholds struct {
	High   float64 `mapstructure:"high"`
	Medium float64 `mapstructure:"medium"`
}

var DefaultThresholds = Thresholds{High: 0.5, Medium: 0.25}

func (t Thresholds) Tier(score float64) Tier {
	switch {
	case score >= t.High:
		return TierHigh
	case score >= t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}

// DefaultTagWeight counts a required tag that matches a profile skill name
// verbatim twice, so exact skill matches outrank incidental text overlap.
const DefaultTagWeight = 2.0

// FitResult is the outcome of scoring one posting against one profile.
// Matched lists the overlapping keywords for explainability.
type FitResult struct {
	PostingID string   `json:"posting_id"`
	ProfileID string   `json:"profile_id"`
	Score     float64  `json:"score"`
	Tier      Tier     `json:"-"`
	TierName  string   `json:"tier"`
	Matched   []string `json:"matched,omitempty"`
}

type Scorer struct {
	extractor  *keywords.Extractor
	thresholds Thresholds
	tagWeight  float64
}

func NewScorer(extractor *keywords.Extractor, thresholds Thresholds, tagWeight float64) *Scorer {
	if tagWeight < 1 {
		tagWeight = DefaultTagWeight
	}
	return &Scorer{extractor: extractor, thresholds: thresholds, tagWeight: tagWeight}
}

// PostingKeywords builds the posting side of the match: the keyword set over
// title, explicit tags and description, plus the normalized tag list used
// for verbatim skill matching.
func PostingKeywords(e *keywords.Extractor, p *posting.Posting) (*keywords.Set, map[string]struct{}) {
	texts := make([]string, 0, len(p.Tags)+2)
	texts = append(texts, p.Title)
	texts = append(texts, p.Tags...)
	texts = append(texts, p.Description)
	set := e.Extract(keywords.SourcePosting, texts...)

	tags := make(map[string]struct{}, len(p.Tags))
	for _, tag := range p.Tags {
		if n := keywords.Normalize(tag); n != "" {
			tags[n] = struct{}{}
		}
	}
	return set, tags
}

// ProfileKeywords builds the profile side: skill names and categories plus
// every experience and project skill tag.
func ProfileKeywords(e *keywords.Extractor, p *profile.Profile) *keywords.Set {
	var texts []string
	for _, s := range p.Skills {
		texts = append(texts, s.Name, s.Category)
	}
	for _, exp := range p.Experience {
		texts = append(texts, exp.Skills...)
	}
	for _, proj := range p.Projects {
		texts = append(texts, proj.Skills...)
	}
	return e.Extract(keywords.SourceProfile, texts...)
}

// Score computes the weighted keyword overlap between posting and profile
// and maps it to a tier. A posting with no extractable keywords scores 0
// and lands in the low tier; that is a degenerate input, not an error.
func (s *Scorer) Score(prof *profile.Profile, post *posting.Posting) *FitResult {
	postingSet, postingTags := PostingKeywords(s.extractor, post)
	profileSet := ProfileKeywords(s.extractor, prof)

	result := &FitResult{
		PostingID: post.ID,
		ProfileID: prof.ID,
		Tier:      TierLow,
		TierName:  TierLow.String(),
	}

	if postingSet.Len() == 0 {
		return result
	}

	matched := postingSet.Intersect(profileSet)
	overlap := float64(len(matched))

	// Required tags present verbatim among the profile's skill names count
	// double toward the overlap.
	skillNames := make(map[string]struct{}, len(prof.Skills))
	for _, skill := range prof.Skills {
		skillNames[keywords.Normalize(skill.Name)] = struct{}{}
	}
	for tag := range postingTags {
		if _, ok := skillNames[tag]; ok {
			overlap += s.tagWeight - 1
		}
	}

	score := overlap / float64(postingSet.Len())
	if score > 1 {
		score = 1
	}

	result.Score = score
	result.Tier = s.thresholds.Tier(score)
	result.TierName = result.Tier.String()
	result.Matched = matched
	return result
}
