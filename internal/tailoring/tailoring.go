// Package tailoring selects and orders profile content for one posting.
// It never fabricates text: everything in a tailored resume is a copy of an
// entry from the source profile, at most with a trimmed bullet list.
package tailoring

import (
	"errors"
	"sort"
	"time"

	"job-tailor/internal/keywords"
	"job-tailor/internal/posting"
	"job-tailor/internal/profile"
	"job-tailor/internal/scoring"
)

// ErrEmptyProfile is returned when the profile has no experience and no
// project entries. Tailoring refuses to produce an empty document.
var ErrEmptyProfile = errors.New("profile has no experience or project entries to tailor")

// Limits bound the size of a tailored resume.
type Limits struct {
	MaxExperience int  `mapstructure:"max-experience"`
	MaxProjects   int  `mapstructure:"max-projects"`
	TrimBullets   bool `mapstructure:"trim-bullets"`
}

var DefaultLimits = Limits{MaxExperience: 5, MaxProjects: 3, TrimBullets: true}

// TailoredResume is the ordered document model handed to the renderer.
// It is immutable once built.
type TailoredResume struct {
	PostingID   string               `json:"posting_id"`
	ProfileID   string               `json:"profile_id"`
	GeneratedAt time.Time            `json:"generated_at"`
	Candidate   profile.Contact      `json:"candidate"`
	Experience  []profile.Experience `json:"experience"`
	Projects    []profile.Project    `json:"projects"`
	Skills      []string             `json:"skills"`
	Education   []profile.Education  `json:"education,omitempty"`
}

type Selector struct {
	extractor *keywords.Extractor
	limits    Limits
	tagWeight float64
	now       func() time.Time
}

func NewSelector(extractor *keywords.Extractor, limits Limits, tagWeight float64) *Selector {
	if limits.MaxExperience <= 0 {
		limits.MaxExperience = DefaultLimits.MaxExperience
	}
	if limits.MaxProjects <= 0 {
		limits.MaxProjects = DefaultLimits.MaxProjects
	}
	if tagWeight < 1 {
		tagWeight = scoring.DefaultTagWeight
	}
	return &Selector{
		extractor: extractor,
		limits:    limits,
		tagWeight: tagWeight,
		now:       time.Now,
	}
}

// rankedEntry carries the relevance score and ordering keys for one
// experience or project entry.
type rankedEntry struct {
	index   int
	score   float64
	endDate string
	tags    []string
	bullets []string
}

// Tailor selects the most relevant experience, project and skill entries
// for the posting. The selection is deterministic: relevance descending,
// ties broken by recency, then by original profile order.
func (s *Selector) Tailor(prof *profile.Profile, post *posting.Posting) (*TailoredResume, error) {
	if !prof.HasContent() {
		return nil, ErrEmptyProfile
	}

	postingSet, postingTags := scoring.PostingKeywords(s.extractor, post)

	expEntries := make([]rankedEntry, 0, len(prof.Experience))
	for i, exp := range prof.Experience {
		expEntries = append(expEntries, rankedEntry{
			index:   i,
			endDate: exp.EndDate,
			tags:    exp.Skills,
			bullets: exp.Bullets,
		})
	}
	projEntries := make([]rankedEntry, 0, len(prof.Projects))
	for i, proj := range prof.Projects {
		projEntries = append(projEntries, rankedEntry{
			index:   i,
			endDate: proj.EndDate,
			tags:    proj.Skills,
			bullets: proj.Bullets,
		})
	}

	selectedExp := s.selectEntries(expEntries, postingSet, postingTags, s.limits.MaxExperience)
	selectedProj := s.selectEntries(projEntries, postingSet, postingTags, s.limits.MaxProjects)

	resume := &TailoredResume{
		PostingID:   post.ID,
		ProfileID:   prof.ID,
		GeneratedAt: s.now().UTC(),
		Candidate:   prof.Contact,
		Education:   prof.Education,
	}

	for _, e := range selectedExp {
		exp := prof.Experience[e.index]
		if s.limits.TrimBullets {
			exp.Bullets = s.trimBullets(exp.Bullets, postingSet)
		}
		resume.Experience = append(resume.Experience, exp)
	}
	for _, e := range selectedProj {
		proj := prof.Projects[e.index]
		if s.limits.TrimBullets {
			proj.Bullets = s.trimBullets(proj.Bullets, postingSet)
		}
		resume.Projects = append(resume.Projects, proj)
	}

	resume.Skills = s.selectSkills(prof, resume, postingSet, postingTags)
	return resume, nil
}

// relevance is the weighted fraction of an entry's skill tags and bullet
// tokens that intersect the posting keywords. Exact tag matches against the
// posting's explicit tags weigh more than incidental text overlap.
func (s *Selector) relevance(e rankedEntry, set *keywords.Set, tags map[string]struct{}) float64 {
	var total, matched float64

	for _, tag := range e.tags {
		total += s.tagWeight
		normalized := keywords.Normalize(tag)
		if _, exact := tags[normalized]; exact {
			matched += s.tagWeight
			continue
		}
		if tokensIn(s.extractor.Tokenize(tag), set) {
			matched++
		}
	}

	bulletTokens := s.extractor.Extract(keywords.SourceProfile, e.bullets...)
	for _, token := range bulletTokens.Tokens() {
		total++
		if set.Has(token) {
			matched++
		}
	}

	if total == 0 {
		return 0
	}
	return matched / total
}

// selectEntries ranks and caps one section. When nothing matches at all the
// ranked order degrades to recency, and the top entries are kept anyway so
// an explicit tailoring request still yields a usable section.
func (s *Selector) selectEntries(entries []rankedEntry, set *keywords.Set, tags map[string]struct{}, limit int) []rankedEntry {
	for i := range entries {
		entries[i].score = s.relevance(entries[i], set, tags)
	}

	ranked := make([]rankedEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if ranked[i].endDate != ranked[j].endDate {
			return moreRecent(ranked[i].endDate, ranked[j].endDate)
		}
		return ranked[i].index < ranked[j].index
	})

	selected := make([]rankedEntry, 0, limit)
	for _, e := range ranked {
		if e.score <= 0 {
			continue
		}
		selected = append(selected, e)
		if len(selected) == limit {
			break
		}
	}

	if len(selected) == 0 {
		for _, e := range ranked {
			selected = append(selected, e)
			if len(selected) == limit {
				break
			}
		}
	}
	return selected
}

// trimBullets keeps the bullets whose tokens intersect the posting keywords,
// preserving their original order. An entry never loses all of its bullets.
func (s *Selector) trimBullets(bullets []string, set *keywords.Set) []string {
	var kept []string
	for _, bullet := range bullets {
		for _, token := range s.extractor.Tokenize(bullet) {
			if set.Has(token) {
				kept = append(kept, bullet)
				break
			}
		}
	}
	if len(kept) == 0 && len(bullets) > 0 {
		kept = bullets[:1]
	}
	return kept
}

// selectSkills orders the skill section: skills the posting asks for
// explicitly come first, then skills by how often the selected entries use
// them, then declaration order.
func (s *Selector) selectSkills(prof *profile.Profile, resume *TailoredResume, set *keywords.Set, tags map[string]struct{}) []string {
	frequency := make(map[string]int)
	count := func(entryTags []string) {
		for _, tag := range entryTags {
			frequency[keywords.Normalize(tag)]++
		}
	}
	for _, exp := range resume.Experience {
		count(exp.Skills)
	}
	for _, proj := range resume.Projects {
		count(proj.Skills)
	}

	type rankedSkill struct {
		index    int
		name     string
		explicit bool
		freq     int
	}

	var picked []rankedSkill
	for i, skill := range prof.Skills {
		normalized := keywords.Normalize(skill.Name)
		_, explicit := tags[normalized]
		if !explicit {
			explicit = tokensIn(s.extractor.Tokenize(skill.Name), set)
		}
		freq := frequency[normalized]
		if !explicit && freq == 0 {
			continue
		}
		picked = append(picked, rankedSkill{index: i, name: skill.Name, explicit: explicit, freq: freq})
	}

	sort.SliceStable(picked, func(i, j int) bool {
		if picked[i].explicit != picked[j].explicit {
			return picked[i].explicit
		}
		if picked[i].freq != picked[j].freq {
			return picked[i].freq > picked[j].freq
		}
		return picked[i].index < picked[j].index
	})

	names := make([]string, 0, len(picked))
	for _, skill := range picked {
		names = append(names, skill.name)
	}
	return names
}

// tokensIn reports whether every token is present in the set. Empty token
// lists never match.
func tokensIn(tokens []string, set *keywords.Set) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if !set.Has(t) {
			return false
		}
	}
	return true
}

// moreRecent compares ISO date strings where an empty date means the entry
// is current, which sorts as most recent.
func moreRecent(a, b string) bool {
	if a == "" {
		return true
	}
	if b == "" {
		return false
	}
	return a > b
}
