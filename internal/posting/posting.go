package posting

import (
	"encoding/json"
	"os"
	"sort"
	"time"
)

// State tracks where a posting sits in the application pipeline.
type State string

const (
	StateNew     State = "new"
	StateScored  State = "scored"
	StateApplied State = "applied"
	StateSkipped State = "skipped"
)

// Valid reports whether s is one of the known pipeline states.
func (s State) Valid() bool {
	switch s {
	case StateNew, StateScored, StateApplied, StateSkipped:
		return true
	}
	return false
}

// Posting is a single job listing. The ID is stable across repeated fetches
// of the same real-world posting, which is what the store keys on.
type Posting struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location,omitempty"`
	URL         string    `json:"url,omitempty"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Category    string    `json:"category,omitempty"`
	PostedAt    time.Time `json:"posted_at,omitempty"`

	State    State   `json:"state"`
	FitScore float64 `json:"fit_score"`
	FitTier  string  `json:"fit_tier,omitempty"`
}

type Postings struct {
	Items []*Posting `json:"items"`
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	for _, item := range p.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (p *Postings) IDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// SortByFit orders postings by persisted fit score descending, falling back
// to ID so the order is stable for equal scores.
func (p *Postings) SortByFit() {
	sort.SliceStable(p.Items, func(i, j int) bool {
		if p.Items[i].FitScore != p.Items[j].FitScore {
			return p.Items[i].FitScore > p.Items[j].FitScore
		}
		return p.Items[i].ID < p.Items[j].ID
	})
}

// GroupByTier buckets postings by their persisted fit tier. Postings that
// were never scored end up under the empty key.
func (p *Postings) GroupByTier() map[string]*Postings {
	groups := make(map[string]*Postings)
	for _, item := range p.Items {
		group, ok := groups[item.FitTier]
		if !ok {
			group = &Postings{}
			groups[item.FitTier] = group
		}
		group.Items = append(group.Items, item)
	}
	return groups
}

// DumpToTmpFile writes the postings as indented JSON to a temp file and
// returns its name.
func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
