// Package profile loads and validates the job seeker's structured resume
// data. Profiles are read-only to the rest of the system: the scorer and
// the selector receive them as plain values and never mutate them.
package profile

// Contact is the header block carried verbatim into every tailored resume.
type Contact struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

type Skill struct {
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Proficiency string `json:"proficiency,omitempty"`
}

// Experience is one work entry. Dates are ISO strings (YYYY-MM or
// YYYY-MM-DD); an empty EndDate means the position is current.
type Experience struct {
	Title        string   `json:"title"`
	Organization string   `json:"organization"`
	Location     string   `json:"location,omitempty"`
	Bullets      []string `json:"bullets"`
	Skills       []string `json:"skills,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
}

type Project struct {
	Name      string   `json:"name"`
	Bullets   []string `json:"bullets"`
	Skills    []string `json:"skills,omitempty"`
	URL       string   `json:"url,omitempty"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
}

type Education struct {
	Degree      string `json:"degree"`
	Major       string `json:"major,omitempty"`
	Institution string `json:"institution"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	GPA         string `json:"gpa,omitempty"`
}

type Profile struct {
	ID         string       `json:"id"`
	Contact    Contact      `json:"contact"`
	Skills     []Skill      `json:"skills"`
	Experience []Experience `json:"experience"`
	Projects   []Project    `json:"projects"`
	Education  []Education  `json:"education,omitempty"`
}

// SkillNames returns the declared skill names in profile order.
func (p *Profile) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	return names
}

// HasContent reports whether there is anything to tailor a resume from.
func (p *Profile) HasContent() bool {
	return len(p.Experience) > 0 || len(p.Projects) > 0
}
