package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-tailor/internal/posting"
	"job-tailor/internal/profile"
	"job-tailor/internal/tailoring"
)

func sampleResume() *tailoring.TailoredResume {
	return &tailoring.TailoredResume{
		PostingID: "p1",
		ProfileID: "default",
		Candidate: profile.Contact{
			Name:   "Ada Example",
			Email:  "ada@example.com",
			GitHub: "github.com/ada",
		},
		Experience: []profile.Experience{
			{
				Title:        "Data Engineer",
				Organization: "DataCo",
				Location:     "Remote",
				Bullets:      []string{"Built Python pipelines"},
				Skills:       []string{"Python", "SQL"},
				StartDate:    "2021-01",
			},
		},
		Projects: []profile.Project{
			{
				Name:    "ETL Tool",
				Bullets: []string{"Python ETL tool"},
				URL:     "https://example.com/etl",
			},
		},
		Skills: []string{"Python", "SQL"},
		Education: []profile.Education{
			{Degree: "BSc", Major: "Computer Science", Institution: "Example University", EndDate: "2019-06", GPA: "3.8"},
		},
	}
}

func TestDocument(t *testing.T) {
	t.Parallel()

	doc := Document(sampleResume())

	assert.True(t, strings.HasPrefix(doc, "# Ada Example\n"))
	assert.Contains(t, doc, "**Email:** ada@example.com | **GitHub:** github.com/ada")
	assert.Contains(t, doc, "## Experience")
	assert.Contains(t, doc, "### Data Engineer at DataCo")
	assert.Contains(t, doc, "**Remote** | 2021-01 - Present")
	assert.Contains(t, doc, "- Built Python pipelines")
	assert.Contains(t, doc, "- **Technologies:** Python, SQL")
	assert.Contains(t, doc, "## Projects")
	assert.Contains(t, doc, "- **Link:** https://example.com/etl")
	assert.Contains(t, doc, "## Skills\n\nPython, SQL")
	assert.Contains(t, doc, "- **BSc in Computer Science**, Example University (2019-06)")
	assert.Contains(t, doc, "  - GPA: 3.8")
}

func TestDocumentSkipsEmptySections(t *testing.T) {
	t.Parallel()

	resume := &tailoring.TailoredResume{
		ProfileID: "default",
		Candidate: profile.Contact{Name: "Ada Example"},
	}
	doc := Document(resume)

	assert.NotContains(t, doc, "## Experience")
	assert.NotContains(t, doc, "## Projects")
	assert.NotContains(t, doc, "## Skills")
	assert.NotContains(t, doc, "## Education")
}

func TestRender(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewMarkdown(filepath.Join(dir, "out"))

	post := &posting.Posting{ID: "p1", Company: "Example Co.", Title: "Backend / Platform Engineer"}
	path, err := m.Render(sampleResume(), post)
	require.NoError(t, err)

	assert.Equal(t, "default_Example_Co_Backend__Platform_Engineer.md", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Ada Example")
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, out string
	}{
		{"Example Co.", "Example_Co"},
		{"Backend / Platform Engineer", "Backend__Platform_Engineer"},
		{"///", "resume"},
		{"  spaced  ", "spaced"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}
