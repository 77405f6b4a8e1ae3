// Package render turns a tailored resume into a Markdown document on disk.
// Conversion to a final file format (PDF etc.) happens outside this system.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"job-tailor/internal/posting"
	"job-tailor/internal/tailoring"
)

type Markdown struct {
	outputDir string
}

func NewMarkdown(outputDir string) *Markdown {
	return &Markdown{outputDir: outputDir}
}

// Render writes the resume as Markdown under the output directory and
// returns the written path. The orchestrator treats any error here as an
// opaque render failure.
func (m *Markdown) Render(resume *tailoring.TailoredResume, post *posting.Posting) (string, error) {
	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.md",
		sanitizeFilename(resume.ProfileID),
		sanitizeFilename(post.Company),
		sanitizeFilename(post.Title),
	)
	path := filepath.Join(m.outputDir, name)

	if err := os.WriteFile(path, []byte(Document(resume)), 0o644); err != nil {
		return "", fmt.Errorf("writing resume: %w", err)
	}
	return path, nil
}

// Document builds the Markdown text for a tailored resume. Sections follow
// the selector's ordering; nothing is reordered or added here.
func Document(resume *tailoring.TailoredResume) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", resume.Candidate.Name)

	var contact []string
	for _, part := range []struct{ label, value string }{
		{"Email", resume.Candidate.Email},
		{"Phone", resume.Candidate.Phone},
		{"LinkedIn", resume.Candidate.LinkedIn},
		{"GitHub", resume.Candidate.GitHub},
	} {
		if part.value != "" {
			contact = append(contact, fmt.Sprintf("**%s:** %s", part.label, part.value))
		}
	}
	if len(contact) > 0 {
		b.WriteString(strings.Join(contact, " | "))
		b.WriteString("\n\n")
	}

	if len(resume.Experience) > 0 {
		b.WriteString("## Experience\n\n")
		for _, exp := range resume.Experience {
			fmt.Fprintf(&b, "### %s at %s\n", exp.Title, exp.Organization)
			writeDates(&b, exp.Location, exp.StartDate, exp.EndDate)
			for _, bullet := range exp.Bullets {
				fmt.Fprintf(&b, "- %s\n", bullet)
			}
			if len(exp.Skills) > 0 {
				fmt.Fprintf(&b, "- **Technologies:** %s\n", strings.Join(exp.Skills, ", "))
			}
			b.WriteString("\n")
		}
	}

	if len(resume.Projects) > 0 {
		b.WriteString("## Projects\n\n")
		for _, proj := range resume.Projects {
			fmt.Fprintf(&b, "### %s\n", proj.Name)
			writeDates(&b, "", proj.StartDate, proj.EndDate)
			for _, bullet := range proj.Bullets {
				fmt.Fprintf(&b, "- %s\n", bullet)
			}
			if len(proj.Skills) > 0 {
				fmt.Fprintf(&b, "- **Technologies:** %s\n", strings.Join(proj.Skills, ", "))
			}
			if proj.URL != "" {
				fmt.Fprintf(&b, "- **Link:** %s\n", proj.URL)
			}
			b.WriteString("\n")
		}
	}

	if len(resume.Skills) > 0 {
		b.WriteString("## Skills\n\n")
		fmt.Fprintf(&b, "%s\n\n", strings.Join(resume.Skills, ", "))
	}

	if len(resume.Education) > 0 {
		b.WriteString("## Education\n\n")
		for _, edu := range resume.Education {
			line := edu.Degree
			if edu.Major != "" {
				line += " in " + edu.Major
			}
			fmt.Fprintf(&b, "- **%s**, %s", line, edu.Institution)
			if edu.EndDate != "" {
				fmt.Fprintf(&b, " (%s)", edu.EndDate)
			}
			b.WriteString("\n")
			if edu.GPA != "" {
				fmt.Fprintf(&b, "  - GPA: %s\n", edu.GPA)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeDates(b *strings.Builder, location, start, end string) {
	if start == "" && location == "" {
		return
	}
	var parts []string
	if location != "" {
		parts = append(parts, fmt.Sprintf("**%s**", location))
	}
	if start != "" {
		if end == "" {
			end = "Present"
		}
		parts = append(parts, fmt.Sprintf("%s - %s", start, end))
	}
	fmt.Fprintf(b, "%s\n", strings.Join(parts, " | "))
}

func sanitizeFilename(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			return -1
		}
	}, strings.TrimSpace(s))
	if mapped == "" {
		return "resume"
	}
	return mapped
}
