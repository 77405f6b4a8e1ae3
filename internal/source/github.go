// Package source fetches job postings from a SimplifyJobs-style GitHub
// README, whose job listings are HTML tables embedded in the markdown.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"job-tailor/internal/posting"
)

const defaultTimeout = 15 * time.Second

// Config identifies the repository to scrape.
type Config struct {
	Owner  string `mapstructure:"owner"`
	Repo   string `mapstructure:"repo"`
	Branch string `mapstructure:"branch"`
}

var DefaultConfig = Config{
	Owner:  "SimplifyJobs",
	Repo:   "New-Grad-Positions",
	Branch: "dev",
}

type GitHub struct {
	cfg        Config
	logger     *zap.Logger
	HTTPClient *http.Client
}

func NewGitHub(cfg Config, logger *zap.Logger) *GitHub {
	if cfg.Owner == "" {
		cfg = DefaultConfig
	}
	return &GitHub{
		cfg:    cfg,
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

func (g *GitHub) readmeURL() string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/README.md", g.cfg.Owner, g.cfg.Repo, g.cfg.Branch)
}

// Fetch downloads the README and parses its job tables.
func (g *GitHub) Fetch(ctx context.Context) (*posting.Postings, error) {
	url := g.readmeURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	postings, err := Parse(resp.Body, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	g.logger.Debug("parsed postings from source",
		zap.String("url", url),
		zap.Int("count", postings.Len()),
	)
	return postings, nil
}

var emojiPattern = regexp.MustCompile(`[\x{1F300}-\x{1FAFF}\x{2700}-\x{27BF}\x{2600}-\x{26FF}]`)

// Parse extracts job postings from the README's embedded HTML tables. The
// category of each table is taken from the closest preceding h3 heading.
// Posting IDs are UUIDv5 over link and role, so the same real-world posting
// always parses to the same ID.
func Parse(r io.Reader, now time.Time) (*posting.Postings, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	result := &posting.Postings{}
	var lastCompany string

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		category := strings.TrimSpace(table.PrevAllFiltered("h3").First().Text())

		columns := make(map[int]string)
		table.Find("thead th").Each(func(i int, th *goquery.Selection) {
			columns[i] = normalizeHeader(th.Text())
		})
		if len(columns) == 0 {
			return
		}

		table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
			p := &posting.Posting{Category: category, State: posting.StateNew, FitScore: -1}

			tr.Find("td").Each(func(i int, td *goquery.Selection) {
				switch columns[i] {
				case "company":
					company := cleanCell(td.Text())
					// Continuation rows mark the company with an arrow.
					if company == "↳" || company == "" {
						company = lastCompany
					} else {
						lastCompany = company
					}
					p.Company = company
				case "role":
					p.Title = cleanCell(td.Text())
				case "location":
					extra := locationDetails(td)
					td.Find("details").Remove()
					p.Location = cleanCell(td.Text() + " " + extra)
				case "link":
					if href, ok := td.Find("a").First().Attr("href"); ok {
						p.URL = strings.TrimSpace(href)
					}
				case "age":
					p.PostedAt = postedFromAge(cleanCell(td.Text()), now)
				}
			})

			if p.Company == "" || p.Title == "" {
				return
			}
			p.ID = StableID(p.URL, p.Title)
			result.Items = append(result.Items, p)
		})
	})

	return result, nil
}

// StableID derives the de-duplication key for a posting from its
// application link and role.
func StableID(link, role string) string {
	name := strings.ToLower(strings.TrimSpace(link)) + "|" + strings.ToLower(strings.TrimSpace(role))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func normalizeHeader(h string) string {
	switch strings.ToLower(strings.TrimSpace(h)) {
	case "company":
		return "company"
	case "role", "position":
		return "role"
	case "location":
		return "location"
	case "application", "application/link", "apply", "link":
		return "link"
	case "age", "date posted":
		return "age"
	default:
		return strings.ToLower(strings.TrimSpace(h))
	}
}

func cleanCell(s string) string {
	s = emojiPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// locationDetails flattens a <details> block of extra locations, if present.
func locationDetails(td *goquery.Selection) string {
	details := td.Find("details")
	if details.Length() == 0 {
		return ""
	}
	details.Find("summary").Remove()
	return details.Text()
}

var agePattern = regexp.MustCompile(`^(\d+)\s*(d|mo|h)$`)

// postedFromAge converts the README's relative age column ("3d", "1mo")
// into an absolute timestamp relative to the scrape time. Unparseable ages
// leave the timestamp zero.
func postedFromAge(age string, now time.Time) time.Time {
	m := agePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(age)))
	if m == nil {
		return time.Time{}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}
	}
	switch m[2] {
	case "h":
		return now.Add(-time.Duration(n) * time.Hour)
	case "d":
		return now.AddDate(0, 0, -n)
	case "mo":
		return now.AddDate(0, -n, 0)
	}
	return time.Time{}
}
