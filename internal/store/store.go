// Package store persists postings and their pipeline state in SQLite.
// The single-connection setup serializes writes, so there are never two
// concurrent writers to the same record.
package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"job-tailor/internal/posting"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned when no posting with the requested ID exists.
var ErrNotFound = errors.New("posting not found")

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the postings database in dataDir and applies
// pending migrations. Pass ":memory:" as dataDir for an in-memory database
// (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "postings.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single connection avoids "database is locked" errors and serializes
	// state writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&applied); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if applied > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// Upsert inserts the posting or refreshes its descriptive fields if the ID
// already exists. Pipeline state and fit columns are owned by SetState and
// SetFit and survive re-ingestion, so scraping the same feed twice never
// duplicates a posting or resets its progress.
func (s *Store) Upsert(p *posting.Posting) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	state := p.State
	if state == "" {
		state = posting.StateNew
	}

	postedAt := ""
	if !p.PostedAt.IsZero() {
		postedAt = p.PostedAt.UTC().Format(time.RFC3339)
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.Exec(`
		INSERT INTO postings (id, title, company, location, url, description, tags, category, posted_at, state, fit_score, fit_tier, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			location = excluded.location,
			url = excluded.url,
			description = excluded.description,
			tags = excluded.tags,
			category = excluded.category,
			posted_at = excluded.posted_at,
			updated_at = excluded.updated_at`,
		p.ID, p.Title, p.Company, p.Location, p.URL, p.Description, string(tags),
		p.Category, postedAt, string(state), p.FitScore, p.FitTier, now, now,
	)
	return err
}

func (s *Store) Get(id string) (*posting.Posting, error) {
	row := s.db.QueryRow(`
		SELECT id, title, company, location, url, description, tags, category, posted_at, state, fit_score, fit_tier
		FROM postings WHERE id = ?`, id)

	p, err := scanPosting(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns postings ordered by fit score descending, then by ID.
// An empty state returns everything.
func (s *Store) List(state posting.State) (*posting.Postings, error) {
	query := `
		SELECT id, title, company, location, url, description, tags, category, posted_at, state, fit_score, fit_tier
		FROM postings`
	var args []any
	if state != "" {
		query += " WHERE state = ?"
		args = append(args, string(state))
	}
	query += " ORDER BY fit_score DESC, id ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &posting.Postings{}
	for rows.Next() {
		p, err := scanPosting(rows.Scan)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, p)
	}
	return result, rows.Err()
}

// SetState moves a posting to the given pipeline state.
func (s *Store) SetState(id string, state posting.State) error {
	if !state.Valid() {
		return fmt.Errorf("invalid posting state: %s", state)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`UPDATE postings SET state = ?, updated_at = ? WHERE id = ?`, string(state), now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// SetFit records a scoring result and moves the posting to the scored state
// in one write.
func (s *Store) SetFit(id string, score float64, tier string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(`
		UPDATE postings SET fit_score = ?, fit_tier = ?, state = ?, updated_at = ? WHERE id = ?`,
		score, tier, string(posting.StateScored), now, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func scanPosting(scan func(dest ...any) error) (*posting.Posting, error) {
	var p posting.Posting
	var tags, postedAt, state string
	if err := scan(&p.ID, &p.Title, &p.Company, &p.Location, &p.URL, &p.Description,
		&tags, &p.Category, &postedAt, &state, &p.FitScore, &p.FitTier); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags for posting %s: %w", p.ID, err)
	}
	if postedAt != "" {
		t, err := time.Parse(time.RFC3339, postedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing posted_at for posting %s: %w", p.ID, err)
		}
		p.PostedAt = t
	}
	p.State = posting.State(state)
	return &p, nil
}
