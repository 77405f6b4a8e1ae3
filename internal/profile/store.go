package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"

	"job-tailor/internal/keywords"
)

//go:embed schema/profile.schema.json
var schemaJSON string

// ErrInvalidProfile marks a profile that failed schema validation or
// referential consistency checks. Surfaced before any scoring or tailoring
// is attempted.
var ErrInvalidProfile = errors.New("invalid profile")

// ErrProfileNotFound is returned when the named profile file does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// Store reads profiles from a directory of JSON files, one profile per
// <name>.json file.
type Store struct {
	dir    string
	schema *gojsonschema.Schema
}

func NewStore(dir string) (*Store, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compiling profile schema: %w", err)
	}
	return &Store{dir: dir, schema: schema}, nil
}

// List returns the names of all available profiles, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads and validates the named profile. The returned profile is
// guaranteed schema-valid and referentially consistent, so the engine can
// trust it without re-checking.
func (s *Store) Load(name string) (*Profile, error) {
	path := filepath.Join(s.dir, name+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
		}
		return nil, fmt.Errorf("reading profile %s: %w", name, err)
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, name, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidProfile, name, strings.Join(details, "; "))
	}

	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, name, err)
	}

	if err := checkReferences(&p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, name, err)
	}

	return &p, nil
}

// checkReferences verifies that every skill tag on an experience or project
// entry refers to a skill declared in the profile's skill list.
func checkReferences(p *Profile) error {
	declared := make(map[string]struct{}, len(p.Skills))
	for _, s := range p.Skills {
		declared[keywords.Normalize(s.Name)] = struct{}{}
	}

	check := func(section, owner string, tags []string) error {
		for _, tag := range tags {
			if _, ok := declared[keywords.Normalize(tag)]; !ok {
				return fmt.Errorf("%s %q references undeclared skill %q", section, owner, tag)
			}
		}
		return nil
	}

	for _, exp := range p.Experience {
		if err := check("experience", exp.Title, exp.Skills); err != nil {
			return err
		}
	}
	for _, proj := range p.Projects {
		if err := check("project", proj.Name, proj.Skills); err != nil {
			return err
		}
	}
	return nil
}
