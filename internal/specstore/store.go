// Package specstore owns reading and writing per-domain spec documents.
//
// One spec lives at specs/<domain>/spec.md under the workspace root. A
// document is YAML frontmatter (domain, title, last-updated stamp)
// followed by a markdown body containing one "## Requirements" section.
// Fingerprints are always derived from the body on read, never stored:
// the frontmatter is excluded so that refreshing the updated stamp can
// never register as a content change.
package specstore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/specmerge/specmerge/internal/specdoc"
	"gopkg.in/yaml.v3"
)

const (
	// SpecsDir is the subdirectory under the workspace root where specs live.
	SpecsDir = "specs"
	// SpecFile is the document filename within a domain directory.
	SpecFile = "spec.md"
	// RequirementsSection is the distinguished section holding requirement blocks.
	RequirementsSection = "Requirements"
)

// Sentinel errors for callers to match with errors.Is.
var (
	ErrNotFound = errors.New("spec not found")
	ErrExists   = errors.New("spec already exists")
)

// Metadata is the frontmatter of a spec document.
type Metadata struct {
	Domain  string `yaml:"domain"`
	Title   string `yaml:"title,omitempty"`
	Updated string `yaml:"updated,omitempty"`
}

// Spec is a parsed spec document with freshly computed fingerprints.
type Spec struct {
	Domain       string
	Meta         Metadata
	Content      string // body below the frontmatter, verbatim
	Fingerprint  string
	Requirements []specdoc.Requirement
}

// RequirementFingerprints returns the id → fingerprint map of the live
// requirement blocks.
func (s *Spec) RequirementFingerprints() map[string]string {
	m := make(map[string]string, len(s.Requirements))
	for _, r := range s.Requirements {
		m[r.ID] = r.Fingerprint()
	}
	return m
}

// Summary is a compact per-domain view used by List.
type Summary struct {
	Domain       string `json:"domain"`
	Fingerprint  string `json:"fingerprint"`
	Requirements int    `json:"requirements"`
}

// Snapshot captures a spec's fingerprints at a point in time, for use as
// a merge base later. Requirements maps requirement id → fingerprint.
type Snapshot struct {
	BaseFingerprint string            `json:"base_fingerprint"`
	Requirements    map[string]string `json:"requirements"`
}

// Store persists spec documents under an explicit workspace root.
// The root is injected at construction so tests build isolated stores.
type Store struct {
	root string
}

// New creates a Store rooted at the given workspace directory.
func New(root string) *Store {
	return &Store{root: root}
}

// SpecPath returns the absolute path of a domain's spec document.
func (s *Store) SpecPath(domain string) string {
	return filepath.Join(s.root, SpecsDir, domain, SpecFile)
}

// Create writes a scaffold spec document for a new domain.
// Fails with ErrExists when the domain already has a spec.
func (s *Store) Create(domain, title string) error {
	if err := validateDomain(domain); err != nil {
		return err
	}
	path := s.SpecPath(domain)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("domain %q: %w", domain, ErrExists)
	}

	if title == "" {
		title = domain
	}
	meta := Metadata{
		Domain:  domain,
		Title:   title,
		Updated: time.Now().UTC().Format(time.RFC3339),
	}
	body := fmt.Sprintf(
		"\n# %s Specification\n\n## Purpose\n\nDescribe the behavior the %s domain must provide.\n\n## Requirements\n", title, domain)

	return s.writeDocument(path, meta, body)
}

// Read loads and parses a domain's spec document, computing its
// fingerprint and requirement list fresh from the current content.
// Fails with ErrNotFound when the domain has no spec.
func (s *Store) Read(domain string) (*Spec, error) {
	data, err := os.ReadFile(s.SpecPath(domain))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("domain %q: %w", domain, ErrNotFound)
		}
		return nil, fmt.Errorf("reading spec for %q: %w", domain, err)
	}

	front, body := specdoc.SplitFrontmatter(string(data))
	var meta Metadata
	if front != "" {
		if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
			return nil, fmt.Errorf("parsing spec metadata for %q: %w", domain, err)
		}
	}
	if meta.Domain == "" {
		meta.Domain = domain
	}

	sec := specdoc.ScanSection(strings.Split(body, "\n"), RequirementsSection)

	return &Spec{
		Domain:       domain,
		Meta:         meta,
		Content:      body,
		Fingerprint:  specdoc.Fingerprint(body),
		Requirements: sec.Requirements(),
	}, nil
}

// Write persists a spec body verbatim. When meta is nil the previously
// stored metadata is preserved. The updated stamp is always refreshed.
func (s *Store) Write(domain, body string, meta *Metadata) error {
	if meta == nil {
		existing, err := s.Read(domain)
		if err != nil {
			return err
		}
		meta = &existing.Meta
	}
	meta.Domain = domain
	meta.Updated = time.Now().UTC().Format(time.RFC3339)

	return s.writeDocument(s.SpecPath(domain), *meta, body)
}

// List returns summaries for every domain in the store. Domains whose
// documents fail to parse are skipped with a warning — one bad domain
// never fails the listing.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, SpecsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading specs directory: %w", err)
	}

	var result []Summary
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		spec, err := s.Read(entry.Name())
		if err != nil {
			log.Printf("WARNING: skipping spec %q: %v", entry.Name(), err)
			continue
		}
		result = append(result, Summary{
			Domain:       spec.Domain,
			Fingerprint:  spec.Fingerprint,
			Requirements: len(spec.Requirements),
		})
	}
	return result, nil
}

// FingerprintSnapshot captures the current base and per-requirement
// fingerprints for each named domain, for use as a later merge base.
func (s *Store) FingerprintSnapshot(domains []string) (map[string]Snapshot, error) {
	snapshots := make(map[string]Snapshot, len(domains))
	for _, domain := range domains {
		spec, err := s.Read(domain)
		if err != nil {
			return nil, err
		}
		snapshots[domain] = Snapshot{
			BaseFingerprint: spec.Fingerprint,
			Requirements:    spec.RequirementFingerprints(),
		}
	}
	return snapshots, nil
}

// writeDocument renders frontmatter + body and writes the file, creating
// parent directories as needed.
func (s *Store) writeDocument(path string, meta Metadata, body string) error {
	front, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling spec metadata: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating spec directory: %w", err)
	}
	doc := specdoc.RenderDocument(string(front), body)
	return os.WriteFile(path, []byte(doc), 0o644)
}

// validateDomain requires the domain to already be in slug form — domains
// are directory names and the matching key for deltas.
func validateDomain(domain string) error {
	if domain == "" || specdoc.TitleToID(domain) != domain {
		return fmt.Errorf("invalid domain %q: must be a lowercase hyphenated slug", domain)
	}
	return nil
}
