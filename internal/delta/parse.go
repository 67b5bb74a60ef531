package delta

import (
	"fmt"
	"strings"

	"github.com/specmerge/specmerge/internal/specdoc"
	"gopkg.in/yaml.v3"
)

// metadata is the frontmatter of a delta document.
type metadata struct {
	Domain string `yaml:"domain"`
	Change string `yaml:"change,omitempty"`
}

// Parse reads a delta document into its structured operation set.
// The body is split into the three named sections; each section's
// requirement blocks are parsed with the same scanner spec documents
// use, tagged with the owning bucket.
//
// Parse only fails on unreadable frontmatter — semantic problems are
// reported by Validate and SelfConflicts so callers can surface all of
// them at once.
func Parse(content string) (*Delta, error) {
	front, body := specdoc.SplitFrontmatter(content)

	var meta metadata
	if front != "" {
		if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
			return nil, fmt.Errorf("parsing delta metadata: %w", err)
		}
	}

	lines := strings.Split(body, "\n")
	return &Delta{
		Domain:   meta.Domain,
		Change:   meta.Change,
		Added:    specdoc.ScanSection(lines, AddedSection).Requirements(),
		Modified: specdoc.ScanSection(lines, ModifiedSection).Requirements(),
		Removed:  specdoc.ScanSection(lines, RemovedSection).Requirements(),
	}, nil
}
