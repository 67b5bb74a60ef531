// Package proposal manages change proposals — the authoring-side
// collaborator of the merge engine.
//
// A proposal targets one or more domains. At creation time it captures a
// fingerprint snapshot of every target spec; the snapshot later serves as
// the merge base for divergence detection. The delta documents themselves
// live as markdown files inside the proposal directory, one per domain.
//
// The package contains no merge logic: it persists records and hands the
// engine its inputs.
package proposal

import (
	"fmt"

	"github.com/specmerge/specmerge/internal/specstore"
)

// Status tracks the lifecycle of a proposal.
type Status string

const (
	// StatusActive means the proposal is being authored or awaiting merge.
	StatusActive Status = "active"
	// StatusMerged means every domain's delta was merged successfully.
	StatusMerged Status = "merged"
	// StatusArchived means the proposal was moved to history/.
	StatusArchived Status = "archived"
)

// Record is the root data structure for a proposal, persisted as
// proposal.json inside its change directory.
type Record struct {
	ID          string                        `json:"id"`
	Description string                        `json:"description"`
	Domains     []string                      `json:"domains"`
	Snapshots   map[string]specstore.Snapshot `json:"snapshots"`
	Status      Status                        `json:"status"`
	CreatedAt   string                        `json:"created_at"`
	UpdatedAt   string                        `json:"updated_at"`
}

// Snapshot returns the captured base snapshot for a domain, or an error
// when the proposal never targeted it.
func (r *Record) Snapshot(domain string) (*specstore.Snapshot, error) {
	snap, ok := r.Snapshots[domain]
	if !ok {
		return nil, fmt.Errorf("proposal %q has no snapshot for domain %q", r.ID, domain)
	}
	return &snap, nil
}

// Targets reports whether the proposal includes the given domain.
func (r *Record) Targets(domain string) bool {
	for _, d := range r.Domains {
		if d == domain {
			return true
		}
	}
	return false
}
