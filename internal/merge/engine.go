// Package merge orchestrates applying a change delta to a domain's spec:
// it parses and validates the delta, checks the live spec for divergence
// against the proposal's base snapshot, detects per-operation conflicts,
// reconstructs the document, and reports the outcome.
//
// The fingerprint divergence check is the engine's entire concurrency
// control — an optimistic compare-and-swap at whole-document granularity.
// Force bypasses it and must be treated as "I accept overwriting
// concurrent changes". The store is written at most once per merge, with
// a fully computed reconstruction; every fatal error leaves the spec
// byte-identical to before the call.
package merge

import (
	"fmt"
	"sort"

	"github.com/specmerge/specmerge/internal/delta"
	"github.com/specmerge/specmerge/internal/specdoc"
	"github.com/specmerge/specmerge/internal/specstore"
)

// Options control a single merge call.
type Options struct {
	// Force applies the delta even when the spec diverged from the base
	// snapshot, overwriting concurrent edits.
	Force bool
	// DryRun executes every step except the final write, so the report
	// is identical to what a real run would produce.
	DryRun bool
}

// Counts tallies the operations that actually applied.
type Counts struct {
	Added    int `json:"added"`
	Modified int `json:"modified"`
	Removed  int `json:"removed"`
}

// ConflictKind classifies a non-fatal per-operation conflict.
type ConflictKind string

const (
	RemoveNonexistent ConflictKind = "remove-nonexistent"
	ModifyNonexistent ConflictKind = "modify-nonexistent"
	AddExisting       ConflictKind = "add-existing"
)

// Conflict is one skipped operation. Conflicts are collected, never
// fatal individually — unaffected operations still apply.
type Conflict struct {
	Kind ConflictKind `json:"kind"`
	ID   string       `json:"id"`
}

// DivergenceKind classifies how a requirement changed since the base
// snapshot was captured.
type DivergenceKind string

const (
	AddedSinceBase    DivergenceKind = "added-since-base"
	ModifiedSinceBase DivergenceKind = "modified-since-base"
	RemovedSinceBase  DivergenceKind = "removed-since-base"
)

// Divergence is one requirement-level difference between the base
// snapshot and the live spec.
type Divergence struct {
	Kind DivergenceKind `json:"kind"`
	ID   string         `json:"id"`
}

// Report is the outcome of one merge call.
type Report struct {
	Change     string       `json:"change,omitempty"`
	Domain     string       `json:"domain"`
	Applied    Counts       `json:"applied"`
	Conflicts  []Conflict   `json:"conflicts,omitempty"`
	Divergence []Divergence `json:"divergence,omitempty"`
	Diverged   bool         `json:"diverged"`
	Forced     bool         `json:"forced,omitempty"`
	DryRun     bool         `json:"dry_run,omitempty"`
	Success    bool         `json:"success"`
}

// Engine applies deltas to specs through a SpecStore. Only the engine
// writes back to the store.
type Engine struct {
	store *specstore.Store
}

// New creates an Engine over the given store.
func New(store *specstore.Store) *Engine {
	return &Engine{store: store}
}

// Merge applies the delta in deltaSource to the named domain's spec.
//
// Structural errors, self-conflicts, and IO failures are returned as
// errors with zero mutation. Divergence without Force returns a report
// with Diverged=true and Success=false, also with zero mutation — the
// caller may refresh the base snapshot and retry, or pass Force.
// Base may be nil, which skips the divergence check entirely.
func (e *Engine) Merge(changeID, deltaSource, domain string, base *specstore.Snapshot, opts Options) (*Report, error) {
	// 1. Parse and validate — terminal before any spec read.
	d, err := delta.Parse(deltaSource)
	if err != nil {
		return nil, err
	}
	if v := d.Validate(); !v.Valid {
		return nil, &delta.ValidationError{Problems: v.Errors}
	}
	if conflicts := d.SelfConflicts(); len(conflicts) > 0 {
		return nil, &delta.SelfConflictError{Conflicts: conflicts}
	}
	if d.Domain != domain {
		return nil, &delta.ValidationError{
			Problems: []string{fmt.Sprintf("delta targets domain %q, expected %q", d.Domain, domain)},
		}
	}

	// 2. Load the live spec.
	spec, err := e.store.Read(domain)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Change: changeID,
		Domain: domain,
		Forced: opts.Force,
		DryRun: opts.DryRun,
	}

	// 3. Divergence check against the base snapshot, when supplied.
	if base != nil && spec.Fingerprint != base.BaseFingerprint {
		report.Diverged = true
		report.Divergence = divergenceSince(base, spec.RequirementFingerprints())
		if !opts.Force {
			return report, nil
		}
	}

	// 4. Per-operation conflict detection. AddExisting is evaluated
	// against the live id set with this delta's own removes subtracted.
	live := make(map[string]bool, len(spec.Requirements))
	for _, r := range spec.Requirements {
		live[r.ID] = true
	}
	removedByDelta := d.RemovedIDs()

	removes := make(map[string]bool)
	modifies := make(map[string]specdoc.Requirement)
	var adds []specdoc.Requirement

	for _, op := range d.Operations() {
		switch op.Kind {
		case delta.OpAdd:
			if live[op.ID] && !removedByDelta[op.ID] {
				report.Conflicts = append(report.Conflicts, Conflict{Kind: AddExisting, ID: op.ID})
				continue
			}
			adds = append(adds, op.Req)
		case delta.OpModify:
			if !live[op.ID] {
				report.Conflicts = append(report.Conflicts, Conflict{Kind: ModifyNonexistent, ID: op.ID})
				continue
			}
			modifies[op.ID] = op.Req
		case delta.OpRemove:
			if !live[op.ID] {
				report.Conflicts = append(report.Conflicts, Conflict{Kind: RemoveNonexistent, ID: op.ID})
				continue
			}
			removes[op.ID] = true
		}
	}

	// 5. Reconstruct the document.
	content := reconstruct(spec.Content, removes, modifies, adds)

	report.Applied = Counts{
		Added:    len(adds),
		Modified: len(modifies),
		Removed:  len(removes),
	}
	report.Success = len(report.Conflicts) == 0 && (!report.Diverged || opts.Force)

	// 6. Persist, unless this is a dry run. Fingerprints are derived on
	// the next read, never cached here.
	if !opts.DryRun {
		if err := e.store.Write(domain, content, nil); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// divergenceSince classifies each requirement-level difference between
// the base snapshot and the live fingerprint map.
func divergenceSince(base *specstore.Snapshot, live map[string]string) []Divergence {
	var result []Divergence

	baseIDs := sortedKeys(base.Requirements)
	for _, id := range baseIDs {
		liveFP, ok := live[id]
		switch {
		case !ok:
			result = append(result, Divergence{Kind: RemovedSinceBase, ID: id})
		case liveFP != base.Requirements[id]:
			result = append(result, Divergence{Kind: ModifiedSinceBase, ID: id})
		}
	}
	for _, id := range sortedKeys(live) {
		if _, ok := base.Requirements[id]; !ok {
			result = append(result, Divergence{Kind: AddedSinceBase, ID: id})
		}
	}

	return result
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
