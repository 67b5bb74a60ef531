// Package delta parses change delta documents into structured operation
// sets and validates them.
//
// A delta document has the same shape as a spec document — YAML
// frontmatter plus a markdown body — with three distinguished sections:
// "Added Requirements", "Modified Requirements", and "Removed
// Requirements". Each section holds requirement blocks in the identical
// shape used by spec documents; removed entries need only the heading
// line.
//
// A Delta is immutable once parsed. Resolving a conflict means authoring
// a new delta, never mutating the old one in place.
package delta

import (
	"fmt"
	"strings"

	"github.com/specmerge/specmerge/internal/specdoc"
)

// Section headings of a delta document body.
const (
	AddedSection    = "Added Requirements"
	ModifiedSection = "Modified Requirements"
	RemovedSection  = "Removed Requirements"
)

// Bucket names used in validation and self-conflict reports.
const (
	BucketAdded    = "added"
	BucketModified = "modified"
	BucketRemoved  = "removed"
)

// Delta is a parsed change proposal against one domain's spec.
type Delta struct {
	Domain string
	Change string

	Added    []specdoc.Requirement
	Modified []specdoc.Requirement
	// Removed entries carry only id and title; their content is ignored.
	Removed []specdoc.Requirement
}

// OpKind tags the operation variant.
type OpKind int

const (
	OpAdd OpKind = iota
	OpModify
	OpRemove
)

// String returns the bucket name of the kind.
func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return BucketAdded
	case OpModify:
		return BucketModified
	case OpRemove:
		return BucketRemoved
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op is one tagged operation. Req is meaningful for OpAdd and OpModify;
// OpRemove carries only the id.
type Op struct {
	Kind OpKind
	ID   string
	Req  specdoc.Requirement
}

// Operations flattens the three buckets into a single tagged list, in
// added, modified, removed order.
func (d *Delta) Operations() []Op {
	ops := make([]Op, 0, len(d.Added)+len(d.Modified)+len(d.Removed))
	for _, r := range d.Added {
		ops = append(ops, Op{Kind: OpAdd, ID: r.ID, Req: r})
	}
	for _, r := range d.Modified {
		ops = append(ops, Op{Kind: OpModify, ID: r.ID, Req: r})
	}
	for _, r := range d.Removed {
		ops = append(ops, Op{Kind: OpRemove, ID: r.ID})
	}
	return ops
}

// RemovedIDs returns the set of ids this delta removes.
func (d *Delta) RemovedIDs() map[string]bool {
	ids := make(map[string]bool, len(d.Removed))
	for _, r := range d.Removed {
		ids[r.ID] = true
	}
	return ids
}

// ValidationError is the fatal error for a structurally invalid delta:
// missing domain, no operations, or empty requirement titles/bodies.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid delta: " + strings.Join(e.Problems, "; ")
}

// SelfConflictError is the fatal error for a delta whose ids span more
// than one operation bucket.
type SelfConflictError struct {
	Conflicts []SelfConflict
}

func (e *SelfConflictError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = fmt.Sprintf("%q in both %s and %s", c.ID, c.Buckets[0], c.Buckets[1])
	}
	return "delta conflicts with itself: " + strings.Join(parts, "; ")
}
