package delta

import (
	"fmt"

	"github.com/specmerge/specmerge/internal/specdoc"
)

// Validation is the outcome of structural validation.
type Validation struct {
	Valid  bool
	Errors []string
}

// Validate checks the delta's structure: it must target a domain, carry
// at least one operation, and every requirement must have a title.
// Added and modified requirements also need a non-empty body; removed
// entries only need the heading line.
func (d *Delta) Validate() Validation {
	var errs []string

	if d.Domain == "" {
		errs = append(errs, "delta has no domain")
	}
	if len(d.Added)+len(d.Modified)+len(d.Removed) == 0 {
		errs = append(errs, "delta contains no operations")
	}

	errs = append(errs, validateBucket(BucketAdded, d.Added, true)...)
	errs = append(errs, validateBucket(BucketModified, d.Modified, true)...)
	errs = append(errs, validateBucket(BucketRemoved, d.Removed, false)...)

	return Validation{Valid: len(errs) == 0, Errors: errs}
}

func validateBucket(bucket string, reqs []specdoc.Requirement, needBody bool) []string {
	var errs []string
	for _, r := range reqs {
		if r.Title == "" {
			errs = append(errs, fmt.Sprintf("%s requirement with empty title", bucket))
			continue
		}
		if needBody && r.Body() == "" {
			errs = append(errs, fmt.Sprintf("%s requirement %q has no content", bucket, r.Title))
		}
	}
	return errs
}

// SelfConflict reports an id that appears in two operation buckets.
type SelfConflict struct {
	ID      string
	Buckets [2]string
}

// SelfConflicts finds ids spanning more than one bucket. A delta that
// both adds and removes an id, or modifies and removes it, is internally
// contradictory and must be rejected before any spec is read.
func (d *Delta) SelfConflicts() []SelfConflict {
	modified := idSet(d.Modified)
	removed := idSet(d.Removed)

	var conflicts []SelfConflict
	overlap := func(ids []specdoc.Requirement, other map[string]bool, nameA, nameB string) {
		for _, r := range ids {
			if other[r.ID] {
				conflicts = append(conflicts, SelfConflict{
					ID:      r.ID,
					Buckets: [2]string{nameA, nameB},
				})
			}
		}
	}

	overlap(d.Added, modified, BucketAdded, BucketModified)
	overlap(d.Added, removed, BucketAdded, BucketRemoved)
	overlap(d.Modified, removed, BucketModified, BucketRemoved)

	return conflicts
}

func idSet(reqs []specdoc.Requirement) map[string]bool {
	set := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		set[r.ID] = true
	}
	return set
}
