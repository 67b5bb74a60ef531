package tools

import (
	"fmt"
	"os"

	"github.com/specmerge/specmerge/internal/merge"
	"github.com/specmerge/specmerge/internal/proposal"
	"github.com/specmerge/specmerge/internal/specstore"
)

// domainOutcome is one domain's merge result within a proposal run.
// Exactly one of Report and Err is meaningful: fatal merge errors
// (invalid delta, self-conflict, missing spec) produce Err with zero
// spec mutation.
type domainOutcome struct {
	Domain string
	Report *merge.Report
	Err    error
}

// runMerges merges each domain's delta of a proposal, in the proposal's
// domain order. Domains are independent: a fatal error in one never
// stops the others.
func runMerges(root string, rec *proposal.Record, domains []string, opts merge.Options) []domainOutcome {
	engine := merge.New(specstore.New(root))

	outcomes := make([]domainOutcome, 0, len(domains))
	for _, domain := range domains {
		outcome := domainOutcome{Domain: domain}

		src, err := os.ReadFile(proposal.DeltaPath(root, rec.ID, domain))
		if err != nil {
			outcome.Err = fmt.Errorf("reading delta for %q: %w", domain, err)
			outcomes = append(outcomes, outcome)
			continue
		}

		snap, err := rec.Snapshot(domain)
		if err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}

		outcome.Report, outcome.Err = engine.Merge(rec.ID, string(src), domain, snap, opts)
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// allSucceeded reports whether every outcome has a successful report.
func allSucceeded(outcomes []domainOutcome) bool {
	for _, o := range outcomes {
		if o.Err != nil || o.Report == nil || !o.Report.Success {
			return false
		}
	}
	return true
}
