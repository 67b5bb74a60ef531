package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specmerge/specmerge/internal/journal"
	"github.com/specmerge/specmerge/internal/merge"
	"github.com/specmerge/specmerge/internal/proposal"
)

// ProposalArchiveTool handles the proposal_archive MCP tool: the real
// merge. It applies the active proposal's deltas to the specs, records
// each report in the journal, and — when every domain succeeds — marks
// the proposal merged and moves it to history.
type ProposalArchiveTool struct {
	store   proposal.Store
	journal *journal.Store // nil when the journal is unavailable
}

// NewProposalArchiveTool creates a ProposalArchiveTool. journal may be
// nil; merges then proceed unrecorded.
func NewProposalArchiveTool(store proposal.Store, jnl *journal.Store) *ProposalArchiveTool {
	return &ProposalArchiveTool{store: store, journal: jnl}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalArchiveTool) Definition() mcp.Tool {
	return mcp.NewTool("proposal_archive",
		mcp.WithDescription(
			"Apply the active proposal's deltas to the specs. Each domain is "+
				"merged independently; a merge is blocked if its spec diverged "+
				"from the base snapshot unless 'force' is set. When every domain "+
				"merges cleanly the proposal is marked merged and moved to "+
				"history. Run `merge_preview` first.",
		),
		mcp.WithBoolean("force",
			mcp.Description("Apply even when a target spec changed since the proposal's "+
				"base snapshot was captured. Concurrent edits may be overwritten."),
		),
	)
}

// Handle processes the proposal_archive tool call.
func (t *ProposalArchiveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	force := req.GetBool("force", false)

	root, err := findWorkspaceRoot()
	if err != nil {
		return nil, fmt.Errorf("finding workspace root: %w", err)
	}

	active, err := t.store.LoadActive(root)
	if err != nil {
		return nil, fmt.Errorf("loading active proposal: %w", err)
	}
	if active == nil {
		return errorResult("No active proposal to archive. Start one with `proposal_create`.")
	}

	outcomes := runMerges(root, active, active.Domains, merge.Options{Force: force})
	for _, o := range outcomes {
		if o.Report != nil {
			t.record(o.Report)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Merge: %s\n\n", active.ID)
	for _, o := range outcomes {
		if o.Err != nil {
			if userFacingMergeError(o.Err) {
				fmt.Fprintf(&b, "### Domain `%s` — ❌ rejected\n\n%v\n\n", o.Domain, o.Err)
				continue
			}
			return nil, fmt.Errorf("merging %q: %w", o.Domain, o.Err)
		}
		b.WriteString(renderReport(o.Report))
		b.WriteString("\n")
	}

	if !allSucceeded(outcomes) {
		b.WriteString("Some domains did not merge cleanly; the proposal stays " +
			"active. Successful domains have already been written — fix the " +
			"rest and archive again, or use `force: true` for diverged bases.\n")
		return mcp.NewToolResultText(b.String()), nil
	}

	active.Status = proposal.StatusMerged
	active.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := t.store.Save(root, active); err != nil {
		return nil, fmt.Errorf("updating proposal status: %w", err)
	}
	if err := t.store.Archive(root, active.ID); err != nil {
		return nil, fmt.Errorf("archiving proposal: %w", err)
	}

	fmt.Fprintf(&b, "All domains merged. Proposal `%s` moved to history.\n", active.ID)
	return mcp.NewToolResultText(b.String()), nil
}

// record writes one merge report to the journal. Journal failures are
// logged, never surfaced: bookkeeping must not block a merge.
func (t *ProposalArchiveTool) record(rep *merge.Report) {
	if t.journal == nil {
		return
	}

	detail, err := json.Marshal(rep)
	if err != nil {
		log.Printf("WARNING: failed to encode merge report for journal: %v", err)
		detail = nil
	}

	entry := &journal.Entry{
		Change:    rep.Change,
		Domain:    rep.Domain,
		Added:     rep.Applied.Added,
		Modified:  rep.Applied.Modified,
		Removed:   rep.Applied.Removed,
		Conflicts: len(rep.Conflicts),
		Diverged:  rep.Diverged,
		Forced:    rep.Forced,
		DryRun:    rep.DryRun,
		Success:   rep.Success,
		Detail:    string(detail),
	}
	if err := t.journal.Record(entry); err != nil {
		log.Printf("WARNING: failed to record merge report: %v", err)
	}
}
