package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specmerge/specmerge/internal/merge"
	"github.com/specmerge/specmerge/internal/proposal"
)

// MergePreviewTool handles the merge_preview MCP tool. It runs the full
// merge pipeline for the active proposal in dry-run mode: every check
// fires, the report is real, and no spec is written.
type MergePreviewTool struct {
	store proposal.Store
}

// NewMergePreviewTool creates a MergePreviewTool.
func NewMergePreviewTool(store proposal.Store) *MergePreviewTool {
	return &MergePreviewTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *MergePreviewTool) Definition() mcp.Tool {
	return mcp.NewTool("merge_preview",
		mcp.WithDescription(
			"Dry-run the active proposal's deltas against the current specs. "+
				"Shows what each merge would apply, plus any conflicts or "+
				"divergence, without writing anything. Safe to run repeatedly "+
				"while editing the delta documents.",
		),
		mcp.WithString("domain",
			mcp.Description("Preview a single domain instead of all of the proposal's targets."),
		),
	)
}

// Handle processes the merge_preview tool call.
func (t *MergePreviewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := findWorkspaceRoot()
	if err != nil {
		return nil, fmt.Errorf("finding workspace root: %w", err)
	}

	active, err := t.store.LoadActive(root)
	if err != nil {
		return nil, fmt.Errorf("loading active proposal: %w", err)
	}
	if active == nil {
		return errorResult("No active proposal. Start one with `proposal_create`.")
	}

	domains := active.Domains
	if d := req.GetString("domain", ""); d != "" {
		if !active.Targets(d) {
			return errorResult("Proposal %q does not target domain %q (targets: %s).",
				active.ID, d, strings.Join(active.Domains, ", "))
		}
		domains = []string{d}
	}

	outcomes := runMerges(root, active, domains, merge.Options{DryRun: true})

	var b strings.Builder
	fmt.Fprintf(&b, "# Merge Preview: %s\n\n", active.ID)
	for _, o := range outcomes {
		if o.Err != nil {
			if userFacingMergeError(o.Err) {
				fmt.Fprintf(&b, "### Domain `%s` — ❌ rejected\n\n%v\n\n", o.Domain, o.Err)
				continue
			}
			return nil, fmt.Errorf("previewing %q: %w", o.Domain, o.Err)
		}
		b.WriteString(renderReport(o.Report))
		b.WriteString("\n")
	}

	if allSucceeded(outcomes) {
		b.WriteString("All domains merge cleanly. Apply with `proposal_archive`.\n")
	} else {
		b.WriteString("Fix the issues above and preview again. A diverged base " +
			"can be overridden with `proposal_archive` and `force: true`.\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}
