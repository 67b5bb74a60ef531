package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specmerge/specmerge/internal/proposal"
)

// ProposalStatusTool handles the proposal_status MCP tool.
type ProposalStatusTool struct {
	store proposal.Store
}

// NewProposalStatusTool creates a ProposalStatusTool.
func NewProposalStatusTool(store proposal.Store) *ProposalStatusTool {
	return &ProposalStatusTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("proposal_status",
		mcp.WithDescription(
			"Show the active change proposal: its target domains, captured "+
				"base fingerprints, and the state of each delta document. "+
				"Also lists past proposals from history.",
		),
	)
}

// Handle processes the proposal_status tool call.
func (t *ProposalStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := findWorkspaceRoot()
	if err != nil {
		return nil, fmt.Errorf("finding workspace root: %w", err)
	}

	active, err := t.store.LoadActive(root)
	if err != nil {
		return nil, fmt.Errorf("loading active proposal: %w", err)
	}

	var b strings.Builder

	if active == nil {
		b.WriteString("No active proposal. Start one with `proposal_create`.\n")
	} else {
		fmt.Fprintf(&b, "# Proposal: %s\n\n", active.ID)
		fmt.Fprintf(&b, "**Description:** %s\n", active.Description)
		fmt.Fprintf(&b, "**Status:** %s\n", active.Status)
		fmt.Fprintf(&b, "**Created:** %s\n\n", active.CreatedAt)
		b.WriteString("## Domains\n\n")
		for _, domain := range active.Domains {
			snap := active.Snapshots[domain]
			state := "missing"
			if info, err := os.Stat(proposal.DeltaPath(root, active.ID, domain)); err == nil {
				state = fmt.Sprintf("%d bytes", info.Size())
			}
			fmt.Fprintf(&b, "- `%s` — base `%s`, delta: %s\n",
				domain, snap.BaseFingerprint, state)
		}
		b.WriteString("\n")
	}

	all, err := t.store.List(root)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}
	var past []proposal.Record
	for _, rec := range all {
		if rec.Status != proposal.StatusActive {
			past = append(past, rec)
		}
	}
	if len(past) > 0 {
		fmt.Fprintf(&b, "## Past proposals (%d)\n\n", len(past))
		for _, rec := range past {
			fmt.Fprintf(&b, "- `%s` (%s) — %s\n", rec.ID, rec.Status, rec.Description)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}
