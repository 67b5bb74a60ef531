package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specmerge/specmerge/internal/journal"
)

// MergeHistoryTool handles the merge_history MCP tool, reading recent
// merge reports back out of the journal.
type MergeHistoryTool struct {
	journal *journal.Store // nil when the journal is unavailable
}

// NewMergeHistoryTool creates a MergeHistoryTool.
func NewMergeHistoryTool(jnl *journal.Store) *MergeHistoryTool {
	return &MergeHistoryTool{journal: jnl}
}

// Definition returns the MCP tool definition for registration.
func (t *MergeHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("merge_history",
		mcp.WithDescription(
			"Show recent merge reports from the journal: which changes were "+
				"applied to which domains, with counts, conflicts, and divergence.",
		),
		mcp.WithString("domain",
			mcp.Description("Only show merges into this domain."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default 20)."),
		),
	)
}

// Handle processes the merge_history tool call.
func (t *MergeHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.journal == nil {
		return errorResult("The merge journal is unavailable in this session; history cannot be shown.")
	}

	domain := req.GetString("domain", "")
	limit := int(req.GetFloat("limit", 0))

	entries, err := t.journal.Recent(domain, limit)
	if err != nil {
		return nil, fmt.Errorf("reading merge history: %w", err)
	}

	if len(entries) == 0 {
		if domain != "" {
			return mcp.NewToolResultText(fmt.Sprintf("No recorded merges for domain %q.", domain)), nil
		}
		return mcp.NewToolResultText("No recorded merges yet."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Merge History (%d)\n\n", len(entries))
	b.WriteString("| When | Change | Domain | Applied | Conflicts | Result |\n")
	b.WriteString("|------|--------|--------|---------|----------:|--------|\n")
	for _, e := range entries {
		result := "ok"
		if !e.Success {
			result = "failed"
		}
		if e.Diverged {
			result += ", diverged"
			if e.Forced {
				result += " (forced)"
			}
		}
		fmt.Fprintf(&b, "| %s | `%s` | `%s` | +%d ~%d -%d | %d | %s |\n",
			e.CreatedAt, e.Change, e.Domain,
			e.Added, e.Modified, e.Removed, e.Conflicts, result)
	}

	return mcp.NewToolResultText(b.String()), nil
}
