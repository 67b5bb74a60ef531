package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specmerge/specmerge/internal/specstore"
)

// SpecListTool handles the spec_list MCP tool.
type SpecListTool struct{}

// NewSpecListTool creates a SpecListTool.
func NewSpecListTool() *SpecListTool {
	return &SpecListTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *SpecListTool) Definition() mcp.Tool {
	return mcp.NewTool("spec_list",
		mcp.WithDescription(
			"List every spec domain in the workspace with its content "+
				"fingerprint and requirement count. Domains whose documents "+
				"fail to parse are skipped with a warning.",
		),
	)
}

// Handle processes the spec_list tool call.
func (t *SpecListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := findWorkspaceRoot()
	if err != nil {
		return nil, fmt.Errorf("finding workspace root: %w", err)
	}

	summaries, err := specstore.New(root).List()
	if err != nil {
		return nil, fmt.Errorf("listing specs: %w", err)
	}

	if len(summaries) == 0 {
		return mcp.NewToolResultText(
			"No specs found. Create the first one with `spec_init`.",
		), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Specs (%d)\n\n", len(summaries))
	b.WriteString("| Domain | Requirements | Fingerprint |\n")
	b.WriteString("|--------|-------------:|-------------|\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "| `%s` | %d | `%s` |\n", s.Domain, s.Requirements, s.Fingerprint)
	}

	return mcp.NewToolResultText(b.String()), nil
}
