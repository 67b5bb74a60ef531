package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specmerge/specmerge/internal/specstore"
)

// SpecViewTool handles the spec_view MCP tool.
type SpecViewTool struct{}

// NewSpecViewTool creates a SpecViewTool.
func NewSpecViewTool() *SpecViewTool {
	return &SpecViewTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *SpecViewTool) Definition() mcp.Tool {
	return mcp.NewTool("spec_view",
		mcp.WithDescription(
			"Show one domain's spec: its metadata, requirement ids with "+
				"fingerprints, and the full document content.",
		),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("The domain slug of the spec to show."),
		),
	)
}

// Handle processes the spec_view tool call.
func (t *SpecViewTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	domain := req.GetString("domain", "")
	if domain == "" {
		return errorResult("'domain' is required")
	}

	root, err := findWorkspaceRoot()
	if err != nil {
		return nil, fmt.Errorf("finding workspace root: %w", err)
	}

	spec, err := specstore.New(root).Read(domain)
	if err != nil {
		if errors.Is(err, specstore.ErrNotFound) {
			return errorResult("No spec for domain %q. Create one with `spec_init`.", domain)
		}
		return nil, fmt.Errorf("reading spec: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Spec: %s\n\n", spec.Domain)
	fmt.Fprintf(&b, "**Fingerprint:** `%s`\n", spec.Fingerprint)
	fmt.Fprintf(&b, "**Last updated:** %s\n", spec.Meta.Updated)
	fmt.Fprintf(&b, "**Requirements:** %d\n\n", len(spec.Requirements))

	if len(spec.Requirements) > 0 {
		b.WriteString("| ID | Title | Fingerprint |\n")
		b.WriteString("|----|-------|-------------|\n")
		for _, r := range spec.Requirements {
			fmt.Fprintf(&b, "| `%s` | %s | `%s` |\n", r.ID, r.Title, r.Fingerprint())
		}
		b.WriteString("\n")
	}

	b.WriteString("## Document\n\n```markdown\n")
	b.WriteString(strings.TrimSpace(spec.Content))
	b.WriteString("\n```\n")

	return mcp.NewToolResultText(b.String()), nil
}
