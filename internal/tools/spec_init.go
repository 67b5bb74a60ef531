package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specmerge/specmerge/internal/specstore"
)

// SpecInitTool handles the spec_init MCP tool.
// It scaffolds a new spec document for a domain.
type SpecInitTool struct{}

// NewSpecInitTool creates a SpecInitTool.
func NewSpecInitTool() *SpecInitTool {
	return &SpecInitTool{}
}

// Definition returns the MCP tool definition for registration.
func (t *SpecInitTool) Definition() mcp.Tool {
	return mcp.NewTool("spec_init",
		mcp.WithDescription(
			"Create a new spec document for a domain. "+
				"The domain is a stable lowercase slug (e.g. 'auth', 'billing') and "+
				"gets one long-lived spec.md holding its requirements. "+
				"Fails if the domain already has a spec.",
		),
		mcp.WithString("domain",
			mcp.Required(),
			mcp.Description("The domain slug, e.g. 'auth'. Lowercase letters, digits, hyphens."),
		),
		mcp.WithString("title",
			mcp.Description("Optional human-readable title for the spec. Defaults to the domain."),
		),
	)
}

// Handle processes the spec_init tool call.
func (t *SpecInitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	domain := req.GetString("domain", "")
	title := req.GetString("title", "")

	if domain == "" {
		return errorResult("'domain' is required — the slug identifying the spec")
	}

	root, err := findWorkspaceRoot()
	if err != nil {
		return nil, fmt.Errorf("finding workspace root: %w", err)
	}

	store := specstore.New(root)
	if err := store.Create(domain, title); err != nil {
		if errors.Is(err, specstore.ErrExists) {
			return errorResult("A spec for domain %q already exists. Propose changes to it with `proposal_create` instead.", domain)
		}
		return errorResult("%v", err)
	}

	response := fmt.Sprintf(
		"# Spec Created\n\n"+
			"**Domain:** `%s`\n"+
			"**Path:** `%s`\n\n"+
			"The document has an empty `## Requirements` section. Add requirements "+
			"by creating a change proposal (`proposal_create`) whose delta lists them "+
			"under `## Added Requirements`.",
		domain, store.SpecPath(domain),
	)
	return mcp.NewToolResultText(response), nil
}
