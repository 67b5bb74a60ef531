// Package prompts implements MCP prompt handlers for specmerge.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// ChangePrompt handles the specmerge-change MCP prompt.
// It guides the AI through the full propose → edit → preview → merge cycle.
type ChangePrompt struct{}

// NewChangePrompt creates a ChangePrompt.
func NewChangePrompt() *ChangePrompt {
	return &ChangePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ChangePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("specmerge-change",
		mcp.WithPromptDescription(
			"Propose a change to one or more spec domains. Walks through "+
				"creating the proposal, authoring the delta documents, "+
				"previewing the merge, and applying it.",
		),
		mcp.WithArgument("description",
			mcp.ArgumentDescription("Brief description of the change you want to make"),
		),
		mcp.WithArgument("domains",
			mcp.ArgumentDescription("Comma-separated target domains, e.g. 'auth,billing'"),
		),
	)
}

// Handle processes the specmerge-change prompt request.
func (p *ChangePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	description := "a change"
	domains := ""
	if args := req.Params.Arguments; args != nil {
		if d, ok := args["description"]; ok && d != "" {
			description = d
		}
		if d, ok := args["domains"]; ok && d != "" {
			domains = d
		}
	}

	domainLine := "ask me which domains this change targets, then check them with `spec_view`"
	if domains != "" {
		domainLine = fmt.Sprintf("review the current specs for %s with `spec_view`", domains)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Propose spec change: %s", description),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to propose %s to my specs.\n\n"+
						"Please:\n"+
						"1. First %s\n"+
						"2. Run `proposal_create` with the description and target domains\n"+
						"3. Help me fill in each delta document: added requirements get full "+
						"blocks with scenarios, modified requirements restate the complete "+
						"updated block under the same title, removed requirements need only "+
						"the heading\n"+
						"4. Run `merge_preview` and walk me through any conflicts or divergence\n"+
						"5. Once the preview is clean, run `proposal_archive` to apply",
					description, domainLine,
				)),
			},
		},
	}, nil
}
