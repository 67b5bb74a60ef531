package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the specmerge-status MCP prompt.
// It instructs the AI to read and present the current workspace state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("specmerge-status",
		mcp.WithPromptDescription(
			"Check the current state of your spec workspace: which domains "+
				"exist, whether a proposal is in flight, and what to do next.",
		),
	)
}

// Handle processes the specmerge-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Spec Workspace Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `spec_list` and `proposal_status` to check my spec workspace.\n\n" +
						"Then:\n" +
						"1. Show me each domain with its requirement count\n" +
						"2. If a proposal is active, summarize its target domains and whether the deltas look filled in\n" +
						"3. If any target spec has diverged from the proposal's base, call it out\n" +
						"4. Tell me exactly what I should do next",
				),
			},
		},
	}, nil
}
