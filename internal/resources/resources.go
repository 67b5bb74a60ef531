// Package resources implements MCP resource handlers for specmerge.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (specmerge://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specmerge/specmerge/internal/proposal"
	"github.com/specmerge/specmerge/internal/specstore"
)

// Handler manages specmerge resource endpoints.
type Handler struct {
	proposals proposal.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(proposals proposal.Store) *Handler {
	return &Handler{proposals: proposals}
}

// workspaceStatus is the JSON shape served by the status resource.
type workspaceStatus struct {
	Specs          []specstore.Summary `json:"specs"`
	ActiveProposal *proposal.Record    `json:"active_proposal,omitempty"`
}

// StatusResource returns the MCP resource definition for workspace status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"specmerge://workspace/status",
		"Spec Workspace Status",
		mcp.WithResourceDescription("Spec domains with fingerprints, plus the active proposal if any"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the current workspace status as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	root, err := findRoot()
	if err != nil {
		return nil, fmt.Errorf("finding workspace root: %w", err)
	}

	specs, err := specstore.New(root).List()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	active, err := h.proposals.LoadActive(root)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	status := workspaceStatus{Specs: specs, ActiveProposal: active}
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
