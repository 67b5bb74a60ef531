package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specmerge/specmerge/internal/delta"
	"github.com/specmerge/specmerge/internal/proposal"
	"github.com/specmerge/specmerge/internal/specdoc"
	"github.com/specmerge/specmerge/internal/specstore"
)

// ProposalCreateTool handles the proposal_create MCP tool.
// It starts a change proposal against one or more domains, capturing a
// fingerprint snapshot of each target spec at authoring time — the base
// the merge engine later checks divergence against.
type ProposalCreateTool struct {
	store proposal.Store
}

// NewProposalCreateTool creates a ProposalCreateTool.
func NewProposalCreateTool(store proposal.Store) *ProposalCreateTool {
	return &ProposalCreateTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *ProposalCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("proposal_create",
		mcp.WithDescription(
			"Start a change proposal against one or more spec domains. "+
				"Captures a fingerprint snapshot of each target spec and writes a "+
				"delta template per domain under changes/<id>/deltas/. "+
				"Fill the templates in, preview with `merge_preview`, then apply "+
				"with `proposal_archive`. Only one active proposal at a time.",
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("Brief description of the change. Used to generate the proposal id. "+
				"Example: 'Add two-factor authentication' → id 'add-two-factor-authentication'."),
		),
		mcp.WithString("domains",
			mcp.Required(),
			mcp.Description("Comma-separated list of target domain slugs, e.g. 'auth,billing'. "+
				"Every domain must already have a spec (see spec_init)."),
		),
	)
}

// Handle processes the proposal_create tool call.
func (t *ProposalCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	domains := splitDomains(req.GetString("domains", ""))

	if strings.TrimSpace(description) == "" {
		return errorResult("'description' is required — briefly describe the change")
	}
	if len(domains) == 0 {
		return errorResult("'domains' is required — list at least one target domain")
	}

	root, err := findWorkspaceRoot()
	if err != nil {
		return nil, fmt.Errorf("finding workspace root: %w", err)
	}

	// Guard: only one active proposal at a time.
	active, err := t.store.LoadActive(root)
	if err != nil {
		return nil, fmt.Errorf("checking active proposals: %w", err)
	}
	if active != nil {
		return errorResult(
			"An active proposal already exists: %q (domains: %s). "+
				"Archive or abandon it before starting a new one.",
			active.ID, strings.Join(active.Domains, ", "),
		)
	}

	// Capture the base snapshot for every target domain.
	specs := specstore.New(root)
	snapshots, err := specs.FingerprintSnapshot(domains)
	if err != nil {
		if errors.Is(err, specstore.ErrNotFound) {
			return errorResult("%v — create the spec first with `spec_init`", err)
		}
		return nil, fmt.Errorf("capturing base snapshot: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	rec := &proposal.Record{
		ID:          specdoc.TitleToID(description),
		Description: description,
		Domains:     domains,
		Snapshots:   snapshots,
		Status:      proposal.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if rec.ID == "" {
		rec.ID = "unnamed-change"
	}

	if err := t.store.Create(root, rec); err != nil {
		return nil, fmt.Errorf("creating proposal: %w", err)
	}

	// Write a delta template per domain for the author to fill in.
	for _, domain := range domains {
		path := proposal.DeltaPath(root, rec.ID, domain)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating deltas directory: %w", err)
		}
		if err := os.WriteFile(path, []byte(delta.Template(domain, rec.ID)), 0o644); err != nil {
			return nil, fmt.Errorf("writing delta template for %q: %w", domain, err)
		}
	}

	var deltaList strings.Builder
	for _, domain := range domains {
		fmt.Fprintf(&deltaList, "  - `%s` (base `%s`)\n",
			proposal.DeltaPath(root, rec.ID, domain), snapshots[domain].BaseFingerprint)
	}

	response := fmt.Sprintf(
		"# Proposal Created\n\n"+
			"**ID:** `%s`\n"+
			"**Description:** %s\n"+
			"**Status:** active\n\n"+
			"## Delta templates\n\n%s\n"+
			"## Next Step\n\n"+
			"Edit each delta document: state added, modified, and removed "+
			"requirements in their sections. Then run `merge_preview` to see "+
			"exactly what would happen, and `proposal_archive` to apply.",
		rec.ID, description, deltaList.String(),
	)
	return mcp.NewToolResultText(response), nil
}
