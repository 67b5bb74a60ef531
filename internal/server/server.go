// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools/prompts/resources that depend on abstractions.
// No business logic lives here — only wiring.
package server

import (
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/specmerge/specmerge/internal/journal"
	"github.com/specmerge/specmerge/internal/prompts"
	"github.com/specmerge/specmerge/internal/proposal"
	"github.com/specmerge/specmerge/internal/resources"
	"github.com/specmerge/specmerge/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the journal's database connection
// and must be called on shutdown (typically via defer). It is always
// non-nil and safe to call even if journal init failed.
func New() (*server.MCPServer, func(), error) {
	s := server.NewMCPServer(
		"specmerge",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register spec tools ---

	specInit := tools.NewSpecInitTool()
	s.AddTool(specInit.Definition(), specInit.Handle)

	specList := tools.NewSpecListTool()
	s.AddTool(specList.Definition(), specList.Handle)

	specView := tools.NewSpecViewTool()
	s.AddTool(specView.Definition(), specView.Handle)

	// --- Journal ---
	//
	// The journal is an independent subsystem: if it fails to initialize,
	// merges still work. We log a warning and continue — archive runs
	// unrecorded and merge_history reports unavailability.

	cleanup := noop
	jnl, jnlErr := journal.New(journal.DefaultConfig())
	if jnlErr != nil {
		log.Printf("WARNING: merge journal disabled: %v", jnlErr)
		jnl = nil
	} else {
		cleanup = func() {
			if err := jnl.Close(); err != nil {
				log.Printf("WARNING: journal close: %v", err)
			}
		}
	}

	// --- Register proposal and merge tools ---

	proposalStore := proposal.NewFileStore()

	proposalCreate := tools.NewProposalCreateTool(proposalStore)
	s.AddTool(proposalCreate.Definition(), proposalCreate.Handle)

	proposalStatus := tools.NewProposalStatusTool(proposalStore)
	s.AddTool(proposalStatus.Definition(), proposalStatus.Handle)

	mergePreview := tools.NewMergePreviewTool(proposalStore)
	s.AddTool(mergePreview.Definition(), mergePreview.Handle)

	proposalArchive := tools.NewProposalArchiveTool(proposalStore, jnl)
	s.AddTool(proposalArchive.Definition(), proposalArchive.Handle)

	mergeHistory := tools.NewMergeHistoryTool(jnl)
	s.AddTool(mergeHistory.Definition(), mergeHistory.Handle)

	// --- Register prompts ---

	changePrompt := prompts.NewChangePrompt()
	s.AddPrompt(changePrompt.Definition(), changePrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(proposalStore)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	return s, cleanup, nil
}

// noop is a no-op cleanup function used as the default when the journal
// is disabled or hasn't been initialized.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use specmerge effectively.
func serverInstructions() string {
	return `You have access to specmerge, a spec workspace MCP server.

## What specmerge does

specmerge keeps one living specification document per domain under
specmerge/specs/<domain>/spec.md. Changes to specs are never edited in
place: they flow through delta documents that state exactly which
requirements are added, modified, or removed, and a merge engine applies
them with conflict and divergence detection.

## Document model

A spec document has YAML frontmatter (domain, title, updated) and a
'## Requirements' section holding '### Requirement: <Title>' blocks.
Each requirement's id derives from its title (lowercased, punctuation
stripped, spaces to hyphens) — so renaming a title changes the id.
Scenario sub-blocks ('#### Scenario: ...') belong to their requirement
and travel with it.

A delta document has frontmatter (domain, change) and three sections:
'## Added Requirements', '## Modified Requirements', and
'## Removed Requirements'. Added and modified entries carry the full
requirement block (heading plus body); removed entries need only the
heading. A modified block REPLACES the whole existing block, so always
restate the complete updated text. The same requirement may appear in
only one section.

## Workflow

1. spec_init — create a domain's spec, then edit it to add requirements
2. spec_list / spec_view — inspect what exists
3. proposal_create — start a change: captures base fingerprints and
   writes a delta template per target domain
4. Fill in the delta documents (this is YOUR job — write real
   requirement blocks, never placeholders)
5. merge_preview — dry-run: shows applied counts, conflicts, divergence
6. proposal_archive — the real merge; pass force=true only after the
   user confirms overwriting a diverged spec
7. merge_history — what was merged, when, with what outcome

## Important rules

- Only ONE active proposal at a time
- Preview before archiving, always
- A conflict (modifying or removing a requirement that does not exist,
  or adding one that already does) skips that operation — fix the delta
  rather than forcing
- Divergence means the spec changed under the proposal since its base
  snapshot was captured; re-check the delta against the current spec
  before suggesting force
- Never invent requirement ids: read the spec with spec_view and use
  the exact titles`
}
