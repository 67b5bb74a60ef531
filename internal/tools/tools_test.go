package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specmerge/specmerge/internal/journal"
	"github.com/specmerge/specmerge/internal/proposal"
	"github.com/specmerge/specmerge/internal/specstore"
)

const authBody = `
# Auth Specification

## Purpose

Authentication behavior.

## Requirements

### Requirement: User Login
The system SHALL allow login with email and password.

### Requirement: Password Reset
The system SHALL allow password resets via email.
`

// --- Test helpers ---

// setupWorkspace creates a temp dir with a specmerge/ workspace holding a
// populated "auth" spec, and changes cwd to it so findWorkspaceRoot()
// resolves there. Returns the workspace root (the specmerge/ dir).
func setupWorkspace(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	root := filepath.Join(tmpDir, WorkspaceDir)

	store := specstore.New(root)
	if err := store.Create("auth", "Auth"); err != nil {
		t.Fatalf("setup: create spec: %v", err)
	}
	if err := store.Write("auth", authBody, nil); err != nil {
		t.Fatalf("setup: write spec: %v", err)
	}

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("setup: getwd: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("setup: chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	return root
}

// createProposal runs ProposalCreateTool against the workspace and
// returns the new proposal's record.
func createProposal(t *testing.T, root, description, domains string) *proposal.Record {
	t.Helper()
	store := proposal.NewFileStore()
	tool := NewProposalCreateTool(store)

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"description": description,
		"domains":     domains,
	}
	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("proposal_create: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("proposal_create returned tool error: %s", getResultText(result))
	}

	rec, err := store.LoadActive(root)
	if err != nil || rec == nil {
		t.Fatalf("no active proposal after create: %v", err)
	}
	return rec
}

// writeDelta replaces a proposal's delta document for a domain.
func writeDelta(t *testing.T, root, id, domain, content string) {
	t.Helper()
	if err := os.WriteFile(proposal.DeltaPath(root, id, domain), []byte(content), 0o644); err != nil {
		t.Fatalf("writing delta: %v", err)
	}
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

const addSessionTimeoutDelta = `---
domain: auth
change: add-session-timeout
---

## Added Requirements

### Requirement: Session Timeout
The system SHALL expire idle sessions after 30 minutes.
`

// --- helpers.go ---

func TestSplitDomains(t *testing.T) {
	got := splitDomains(" auth, billing ,auth,, ")
	if len(got) != 2 || got[0] != "auth" || got[1] != "billing" {
		t.Errorf("splitDomains = %v", got)
	}
	if got := splitDomains(""); len(got) != 0 {
		t.Errorf("splitDomains(\"\") = %v", got)
	}
}

// --- SpecInitTool ---

func TestSpecInitTool(t *testing.T) {
	root := setupWorkspace(t)
	tool := NewSpecInitTool()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"domain": "billing", "title": "Billing"}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("tool error: %s", getResultText(result))
	}

	spec, err := specstore.New(root).Read("billing")
	if err != nil {
		t.Fatalf("spec not created: %v", err)
	}
	if spec.Meta.Title != "Billing" {
		t.Errorf("title = %q", spec.Meta.Title)
	}
}

func TestSpecInitTool_ExistingDomain(t *testing.T) {
	setupWorkspace(t)
	tool := NewSpecInitTool()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"domain": "auth"}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected tool error for duplicate domain")
	}
}

// --- SpecListTool / SpecViewTool ---

func TestSpecListTool(t *testing.T) {
	setupWorkspace(t)
	tool := NewSpecListTool()

	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "`auth`") || !strings.Contains(text, "| 2 |") {
		t.Errorf("listing = %q", text)
	}
}

func TestSpecViewTool(t *testing.T) {
	setupWorkspace(t)
	tool := NewSpecViewTool()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"domain": "auth"}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "user-login") || !strings.Contains(text, "### Requirement: Password Reset") {
		t.Errorf("view = %q", text)
	}
}

func TestSpecViewTool_Missing(t *testing.T) {
	setupWorkspace(t)
	tool := NewSpecViewTool()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"domain": "ghost"}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected tool error for missing domain")
	}
}

// --- ProposalCreateTool ---

func TestProposalCreateTool(t *testing.T) {
	root := setupWorkspace(t)
	rec := createProposal(t, root, "Add session timeout", "auth")

	if rec.ID != "add-session-timeout" {
		t.Errorf("id = %q", rec.ID)
	}
	if len(rec.Domains) != 1 || rec.Domains[0] != "auth" {
		t.Errorf("domains = %v", rec.Domains)
	}
	snap, err := rec.Snapshot("auth")
	if err != nil || snap.BaseFingerprint == "" {
		t.Errorf("snapshot not captured: %+v, %v", snap, err)
	}

	// A delta template was scaffolded for the domain.
	data, err := os.ReadFile(proposal.DeltaPath(root, rec.ID, "auth"))
	if err != nil {
		t.Fatalf("delta template missing: %v", err)
	}
	if !strings.Contains(string(data), "## Added Requirements") {
		t.Error("template is missing its sections")
	}
}

func TestProposalCreateTool_OneActiveAtATime(t *testing.T) {
	root := setupWorkspace(t)
	createProposal(t, root, "First change", "auth")

	tool := NewProposalCreateTool(proposal.NewFileStore())
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"description": "Second change",
		"domains":     "auth",
	}
	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected tool error when a proposal is already active")
	}
}

func TestProposalCreateTool_UnknownDomain(t *testing.T) {
	setupWorkspace(t)
	tool := NewProposalCreateTool(proposal.NewFileStore())

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{
		"description": "Change to nowhere",
		"domains":     "ghost",
	}
	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected tool error for a domain without a spec")
	}
}

// --- ProposalStatusTool ---

func TestProposalStatusTool(t *testing.T) {
	root := setupWorkspace(t)
	tool := NewProposalStatusTool(proposal.NewFileStore())

	// No active proposal yet.
	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(getResultText(result), "No active proposal") {
		t.Errorf("status = %q", getResultText(result))
	}

	createProposal(t, root, "Add session timeout", "auth")

	result, err = tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "add-session-timeout") || !strings.Contains(text, "`auth`") {
		t.Errorf("status = %q", text)
	}
}

// --- MergePreviewTool ---

func TestMergePreviewTool(t *testing.T) {
	root := setupWorkspace(t)
	rec := createProposal(t, root, "Add session timeout", "auth")
	writeDelta(t, root, rec.ID, "auth", addSessionTimeoutDelta)

	specBefore, _ := specstore.New(root).Read("auth")

	tool := NewMergePreviewTool(proposal.NewFileStore())
	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "dry run") || !strings.Contains(text, "merge cleanly") {
		t.Errorf("preview = %q", text)
	}

	// Preview never writes.
	specAfter, _ := specstore.New(root).Read("auth")
	if specAfter.Content != specBefore.Content {
		t.Error("preview mutated the spec")
	}
}

func TestMergePreviewTool_UntargetedDomain(t *testing.T) {
	root := setupWorkspace(t)
	createProposal(t, root, "Add session timeout", "auth")

	tool := NewMergePreviewTool(proposal.NewFileStore())
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"domain": "billing"}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected tool error for an untargeted domain")
	}
}

func TestMergePreviewTool_InvalidDeltaShownPerDomain(t *testing.T) {
	root := setupWorkspace(t)
	rec := createProposal(t, root, "Bad change", "auth")
	writeDelta(t, root, rec.ID, "auth", "---\ndomain: auth\n---\n## Added Requirements\n")

	tool := NewMergePreviewTool(proposal.NewFileStore())
	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("invalid delta must be reported, not returned: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "rejected") || !strings.Contains(text, "no operations") {
		t.Errorf("preview = %q", text)
	}
}

// --- ProposalArchiveTool ---

func TestProposalArchiveTool(t *testing.T) {
	root := setupWorkspace(t)
	rec := createProposal(t, root, "Add session timeout", "auth")
	writeDelta(t, root, rec.ID, "auth", addSessionTimeoutDelta)

	store := proposal.NewFileStore()
	tool := NewProposalArchiveTool(store, nil)

	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "moved to history") {
		t.Errorf("archive = %q", text)
	}

	// The spec was written.
	spec, _ := specstore.New(root).Read("auth")
	found := false
	for _, r := range spec.Requirements {
		if r.ID == "session-timeout" {
			found = true
		}
	}
	if !found {
		t.Error("merged requirement missing from spec")
	}

	// No proposal is active anymore; the record lives in history.
	active, _ := store.LoadActive(root)
	if active != nil {
		t.Errorf("proposal still active: %+v", active)
	}
	all, _ := store.List(root)
	if len(all) != 1 || all[0].Status != proposal.StatusArchived {
		t.Errorf("list after archive = %+v", all)
	}
}

func TestProposalArchiveTool_DivergenceWithoutForce(t *testing.T) {
	root := setupWorkspace(t)
	rec := createProposal(t, root, "Add session timeout", "auth")
	writeDelta(t, root, rec.ID, "auth", addSessionTimeoutDelta)

	// Concurrent edit after the base snapshot.
	specs := specstore.New(root)
	spec, _ := specs.Read("auth")
	if err := specs.Write("auth", spec.Content+"\nConcurrent edit.\n", nil); err != nil {
		t.Fatal(err)
	}

	store := proposal.NewFileStore()
	tool := NewProposalArchiveTool(store, nil)

	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "Diverged") || !strings.Contains(text, "stays") {
		t.Errorf("archive = %q", text)
	}

	// Proposal stays active; spec untouched by the blocked merge.
	active, _ := store.LoadActive(root)
	if active == nil {
		t.Fatal("proposal should still be active after a blocked merge")
	}
	after, _ := specs.Read("auth")
	if strings.Contains(after.Content, "Session Timeout") {
		t.Error("blocked merge wrote the delta anyway")
	}
}

func TestProposalArchiveTool_Force(t *testing.T) {
	root := setupWorkspace(t)
	rec := createProposal(t, root, "Add session timeout", "auth")
	writeDelta(t, root, rec.ID, "auth", addSessionTimeoutDelta)

	specs := specstore.New(root)
	spec, _ := specs.Read("auth")
	if err := specs.Write("auth", spec.Content+"\nConcurrent edit.\n", nil); err != nil {
		t.Fatal(err)
	}

	tool := NewProposalArchiveTool(proposal.NewFileStore(), nil)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"force": true}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(getResultText(result), "moved to history") {
		t.Errorf("archive = %q", getResultText(result))
	}

	after, _ := specs.Read("auth")
	if !strings.Contains(after.Content, "Session Timeout") {
		t.Error("forced merge did not apply")
	}
}

func TestProposalArchiveTool_RecordsJournal(t *testing.T) {
	root := setupWorkspace(t)
	rec := createProposal(t, root, "Add session timeout", "auth")
	writeDelta(t, root, rec.ID, "auth", addSessionTimeoutDelta)

	jnl, err := journal.New(journal.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("journal.New: %v", err)
	}
	defer func() { _ = jnl.Close() }()

	tool := NewProposalArchiveTool(proposal.NewFileStore(), jnl)
	if _, err := tool.Handle(context.Background(), mcp.CallToolRequest{}); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	entries, err := jnl.Recent("auth", 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d journal entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Change != "add-session-timeout" || e.Added != 1 || !e.Success {
		t.Errorf("entry = %+v", e)
	}
	if !strings.Contains(e.Detail, `"domain":"auth"`) {
		t.Errorf("detail = %q", e.Detail)
	}
}

// --- MergeHistoryTool ---

func TestMergeHistoryTool_NilJournal(t *testing.T) {
	setupWorkspace(t)
	tool := NewMergeHistoryTool(nil)

	result, err := tool.Handle(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("expected tool error when the journal is unavailable")
	}
}

func TestMergeHistoryTool(t *testing.T) {
	setupWorkspace(t)
	jnl, err := journal.New(journal.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("journal.New: %v", err)
	}
	defer func() { _ = jnl.Close() }()

	if err := jnl.Record(&journal.Entry{
		Change: "add-2fa", Domain: "auth", Added: 1, Success: true,
	}); err != nil {
		t.Fatal(err)
	}

	tool := NewMergeHistoryTool(jnl)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"domain": "auth", "limit": float64(5)}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "add-2fa") || !strings.Contains(text, "+1 ~0 -0") {
		t.Errorf("history = %q", text)
	}
}
