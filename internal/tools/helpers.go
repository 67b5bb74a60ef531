// Package tools implements the MCP tool handlers for specmerge.
//
// Each file holds one tool. Tools receive their dependencies via struct
// fields and expose Definition()/Handle() pairs compatible with mcp-go.
// The spec store and merge engine are constructed per call, after the
// workspace root has been discovered from the caller's working directory.
package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/specmerge/specmerge/internal/delta"
	"github.com/specmerge/specmerge/internal/merge"
	"github.com/specmerge/specmerge/internal/specstore"
)

// WorkspaceDir is the directory under the project root that holds specs,
// pending changes, and history.
const WorkspaceDir = "specmerge"

// findWorkspaceRoot walks up from the current working directory looking
// for an existing specmerge/ directory. If none is found, it returns
// <cwd>/specmerge — tools that create documents will make it on demand.
func findWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	current := dir
	for {
		candidate := filepath.Join(current, WorkspaceDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return filepath.Join(dir, WorkspaceDir), nil
		}
		current = parent
	}
}

// splitDomains parses a comma-separated domain list into a trimmed,
// duplicate-free slice.
func splitDomains(list string) []string {
	seen := map[string]bool{}
	var domains []string
	for _, d := range strings.Split(list, ",") {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		domains = append(domains, d)
	}
	return domains
}

// userFacingMergeError reports whether a merge failure should be shown to
// the author as a tool error (bad delta, unknown domain) rather than
// bubbled up as an internal failure.
func userFacingMergeError(err error) bool {
	var vErr *delta.ValidationError
	var scErr *delta.SelfConflictError
	return errors.As(err, &vErr) ||
		errors.As(err, &scErr) ||
		errors.Is(err, specstore.ErrNotFound)
}

// renderReport formats one merge report as markdown for tool responses.
func renderReport(rep *merge.Report) string {
	var b strings.Builder

	status := "✅ success"
	if !rep.Success {
		status = "❌ failed"
	}
	mode := ""
	if rep.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(&b, "### Domain `%s` — %s%s\n\n", rep.Domain, status, mode)
	fmt.Fprintf(&b, "**Applied:** %d added, %d modified, %d removed\n",
		rep.Applied.Added, rep.Applied.Modified, rep.Applied.Removed)

	if rep.Diverged {
		b.WriteString("**Diverged:** the spec changed since the base snapshot was captured")
		if rep.Forced {
			b.WriteString(" (overwritten by force)")
		}
		b.WriteString("\n")
		for _, d := range rep.Divergence {
			fmt.Fprintf(&b, "  - `%s`: %s\n", d.ID, d.Kind)
		}
	}

	if len(rep.Conflicts) > 0 {
		b.WriteString("**Conflicts (skipped operations):**\n")
		for _, c := range rep.Conflicts {
			fmt.Fprintf(&b, "  - `%s`: %s\n", c.ID, c.Kind)
		}
	}

	return b.String()
}

// errorResult wraps a formatted message as an MCP tool error.
func errorResult(format string, args ...any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}
