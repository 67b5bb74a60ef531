package merge

import (
	"strings"

	"github.com/specmerge/specmerge/internal/specdoc"
	"github.com/specmerge/specmerge/internal/specstore"
)

// reconstruct streams the original body into a new document. Text outside
// requirement blocks is copied verbatim and in original order; removed
// blocks are dropped, modified blocks are replaced in place, and added
// blocks are appended at the end of the requirements section — or at the
// document end when no such section exists. Ordering of untouched
// requirements is never altered.
func reconstruct(body string, removes map[string]bool, modifies map[string]specdoc.Requirement, adds []specdoc.Requirement) string {
	lines := strings.Split(body, "\n")
	sec := specdoc.ScanSection(lines, specstore.RequirementsSection)

	var out []string
	cursor := 0

	for _, b := range sec.Blocks {
		// Copy the gap before this block verbatim.
		out = append(out, lines[cursor:b.Start]...)
		cursor = b.End

		if removes[b.ID] {
			// Dropped entirely, including its trailing blank lines.
			continue
		}
		if rep, ok := modifies[b.ID]; ok {
			// Replace the block text in place, keeping the original
			// trailing blank lines so surrounding spacing is untouched.
			trailing := b.End
			for trailing > b.Start && strings.TrimSpace(lines[trailing-1]) == "" {
				trailing--
			}
			out = append(out, strings.Split(rep.Content, "\n")...)
			out = append(out, lines[trailing:b.End]...)
			continue
		}
		out = append(out, lines[b.Start:b.End]...)
	}

	insertAt := len(lines)
	if sec.Found {
		insertAt = sec.End
	}
	out = append(out, lines[cursor:insertAt]...)
	cursor = insertAt

	if len(adds) > 0 {
		// Collapse trailing blank lines at the insertion point, then
		// emit each new block with one blank line of separation.
		for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
			out = out[:len(out)-1]
		}
		for _, r := range adds {
			out = append(out, "")
			out = append(out, strings.Split(r.Content, "\n")...)
		}
		out = append(out, "")
	}

	out = append(out, lines[cursor:]...)
	return strings.Join(out, "\n")
}
