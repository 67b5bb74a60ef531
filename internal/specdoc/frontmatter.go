package specdoc

import "strings"

// fence delimits YAML frontmatter at the top of a document.
const fence = "---"

// SplitFrontmatter separates the YAML frontmatter from the document body.
// The frontmatter is the text between an opening "---" on the first line
// and the next "---" line; it is returned with its trailing newline so that
// RenderDocument(front, body) reproduces the original document byte for
// byte. Documents without frontmatter return front == "" and the full
// text as body.
func SplitFrontmatter(doc string) (front, body string) {
	if !strings.HasPrefix(doc, fence+"\n") {
		return "", doc
	}

	rest := doc[len(fence)+1:]
	if idx := strings.Index(rest, "\n"+fence+"\n"); idx >= 0 {
		return rest[:idx+1], rest[idx+len(fence)+2:]
	}
	// Closing fence at end of document with no trailing newline.
	if strings.HasSuffix(rest, "\n"+fence) {
		return rest[:len(rest)-len(fence)], ""
	}
	return "", doc
}

// RenderDocument joins frontmatter and body back into a full document.
// An empty front yields the body unchanged.
func RenderDocument(front, body string) string {
	if front == "" {
		return body
	}
	if !strings.HasSuffix(front, "\n") {
		front += "\n"
	}
	return fence + "\n" + front + fence + "\n" + body
}
