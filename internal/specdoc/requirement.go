// Package specdoc defines the shared document model for spec and delta
// documents: requirement blocks, deterministic title-derived ids, content
// fingerprints, YAML frontmatter handling, and the single-pass block
// scanner.
//
// Both specstore (spec documents) and delta (change deltas) build on this
// package; neither depends on the other.
package specdoc

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// RequirementHeading is the fixed literal that opens a requirement block.
const RequirementHeading = "### Requirement:"

// Requirement is one titled block of normative behavior. Content holds the
// full block text including the heading line and any nested scenarios,
// with surrounding whitespace trimmed. Scenario sub-blocks are opaque —
// they are never parsed further.
type Requirement struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Body returns the block content without its heading line.
func (r Requirement) Body() string {
	if i := strings.Index(r.Content, "\n"); i >= 0 {
		return strings.TrimSpace(r.Content[i+1:])
	}
	return ""
}

// Fingerprint returns the content fingerprint of the full block text.
func (r Requirement) Fingerprint() string {
	return Fingerprint(r.Content)
}

// fingerprintLen is the number of hex digits kept from the SHA-256 sum.
const fingerprintLen = 16

// Fingerprint computes the truncated SHA-256 fingerprint of the trimmed
// text. Empty or whitespace-only text yields "" — the untracked sentinel.
func Fingerprint(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// TitleToID converts a requirement title into its id — a lowercase,
// punctuation-collapsed slug. The same title always yields the same id;
// ids are the sole matching key between specs and deltas.
//
// Example: "Two-Factor Authentication" → "two-factor-authentication"
//
// Rules:
//   - Lowercase
//   - Spaces, underscores, and hyphens become single hyphens
//   - Other non-alphanumeric characters are removed
//   - Leading/trailing hyphens are trimmed
func TitleToID(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	prevHyphen := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevHyphen = false
		case r == ' ' || r == '_' || r == '-':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
