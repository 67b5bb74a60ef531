package delta

import "fmt"

// Template returns scaffold delta text for external authoring tools:
// frontmatter plus the three section headers with example entries.
// Pure function — the merge algorithm never uses it.
func Template(domain, changeID string) string {
	return fmt.Sprintf(`---
domain: %s
change: %s
---

# Delta for %s

Describe the intent of this change, then replace the example entries
below. Delete any section you don't need the contents of — but keep all
three headers.

## Added Requirements

### Requirement: Example New Requirement
The system SHALL describe the new behavior here.

#### Scenario: Example
- WHEN something happens
- THEN the system responds

## Modified Requirements

<!-- Restate the FULL replacement block for each modified requirement,
     keeping its original title so the id still matches. -->

## Removed Requirements

<!-- List only the heading line of each requirement to remove, e.g.
     ### Requirement: Old Feature -->
`, domain, changeID, domain)
}
