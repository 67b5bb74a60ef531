package specdoc

import "strings"

// --- Single-pass requirement block scanner ---
//
// Requirement blocks never nest, so one pass with an explicit state
// machine is enough — no markup parser needed. States:
//
//	outside → in section (on the "## <name>" heading)
//	in section → in requirement (on a "### Requirement:" heading)
//	in requirement → in requirement (next requirement flushes the previous)
//	any "## " heading closes the section and flushes the open block

// Block is a requirement block located within a document body.
// Start and End are line indexes into the scanned lines: Start is the
// heading line, End is one past the last line belonging to the block
// (up to the next requirement heading, section heading, or EOF).
type Block struct {
	Requirement
	Start int
	End   int
}

// Section is the result of scanning one "## <name>" section.
type Section struct {
	Found  bool
	Blocks []Block
	// Start is the line index of the section heading (-1 if not found).
	Start int
	// End is the line index of the heading that closes the section,
	// or len(lines) when the section runs to the end of the document.
	End int
}

type scanState int

const (
	stateOutside scanState = iota
	stateInSection
	stateInRequirement
)

// IsSectionHeading reports whether a line opens a top-level section.
func IsSectionHeading(line string) bool {
	return strings.HasPrefix(line, "## ")
}

// IsRequirementHeading reports whether a line opens a requirement block.
func IsRequirementHeading(line string) bool {
	return strings.HasPrefix(line, RequirementHeading)
}

// RequirementTitle extracts the title from a requirement heading line.
func RequirementTitle(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, RequirementHeading))
}

// ScanSection locates the "## <name>" section in body lines and returns
// the requirement blocks it contains. Text between blocks, and anything
// outside the section, is never interpreted — callers copy it verbatim.
func ScanSection(lines []string, name string) Section {
	sec := Section{Start: -1, End: len(lines)}
	heading := "## " + name

	state := stateOutside
	blockStart := -1

	flush := func(end int) {
		title := RequirementTitle(lines[blockStart])
		content := strings.TrimSpace(strings.Join(lines[blockStart:end], "\n"))
		sec.Blocks = append(sec.Blocks, Block{
			Requirement: Requirement{
				ID:      TitleToID(title),
				Title:   title,
				Content: content,
			},
			Start: blockStart,
			End:   end,
		})
	}

	for i, line := range lines {
		switch state {
		case stateOutside:
			if strings.TrimSpace(line) == heading {
				sec.Found = true
				sec.Start = i
				state = stateInSection
			}

		case stateInSection:
			switch {
			case IsRequirementHeading(line):
				blockStart = i
				state = stateInRequirement
			case IsSectionHeading(line):
				sec.End = i
				return sec
			}

		case stateInRequirement:
			switch {
			case IsRequirementHeading(line):
				flush(i)
				blockStart = i
			case IsSectionHeading(line):
				flush(i)
				sec.End = i
				return sec
			}
		}
	}

	if state == stateInRequirement {
		flush(len(lines))
	}
	return sec
}

// Requirements returns just the parsed requirements of a section.
func (s Section) Requirements() []Requirement {
	reqs := make([]Requirement, len(s.Blocks))
	for i, b := range s.Blocks {
		reqs[i] = b.Requirement
	}
	return reqs
}
