// Package latex splits resume documents into \section blocks, classifies
// which blocks hold editable resume content, and puts documents back
// together after those blocks have been rewritten.
package latex

import (
	"regexp"
	"strings"
)

// Section is a contiguous run of source lines starting at a \section marker.
// Content includes the header line. Line numbers are zero-based and EndLine
// is inclusive.
type Section struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// Both \section{...} and the unnumbered \section*{...} start a section.
var (
	sectionRe = regexp.MustCompile(`^\\section\*?\{([^}]+)\}`)
	endDocRe  = regexp.MustCompile(`(?m)^[ \t]*\\end\{document\}`)
)

// ModifiableLabels are the resume headings whose sections carry content that
// may be rewritten. Order decides which label a heading is attributed to.
var ModifiableLabels = []string{
	"Professional Experience",
	"Experience",
	"Projects",
	"Skills",
	"Technical Skills",
	"Education",
	"Achievements",
	"Certifications",
}

// ParseSections scans doc line by line and returns its sections in order.
// Text before the first marker belongs to no section.
func ParseSections(doc string) []Section {
	lines := strings.Split(doc, "\n")
	sections := []Section{}

	var cur *Section
	for i, line := range lines {
		m := sectionRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if cur != nil {
			cur.EndLine = i - 1
			cur.Content = strings.Join(lines[cur.StartLine:i], "\n")
			sections = append(sections, *cur)
		}
		cur = &Section{Name: m[1], StartLine: i, EndLine: -1}
	}
	if cur != nil {
		cur.EndLine = len(lines) - 1
		cur.Content = strings.Join(lines[cur.StartLine:], "\n")
		sections = append(sections, *cur)
	}
	return sections
}

// Header returns the section's first line.
func (s Section) Header() string {
	header, _, _ := strings.Cut(s.Content, "\n")
	return header
}

// Body returns the section content without its header line. A closing
// \end{document} and anything after it is document boilerplate and is not
// part of the body.
func (s Section) Body() string {
	body, _ := s.split()
	return body
}

// split separates the text after the header into body and trailer.
func (s Section) split() (body, trailer string) {
	_, rest, found := strings.Cut(s.Content, "\n")
	if !found {
		return "", ""
	}
	loc := endDocRe.FindStringIndex(rest)
	switch {
	case loc == nil:
		return rest, ""
	case loc[0] == 0:
		return "", rest
	default:
		// loc[0]-1 is the newline that ends the last body line.
		return rest[:loc[0]-1], rest[loc[0]:]
	}
}

// Label reports the first modifiable label contained in name, compared
// case-insensitively.
func Label(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, label := range ModifiableLabels {
		if strings.Contains(lower, strings.ToLower(label)) {
			return label, true
		}
	}
	return "", false
}

// IsModifiable reports whether a section heading names editable content.
func IsModifiable(name string) bool {
	_, ok := Label(name)
	return ok
}

// Modifiable filters sections down to the editable ones, in document order.
// When several sections share a name only the last one is kept.
func Modifiable(sections []Section) []Section {
	last := make(map[string]int, len(sections))
	for i, s := range sections {
		last[s.Name] = i
	}
	out := []Section{}
	for i, s := range sections {
		if last[s.Name] == i && IsModifiable(s.Name) {
			out = append(out, s)
		}
	}
	return out
}

// ModifiableSections returns the editable sections of doc keyed by name.
func ModifiableSections(doc string) map[string]Section {
	out := make(map[string]Section)
	for _, s := range Modifiable(ParseSections(doc)) {
		out[s.Name] = s
	}
	return out
}
