package latex

import "strings"

// ReplaceSection swaps the named section, header included, for newContent.
// An unknown name leaves doc unchanged.
func ReplaceSection(doc, name, newContent string) string {
	for _, s := range ParseSections(doc) {
		if s.Name != name {
			continue
		}
		start := strings.Index(doc, s.Header())
		end := strings.Index(doc, s.Content)
		if start < 0 || end < 0 {
			return doc
		}
		return doc[:start] + newContent + doc[end+len(s.Content):]
	}
	return doc
}

// Template strips the body of every modifiable section from doc, keeping
// section headers and all surrounding boilerplate. Bodies are located by
// exact text; when the same text occurs twice only the first occurrence is
// removed.
func Template(doc string) string {
	tmpl := doc
	for _, s := range Modifiable(ParseSections(doc)) {
		body, trailer := s.split()
		if body == "" {
			continue
		}
		stripped := s.Header()
		if trailer != "" {
			stripped += "\n" + trailer
		}
		tmpl = strings.Replace(tmpl, s.Content, stripped, 1)
	}
	return tmpl
}

// Reconstruct rebuilds doc from its template, inserting each replacement
// directly below the header of the section with the same name. Empty
// replacements and names that cannot be found are skipped.
func Reconstruct(doc string, replacements map[string]string) string {
	out := Template(doc)
	seen := make(map[string]bool)
	for _, s := range ParseSections(doc) {
		repl := replacements[s.Name]
		if repl == "" || seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		header := s.Header()
		out = strings.Replace(out, header, header+"\n"+repl, 1)
	}
	return out
}
