package document

import (
	"io"
	"strings"

	"github.com/rajarshidattapy/resumeness/internal/latex"
)

// LatexParser maps each \section of a LaTeX resume to a node holding the
// section's plain text.
type LatexParser struct{}

func (p *LatexParser) Parse(r io.Reader, filename string) (*Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc := string(src)

	tree := &Tree{Title: baseTitle(filename)}
	sections := latex.ParseSections(doc)
	if len(sections) == 0 {
		if text := latex.ExtractText(doc); text != "" {
			tree.Nodes = []*Node{{Text: text}}
		}
		return tree, nil
	}

	for _, s := range sections {
		text := strings.TrimSpace(latex.ExtractText(s.Body()))
		if text == "" {
			continue
		}
		tree.Nodes = append(tree.Nodes, &Node{Title: s.Name, Text: text, Page: s.StartLine + 1})
	}
	return tree, nil
}
