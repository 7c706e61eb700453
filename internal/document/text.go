package document

import (
	"bufio"
	"io"
	"strings"
)

// TextParser splits plain text into blank-line separated paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tree := &Tree{Title: baseTitle(filename)}
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			tree.Nodes = append(tree.Nodes, &Node{Text: current.String()})
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return tree, nil
}
