package document

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser turns each data row into its own node, labelled by the first
// column. Exported skill matrices and achievement logs come in this shape.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Tree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	tree := &Tree{Title: baseTitle(filename)}
	if len(records) < 2 {
		return tree, nil
	}

	headers := records[0]
	for i, row := range records[1:] {
		var text strings.Builder
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if text.Len() > 0 {
				text.WriteString("\n")
			}
			if j < len(headers) && headers[j] != "" {
				text.WriteString(headers[j] + ": ")
			}
			text.WriteString(cell)
		}
		if text.Len() == 0 {
			continue
		}
		title := fmt.Sprintf("Row %d", i+2)
		if len(row) > 0 && strings.TrimSpace(row[0]) != "" {
			title = strings.TrimSpace(row[0])
		}
		tree.Nodes = append(tree.Nodes, &Node{Title: title, Text: text.String()})
	}
	return tree, nil
}
