// Package document turns uploaded files (job postings, old resumes, notes)
// into a heading tree of plain text.
package document

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Parser converts raw file bytes into a Tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*Tree, error)
}

// SupportedExtensions lists file extensions that can be parsed.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".tex":      true,
}

// ForFile returns the parser for a filename's extension.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".tex":
		return &LatexParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupported checks if a file extension can be parsed.
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Parse picks a parser by filename and returns the normalized tree.
func Parse(data []byte, filename string) (*Tree, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, err
	}
	return normalize(tree), nil
}

// ExtractText parses data and returns its flattened text.
func ExtractText(data []byte, filename string) (string, error) {
	tree, err := Parse(data, filename)
	if err != nil {
		return "", err
	}
	return Flatten(tree), nil
}

func baseTitle(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
