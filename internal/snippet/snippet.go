// Package snippet cuts parsed documents into pieces small enough to serve as
// knowledge-base entries.
package snippet

import (
	"strings"

	"github.com/rajarshidattapy/resumeness/internal/document"
)

// Config controls snippet sizes, in words.
type Config struct {
	MaxWords int
	MinWords int
}

// DefaultConfig suits bullet-sized resume facts.
func DefaultConfig() Config {
	return Config{MaxWords: 120, MinWords: 8}
}

// Snippet is a piece of text with the headings it was found under.
type Snippet struct {
	Breadcrumb []string
	Text       string
}

// Title returns the innermost heading, or "" when there is none.
func (s Snippet) Title() string {
	if len(s.Breadcrumb) == 0 {
		return ""
	}
	return s.Breadcrumb[len(s.Breadcrumb)-1]
}

// Split walks tree and returns snippets of at most cfg.MaxWords words.
// Paragraph boundaries are kept where possible; oversized paragraphs are
// split on sentences. Pieces shorter than cfg.MinWords are dropped.
func Split(tree *document.Tree, cfg Config) []Snippet {
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = 120
	}
	if cfg.MinWords <= 0 {
		cfg.MinWords = 8
	}

	var out []Snippet
	for _, p := range document.Passages(tree) {
		for _, part := range splitText(p.Text, cfg.MaxWords) {
			if WordCount(part) < cfg.MinWords {
				continue
			}
			out = append(out, Snippet{Breadcrumb: p.Breadcrumb, Text: part})
		}
	}
	return out
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func splitText(text string, maxWords int) []string {
	if WordCount(text) <= maxWords {
		return []string{strings.TrimSpace(text)}
	}

	var result []string
	var current strings.Builder
	words := 0
	emit := func() {
		if words > 0 {
			result = append(result, current.String())
			current.Reset()
			words = 0
		}
	}

	for _, para := range splitParagraphs(text) {
		n := WordCount(para)
		if n > maxWords {
			emit()
			result = append(result, splitSentences(para, maxWords)...)
			continue
		}
		if words+n > maxWords {
			emit()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		words += n
	}
	emit()
	return result
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences packs sentences into pieces of at most maxWords. A single
// sentence longer than that is cut on word boundaries.
func splitSentences(text string, maxWords int) []string {
	var result []string
	var current []string
	for _, sent := range sentences(text) {
		fields := strings.Fields(sent)
		if len(current)+len(fields) > maxWords && len(current) > 0 {
			result = append(result, strings.Join(current, " "))
			current = nil
		}
		for len(fields) > maxWords {
			result = append(result, strings.Join(fields[:maxWords], " "))
			fields = fields[maxWords:]
		}
		current = append(current, fields...)
	}
	if len(current) > 0 {
		result = append(result, strings.Join(current, " "))
	}
	return result
}

func sentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
