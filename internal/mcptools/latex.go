// Package mcptools exposes the resume text core as Model Context Protocol
// tools: section parsing, text extraction, validation, keyword extraction,
// ATS scoring and knowledge-base search.
package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rajarshidattapy/resumeness/internal/latex"
)

func latexSchema(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"latex": map[string]interface{}{
			"type":        "string",
			"description": "Full LaTeX source of the resume",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return map[string]interface{}{
		"type":       "object",
		"required":   []string{"latex"},
		"properties": props,
	}
}

// MetadataParseLatexSections describes the parse_latex_sections tool.
var MetadataParseLatexSections = &mcp.Tool{
	Name: "parse_latex_sections",
	Description: "Split a LaTeX resume into its \\section blocks. Returns every section with its " +
		"zero-based line range, and the names of the sections that hold editable resume content " +
		"(experience, projects, skills, education, achievements, certifications).",
	InputSchema: latexSchema(nil),
}

type InputLatex struct {
	Latex string `json:"latex"`
}

type OutputParseLatexSections struct {
	Sections   []latex.Section `json:"sections"`
	Modifiable []string        `json:"modifiable"`
}

func ParseLatexSections(_ context.Context, _ *mcp.CallToolRequest, input InputLatex) (*mcp.CallToolResult, OutputParseLatexSections, error) {
	if input.Latex == "" {
		return nil, OutputParseLatexSections{}, fmt.Errorf("latex is required")
	}
	sections := latex.ParseSections(input.Latex)
	out := OutputParseLatexSections{Sections: sections, Modifiable: []string{}}
	for _, s := range latex.Modifiable(sections) {
		out.Modifiable = append(out.Modifiable, s.Name)
	}
	return nil, out, nil
}

// MetadataExtractLatexText describes the extract_latex_text tool.
var MetadataExtractLatexText = &mcp.Tool{
	Name: "extract_latex_text",
	Description: "Reduce LaTeX to the plain text a screening system would read: formatting commands keep " +
		"their argument text, structural commands are dropped and \\\\ becomes a newline.",
	InputSchema: latexSchema(nil),
}

type OutputExtractLatexText struct {
	Text string `json:"text"`
}

func ExtractLatexText(_ context.Context, _ *mcp.CallToolRequest, input InputLatex) (*mcp.CallToolResult, OutputExtractLatexText, error) {
	return nil, OutputExtractLatexText{Text: latex.ExtractText(input.Latex)}, nil
}

// MetadataValidateLatex describes the validate_latex tool.
var MetadataValidateLatex = &mcp.Tool{
	Name:        "validate_latex",
	Description: "Check that braces in a LaTeX document are balanced. Escaped braces and comments are ignored; nothing else is checked.",
	InputSchema: latexSchema(nil),
}

type OutputValidateLatex struct {
	Valid bool `json:"valid"`
}

func ValidateLatex(_ context.Context, _ *mcp.CallToolRequest, input InputLatex) (*mcp.CallToolResult, OutputValidateLatex, error) {
	return nil, OutputValidateLatex{Valid: latex.IsValid(input.Latex)}, nil
}
