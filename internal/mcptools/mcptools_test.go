package mcptools

import (
	"context"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajarshidattapy/resumeness/internal/ats"
	"github.com/rajarshidattapy/resumeness/internal/knowledge"
)

const resume = `\documentclass{article}
\begin{document}
\section*{Summary}
Backend engineer.
\section{Experience}
\textbf{Acme} \\ Built React and AWS services
\section{Skills}
Go, Docker
\end{document}`

func TestParseLatexSections(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	_, _, err := ParseLatexSections(ctx, req, InputLatex{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latex is required")

	_, out, err := ParseLatexSections(ctx, req, InputLatex{Latex: resume})
	require.NoError(t, err)
	require.Len(t, out.Sections, 3)
	assert.Equal(t, "Summary", out.Sections[0].Name)
	assert.Equal(t, 2, out.Sections[0].StartLine)
	assert.Equal(t, 3, out.Sections[0].EndLine)
	assert.Equal(t, []string{"Experience", "Skills"}, out.Modifiable)
}

func TestTextAndValidation(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	_, text, err := ExtractLatexText(ctx, req, InputLatex{Latex: `\textbf{Hello} \\ World`})
	require.NoError(t, err)
	assert.Equal(t, "Hello\nWorld", text.Text)

	tests := []struct {
		latex string
		want  bool
	}{
		{`\section{A}{B}`, true},
		{`\section{A`, false},
		{`50\% \{literal`, true},
	}
	for _, tc := range tests {
		_, out, err := ValidateLatex(ctx, req, InputLatex{Latex: tc.latex})
		require.NoError(t, err)
		assert.Equal(t, tc.want, out.Valid, tc.latex)
	}
}

func TestKeywordsAndScore(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	_, kw, err := ExtractKeywords(ctx, req, InputExtractKeywords{JobDescription: "React, AWS and strong communication"})
	require.NoError(t, err)
	assert.Equal(t, []string{"react", "aws", "communication"}, kw.Keywords)

	_, res, err := CalculateATSScore(ctx, req, InputCalculateATSScore{
		Resume:         "resume with React and AWS",
		JobDescription: "Looking for React and AWS and Docker experience",
	})
	require.NoError(t, err)
	assert.Equal(t, 67, res.Score)
	assert.Equal(t, []string{"react", "aws"}, res.Matched)
	assert.Equal(t, []string{"docker"}, res.Missing)

	_, res, err = CalculateATSScore(ctx, req, InputCalculateATSScore{JobDescription: "Docker and Kubernetes"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.Matched)
	assert.Equal(t, []string{"docker", "kubernetes"}, res.Missing)

	_, res, err = CalculateATSScore(ctx, req, InputCalculateATSScore{})
	require.NoError(t, err)
	assert.Equal(t, ats.MatchResult{Matched: []string{}, Missing: []string{}}, res)
}

func TestSearchKnowledgeBase(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	_, out, err := SearchKnowledgeBase(ctx, req, InputSearchKnowledgeBase{Query: "AWS Kubernetes Terraform"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)
	assert.Equal(t, "Cloud Architecture", out.Results[0].Item.Title)

	one := 1
	items := []knowledge.Item{
		{ID: "a", Type: knowledge.TypeSkill, Title: "Rust", Content: "systems programming in rust"},
		{ID: "b", Type: knowledge.TypeSkill, Title: "Go", Content: "network services"},
	}
	_, out, err = SearchKnowledgeBase(ctx, req, InputSearchKnowledgeBase{Query: "rust systems", TopK: &one, Items: items})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "a", out.Results[0].Item.ID)

	_, _, err = SearchKnowledgeBase(ctx, req, InputSearchKnowledgeBase{})
	assert.Error(t, err)
}

func TestServerListsTools(t *testing.T) {
	ctx := context.Background()
	ct, st := mcp.NewInMemoryTransports()

	ss, err := NewServer("test").Connect(ctx, st, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"calculate_ats_score",
		"extract_keywords",
		"extract_latex_text",
		"parse_latex_sections",
		"search_knowledge_base",
		"validate_latex",
	}, names)

	call, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "validate_latex",
		Arguments: map[string]any{"latex": `\section{A`},
	})
	require.NoError(t, err)
	assert.False(t, call.IsError)
	assert.Equal(t, map[string]any{"valid": false}, call.StructuredContent)
}
