package mcptools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rajarshidattapy/resumeness/internal/ats"
	"github.com/rajarshidattapy/resumeness/internal/knowledge"
)

// MetadataExtractKeywords describes the extract_keywords tool.
var MetadataExtractKeywords = &mcp.Tool{
	Name: "extract_keywords",
	Description: "List the known technology and soft-skill terms found in a job description, " +
		"lower-cased and deduplicated, technical terms first.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"job_description"},
		"properties": map[string]interface{}{
			"job_description": map[string]interface{}{
				"type":        "string",
				"description": "Job description text",
			},
		},
	},
}

type InputExtractKeywords struct {
	JobDescription string `json:"job_description"`
}

type OutputExtractKeywords struct {
	Keywords []string `json:"keywords"`
}

func ExtractKeywords(_ context.Context, _ *mcp.CallToolRequest, input InputExtractKeywords) (*mcp.CallToolResult, OutputExtractKeywords, error) {
	return nil, OutputExtractKeywords{Keywords: ats.ExtractKeywords(input.JobDescription)}, nil
}

// MetadataCalculateATSScore describes the calculate_ats_score tool.
var MetadataCalculateATSScore = &mcp.Tool{
	Name: "calculate_ats_score",
	Description: "Score a resume against a job description: the percentage of the job description's " +
		"keywords that occur in the resume, with the matched and missing keywords. " +
		"The resume may be LaTeX or plain text.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"resume", "job_description"},
		"properties": map[string]interface{}{
			"resume": map[string]interface{}{
				"type":        "string",
				"description": "Resume text or LaTeX source",
			},
			"job_description": map[string]interface{}{
				"type":        "string",
				"description": "Job description text",
			},
		},
	},
}

type InputCalculateATSScore struct {
	Resume         string `json:"resume"`
	JobDescription string `json:"job_description"`
}

func CalculateATSScore(_ context.Context, _ *mcp.CallToolRequest, input InputCalculateATSScore) (*mcp.CallToolResult, ats.MatchResult, error) {
	return nil, ats.Score(input.Resume, input.JobDescription), nil
}

// MetadataSearchKnowledgeBase describes the search_knowledge_base tool.
var MetadataSearchKnowledgeBase = &mcp.Tool{
	Name: "search_knowledge_base",
	Description: "Rank knowledge-base items (projects, skills, experience, achievements) by word-set " +
		"similarity to a query. Items scoring 0.05 or less are left out. Without items, the " +
		"built-in starter knowledge base is searched.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"query"},
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search text, typically a job description",
			},
			"top_k": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of results (default 5)",
			},
			"items": map[string]interface{}{
				"type":        "array",
				"description": "Knowledge items to search: objects with id, type, title, content and tags",
				"items":       map[string]interface{}{"type": "object"},
			},
		},
	},
}

type InputSearchKnowledgeBase struct {
	Query string           `json:"query"`
	TopK  *int             `json:"top_k"`
	Items []knowledge.Item `json:"items"`
}

type OutputSearchKnowledgeBase struct {
	Results []knowledge.Scored `json:"results"`
}

func SearchKnowledgeBase(_ context.Context, _ *mcp.CallToolRequest, input InputSearchKnowledgeBase) (*mcp.CallToolResult, OutputSearchKnowledgeBase, error) {
	if input.Query == "" {
		return nil, OutputSearchKnowledgeBase{}, fmt.Errorf("query is required")
	}
	topK := 5
	if input.TopK != nil {
		topK = *input.TopK
	}
	items := input.Items
	if items == nil {
		items = knowledge.Defaults()
	}
	return nil, OutputSearchKnowledgeBase{Results: knowledge.SearchScored(input.Query, items, topK)}, nil
}
