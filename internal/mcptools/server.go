package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register adds every resume tool to server.
func Register(server *mcp.Server) {
	mcp.AddTool(server, MetadataParseLatexSections, ParseLatexSections)
	mcp.AddTool(server, MetadataExtractLatexText, ExtractLatexText)
	mcp.AddTool(server, MetadataValidateLatex, ValidateLatex)
	mcp.AddTool(server, MetadataExtractKeywords, ExtractKeywords)
	mcp.AddTool(server, MetadataCalculateATSScore, CalculateATSScore)
	mcp.AddTool(server, MetadataSearchKnowledgeBase, SearchKnowledgeBase)
}

// NewServer returns an MCP server with the resume tools registered.
func NewServer(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "resumeness", Version: version}, nil)
	Register(server)
	return server
}

// Serve runs the tools over stdin/stdout until ctx is done or the client
// disconnects.
func Serve(ctx context.Context, version string) error {
	return NewServer(version).Run(ctx, &mcp.StdioTransport{})
}
