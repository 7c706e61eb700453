package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rajarshidattapy/resumeness/internal/mcptools"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "resumeness",
		Short: "Tailor a LaTeX resume to a job description",
		Long: `resumeness keeps a LaTeX resume, a job description and a knowledge base of
reusable experience, scores the resume against the job description and
rewrites it section by section with an LLM.

Run "resumeness serve" for the HTTP API or "resumeness mcp" to expose the
text tools to an MCP client.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMCPCmd(), newSectionsCmd(), newTextCmd(), newScoreCmd())
	return root
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the resume text tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcptools.Serve(cmd.Context(), version)
		},
	}
}
