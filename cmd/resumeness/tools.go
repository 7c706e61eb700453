package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rajarshidattapy/resumeness/internal/ats"
	"github.com/rajarshidattapy/resumeness/internal/document"
	"github.com/rajarshidattapy/resumeness/internal/latex"
)

func newSectionsCmd() *cobra.Command {
	var modifiableOnly bool
	cmd := &cobra.Command{
		Use:   "sections <file.tex>",
		Short: "List the sections of a LaTeX resume as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sections := latex.ParseSections(string(data))
			if modifiableOnly {
				sections = latex.Modifiable(sections)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sections)
		},
	}
	cmd.Flags().BoolVar(&modifiableOnly, "modifiable", false, "only list sections that may be rewritten")
	return cmd
}

func newTextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text <file.tex>",
		Short: "Print the plain text of a LaTeX document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), latex.ExtractText(string(data)))
			return err
		},
	}
}

func newScoreCmd() *cobra.Command {
	var (
		resumePath string
		jdPath     string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a resume against a job description",
		Long: `Score reports the percentage of job-description keywords that appear in the
resume, with the matched and missing keywords.

LaTeX and plain-text files are read as-is. PDF, DOCX, HTML, Markdown and CSV
files are converted to text first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, err := readText(resumePath)
			if err != nil {
				return fmt.Errorf("resume: %w", err)
			}
			jd, err := readText(jdPath)
			if err != nil {
				return fmt.Errorf("job description: %w", err)
			}

			res := ats.Score(resume, jd)
			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(res)
			}
			fmt.Fprintf(out, "ATS score: %d%%\n", res.Score)
			fmt.Fprintf(out, "Matched:   %s\n", joinOrNone(res.Matched))
			fmt.Fprintf(out, "Missing:   %s\n", joinOrNone(res.Missing))
			return nil
		},
	}
	cmd.Flags().StringVar(&resumePath, "resume", "", "resume file")
	cmd.Flags().StringVar(&jdPath, "jd", "", "job description file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("resume")
	_ = cmd.MarkFlagRequired("jd")
	return cmd
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tex", ".txt", "":
		return string(data), nil
	}
	return document.ExtractText(data, filepath.Base(path))
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "(none)"
	}
	return strings.Join(s, ", ")
}
