package latex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resumeDoc = `\documentclass[11pt]{article}
\begin{document}
{\LARGE \textbf{Jane Doe}}\\[4pt]
jane@example.com

\section*{Summary}
Backend engineer.

\section*{Experience}
\textbf{Engineer} \hfill 2020 -- Present\\
\begin{itemize}
  \item Built React dashboards on AWS
\end{itemize}

\section{Skills}
Go, Python, Docker

\end{document}`

const resumeTemplate = `\documentclass[11pt]{article}
\begin{document}
{\LARGE \textbf{Jane Doe}}\\[4pt]
jane@example.com

\section*{Summary}
Backend engineer.

\section*{Experience}
\section{Skills}
\end{document}`

func TestParseSections(t *testing.T) {
	sections := ParseSections(resumeDoc)
	require.Len(t, sections, 3)

	assert.Equal(t, "Summary", sections[0].Name)
	assert.Equal(t, 5, sections[0].StartLine)
	assert.Equal(t, 7, sections[0].EndLine)
	assert.Equal(t, "\\section*{Summary}\nBackend engineer.\n", sections[0].Content)

	assert.Equal(t, "Experience", sections[1].Name)
	assert.Equal(t, 8, sections[1].StartLine)
	assert.Equal(t, 13, sections[1].EndLine)

	assert.Equal(t, "Skills", sections[2].Name)
	assert.Equal(t, 14, sections[2].StartLine)
	assert.Equal(t, 17, sections[2].EndLine, "last section runs to end of document")
}

func TestParseSectionsContiguous(t *testing.T) {
	sections := ParseSections(resumeDoc)
	lines := strings.Split(resumeDoc, "\n")
	for i := 1; i < len(sections); i++ {
		assert.Equal(t, sections[i-1].EndLine+1, sections[i].StartLine)
	}
	assert.Equal(t, len(lines)-1, sections[len(sections)-1].EndLine)
	for _, s := range sections {
		assert.Equal(t, strings.Join(lines[s.StartLine:s.EndLine+1], "\n"), s.Content)
	}
}

func TestParseSectionsDiscardsPreamble(t *testing.T) {
	sections := ParseSections(resumeDoc)
	for _, s := range sections {
		assert.NotContains(t, s.Content, "jane@example.com")
	}
}

func TestParseSectionsNoMarkers(t *testing.T) {
	sections := ParseSections("\\documentclass{article}\nHello")
	require.NotNil(t, sections)
	assert.Empty(t, sections)
	assert.Empty(t, ParseSections(""))
}

func TestParseSectionsIndentedMarker(t *testing.T) {
	sections := ParseSections("  \\section{Projects} trailing text\nbody")
	require.Len(t, sections, 1)
	assert.Equal(t, "Projects", sections[0].Name)
}

func TestSectionHeaderAndBody(t *testing.T) {
	sections := ParseSections(resumeDoc)
	assert.Equal(t, "\\section*{Experience}", sections[1].Header())
	assert.Equal(t, "\\textbf{Engineer} \\hfill 2020 -- Present\\\\\n\\begin{itemize}\n  \\item Built React dashboards on AWS\n\\end{itemize}\n", sections[1].Body())
	assert.Equal(t, "Go, Python, Docker\n", sections[2].Body(), "end{document} is not part of the body")

	bare := Section{Name: "X", Content: "\\section{X}"}
	assert.Equal(t, "", bare.Body())
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name      string
		wantLabel string
		wantOK    bool
	}{
		{"Professional Experience", "Professional Experience", true},
		{"Work experience", "Experience", true},
		{"TECHNICAL SKILLS", "Skills", true},
		{"Side Projects", "Projects", true},
		{"Education & Training", "Education", true},
		{"Awards and Achievements", "Achievements", true},
		{"Certifications", "Certifications", true},
		{"Professional Summary", "", false},
		{"Interests", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label, ok := Label(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}

func TestModifiableSections(t *testing.T) {
	mod := ModifiableSections(resumeDoc)
	require.Len(t, mod, 2)
	assert.Contains(t, mod, "Experience")
	assert.Contains(t, mod, "Skills")
	assert.NotContains(t, mod, "Summary")

	all := ParseSections(resumeDoc)
	for name, s := range mod {
		assert.True(t, IsModifiable(name))
		assert.Contains(t, all, s, "modifiable sections are a subset of parsed sections")
	}
}

func TestModifiableDuplicateNamesKeepLast(t *testing.T) {
	doc := "\\section{Skills}\nfirst\n\\section{Skills}\nsecond"
	mod := Modifiable(ParseSections(doc))
	require.Len(t, mod, 1)
	assert.Equal(t, "second", mod[0].Body())
}

func TestReplaceSection(t *testing.T) {
	got := ReplaceSection(resumeDoc, "Summary", "\\section*{Summary}\nPlatform engineer.\n")
	assert.Contains(t, got, "Platform engineer.")
	assert.NotContains(t, got, "Backend engineer.")
	assert.Contains(t, got, "\\section*{Experience}")
	assert.True(t, strings.HasPrefix(got, "\\documentclass"))
}

func TestReplaceSectionUnknownName(t *testing.T) {
	assert.Equal(t, resumeDoc, ReplaceSection(resumeDoc, "Hobbies", "anything"))
}

func TestTemplate(t *testing.T) {
	assert.Equal(t, resumeTemplate, Template(resumeDoc))
}

func TestTemplateIdempotent(t *testing.T) {
	tmpl := Template(resumeDoc)
	assert.Equal(t, tmpl, Template(tmpl))
}

func TestReconstructRoundTrip(t *testing.T) {
	bodies := make(map[string]string)
	for name, s := range ModifiableSections(resumeDoc) {
		bodies[name] = s.Body()
	}
	assert.Equal(t, resumeDoc, Reconstruct(resumeDoc, bodies))
}

func TestReconstructNoReplacementsKeepsBoilerplate(t *testing.T) {
	tmpl := Template(resumeDoc)
	assert.Equal(t, tmpl, Reconstruct(tmpl, nil))
	assert.Equal(t, tmpl, Reconstruct(tmpl, map[string]string{}))
}

func TestReconstructInsertsBelowHeader(t *testing.T) {
	got := Reconstruct(resumeDoc, map[string]string{
		"Skills":  "Go, Kubernetes, Terraform",
		"Unknown": "ignored",
	})
	assert.Contains(t, got, "\\section{Skills}\nGo, Kubernetes, Terraform\n\\end{document}")
	assert.NotContains(t, got, "Built React dashboards", "experience body was stripped and not replaced")
	assert.NotContains(t, got, "ignored")
	assert.Contains(t, got, "Backend engineer.")
}

func TestReconstructSkipsEmptyReplacement(t *testing.T) {
	got := Reconstruct(resumeDoc, map[string]string{"Experience": ""})
	assert.Equal(t, resumeTemplate, got)
}

// Template and Reconstruct locate sections by exact text, so repeated text
// resolves to its first occurrence. These cases pin that behaviour.
func TestDuplicateTextFirstMatchWins(t *testing.T) {
	dupNames := "\\section{Projects}\nalpha\n\\section{Projects}\nbeta\n\\end{document}"
	dupContent := "% old: \\section{Skills}\nGo\n\\section{Skills}\nGo\n\\section{Interests}\nChess\n\\end{document}"

	tests := []struct {
		name string
		run  func() string
		want string
	}{
		{
			name: "template strips only the last of two same-named sections",
			run:  func() string { return Template(dupNames) },
			want: "\\section{Projects}\nalpha\n\\section{Projects}\n\\end{document}",
		},
		{
			name: "reconstruct inserts under the first same-named header",
			run:  func() string { return Reconstruct(dupNames, map[string]string{"Projects": "NEW"}) },
			want: "\\section{Projects}\nNEW\nalpha\n\\section{Projects}\n\\end{document}",
		},
		{
			name: "template strips the first copy of repeated content",
			run:  func() string { return Template(dupContent) },
			want: "% old: \\section{Skills}\n\\section{Skills}\nGo\n\\section{Interests}\nChess\n\\end{document}",
		},
		{
			name: "reconstruct inserts under the first copy of a repeated header",
			run:  func() string { return Reconstruct(dupContent, map[string]string{"Skills": "Rust"}) },
			want: "% old: \\section{Skills}\nRust\n\\section{Skills}\nGo\n\\section{Interests}\nChess\n\\end{document}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.run())
		})
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"formatting command with line break", `\textbf{Hello} \\ World`, "Hello\nWorld"},
		{"escaped ampersand", `R\&D \& Ops`, "R&D & Ops"},
		{"escaped percent", `Reduced latency by 40\% overall`, "Reduced latency by 40% overall"},
		{"nested commands", `\textbf{\textit{Deep}} text`, "Deep text"},
		{"bare commands", `\item Led team \hfill 2021`, "Led team 2021"},
		{"structural commands dropped", "\\begin{itemize}[nosep]\n\\item One\n\\end{itemize}", "One"},
		{"comments dropped", "Visible % hidden\nNext", "Visible Next"},
		{"whitespace collapsed", "a \n\n\t  b", "a b"},
		{"optional spacing on break", `Line one\\[4pt]Line two`, "Line one\nLine two"},
		{"href keeps link text", `\href{https://x.dev}{Portfolio}`, "Portfolio"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractText(tt.in))
		})
	}
}

func TestExtractTextDocument(t *testing.T) {
	text := ExtractText(resumeDoc)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Built React dashboards on AWS")
	assert.NotContains(t, text, "\\")
	assert.NotContains(t, text, "{")
	assert.NotContains(t, text, "article")
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`\section{A}{B}`, true},
		{`\section{A`, false},
		{`}{`, false},
		{`\{ escaped`, true},
		{"% comment with {\nbody", true},
		{"", true},
		{resumeDoc, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValid(tt.in), "IsValid(%q)", tt.in)
	}
}
