package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rajarshidattapy/resumeness/internal/knowledge"
	"github.com/rajarshidattapy/resumeness/internal/latex"
	"github.com/rajarshidattapy/resumeness/internal/llm"
)

// Sections whose plain text is shorter than this are left alone.
const minSectionText = 50

const maxKnowledgeContext = 3

var (
	errUnbalanced = errors.New("rewritten section has unbalanced braces")
	errInjection  = errors.New("rewritten section contains instruction-like text")
	errEmpty      = errors.New("empty rewrite")
)

// RewriteInput is everything a rewrite reads.
type RewriteInput struct {
	Latex          string
	JobDescription string
	Knowledge      []knowledge.Item
	Instructions   string
}

// SectionResult reports what happened to one modifiable section.
type SectionResult struct {
	Name      string `json:"name"`
	Rewritten bool   `json:"rewritten"`
	Skipped   bool   `json:"skipped,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RewriteResult is the reassembled document. When the reassembled text
// fails the brace check, Latex is the input unchanged and Valid is false.
type RewriteResult struct {
	Latex    string          `json:"latex"`
	Valid    bool            `json:"valid"`
	Sections []SectionResult `json:"sections"`
}

// Rewritten counts sections whose body was replaced.
func (r RewriteResult) Rewritten() int {
	n := 0
	for _, s := range r.Sections {
		if s.Rewritten {
			n++
		}
	}
	return n
}

// Rewriter rewrites each modifiable section of a resume with an LLM.
type Rewriter struct {
	provider      llm.TextCompletionProvider
	log           *slog.Logger
	maxConcurrent int
	temperature   float64
	maxTokens     int
}

func NewRewriter(provider llm.TextCompletionProvider, log *slog.Logger, maxConcurrent int, temperature float64, maxTokens int) *Rewriter {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	return &Rewriter{
		provider:      provider,
		log:           log,
		maxConcurrent: maxConcurrent,
		temperature:   temperature,
		maxTokens:     maxTokens,
	}
}

// Rewrite sends every modifiable section to the provider with bounded
// concurrency and reassembles the document. A section keeps its original
// body when it is too short, when the call fails, or when the output is
// rejected. progress, if non-nil, is called once per section as results
// arrive.
func (r *Rewriter) Rewrite(ctx context.Context, in RewriteInput, progress func(SectionResult)) RewriteResult {
	if in.Instructions == "" {
		in.Instructions = DefaultInstructions
	}
	sections := latex.Modifiable(latex.ParseSections(in.Latex))
	kbContext := knowledgeContext(knowledge.Mentioned(in.JobDescription, in.Knowledge, maxKnowledgeContext))

	type sectionOutput struct {
		idx    int
		body   string
		result SectionResult
	}
	results := make(chan sectionOutput, len(sections))
	sem := make(chan struct{}, r.maxConcurrent)

	for i, s := range sections {
		sem <- struct{}{}
		go func(i int, s latex.Section) {
			defer func() { <-sem }()
			body, res := r.rewriteSection(ctx, s, in, kbContext)
			results <- sectionOutput{idx: i, body: body, result: res}
		}(i, s)
	}

	replacements := make(map[string]string, len(sections))
	out := RewriteResult{Sections: make([]SectionResult, len(sections))}
	for range sections {
		o := <-results
		replacements[sections[o.idx].Name] = o.body
		out.Sections[o.idx] = o.result
		if progress != nil {
			progress(o.result)
		}
	}

	doc := latex.Reconstruct(in.Latex, replacements)
	if !latex.IsValid(doc) {
		r.log.Warn("rewritten document has unbalanced braces, keeping original")
		out.Latex = in.Latex
		return out
	}
	out.Latex = doc
	out.Valid = true
	return out
}

func (r *Rewriter) rewriteSection(ctx context.Context, s latex.Section, in RewriteInput, kbContext string) (string, SectionResult) {
	log := r.log.With("section", s.Name)
	body := s.Body()
	res := SectionResult{Name: s.Name}

	if len(latex.ExtractText(body)) < minSectionText {
		res.Skipped = true
		return body, res
	}

	reply, err := llm.CompleteWithRetry(ctx, r.provider, llm.Request{
		System:      rewriteSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: rewritePrompt(s.Name, body, in.JobDescription, kbContext, in.Instructions)}},
		Temperature: r.temperature,
		MaxTokens:   r.maxTokens,
	}, log)
	if err != nil {
		log.Error("section rewrite failed", "error", err)
		res.Error = err.Error()
		return body, res
	}

	rewritten, err := cleanSection(reply, s.Header())
	if err != nil {
		log.Warn("section rewrite rejected", "error", err)
		res.Error = err.Error()
		return body, res
	}
	res.Rewritten = true
	return rewritten, res
}

// cleanSection turns a model reply into a section body: fences and a
// repeated header line are removed, plain text is wrapped as \item lines,
// and output that is unbalanced or instruction-like is refused.
func cleanSection(reply, header string) (string, error) {
	out := llm.StripCodeBlock(reply)
	if first, rest, ok := strings.Cut(out, "\n"); ok && strings.TrimSpace(first) == strings.TrimSpace(header) {
		out = strings.TrimSpace(rest)
	} else if strings.TrimSpace(out) == strings.TrimSpace(header) {
		out = ""
	}
	if strings.TrimSpace(out) == "" {
		return "", errEmpty
	}
	if !strings.Contains(out, `\`) && !strings.Contains(out, "{") {
		out = wrapItems(out)
	}
	if !latex.IsValid(out) {
		return "", errUnbalanced
	}
	if llm.ContainsInjection(latex.ExtractText(out)) {
		return "", errInjection
	}
	return out, nil
}

// wrapItems formats plain-text lines as list items.
func wrapItems(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		trimmed = strings.TrimLeft(trimmed, "-*• ")
		lines[i] = fmt.Sprintf("  \\item %s", trimmed)
	}
	return strings.Join(lines, "\n")
}
