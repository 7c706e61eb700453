package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajarshidattapy/resumeness/internal/knowledge"
	"github.com/rajarshidattapy/resumeness/internal/llm"
	"github.com/rajarshidattapy/resumeness/internal/state"
)

type fakeProvider struct {
	mu       sync.Mutex
	reply    func(req llm.Request) (string, error)
	requests []llm.Request
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.reply(req)
}

func (f *fakeProvider) calls() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.Request(nil), f.requests...)
}

func fixed(s string) func(llm.Request) (string, error) {
	return func(llm.Request) (string, error) { return s, nil }
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAgent(t *testing.T, p llm.TextCompletionProvider) (*Agent, *state.Workspace) {
	t.Helper()
	ws, err := state.New(t.Context(), state.NewMemoryStore(), state.Options{Log: quietLogger(), Seed: state.DefaultSeed()})
	require.NoError(t, err)
	return New(ws, p, Options{Log: quietLogger()}), ws
}

const testJD = "Here is the job description: we need Kubernetes, AWS, Docker and GraphQL experience."

func TestHandleRejectsEmptyMessage(t *testing.T) {
	a, _ := newTestAgent(t, nil)
	_, err := a.Handle(t.Context(), "   ")
	assert.Error(t, err)
}

func TestDemoMode(t *testing.T) {
	a, ws := newTestAgent(t, nil)
	ctx := t.Context()
	assert.False(t, a.HasProvider())

	reply, err := a.Handle(ctx, testJD)
	require.NoError(t, err)
	assert.Equal(t, IntentAnalyzeJD, reply.Intent)
	assert.True(t, reply.Demo)
	assert.Contains(t, reply.Content, "**Current ATS Match: 75%**")
	assert.Contains(t, reply.Content, "Matched: kubernetes, aws, docker")
	require.NotNil(t, reply.ATS)
	assert.Equal(t, []string{"graphql"}, reply.ATS.Missing)
	assert.Equal(t, testJD, ws.JobDescription())
	assert.Equal(t, 75, ws.ATS().Score)

	reply, err = a.Handle(ctx, "proceed")
	require.NoError(t, err)
	assert.Equal(t, msgDemoRewrite, reply.Content)
	assert.False(t, reply.LatexChanged)

	reply, err = a.Handle(ctx, "hello there")
	require.NoError(t, err)
	assert.Equal(t, IntentChat, reply.Intent)
	assert.Equal(t, msgDemoDefault, reply.Content)

	reply, err = a.Handle(ctx, "search kb")
	require.NoError(t, err)
	assert.False(t, reply.Demo, "search needs no provider")
	assert.Contains(t, reply.Content, "Cloud Architecture")

	reply, err = a.Handle(ctx, "undo that")
	require.NoError(t, err)
	assert.Equal(t, msgUndo, reply.Content)

	msgs := ws.Messages()
	require.Len(t, msgs, 11)
	assert.Equal(t, state.RoleUser, msgs[1].Role)
	assert.Equal(t, state.RoleAssistant, msgs[2].Role)
}

func TestAnalyzeWithProvider(t *testing.T) {
	p := &fakeProvider{reply: fixed("1. Key Requirements: Kubernetes")}
	a, _ := newTestAgent(t, p)

	reply, err := a.Handle(t.Context(), testJD)
	require.NoError(t, err)
	assert.False(t, reply.Demo)
	assert.True(t, strings.HasPrefix(reply.Content, "1. Key Requirements: Kubernetes\n\n**Current ATS Match: 75%**"))
	assert.Contains(t, reply.Content, "Missing keywords: graphql")
	assert.Contains(t, reply.Content, `Say "proceed" to let me rewrite your resume.`)

	calls := p.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, analyzeSystemPrompt, calls[0].System)
	assert.Contains(t, calls[0].Messages[0].Content, "Job Description:\n"+testJD)
}

func TestRewriteNeedsJobDescription(t *testing.T) {
	p := &fakeProvider{reply: fixed("unused")}
	a, ws := newTestAgent(t, p)

	reply, err := a.Handle(t.Context(), "please rewrite it")
	require.NoError(t, err)
	assert.Equal(t, msgNeedJobDescription, reply.Content)
	assert.Empty(t, p.calls())
	assert.Empty(t, ws.Versions())
}

func TestRewriteWithProvider(t *testing.T) {
	p := &fakeProvider{reply: func(req llm.Request) (string, error) {
		if req.System == analyzeSystemPrompt {
			return "analysis", nil
		}
		return "```latex\n\\begin{itemize}\n  \\item Shipped GraphQL APIs on Kubernetes, AWS and Docker\n\\end{itemize}\n```", nil
	}}
	a, ws := newTestAgent(t, p)
	ctx := t.Context()
	original := ws.Latex()

	_, err := a.Handle(ctx, testJD)
	require.NoError(t, err)

	reply, err := a.Handle(ctx, "proceed")
	require.NoError(t, err)
	assert.Equal(t, IntentRewrite, reply.Intent)
	assert.True(t, reply.LatexChanged)
	assert.Contains(t, reply.Content, "**New ATS Score: 100%** (was 75%)")

	versions := ws.Versions()
	require.Len(t, versions, 1)
	assert.Equal(t, "Before AI rewrite", versions[0].Description)
	assert.Equal(t, original, versions[0].Latex)
	require.NotNil(t, versions[0].ATSScore)
	assert.Equal(t, 75, *versions[0].ATSScore)

	latexNow := ws.Latex()
	assert.Contains(t, latexNow, "Shipped GraphQL APIs")
	assert.Contains(t, latexNow, `\section*{Professional Summary}`)
	assert.True(t, strings.HasSuffix(latexNow, `\end{document}`))
	assert.Equal(t, 100, ws.ATS().Score)

	for _, req := range p.calls()[1:] {
		assert.Equal(t, rewriteSystemPrompt, req.System)
		assert.Contains(t, req.Messages[0].Content, "Relevant experience from knowledge base:\n- Cloud Architecture (skill)")
	}
}

func TestRewriteKeepsEditMadeDuringRewrite(t *testing.T) {
	const edited = "\\documentclass{article}\n\\begin{document}\nEdited by hand\n\\end{document}"
	var ws *state.Workspace
	var once sync.Once
	p := &fakeProvider{reply: func(llm.Request) (string, error) {
		once.Do(func() { assert.NoError(t, ws.SetLatex(context.Background(), edited)) })
		return "\\begin{itemize}\n  \\item Shipped GraphQL APIs on Kubernetes, AWS and Docker\n\\end{itemize}", nil
	}}
	a, w := newTestAgent(t, p)
	ws = w
	ws.SetJobDescription(t.Context(), testJD)

	reply, err := a.Handle(t.Context(), "rewrite it")
	require.NoError(t, err)
	assert.Equal(t, IntentRewrite, reply.Intent)
	assert.Equal(t, msgRewriteConflict, reply.Content)
	assert.False(t, reply.LatexChanged)
	assert.Equal(t, edited, ws.Latex())
}

func TestConcurrentRewritesRunInTurn(t *testing.T) {
	p := &fakeProvider{reply: fixed("\\begin{itemize}\n  \\item Shipped GraphQL APIs on Kubernetes, AWS and Docker\n\\end{itemize}")}
	a, ws := newTestAgent(t, p)
	ws.SetJobDescription(t.Context(), testJD)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = a.RewriteWorkspace(t.Context(), DefaultInstructions, nil)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, ws.Versions(), 2)
	assert.Contains(t, ws.Latex(), "Shipped GraphQL APIs")
}

func TestProviderFailureFallsBackToCannedReply(t *testing.T) {
	p := &fakeProvider{reply: func(llm.Request) (string, error) { return "", errors.New("invalid api key") }}
	a, ws := newTestAgent(t, p)

	reply, err := a.Handle(t.Context(), testJD)
	require.NoError(t, err)
	assert.True(t, reply.Demo)
	assert.Contains(t, reply.Content, "I've analyzed the job description.")
	assert.Equal(t, testJD, ws.JobDescription())

	reply, err = a.Handle(t.Context(), "what next?")
	require.NoError(t, err)
	assert.Equal(t, msgDemoDefault, reply.Content)
}

func TestChatSendsContextAndHistory(t *testing.T) {
	p := &fakeProvider{reply: fixed("  Sure.  ")}
	a, _ := newTestAgent(t, p)

	reply, err := a.Handle(t.Context(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, "Sure.", reply.Content)

	_, err = a.Handle(t.Context(), "and what about my summary?")
	require.NoError(t, err)

	calls := p.calls()
	require.Len(t, calls, 2)
	req := calls[1]
	assert.Equal(t, SystemPrompt, req.System)
	require.Len(t, req.Messages, 4)
	assert.Equal(t, llm.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "No job description has been provided yet.")
	assert.Contains(t, req.Messages[0].Content, "Your Name")
	assert.Equal(t, llm.RoleUser, req.Messages[1].Role, "welcome message is dropped")
	assert.Equal(t, "hello there", req.Messages[1].Content)
	assert.Equal(t, llm.RoleAssistant, req.Messages[2].Role)
	assert.Equal(t, "and what about my summary?", req.Messages[3].Content)
}

func TestSearchUsesJobDescriptionFirst(t *testing.T) {
	a, ws := newTestAgent(t, nil)
	ws.SetJobDescription(t.Context(), "performance optimization of page load")

	reply, err := a.Handle(t.Context(), "search knowledge")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(reply.Content, "Found 1 relevant items:\n\n**1. Performance Optimization** (achievement)\n"))

	_, err = ws.AddKnowledge(t.Context(), knowledge.Item{Type: knowledge.TypeSkill, Title: "x", Content: "y"})
	require.NoError(t, err)
	ws.SetJobDescription(t.Context(), "")
	reply, err = a.Handle(t.Context(), "kb")
	require.NoError(t, err)
	assert.Equal(t, msgNoKnowledgeMatches, reply.Content)
}
