// Package agent turns chat messages into resume work: job-description
// analysis, section-by-section rewrites, knowledge-base lookups and free
// conversation.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rajarshidattapy/resumeness/internal/ats"
	"github.com/rajarshidattapy/resumeness/internal/knowledge"
	"github.com/rajarshidattapy/resumeness/internal/latex"
	"github.com/rajarshidattapy/resumeness/internal/llm"
	"github.com/rajarshidattapy/resumeness/internal/state"
)

// Reply is the assistant's answer to one message.
type Reply struct {
	Intent       Intent           `json:"intent"`
	Content      string           `json:"content"`
	ATS          *ats.MatchResult `json:"ats,omitempty"`
	LatexChanged bool             `json:"latex_changed"`
	Demo         bool             `json:"demo,omitempty"`
}

type Options struct {
	Log           *slog.Logger
	HistoryLimit  int
	SearchTopK    int
	MaxConcurrent int
	Temperature   float64
	MaxTokens     int
}

// Agent dispatches chat messages against a workspace. A nil provider puts
// it in demo mode, where LLM-backed intents answer with canned text.
type Agent struct {
	ws       *state.Workspace
	provider llm.TextCompletionProvider
	rewriter *Rewriter
	log      *slog.Logger

	// rewriteMu serializes workspace rewrites from chat and from jobs.
	rewriteMu sync.Mutex

	historyLimit int
	topK         int
	temperature  float64
	maxTokens    int

	handlers map[Intent]handler
}

type handler struct {
	run       func(ctx context.Context, message string) (Reply, error)
	needsLLM  bool
	simulated func(ctx context.Context, message string) Reply
}

func New(ws *state.Workspace, provider llm.TextCompletionProvider, opts Options) *Agent {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10
	}
	if opts.SearchTopK <= 0 {
		opts.SearchTopK = 5
	}
	a := &Agent{
		ws:           ws,
		provider:     provider,
		rewriter:     NewRewriter(provider, opts.Log, opts.MaxConcurrent, opts.Temperature, opts.MaxTokens),
		log:          opts.Log,
		historyLimit: opts.HistoryLimit,
		topK:         opts.SearchTopK,
		temperature:  opts.Temperature,
		maxTokens:    opts.MaxTokens,
	}
	a.handlers = map[Intent]handler{
		IntentAnalyzeJD: {run: a.analyze, needsLLM: true, simulated: a.simulateAnalyze},
		IntentRewrite:   {run: a.rewrite, needsLLM: true, simulated: a.simulateRewrite},
		IntentSearchKB:  {run: a.search},
		IntentUndo:      {run: a.undo},
		IntentChat:      {run: a.chat, needsLLM: true, simulated: a.simulateChat},
	}
	return a
}

// HasProvider reports whether LLM-backed intents are available.
func (a *Agent) HasProvider() bool { return a.provider != nil }

// Handle records message, answers it and records the answer. Provider
// failures never reach the caller: the intent's canned reply is used
// instead. Errors are workspace persistence failures.
func (a *Agent) Handle(ctx context.Context, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, fmt.Errorf("message is empty")
	}
	intent := DetectIntent(message)
	log := a.log.With("intent", intent)
	a.ws.AddMessage(state.RoleUser, message)

	h := a.handlers[intent]
	var reply Reply
	var err error
	switch {
	case h.needsLLM && a.provider == nil:
		reply = h.simulated(ctx, message)
	default:
		reply, err = h.run(ctx, message)
		if err != nil {
			var perr persistError
			if errors.As(err, &perr) || h.simulated == nil {
				return Reply{}, err
			}
			log.Error("agent handler failed, using canned reply", "error", err)
			reply = h.simulated(ctx, message)
		}
	}
	reply.Intent = intent
	a.ws.AddMessage(state.RoleAssistant, reply.Content)
	log.Info("message handled", "latex_changed", reply.LatexChanged, "demo", reply.Demo)
	return reply, nil
}

// persistError marks workspace save failures, which are not masked by
// canned replies.
type persistError struct{ err error }

func (e persistError) Error() string { return e.err.Error() }
func (e persistError) Unwrap() error { return e.err }

func (a *Agent) analyze(ctx context.Context, jd string) (Reply, error) {
	a.ws.SetJobDescription(ctx, jd)
	res := ats.Score(a.ws.Latex(), jd)
	a.ws.SetATS(ctx, &res)

	analysis, err := llm.CompleteWithRetry(ctx, a.provider, llm.Request{
		System:      analyzeSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: analyzePrompt(jd)}},
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	}, a.log)
	if err != nil {
		return Reply{}, fmt.Errorf("analyze job description: %w", err)
	}
	return Reply{Content: analysisReply(strings.TrimSpace(analysis), res), ATS: &res}, nil
}

func (a *Agent) rewrite(ctx context.Context, message string) (Reply, error) {
	if a.ws.JobDescription() == "" {
		return Reply{Content: msgNeedJobDescription}, nil
	}
	out, err := a.RewriteWorkspace(ctx, DefaultInstructions, nil)
	if errors.Is(err, state.ErrConflict) {
		return Reply{Content: msgRewriteConflict}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Content: rewriteReply(out.Before.Score, out.After.Score), ATS: &out.After, LatexChanged: out.Changed}, nil
}

// RewriteOutcome summarises a workspace rewrite.
type RewriteOutcome struct {
	VersionID string
	Before    ats.MatchResult
	After     ats.MatchResult
	Changed   bool
	Result    RewriteResult
}

// RewriteWorkspace saves the current resume as a version, rewrites it
// against the stored job description and makes the result current. Rewrites
// run one at a time. If the resume is edited while a rewrite is running, the
// edit wins and state.ErrConflict is returned.
func (a *Agent) RewriteWorkspace(ctx context.Context, instructions string, progress func(SectionResult)) (RewriteOutcome, error) {
	a.rewriteMu.Lock()
	defer a.rewriteMu.Unlock()

	if a.provider == nil {
		return RewriteOutcome{}, fmt.Errorf("no llm provider configured")
	}
	jd := a.ws.JobDescription()
	if jd == "" {
		return RewriteOutcome{}, fmt.Errorf("no job description")
	}
	current := a.ws.Latex()

	before := ats.Score(current, jd)
	v, err := a.ws.AddVersion(ctx, current, "Before AI rewrite", &before.Score)
	if err != nil {
		return RewriteOutcome{}, persistError{err}
	}

	result := a.rewriter.Rewrite(ctx, RewriteInput{
		Latex:          current,
		JobDescription: jd,
		Knowledge:      a.ws.Knowledge(),
		Instructions:   instructions,
	}, progress)

	if err := a.ws.ReplaceLatex(ctx, current, result.Latex); err != nil {
		if errors.Is(err, state.ErrConflict) {
			return RewriteOutcome{}, fmt.Errorf("store rewrite: %w", err)
		}
		return RewriteOutcome{}, persistError{err}
	}
	after := ats.Score(result.Latex, jd)
	a.ws.SetATS(ctx, &after)

	return RewriteOutcome{
		VersionID: v.ID,
		Before:    before,
		After:     after,
		Changed:   result.Latex != current,
		Result:    result,
	}, nil
}

func (a *Agent) search(_ context.Context, message string) (Reply, error) {
	query := a.ws.JobDescription()
	if query == "" {
		query = message
	}
	items := knowledge.Search(query, a.ws.Knowledge(), a.topK)
	return Reply{Content: searchReply(items)}, nil
}

func (a *Agent) undo(context.Context, string) (Reply, error) {
	return Reply{Content: msgUndo}, nil
}

func (a *Agent) chat(ctx context.Context, _ string) (Reply, error) {
	snap := a.ws.Snapshot()
	history := a.ws.RecentMessages(a.historyLimit)
	// Conversations must open with a user turn.
	for len(history) > 0 && history[0].Role != state.RoleUser {
		history = history[1:]
	}

	msgs := []llm.Message{{Role: llm.RoleSystem, Content: workspaceContext(snap.JobDescription, latex.ExtractText(snap.LatexContent), snap.KnowledgeBase)}}
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == state.RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
	}

	out, err := llm.CompleteWithRetry(ctx, a.provider, llm.Request{
		System:      SystemPrompt,
		Messages:    msgs,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	}, a.log)
	if err != nil {
		return Reply{}, fmt.Errorf("chat: %w", err)
	}
	return Reply{Content: strings.TrimSpace(out)}, nil
}

func (a *Agent) simulateAnalyze(ctx context.Context, jd string) Reply {
	a.ws.SetJobDescription(ctx, jd)
	res := ats.Score(a.ws.Latex(), jd)
	a.ws.SetATS(ctx, &res)
	return Reply{Content: demoAnalysisReply(res), ATS: &res, Demo: true}
}

func (a *Agent) simulateRewrite(context.Context, string) Reply {
	return Reply{Content: msgDemoRewrite, Demo: true}
}

func (a *Agent) simulateChat(context.Context, string) Reply {
	return Reply{Content: msgDemoDefault, Demo: true}
}
