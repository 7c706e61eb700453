package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajarshidattapy/resumeness/internal/agent"
	"github.com/rajarshidattapy/resumeness/internal/artifact"
	"github.com/rajarshidattapy/resumeness/internal/ats"
	"github.com/rajarshidattapy/resumeness/internal/events"
)

const resume = `\documentclass{article}
\begin{document}
\section{Experience}
\item Built things
\section{Skills}
Go
\end{document}`

type fakeWorkspace struct{ jd string }

func (f fakeWorkspace) Latex() string          { return resume }
func (f fakeWorkspace) JobDescription() string { return f.jd }

type fakeRewriter struct {
	sections []agent.SectionResult
	valid    bool
	err      error
	calls    int
}

func (f *fakeRewriter) RewriteWorkspace(_ context.Context, instructions string, progress func(agent.SectionResult)) (agent.RewriteOutcome, error) {
	f.calls++
	if f.err != nil {
		return agent.RewriteOutcome{}, f.err
	}
	for _, s := range f.sections {
		progress(s)
	}
	return agent.RewriteOutcome{
		VersionID: "v1",
		Before:    ats.MatchResult{Score: 40},
		After:     ats.MatchResult{Score: 80},
		Changed:   true,
		Result:    agent.RewriteResult{Latex: resume, Valid: f.valid, Sections: f.sections},
	}, nil
}

type fakeCompiler struct{ err error }

func (f fakeCompiler) Compile(context.Context, string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func statuses(rec *events.Recorder) []Status {
	var out []Status
	for _, e := range rec.Events() {
		out = append(out, e.Data.(Snapshot).Status)
	}
	return out
}

func bothRewritten() []agent.SectionResult {
	return []agent.SectionResult{{Name: "Experience", Rewritten: true}, {Name: "Skills", Rewritten: true}}
}

func TestJobStateTransitions(t *testing.T) {
	job := NewJob("focus on Go")
	assert.Equal(t, StatusQueued, job.Status())
	assert.NotEmpty(t, job.ID)

	for _, st := range []Status{StatusAnalyzing, StatusRewriting, StatusValidating, StatusCompleted} {
		before := job.UpdatedAt()
		time.Sleep(time.Millisecond)
		job.SetStatus(st, string(st))
		snap := job.Snapshot()
		assert.Equal(t, st, snap.Status)
		assert.Equal(t, string(st), snap.Phase)
		assert.True(t, snap.UpdatedAt.After(before))
	}
	assert.True(t, job.Status().Finished())
}

func TestJobSnapshotIsACopy(t *testing.T) {
	job := NewJob("")
	snap := job.Snapshot()
	require.NotNil(t, snap.Progress.Errors)
	assert.Empty(t, snap.Progress.Errors)
	assert.Nil(t, snap.ATSBefore)

	job.AddError("boom")
	job.SetOutcome("v1", 10, 20)
	snap = job.Snapshot()
	snap.Progress.Errors[0] = "changed"
	*snap.ATSAfter = 99

	again := job.Snapshot()
	assert.Equal(t, []string{"boom"}, again.Progress.Errors)
	assert.Equal(t, 20, *again.ATSAfter)
	assert.Equal(t, "v1", again.VersionID)
}

func TestStoreCleanup(t *testing.T) {
	s := NewStore(time.Minute)
	done := NewJob("")
	done.SetStatus(StatusCompleted, "done")
	running := NewJob("")
	running.SetStatus(StatusRewriting, "rewriting")
	s.Put(done)
	s.Put(running)

	assert.Equal(t, 0, s.Cleanup(time.Now()))
	assert.Equal(t, 1, s.Cleanup(time.Now().Add(2*time.Minute)))
	assert.Nil(t, s.Get(done.ID))
	assert.NotNil(t, s.Get(running.ID))
	assert.Equal(t, 1, s.Len())
}

func TestWorkerCompleted(t *testing.T) {
	rec := &events.Recorder{}
	w := NewWorker(Deps{
		Workspace: fakeWorkspace{jd: "Go"},
		Rewriter:  &fakeRewriter{sections: bothRewritten(), valid: true},
		Events:    rec,
		Log:       quietLogger(),
	}, nil)
	job := NewJob("")
	w.Process(t.Context(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, Progress{TotalSections: 2, SectionsProcessed: 2, SectionsRewritten: 2, Errors: []string{}}, snap.Progress)
	assert.Equal(t, 40, *snap.ATSBefore)
	assert.Equal(t, 80, *snap.ATSAfter)
	assert.Equal(t, "v1", snap.VersionID)
	assert.Empty(t, snap.ArtifactKey)

	assert.Equal(t, []Status{StatusAnalyzing, StatusRewriting, StatusValidating, StatusCompleted}, statuses(rec))
	for _, e := range rec.Events() {
		assert.Equal(t, events.TypeRewriteStatus, e.Type)
		assert.Equal(t, job.ID, e.Subject)
	}
}

func TestWorkerOutcomes(t *testing.T) {
	cases := []struct {
		name     string
		jd       string
		rewriter *fakeRewriter
		want     Status
		errPart  string
		calls    int
	}{
		{
			name:     "no job description",
			rewriter: &fakeRewriter{},
			want:     StatusFailed,
			errPart:  "no job description",
		},
		{
			name:     "rewrite error",
			jd:       "Go",
			rewriter: &fakeRewriter{err: errors.New("disk full")},
			want:     StatusFailed,
			errPart:  "rewrite: disk full",
			calls:    1,
		},
		{
			name: "some sections failed",
			jd:   "Go",
			rewriter: &fakeRewriter{valid: true, sections: []agent.SectionResult{
				{Name: "Experience", Rewritten: true},
				{Name: "Skills", Error: "timeout"},
			}},
			want:    StatusPartial,
			errPart: "section Skills: timeout",
			calls:   1,
		},
		{
			name: "every section failed",
			jd:   "Go",
			rewriter: &fakeRewriter{valid: true, sections: []agent.SectionResult{
				{Name: "Experience", Error: "timeout"},
				{Name: "Skills", Error: "timeout"},
			}},
			want:    StatusFailed,
			errPart: "section Experience: timeout",
			calls:   1,
		},
		{
			name:     "unbalanced result",
			jd:       "Go",
			rewriter: &fakeRewriter{sections: bothRewritten()},
			want:     StatusFailed,
			errPart:  "unbalanced braces",
			calls:    1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWorker(Deps{Workspace: fakeWorkspace{jd: tc.jd}, Rewriter: tc.rewriter, Log: quietLogger()}, nil)
			job := NewJob("")
			w.Process(t.Context(), job)

			snap := job.Snapshot()
			assert.Equal(t, tc.want, snap.Status)
			assert.Equal(t, tc.calls, tc.rewriter.calls)
			found := false
			for _, e := range snap.Progress.Errors {
				found = found || strings.Contains(e, tc.errPart)
			}
			assert.True(t, found, "errors %v lack %q", snap.Progress.Errors, tc.errPart)
		})
	}
}

func TestWorkerCompilesAndStoresArtifact(t *testing.T) {
	store := artifact.NewMemoryStore()
	rec := &events.Recorder{}
	w := NewWorker(Deps{
		Workspace:           fakeWorkspace{jd: "Go"},
		WorkspaceID:         "default",
		Rewriter:            &fakeRewriter{sections: bothRewritten(), valid: true},
		Compiler:            fakeCompiler{},
		Artifacts:           store,
		Events:              rec,
		Log:                 quietLogger(),
		CompileAfterRewrite: true,
	}, nil)
	job := NewJob("")
	w.Process(t.Context(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	want := artifact.ObjectKey("default", job.ID, time.Now())
	assert.Equal(t, want, snap.ArtifactKey)
	data, err := store.Get(t.Context(), snap.ArtifactKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 fake"), data)
	assert.Contains(t, statuses(rec), StatusCompiling)
}

func TestWorkerCompileFailureIsPartial(t *testing.T) {
	w := NewWorker(Deps{
		Workspace:           fakeWorkspace{jd: "Go"},
		Rewriter:            &fakeRewriter{sections: bothRewritten(), valid: true},
		Compiler:            fakeCompiler{err: errors.New("undefined control sequence")},
		Artifacts:           artifact.NewMemoryStore(),
		Log:                 quietLogger(),
		CompileAfterRewrite: true,
	}, nil)
	job := NewJob("")
	w.Process(t.Context(), job)

	snap := job.Snapshot()
	assert.Equal(t, StatusPartial, snap.Status)
	assert.Equal(t, []string{"compile: undefined control sequence"}, snap.Progress.Errors)
	assert.Empty(t, snap.ArtifactKey)
}

func TestOrchestratorQueueFull(t *testing.T) {
	o := NewOrchestrator(Deps{
		Workspace: fakeWorkspace{jd: "Go"},
		Rewriter:  &fakeRewriter{sections: bothRewritten(), valid: true},
		Log:       quietLogger(),
	}, 1, 1, time.Hour)

	first := NewJob("")
	require.NoError(t, o.Submit(first))
	second := NewJob("")
	err := o.Submit(second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
	assert.Equal(t, StatusFailed, second.Status())
	assert.Equal(t, "queue_full", second.Snapshot().Phase)
	assert.Equal(t, 1, o.QueueDepth())
	assert.Same(t, second, o.GetJob(second.ID))

	o.Start(t.Context())
	require.Eventually(t, func() bool { return first.Status().Finished() }, 2*time.Second, 10*time.Millisecond)
	o.Stop()
	assert.Equal(t, StatusCompleted, first.Status())
}

func TestWorkersShareRewriteLock(t *testing.T) {
	var mu sync.Mutex
	w1 := NewWorker(Deps{Workspace: fakeWorkspace{}, Log: quietLogger()}, &mu)
	w2 := NewWorker(Deps{Workspace: fakeWorkspace{}, Log: quietLogger()}, &mu)
	assert.Same(t, w1.mu, w2.mu)
}

func TestOrchestratorSubmitAfterStop(t *testing.T) {
	o := NewOrchestrator(Deps{
		Workspace: fakeWorkspace{jd: "Go"},
		Rewriter:  &fakeRewriter{sections: bothRewritten(), valid: true},
		Log:       quietLogger(),
	}, 1, 4, time.Hour)
	o.Start(t.Context())
	o.Stop()

	job := NewJob("")
	var err error
	require.NotPanics(t, func() { err = o.Submit(job) })
	require.ErrorIs(t, err, ErrStopped)
	assert.Equal(t, StatusFailed, job.Status())
	assert.Equal(t, "shutting_down", job.Snapshot().Phase)
	assert.Equal(t, 0, o.QueueDepth())

	require.NotPanics(t, o.Stop)
}
