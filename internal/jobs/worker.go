package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rajarshidattapy/resumeness/internal/agent"
	"github.com/rajarshidattapy/resumeness/internal/artifact"
	"github.com/rajarshidattapy/resumeness/internal/compiler"
	"github.com/rajarshidattapy/resumeness/internal/events"
	"github.com/rajarshidattapy/resumeness/internal/latex"
)

// Rewriter rewrites the workspace resume against its job description.
// *agent.Agent satisfies it.
type Rewriter interface {
	RewriteWorkspace(ctx context.Context, instructions string, progress func(agent.SectionResult)) (agent.RewriteOutcome, error)
}

// Workspace is the read side of the workspace a worker rewrites.
type Workspace interface {
	Latex() string
	JobDescription() string
}

// Deps are the collaborators a worker needs. Compiler and Artifacts are
// optional; without both, jobs finish after validation.
type Deps struct {
	Workspace   Workspace
	WorkspaceID string
	Rewriter    Rewriter
	Compiler    compiler.DocumentCompiler
	Artifacts   artifact.Store
	Events      events.Publisher
	Log         *slog.Logger

	// CompileAfterRewrite turns on the compiling phase.
	CompileAfterRewrite bool
}

// Worker processes a single rewrite job.
type Worker struct {
	deps Deps
	// mu serialises rewrites of the shared workspace across workers.
	mu *sync.Mutex
}

func NewWorker(deps Deps, mu *sync.Mutex) *Worker {
	if deps.Events == nil {
		deps.Events = events.Noop{}
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Worker{deps: deps, mu: mu}
}

// Process runs the full rewrite pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.deps.Log.With("job_id", job.ID)
	w.mu.Lock()
	defer w.mu.Unlock()

	// Phase 1: Analyze
	w.transition(ctx, job, StatusAnalyzing, "analyzing")
	if w.deps.Workspace.JobDescription() == "" {
		log.Warn("no job description")
		job.AddError("no job description: paste one before rewriting")
		w.transition(ctx, job, StatusFailed, "analyzing")
		return
	}
	sections := latex.Modifiable(latex.ParseSections(w.deps.Workspace.Latex()))
	job.SetTotalSections(len(sections))
	if len(sections) == 0 {
		log.Warn("no modifiable sections")
		job.AddError("resume has no modifiable sections")
		w.transition(ctx, job, StatusFailed, "analyzing")
		return
	}

	// Phase 2: Rewrite sections with bounded concurrency.
	w.transition(ctx, job, StatusRewriting, "rewriting")
	out, err := w.deps.Rewriter.RewriteWorkspace(ctx, job.Instructions, func(r agent.SectionResult) {
		job.SectionDone(r.Rewritten)
		if r.Error != "" {
			job.AddError(fmt.Sprintf("section %s: %s", r.Name, r.Error))
		}
	})
	if err != nil {
		log.Error("rewrite failed", "error", err)
		job.AddError(fmt.Sprintf("rewrite: %s", err))
		w.transition(ctx, job, StatusFailed, "rewriting")
		return
	}
	job.SetOutcome(out.VersionID, out.Before.Score, out.After.Score)
	rewritten := out.Result.Rewritten()
	log.Info("rewrite complete", "rewritten", rewritten, "ats_before", out.Before.Score, "ats_after", out.After.Score)

	// Phase 3: Validate
	w.transition(ctx, job, StatusValidating, "validating")
	hadErrors := len(job.Snapshot().Progress.Errors) > 0
	if !out.Result.Valid {
		job.AddError("rewritten document has unbalanced braces; original kept")
		w.transition(ctx, job, StatusFailed, "validating")
		return
	}
	if hadErrors && rewritten == 0 {
		w.transition(ctx, job, StatusFailed, "validating")
		return
	}

	// Phase 4: Compile and store the PDF.
	if w.deps.CompileAfterRewrite && w.deps.Compiler != nil && w.deps.Artifacts != nil {
		w.transition(ctx, job, StatusCompiling, "compiling")
		if err := w.compile(ctx, job, out.Result.Latex); err != nil {
			log.Error("compile failed", "error", err)
			job.AddError(fmt.Sprintf("compile: %s", err))
			hadErrors = true
		}
	}

	if hadErrors {
		w.transition(ctx, job, StatusPartial, "done")
	} else {
		w.transition(ctx, job, StatusCompleted, "done")
	}
}

func (w *Worker) compile(ctx context.Context, job *Job, doc string) error {
	pdf, err := w.deps.Compiler.Compile(ctx, doc)
	if err != nil {
		return err
	}
	pages := 0
	if report, err := compiler.Inspect(pdf); err != nil {
		w.deps.Log.Warn("inspect compiled pdf failed", "job_id", job.ID, "error", err)
	} else {
		pages = report.Pages
	}
	key := artifact.ObjectKey(w.deps.WorkspaceID, job.ID, time.Now())
	if err := w.deps.Artifacts.Put(ctx, key, pdf, "application/pdf"); err != nil {
		return fmt.Errorf("store artifact: %w", err)
	}
	job.SetArtifact(key, pages)
	return nil
}

// transition sets the job status and publishes it. Publish failures are
// logged only.
func (w *Worker) transition(ctx context.Context, job *Job, status Status, phase string) {
	job.SetStatus(status, phase)
	e := events.NewEvent(events.TypeRewriteStatus, job.ID, job.Snapshot())
	if err := w.deps.Events.Publish(context.WithoutCancel(ctx), e); err != nil {
		w.deps.Log.Warn("publish job status failed", "job_id", job.ID, "status", status, "error", err)
	}
}
