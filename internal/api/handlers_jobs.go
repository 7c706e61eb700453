package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rajarshidattapy/resumeness/internal/artifact"
	"github.com/rajarshidattapy/resumeness/internal/compiler"
	"github.com/rajarshidattapy/resumeness/internal/jobs"
)

type rewriteRequest struct {
	Instructions string `json:"instructions"`
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if s.deps.Jobs == nil || !s.deps.Agent.HasProvider() {
		jsonError(w, "rewriting needs an llm provider", http.StatusServiceUnavailable)
		return
	}
	if s.ws.JobDescription() == "" {
		jsonError(w, "no job description: paste one before rewriting", http.StatusBadRequest)
		return
	}

	job := jobs.NewJob(strings.TrimSpace(req.Instructions))
	if err := s.deps.Jobs.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.log.Info("rewrite queued", "job_id", job.ID, "queue_depth", s.deps.Jobs.QueueDepth())

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   job.Status(),
		"poll_url": fmt.Sprintf("/api/rewrite/%s/status", job.ID),
	})
}

func (s *Server) handleRewriteStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.Jobs == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	job := s.deps.Jobs.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleCompile compiles the supplied LaTeX, or the workspace resume, and
// returns the PDF. With an artifact store configured the PDF is also
// stored and its key returned in X-Artifact-Key.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var body latexBody
	if !s.decodeJSON(w, r, &body) {
		return
	}
	if s.deps.Compiler == nil {
		jsonError(w, "compiler unavailable", http.StatusServiceUnavailable)
		return
	}

	pdf, err := s.deps.Compiler.Compile(r.Context(), s.docOrWorkspace(body.Latex))
	if err != nil {
		var cerr *compiler.CompileError
		if errors.As(err, &cerr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "compilation failed", "logs": cerr.Logs})
			return
		}
		s.log.Error("compile failed", "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	if s.deps.Artifacts != nil {
		key := artifact.ObjectKey(s.cfg.WorkspaceID, uuid.NewString(), time.Now())
		if err := s.deps.Artifacts.Put(r.Context(), key, pdf, "application/pdf"); err != nil {
			s.log.Error("store artifact failed", "key", key, "error", err)
		} else {
			w.Header().Set("X-Artifact-Key", key)
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="resume.pdf"`)
	_, _ = w.Write(pdf)
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.Stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider": s.deps.Provider,
		"stats":    s.deps.Stats.Snapshot(),
	})
}
