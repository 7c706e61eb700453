// Package api serves the resume workspace over HTTP: chat, LaTeX editing,
// ATS scoring, the knowledge base, version history, background rewrites
// and PDF compilation.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rajarshidattapy/resumeness/internal/agent"
	"github.com/rajarshidattapy/resumeness/internal/artifact"
	"github.com/rajarshidattapy/resumeness/internal/compiler"
	"github.com/rajarshidattapy/resumeness/internal/config"
	"github.com/rajarshidattapy/resumeness/internal/jobs"
	"github.com/rajarshidattapy/resumeness/internal/llm"
	"github.com/rajarshidattapy/resumeness/internal/state"
)

// Deps are the collaborators behind the routes. Jobs, Compiler, Artifacts
// and Stats may be nil; their routes then answer 503.
type Deps struct {
	Workspace *state.Workspace
	Agent     *agent.Agent
	Jobs      *jobs.Orchestrator
	Compiler  compiler.DocumentCompiler
	Artifacts artifact.Store
	Stats     *llm.Stats
	// Provider names the configured LLM provider, "none" in demo mode.
	Provider string
}

// Server is the HTTP API server for resumeness.
type Server struct {
	router chi.Router
	deps   Deps
	ws     *state.Workspace
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	if deps.Provider == "" {
		deps.Provider = config.ProviderNone
	}
	s := &Server{
		deps: deps,
		ws:   deps.Workspace,
		log:  log,
		cfg:  cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/chat", s.handleChat)
		r.Get("/api/messages", s.handleListMessages)
		r.Delete("/api/messages", s.handleClearMessages)

		r.Get("/api/latex", s.handleGetLatex)
		r.Put("/api/latex", s.handlePutLatex)
		r.Get("/api/latex/download", s.handleDownloadLatex)
		r.Get("/api/latex/sections", s.handleSections)
		r.Get("/api/latex/template", s.handleTemplate)
		r.Post("/api/latex/reconstruct", s.handleReconstruct)
		r.Post("/api/latex/replace", s.handleReplaceSection)
		r.Post("/api/latex/text", s.handleExtractText)

		r.Get("/api/job-description", s.handleGetJobDescription)
		r.Put("/api/job-description", s.handlePutJobDescription)
		r.Post("/api/job-description/upload", s.handleUploadJobDescription)
		r.Post("/api/ats", s.handleATS)
		r.Get("/api/keywords", s.handleKeywords)

		r.Get("/api/knowledge", s.handleListKnowledge)
		r.Post("/api/knowledge", s.handleAddKnowledge)
		r.Get("/api/knowledge/search", s.handleSearchKnowledge)
		r.Post("/api/knowledge/import", s.handleImportKnowledge)
		r.Put("/api/knowledge/{id}", s.handleUpdateKnowledge)
		r.Delete("/api/knowledge/{id}", s.handleDeleteKnowledge)

		r.Get("/api/versions", s.handleListVersions)
		r.Post("/api/versions", s.handleSaveVersion)
		r.Post("/api/versions/{id}/restore", s.handleRestoreVersion)
		r.Delete("/api/versions/{id}", s.handleDeleteVersion)

		r.Post("/api/rewrite", s.handleRewrite)
		r.Get("/api/rewrite/{jobID}/status", s.handleRewriteStatus)
		r.Post("/api/compile", s.handleCompile)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"provider": s.deps.Provider,
		"demo":     !s.deps.Agent.HasProvider(),
	})
}
