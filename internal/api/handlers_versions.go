package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rajarshidattapy/resumeness/internal/ats"
)

func (s *Server) handleListVersions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"versions": s.ws.Versions()})
}

type saveVersionRequest struct {
	Description string `json:"description"`
}

// handleSaveVersion snapshots the current resume, scored against the job
// description when one is set.
func (s *Server) handleSaveVersion(w http.ResponseWriter, r *http.Request) {
	var req saveVersionRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = "Manual save"
	}
	doc := s.ws.Latex()
	var score *int
	if jd := s.ws.JobDescription(); jd != "" {
		res := ats.Score(doc, jd)
		score = &res.Score
	}
	v, err := s.ws.AddVersion(r.Context(), doc, desc, score)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleRestoreVersion(w http.ResponseWriter, r *http.Request) {
	v, err := s.ws.RestoreVersion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"restored": v.ID, "latex": v.Latex})
}

func (s *Server) handleDeleteVersion(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.DeleteVersion(r.Context(), chi.URLParam(r, "id")); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
