package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rajarshidattapy/resumeness/internal/document"
	"github.com/rajarshidattapy/resumeness/internal/knowledge"
	"github.com/rajarshidattapy/resumeness/internal/snippet"
)

func (s *Server) handleListKnowledge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": s.ws.Knowledge()})
}

func (s *Server) handleAddKnowledge(w http.ResponseWriter, r *http.Request) {
	var it knowledge.Item
	if !s.decodeJSON(w, r, &it) {
		return
	}
	check := it
	if err := knowledge.Validate(&check); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	added, err := s.ws.AddKnowledge(r.Context(), it)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added[0])
}

func (s *Server) handleUpdateKnowledge(w http.ResponseWriter, r *http.Request) {
	var patch knowledge.Item
	if !s.decodeJSON(w, r, &patch) {
		return
	}
	if patch.Type != "" && !patch.Type.Valid() {
		jsonError(w, "invalid type "+strconv.Quote(string(patch.Type)), http.StatusBadRequest)
		return
	}
	it, err := s.ws.UpdateKnowledge(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleDeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.RemoveKnowledge(r.Context(), chi.URLParam(r, "id")); err != nil {
		storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSearchKnowledge ranks the knowledge base against q, or the job
// description when q is empty.
func (s *Server) handleSearchKnowledge(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		q = s.ws.JobDescription()
	}
	if q == "" {
		jsonError(w, "q is required when no job description is set", http.StatusBadRequest)
		return
	}
	k := s.cfg.SearchTopK
	if v := r.URL.Query().Get("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "k must be a non-negative integer", http.StatusBadRequest)
			return
		}
		k = n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"results": knowledge.SearchScored(q, s.ws.Knowledge(), k),
	})
}

// handleImportKnowledge turns an uploaded document into knowledge items.
// The optional "type" form field sets the type of snippets found under no
// recognised resume heading.
func (s *Server) handleImportKnowledge(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	fallback := knowledge.ItemType(r.FormValue("type"))
	if fallback != "" && !fallback.Valid() {
		jsonError(w, "invalid type "+strconv.Quote(string(fallback)), http.StatusBadRequest)
		return
	}

	tree, err := document.Parse(data, filename)
	if err != nil {
		jsonError(w, "parse "+filename+": "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	items := knowledge.FromTree(tree, fallback, snippet.DefaultConfig())
	if len(items) == 0 {
		jsonError(w, "no usable passages found in "+filename, http.StatusUnprocessableEntity)
		return
	}
	added, err := s.ws.AddKnowledge(r.Context(), items...)
	if err != nil {
		storeError(w, err)
		return
	}
	s.log.Info("knowledge imported", "filename", filename, "items", len(added))
	writeJSON(w, http.StatusCreated, map[string]any{"filename": filename, "items": added})
}
