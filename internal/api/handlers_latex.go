package api

import (
	"net/http"
	"strings"

	"github.com/rajarshidattapy/resumeness/internal/ats"
	"github.com/rajarshidattapy/resumeness/internal/document"
	"github.com/rajarshidattapy/resumeness/internal/latex"
)

type latexBody struct {
	Latex string `json:"latex"`
}

func (s *Server) handleGetLatex(w http.ResponseWriter, r *http.Request) {
	doc := s.ws.Latex()
	writeJSON(w, http.StatusOK, map[string]any{"latex": doc, "valid": latex.IsValid(doc)})
}

// handlePutLatex stores the document even when its braces are unbalanced;
// the response tells the editor.
func (s *Server) handlePutLatex(w http.ResponseWriter, r *http.Request) {
	var body latexBody
	if !s.decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Latex) == "" {
		jsonError(w, "latex is required", http.StatusBadRequest)
		return
	}
	if err := s.ws.SetLatex(r.Context(), body.Latex); err != nil {
		storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": latex.IsValid(body.Latex)})
}

func (s *Server) handleDownloadLatex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-tex; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="resume.tex"`)
	_, _ = w.Write([]byte(s.ws.Latex()))
}

func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	sections := latex.ParseSections(s.ws.Latex())
	modifiable := []string{}
	for _, sec := range latex.Modifiable(sections) {
		modifiable = append(modifiable, sec.Name)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sections": sections, "modifiable": modifiable})
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(latex.Template(s.ws.Latex())))
}

type reconstructRequest struct {
	Latex        string            `json:"latex"`
	Replacements map[string]string `json:"replacements"`
}

// handleReconstruct rebuilds a document without storing it.
func (s *Server) handleReconstruct(w http.ResponseWriter, r *http.Request) {
	var req reconstructRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	doc := s.docOrWorkspace(req.Latex)
	out := latex.Reconstruct(doc, req.Replacements)
	writeJSON(w, http.StatusOK, map[string]any{"latex": out, "valid": latex.IsValid(out)})
}

type replaceRequest struct {
	Latex   string `json:"latex"`
	Section string `json:"section"`
	Content string `json:"content"`
}

func (s *Server) handleReplaceSection(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Section == "" {
		jsonError(w, "section is required", http.StatusBadRequest)
		return
	}
	doc := s.docOrWorkspace(req.Latex)
	out := latex.ReplaceSection(doc, req.Section, req.Content)
	writeJSON(w, http.StatusOK, map[string]any{"latex": out, "changed": out != doc, "valid": latex.IsValid(out)})
}

func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	var body latexBody
	if !s.decodeJSON(w, r, &body) {
		return
	}
	doc := s.docOrWorkspace(body.Latex)
	writeJSON(w, http.StatusOK, map[string]any{"text": latex.ExtractText(doc), "valid": latex.IsValid(doc)})
}

func (s *Server) docOrWorkspace(doc string) string {
	if doc == "" {
		return s.ws.Latex()
	}
	return doc
}

type jobDescriptionBody struct {
	JobDescription string `json:"job_description"`
}

func (s *Server) handleGetJobDescription(w http.ResponseWriter, r *http.Request) {
	jd := s.ws.JobDescription()
	writeJSON(w, http.StatusOK, map[string]any{"job_description": jd, "keywords": ats.ExtractKeywords(jd)})
}

func (s *Server) handlePutJobDescription(w http.ResponseWriter, r *http.Request) {
	var body jobDescriptionBody
	if !s.decodeJSON(w, r, &body) {
		return
	}
	jd := strings.TrimSpace(body.JobDescription)
	s.ws.SetJobDescription(r.Context(), jd)
	writeJSON(w, http.StatusOK, map[string]any{"job_description": jd, "keywords": ats.ExtractKeywords(jd)})
}

func (s *Server) handleUploadJobDescription(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	text, err := document.ExtractText(data, filename)
	if err != nil {
		jsonError(w, "parse "+filename+": "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		jsonError(w, "no text found in "+filename, http.StatusUnprocessableEntity)
		return
	}
	s.ws.SetJobDescription(r.Context(), text)
	s.log.Info("job description uploaded", "filename", filename, "chars", len(text))
	writeJSON(w, http.StatusOK, map[string]any{
		"filename":        filename,
		"job_description": text,
		"keywords":        ats.ExtractKeywords(text),
	})
}

type atsRequest struct {
	Resume         string `json:"resume"`
	JobDescription string `json:"job_description"`
}

// handleATS scores a resume against a job description, each defaulting to
// the workspace's, and stores the result as the workspace score.
func (s *Server) handleATS(w http.ResponseWriter, r *http.Request) {
	var req atsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	jd := req.JobDescription
	if jd == "" {
		jd = s.ws.JobDescription()
	}
	if jd == "" {
		jsonError(w, "no job description", http.StatusBadRequest)
		return
	}
	res := ats.Score(s.docOrWorkspace(req.Resume), jd)
	s.ws.SetATS(r.Context(), &res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleKeywords(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		text = s.ws.JobDescription()
	}
	writeJSON(w, http.StatusOK, map[string]any{"keywords": ats.ExtractKeywords(text)})
}
