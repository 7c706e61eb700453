package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/rajarshidattapy/resumeness/internal/agent"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	agent.Reply
	HTML string `json:"html"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		jsonError(w, "message is required", http.StatusBadRequest)
		return
	}

	reply, err := s.deps.Agent.Handle(r.Context(), req.Message)
	if err != nil {
		s.log.Error("chat failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, HTML: renderMarkdown(reply.Content)})
}

// renderMarkdown converts an assistant reply to HTML, falling back to the
// raw text if conversion fails.
func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(content), &buf); err != nil {
		return content
	}
	return buf.String()
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"messages": s.ws.Messages()})
}

func (s *Server) handleClearMessages(w http.ResponseWriter, r *http.Request) {
	s.ws.ClearMessages()
	w.WriteHeader(http.StatusNoContent)
}
