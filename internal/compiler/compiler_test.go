package compiler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileReturnsPDF(t *testing.T) {
	var got buildRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.5 fake"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	pdf, err := c.Compile(t.Context(), `\documentclass{article}`)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.5 fake", string(pdf))

	assert.Equal(t, "pdflatex", got.Compiler)
	require.Len(t, got.Resources, 1)
	assert.True(t, got.Resources[0].Main)
	assert.Equal(t, `\documentclass{article}`, got.Resources[0].Content)
}

func TestCompileFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantLogs    string
	}{
		{"json logs", http.StatusBadRequest, "application/json", `{"logs":"! Undefined control sequence."}`, "! Undefined control sequence."},
		{"json error", http.StatusOK, "application/json", `{"error":"timeout"}`, "timeout"},
		{"json without logs", http.StatusOK, "application/json", `{}`, "unknown compilation error"},
		{"plain text", http.StatusBadGateway, "text/plain", "upstream down", "upstream down"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "xelatex", time.Second).Compile(t.Context(), "x")
			var cerr *CompileError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tc.status, cerr.StatusCode)
			assert.Equal(t, tc.wantLogs, cerr.Logs)
		})
	}
}

func TestCompileErrorTruncatesLogs(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	err := &CompileError{StatusCode: 400, Logs: string(long) + "tail"}
	assert.Contains(t, err.Error(), "tail")
	assert.Less(t, len(err.Error()), 400)
}

func TestInspectRejectsGarbage(t *testing.T) {
	_, err := Inspect([]byte("not a pdf"))
	assert.Error(t, err)
}
