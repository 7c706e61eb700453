// Package compiler turns LaTeX source into PDF through a remote build
// service.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rajarshidattapy/resumeness/internal/document"
)

// DocumentCompiler compiles a complete LaTeX document to PDF bytes.
type DocumentCompiler interface {
	Compile(ctx context.Context, latex string) ([]byte, error)
}

// CompileError carries the build log of a failed compilation.
type CompileError struct {
	StatusCode int
	Logs       string
}

func (e *CompileError) Error() string {
	logs := e.Logs
	if len(logs) > 300 {
		logs = "..." + logs[len(logs)-300:]
	}
	return fmt.Sprintf("compilation failed (status %d): %s", e.StatusCode, logs)
}

const maxPDFBytes = 32 << 20

// Client talks to a latex.ytotech.com compatible build endpoint.
type Client struct {
	url        string
	engine     string
	httpClient *http.Client
}

func NewClient(url, engine string, timeout time.Duration) *Client {
	if engine == "" {
		engine = "pdflatex"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		url:    url,
		engine: engine,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type resource struct {
	Main    bool   `json:"main"`
	Content string `json:"content"`
}

type buildRequest struct {
	Compiler  string     `json:"compiler"`
	Resources []resource `json:"resources"`
}

type buildFailure struct {
	Logs  string `json:"logs"`
	Error string `json:"error"`
}

// Compile posts latex as the main resource. A response typed
// application/pdf is the document; anything else is a failure whose JSON
// "logs" field, when present, becomes the CompileError log.
func (c *Client) Compile(ctx context.Context, latex string) ([]byte, error) {
	body, err := json.Marshal(buildRequest{
		Compiler:  c.engine,
		Resources: []resource{{Main: true, Content: latex}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("compiler api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if resp.StatusCode < 300 && mediaType == "application/pdf" {
		return respBody, nil
	}

	cerr := &CompileError{StatusCode: resp.StatusCode, Logs: strings.TrimSpace(string(respBody))}
	var failure buildFailure
	if json.Unmarshal(respBody, &failure) == nil {
		switch {
		case failure.Logs != "":
			cerr.Logs = failure.Logs
		case failure.Error != "":
			cerr.Logs = failure.Error
		default:
			cerr.Logs = "unknown compilation error"
		}
	}
	return nil, cerr
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Report summarises a compiled PDF.
type Report struct {
	Pages int    `json:"pages"`
	Text  string `json:"text"`
}

// Inspect reads back a compiled PDF so its text can be scored the way a
// screening system would see it.
func Inspect(pdf []byte) (Report, error) {
	pages, err := document.PDFPages(pdf)
	if err != nil {
		return Report{}, err
	}
	return Report{Pages: len(pages), Text: strings.TrimSpace(strings.Join(pages, "\n"))}, nil
}
