package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenRouterModels maps the short model names accepted in configuration to
// OpenRouter model ids. Names not listed are sent as given.
var OpenRouterModels = map[string]string{
	"mistral-7b": "mistralai/mistral-7b-instruct:free",
	"gemma-7b":   "google/gemma-7b-it:free",
	"llama-3-8b": "meta-llama/llama-3-8b-instruct:free",
	"phi-3-mini": "microsoft/phi-3-mini-128k-instruct:free",
}

// OpenRouterClient calls the OpenRouter chat completions API.
type OpenRouterClient struct {
	baseURL    string
	apiKey     string
	model      string
	Referer    string
	httpClient *http.Client
}

func NewOpenRouterClient(baseURL, apiKey, model string, timeout time.Duration) *OpenRouterClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if id, ok := OpenRouterModels[model]; ok {
		model = id
	}
	return &OpenRouterClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		Referer: "http://localhost:8090",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *OpenRouterClient) Name() string { return "openrouter" }

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Complete sends a non-streaming chat completion request.
func (c *OpenRouterClient) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if err := checkStatus(resp.StatusCode, respBody, "openrouter"); err != nil {
		return "", err
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("openrouter error: %s", apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", nil
	}
	return apiResp.Choices[0].Message.Content, nil
}

// Stream sends a streaming request and calls onDelta for each content
// fragment of the server-sent event stream. It returns the concatenated
// reply. Lines that are not valid JSON events are skipped.
func (c *OpenRouterClient) Stream(ctx context.Context, req Request, onDelta func(string) error) (string, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return "", checkStatus(resp.StatusCode, body, "openrouter")
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
		if data == "[DONE]" {
			break
		}
		var ev chatResponse
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			continue
		}
		if len(ev.Choices) == 0 || ev.Choices[0].Delta.Content == "" {
			continue
		}
		delta := ev.Choices[0].Delta.Content
		full.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return full.String(), err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("read stream: %w", err)
	}
	return full.String(), nil
}

func (c *OpenRouterClient) post(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	req = req.withDefaults()
	msgs := make([]Message, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: req.System})
	}
	msgs = append(msgs, req.Messages...)

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("HTTP-Referer", c.Referer)
	httpReq.Header.Set("X-Title", "Resumeness")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter api: %w", err)
	}
	return resp, nil
}

// checkStatus maps 429 and 5xx responses to RetryableError and any other
// non-200 status to a plain error.
func checkStatus(code int, body []byte, api string) error {
	if code == http.StatusTooManyRequests || code >= 500 {
		return &RetryableError{
			StatusCode: code,
			Message:    string(body),
		}
	}
	if code != http.StatusOK {
		return fmt.Errorf("%s api status %d: %s", api, code, truncate(string(body), 500))
	}
	return nil
}

// Close releases resources.
func (c *OpenRouterClient) Close() {
	c.httpClient.CloseIdleConnections()
}
