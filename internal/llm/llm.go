// Package llm wraps the chat-completion providers the agent talks to behind
// a single TextCompletionProvider interface.
package llm

import (
	"context"
	"fmt"

	"github.com/rajarshidattapy/resumeness/internal/config"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral completion request. System is sent the way
// each provider expects a system prompt; Messages should not repeat it.
type Request struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// TextCompletionProvider produces a single assistant reply for a request.
type TextCompletionProvider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// New builds the provider selected by cfg.LLMProvider. It returns a nil
// provider and no error when no provider is configured.
func New(ctx context.Context, cfg config.Config) (TextCompletionProvider, error) {
	switch cfg.LLMProvider {
	case config.ProviderNone, "":
		return nil, nil
	case config.ProviderOpenRouter:
		return NewOpenRouterClient(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.LLMTimeout), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.LLMTimeout), nil
	case config.ProviderGemini:
		c, err := NewGeminiClient(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

// withDefaults fills in temperature and token limits left at zero.
func (r Request) withDefaults() Request {
	if r.Temperature == 0 {
		r.Temperature = 0.7
	}
	if r.MaxTokens <= 0 {
		r.MaxTokens = 2048
	}
	return r
}
