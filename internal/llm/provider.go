package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// Provider defines the interface for verdict backends.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Chat issues one synchronous, non-streaming chat request and
	// returns the raw response content.
	Chat(ctx context.Context, prompt string) (string, error)

	// IsAvailable checks if the provider is reachable.
	IsAvailable(ctx context.Context) bool

	// EnsureReady blocks until the backend and the configured model are
	// usable, or returns an error after the bounded retry budget. A
	// failure here is fatal: the system cannot operate without it.
	EnsureReady(ctx context.Context) error
}

// NewProvider creates a provider from configuration.
func NewProvider(cfg model.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "ollama", "":
		return NewOllamaProvider(cfg), nil

	case "openai":
		return NewOpenAIProvider(cfg)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: ollama, openai)", cfg.Provider)
	}
}

// BuildPrompt constructs the grounded fact-check prompt. The verdict
// label set is injected from configuration: the vocabulary has changed
// across deployments and is not a fixed contract.
func BuildPrompt(statement string, evidence string, labels []string) string {
	return fmt.Sprintf(`Fact-check this statement using the provided evidence:

Statement: %q

Evidence:
%s

Respond with JSON only, no other text:
{
    "verdict": "one of: %s",
    "explanation": "brief explanation grounded in the evidence"
}`, statement, evidence, strings.Join(labels, " / "))
}
