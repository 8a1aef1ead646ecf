package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ppiankov/veracity/internal/model"
)

// OllamaProvider implements the Provider interface for a local Ollama
// inference service.
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
	cfg        model.LLMConfig
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

type apiError struct {
	Error string `json:"error"`
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(cfg model.LLMConfig) *OllamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second // local models can be slow
	}

	return &OllamaProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cfg: cfg,
	}
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// IsAvailable probes the version endpoint.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/version", nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// EnsureReady verifies the backend is reachable, starting the server and
// polling up to the configured attempt budget if it is not, then verifies
// the configured model is locally available, pulling it once if missing.
func (p *OllamaProvider) EnsureReady(ctx context.Context) error {
	if !p.IsAvailable(ctx) {
		fmt.Fprintf(os.Stderr, "Ollama server is not running at %s. Attempting to start...\n", p.baseURL)

		cmd := exec.Command("ollama", "serve")
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("start ollama: %w", err)
		}

		attempts := p.cfg.StartupAttempts
		if attempts == 0 {
			attempts = 30
		}
		interval := p.cfg.StartupInterval
		if interval == 0 {
			interval = time.Second
		}

		started := false
		for i := 0; i < attempts; i++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
			if p.IsAvailable(ctx) {
				started = true
				break
			}
		}
		if !started {
			return fmt.Errorf("ollama did not become reachable after %d attempts", attempts)
		}

		fmt.Fprintf(os.Stderr, "Ollama server started\n")
	}

	return p.ensureModel(ctx)
}

// ensureModel checks that the configured model is present and triggers a
// one-time pull if it is not.
func (p *OllamaProvider) ensureModel(ctx context.Context) error {
	present, err := p.hasModel(ctx)
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Model %s not found. Pulling...\n", p.cfg.Model)

	body, err := json.Marshal(pullRequest{Name: p.cfg.Model, Stream: false})
	if err != nil {
		return fmt.Errorf("marshal pull request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create pull request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Pulls can run far longer than chat requests.
	pullClient := &http.Client{}
	resp, err := pullClient.Do(req)
	if err != nil {
		return fmt.Errorf("pull model %s: %w", p.cfg.Model, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	present, err = p.hasModel(ctx)
	if err != nil {
		return err
	}
	if !present {
		return fmt.Errorf("model %s is not available after pull", p.cfg.Model)
	}

	fmt.Fprintf(os.Stderr, "Model %s pulled successfully\n", p.cfg.Model)
	return nil
}

func (p *OllamaProvider) hasModel(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("list models: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("list models: unexpected status %d", resp.StatusCode)
	}

	var tags tagsResponse
	if err := json.Unmarshal(respBody, &tags); err != nil {
		return false, fmt.Errorf("unmarshal tags: %w", err)
	}

	for _, m := range tags.Models {
		if m.Name == p.cfg.Model || strings.TrimSuffix(m.Name, ":latest") == p.cfg.Model {
			return true, nil
		}
	}
	return false, nil
}

// Chat sends one non-streaming chat request and returns the content.
func (p *OllamaProvider) Chat(ctx context.Context, prompt string) (string, error) {
	apiReq := chatRequest{
		Model: p.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return strings.TrimSpace(parsed.Message.Content), nil
}
