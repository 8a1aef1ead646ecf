package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ppiankov/veracity/internal/model"
)

func TestOllamaProvider_Chat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Expected path /api/chat, got %s", r.URL.Path)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Model != "mistral" {
			t.Errorf("Expected model mistral, got %s", req.Model)
		}
		if req.Stream {
			t.Error("Expected non-streaming request")
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("Unexpected messages: %+v", req.Messages)
		}

		resp := chatResponse{
			Model:   "mistral",
			Message: chatMessage{Role: "assistant", Content: `  {"verdict": "True", "explanation": "ok"}  `},
			Done:    true,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewOllamaProvider(model.LLMConfig{BaseURL: server.URL, Model: "mistral"})

	content, err := provider.Chat(context.Background(), "check this")
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if content != `{"verdict": "True", "explanation": "ok"}` {
		t.Errorf("Expected trimmed content, got %q", content)
	}
}

func TestOllamaProvider_ChatAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(apiError{Error: "model 'missing' not found"})
	}))
	defer server.Close()

	provider := NewOllamaProvider(model.LLMConfig{BaseURL: server.URL, Model: "missing"})

	_, err := provider.Chat(context.Background(), "prompt")
	if err == nil {
		t.Fatal("Expected error for API failure")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/version" {
			t.Errorf("Expected path /api/version, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"version": "0.5.0"}`))
	}))
	defer server.Close()

	provider := NewOllamaProvider(model.LLMConfig{BaseURL: server.URL})
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider available")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider unavailable after close")
	}
}

func TestOllamaProvider_EnsureReadyModelPresent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/version":
			_, _ = w.Write([]byte(`{"version": "0.5.0"}`))
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models": [{"name": "mistral:latest"}]}`))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	provider := NewOllamaProvider(model.LLMConfig{BaseURL: server.URL, Model: "mistral"})

	if err := provider.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady failed: %v", err)
	}
}

func TestOllamaProvider_EnsureReadyPullsMissingModel(t *testing.T) {
	var pulled bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/version":
			_, _ = w.Write([]byte(`{"version": "0.5.0"}`))
		case "/api/tags":
			if pulled {
				_, _ = w.Write([]byte(`{"models": [{"name": "mistral:latest"}]}`))
			} else {
				_, _ = w.Write([]byte(`{"models": []}`))
			}
		case "/api/pull":
			var req pullRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("Failed to decode pull request: %v", err)
			}
			if req.Name != "mistral" {
				t.Errorf("Expected pull of mistral, got %s", req.Name)
			}
			pulled = true
			_, _ = w.Write([]byte(`{"status": "success"}`))
		default:
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	provider := NewOllamaProvider(model.LLMConfig{
		BaseURL:         server.URL,
		Model:           "mistral",
		StartupAttempts: 1,
		StartupInterval: time.Millisecond,
	})

	if err := provider.EnsureReady(context.Background()); err != nil {
		t.Fatalf("EnsureReady failed: %v", err)
	}
	if !pulled {
		t.Error("Expected model pull to be triggered")
	}
}

func TestNewProvider(t *testing.T) {
	if _, err := NewProvider(model.LLMConfig{Provider: "ollama"}); err != nil {
		t.Errorf("Expected ollama provider, got error: %v", err)
	}
	if _, err := NewProvider(model.LLMConfig{Provider: ""}); err != nil {
		t.Errorf("Expected default provider, got error: %v", err)
	}
	if _, err := NewProvider(model.LLMConfig{Provider: "openai", APIKey: "sk-test"}); err != nil {
		t.Errorf("Expected openai provider, got error: %v", err)
	}
	if _, err := NewProvider(model.LLMConfig{Provider: "carrier-pigeon"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}
