package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/veracity/internal/model"
)

// stubProvider returns a canned response or error.
type stubProvider struct {
	response string
	err      error
	prompts  []string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Chat(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubProvider) IsAvailable(_ context.Context) bool  { return s.err == nil }
func (s *stubProvider) EnsureReady(_ context.Context) error { return s.err }

var testLabels = []string{"True", "False", "Partially True", "Unable to Verify"}

func TestSynthesize_ValidVerdict(t *testing.T) {
	provider := &stubProvider{response: `{"verdict": "True", "explanation": "The evidence supports the claim."}`}
	s := NewSynthesizer(provider, testLabels, nil)

	verdict := s.Synthesize(context.Background(), "the sky is blue", "From example.com: the sky is blue.")

	if verdict.Label != "True" {
		t.Errorf("Expected label True, got %q", verdict.Label)
	}
	if verdict.Explanation != "The evidence supports the claim." {
		t.Errorf("Unexpected explanation: %q", verdict.Explanation)
	}
}

func TestSynthesize_ProseWrappedJSON(t *testing.T) {
	provider := &stubProvider{response: "Sure, here is the verdict:\n```json\n{\"verdict\": \"False\", \"explanation\": \"Contradicted.\"}\n```\nHope that helps."}
	s := NewSynthesizer(provider, testLabels, nil)

	verdict := s.Synthesize(context.Background(), "claim", "evidence")

	if verdict.Label != "False" {
		t.Errorf("Expected fenced JSON parsed, got %q", verdict.Label)
	}
}

func TestSynthesize_TransportFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection refused")}
	s := NewSynthesizer(provider, testLabels, nil)

	verdict := s.Synthesize(context.Background(), "claim", "evidence")

	if verdict.Label != model.UnableToVerify {
		t.Errorf("Expected fallback label, got %q", verdict.Label)
	}
	if !strings.Contains(verdict.Explanation, "connection refused") {
		t.Errorf("Expected cause in explanation, got %q", verdict.Explanation)
	}
}

func TestSynthesize_MalformedPayload(t *testing.T) {
	provider := &stubProvider{response: "I think the claim is probably true but I cannot produce JSON."}
	s := NewSynthesizer(provider, testLabels, nil)

	verdict := s.Synthesize(context.Background(), "claim", "evidence")

	if verdict.Label != model.UnableToVerify {
		t.Errorf("Expected fallback label for unparseable response, got %q", verdict.Label)
	}
}

func TestSynthesize_ClampsUnknownLabel(t *testing.T) {
	provider := &stubProvider{response: `{"verdict": "Mostly Legit", "explanation": "Made-up label."}`}
	s := NewSynthesizer(provider, testLabels, nil)

	verdict := s.Synthesize(context.Background(), "claim", "evidence")

	if verdict.Label != model.UnableToVerify {
		t.Errorf("Expected out-of-set label clamped, got %q", verdict.Label)
	}
	if verdict.Explanation != "Made-up label." {
		t.Errorf("Expected explanation preserved, got %q", verdict.Explanation)
	}
}

func TestSynthesize_PromptCarriesLabelsAndEvidence(t *testing.T) {
	provider := &stubProvider{response: `{"verdict": "True", "explanation": "ok"}`}
	s := NewSynthesizer(provider, testLabels, nil)

	s.Synthesize(context.Background(), "water is wet", "From example.com: water is wet.")

	if len(provider.prompts) != 1 {
		t.Fatalf("Expected 1 chat call, got %d", len(provider.prompts))
	}
	prompt := provider.prompts[0]
	if !strings.Contains(prompt, "water is wet") {
		t.Error("Expected statement in prompt")
	}
	if !strings.Contains(prompt, "From example.com") {
		t.Error("Expected evidence in prompt")
	}
	if !strings.Contains(prompt, strings.Join(testLabels, " / ")) {
		t.Error("Expected label vocabulary in prompt")
	}
}

func TestParseVerdict(t *testing.T) {
	cases := []struct {
		name    string
		content string
		ok      bool
		label   string
	}{
		{"bare json", `{"verdict": "True", "explanation": "x"}`, true, "True"},
		{"leading prose", `verdict follows {"verdict": "False", "explanation": "x"} done`, true, "False"},
		{"no object", "no structure at all", false, ""},
		{"empty verdict", `{"verdict": "", "explanation": "x"}`, false, ""},
		{"broken json", `{"verdict": "True"`, false, ""},
	}

	for _, c := range cases {
		v, ok := parseVerdict(c.content)
		if ok != c.ok {
			t.Errorf("%s: ok = %v, want %v", c.name, ok, c.ok)
		}
		if ok && v.Label != c.label {
			t.Errorf("%s: label = %q, want %q", c.name, v.Label, c.label)
		}
	}
}
