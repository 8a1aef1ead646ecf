package llm

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// Synthesizer obtains a structured verdict for a claim from the backend.
// It never returns an error: transport failures and malformed payloads
// degrade to the "Unable to Verify" fallback verdict.
type Synthesizer struct {
	provider Provider
	labels   []string
	logger   *slog.Logger
}

// NewSynthesizer creates a verdict synthesizer.
func NewSynthesizer(provider Provider, labels []string, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	if len(labels) == 0 {
		labels = model.DefaultConfig().LLM.Labels
	}

	return &Synthesizer{
		provider: provider,
		labels:   labels,
		logger:   logger,
	}
}

// Synthesize builds the grounded prompt from the evidence digest, issues
// one blocking chat request, and parses the structured verdict. The
// returned label is always a member of the configured vocabulary.
func (s *Synthesizer) Synthesize(ctx context.Context, statement string, digest string) model.Verdict {
	prompt := BuildPrompt(statement, digest, s.labels)

	content, err := s.provider.Chat(ctx, prompt)
	if err != nil {
		s.logger.Warn("verdict request failed", "provider", s.provider.Name(), "error", err)
		return model.Verdict{
			Label:       model.UnableToVerify,
			Explanation: "The verification backend could not be reached: " + err.Error(),
		}
	}

	verdict, ok := parseVerdict(content)
	if !ok {
		s.logger.Warn("verdict response was not valid JSON", "preview", preview(content))
		return model.Verdict{
			Label:       model.UnableToVerify,
			Explanation: "Failed to parse model response as a structured verdict",
		}
	}

	if !model.ValidLabel(verdict.Label, s.labels) {
		s.logger.Warn("clamping out-of-set verdict label", "label", verdict.Label)
		verdict.Label = model.UnableToVerify
	}

	return verdict
}

// parseVerdict extracts {verdict, explanation} from the response content.
// Models often wrap the JSON in prose or code fences; the first balanced
// object in the content is used.
func parseVerdict(content string) (model.Verdict, bool) {
	var v model.Verdict

	candidate := content
	if start := strings.Index(candidate, "{"); start >= 0 {
		if end := strings.LastIndex(candidate, "}"); end > start {
			candidate = candidate[start : end+1]
		}
	}

	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return model.Verdict{}, false
	}
	if v.Label == "" {
		return model.Verdict{}, false
	}

	return v, true
}

func preview(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
