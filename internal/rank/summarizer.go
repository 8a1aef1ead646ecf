package rank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// Summarizer compresses text down to the sentences most relevant to a
// claim. Two modes share one mechanism: per-source summaries during
// extraction, and a combined cross-source digest before verdict
// synthesis.
type Summarizer struct {
	embedder Embedder
	cfg      model.RankConfig
}

// NewSummarizer creates a summarizer backed by the given embedder.
func NewSummarizer(embedder Embedder, cfg model.RankConfig) *Summarizer {
	if cfg.SourceSentences == 0 {
		cfg.SourceSentences = 5
	}
	if cfg.DigestSentences == 0 {
		cfg.DigestSentences = 10
	}
	if cfg.MinSentenceChars == 0 {
		cfg.MinSentenceChars = 20
	}

	return &Summarizer{
		embedder: embedder,
		cfg:      cfg,
	}
}

// Summarize selects the sentences of text most similar to the claim and
// reassembles them in their original textual order. When no sentence
// survives the length filter, or embedding fails, the input is returned
// unchanged; this function never errors and never returns empty for
// non-empty input.
func (s *Summarizer) Summarize(ctx context.Context, claim string, text string) string {
	return s.selectSentences(ctx, claim, text, s.cfg.SourceSentences)
}

// Digest compresses an arbitrary number of accepted sources into one
// bounded text, tagging each source's summary with its domain.
func (s *Summarizer) Digest(ctx context.Context, claim string, sources []model.SourceRecord) string {
	var blob strings.Builder
	for _, src := range sources {
		fmt.Fprintf(&blob, "\nFrom %s:\n%s\n", src.Domain, src.Summary)
	}

	return s.selectSentences(ctx, claim, blob.String(), s.cfg.DigestSentences)
}

func (s *Summarizer) selectSentences(ctx context.Context, claim string, text string, topK int) string {
	sentences := SplitSentences(text, s.cfg.MinSentenceChars)
	if len(sentences) == 0 {
		return text
	}

	if len(sentences) <= topK {
		return joinSentences(sentences)
	}

	inputs := make([]string, 0, len(sentences)+1)
	inputs = append(inputs, claim)
	inputs = append(inputs, sentences...)

	vectors, err := s.embedder.Embed(ctx, inputs)
	if err != nil || len(vectors) != len(inputs) {
		// Embedding failure degrades to the unranked input rather than
		// dropping the source.
		return text
	}

	claimVec := vectors[0]

	type scored struct {
		index int
		score float64
	}

	ranked := make([]scored, len(sentences))
	for i := range sentences {
		ranked[i] = scored{
			index: i,
			score: cosineSimilarity(claimVec, vectors[i+1]),
		}
	}

	// Stable selection: equal scores keep original order.
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	kept := ranked[:topK]
	sort.Slice(kept, func(a, b int) bool {
		return kept[a].index < kept[b].index
	})

	selected := make([]string, len(kept))
	for i, k := range kept {
		selected[i] = sentences[k.index]
	}

	return joinSentences(selected)
}

// SplitSentences segments text on terminal punctuation and discards
// fragments shorter than minChars.
func SplitSentences(text string, minChars int) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		sentence = strings.TrimRight(sentence, ".!?")
		sentence = strings.TrimSpace(sentence)
		if len(sentence) >= minChars {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			flush()
		}
	}
	flush()

	return sentences
}

func joinSentences(sentences []string) string {
	return strings.Join(sentences, ". ") + "."
}
