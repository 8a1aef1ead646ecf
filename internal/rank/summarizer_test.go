package rank

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/veracity/internal/model"
)

// fakeEmbedder serves vectors from a fixed table keyed by input text.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		vec, ok := f.vectors[t]
		if !ok {
			vec = []float32{0, 1}
		}
		out = append(out, vec)
	}
	return out, nil
}

func TestSplitSentences(t *testing.T) {
	text := "First usable sentence here. Tiny. Second usable sentence there! Third usable sentence goes on?"

	got := SplitSentences(text, 20)
	want := []string{
		"First usable sentence here",
		"Second usable sentence there",
		"Third usable sentence goes on",
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitSentences = %v, want %v", got, want)
	}
}

func TestSplitSentences_TrailingFragment(t *testing.T) {
	got := SplitSentences("A complete closing thought without punctuation", 20)

	if len(got) != 1 || got[0] != "A complete closing thought without punctuation" {
		t.Errorf("Expected trailing fragment kept, got %v", got)
	}
}

func TestSummarize_SelectsTopKInOriginalOrder(t *testing.T) {
	claim := "the moon landing happened"
	text := "Alpha sentence about weather today. Bravo sentence about the moon landing. Charlie sentence about cooking pasta. Delta sentence about moon landing proof."

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		claim:                                     {1, 0},
		"Alpha sentence about weather today":      {0, 1},
		"Bravo sentence about the moon landing":   {0.9, 0.1},
		"Charlie sentence about cooking pasta":    {0.1, 0.9},
		"Delta sentence about moon landing proof": {0.8, 0.2},
	}}

	s := NewSummarizer(embedder, model.RankConfig{SourceSentences: 2})

	got := s.Summarize(context.Background(), claim, text)
	want := "Bravo sentence about the moon landing. Delta sentence about moon landing proof."

	if got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}

func TestSummarize_TiesKeepOriginalOrder(t *testing.T) {
	claim := "anything"
	text := "First identical scoring sentence here. Second identical scoring sentence here. Third identical scoring sentence here."

	// All sentences score the same against the claim.
	embedder := &fakeEmbedder{vectors: map[string][]float32{claim: {1, 0}}}

	s := NewSummarizer(embedder, model.RankConfig{SourceSentences: 1})

	got := s.Summarize(context.Background(), claim, text)

	if got != "First identical scoring sentence here." {
		t.Errorf("Expected first sentence to win ties, got %q", got)
	}
}

func TestSummarize_ShortTextPassesThrough(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	s := NewSummarizer(embedder, model.RankConfig{SourceSentences: 5})

	text := "Only one qualifying sentence lives here. And a second one right behind it."
	got := s.Summarize(context.Background(), "claim", text)
	want := "Only one qualifying sentence lives here. And a second one right behind it."

	if got != want {
		t.Errorf("Expected sentences joined without ranking, got %q", got)
	}
}

func TestSummarize_NoQualifyingSentences(t *testing.T) {
	embedder := &fakeEmbedder{}
	s := NewSummarizer(embedder, model.RankConfig{})

	text := "Tiny. Bits. Only."
	if got := s.Summarize(context.Background(), "claim", text); got != text {
		t.Errorf("Expected input unchanged, got %q", got)
	}
}

func TestSummarize_EmbedFailureDegrades(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("backend down")}
	s := NewSummarizer(embedder, model.RankConfig{SourceSentences: 1})

	text := "First qualifying sentence stands alone. Second qualifying sentence stands alone. Third qualifying sentence stands alone."
	if got := s.Summarize(context.Background(), "claim", text); got != text {
		t.Errorf("Expected unranked input on embed failure, got %q", got)
	}
}

func TestDigest_TagsSourceDomains(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	s := NewSummarizer(embedder, model.RankConfig{DigestSentences: 10})

	sources := []model.SourceRecord{
		{Domain: "example.com", Summary: "Evidence from the first site."},
		{Domain: "example.org", Summary: "Evidence from the second site."},
	}

	got := s.Digest(context.Background(), "claim", sources)

	if !strings.Contains(got, "From example.com") || !strings.Contains(got, "From example.org") {
		t.Errorf("Expected domain tags in digest, got %q", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("Expected parallel vectors near 1, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("Expected orthogonal vectors at 0, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{1}); got != 0 {
		t.Errorf("Expected mismatched lengths at 0, got %f", got)
	}
	if got := cosineSimilarity([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("Expected zero vector at 0, got %f", got)
	}
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("Expected path /api/embeddings, got %s", r.URL.Path)
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Model != "test-embed" {
			t.Errorf("Expected model test-embed, got %s", req.Model)
		}

		_ = json.NewEncoder(w).Encode(embeddingResponse{Embedding: []float32{float32(len(req.Prompt)), 1}})
	}))
	defer server.Close()

	embedder := NewOllamaEmbedder(model.RankConfig{BaseURL: server.URL, EmbedModel: "test-embed"})

	vectors, err := embedder.Embed(context.Background(), []string{"a", "longer text"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("Expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 1 || vectors[1][0] != 11 {
		t.Errorf("Unexpected vectors: %v", vectors)
	}
}

func TestOllamaEmbedder_EmptyEmbedding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(embeddingResponse{})
	}))
	defer server.Close()

	embedder := NewOllamaEmbedder(model.RankConfig{BaseURL: server.URL, EmbedModel: "test-embed"})

	if _, err := embedder.Embed(context.Background(), []string{"text"}); err == nil {
		t.Fatal("Expected error for empty embedding")
	}
}
