package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/veracity/internal/discover"
	"github.com/ppiankov/veracity/internal/extract"
	"github.com/ppiankov/veracity/internal/llm"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/rank"
	"github.com/ppiankov/veracity/internal/search"
)

// Checker orchestrates one fact check: discovery, extraction,
// summarization, and verdict synthesis. Every stage boundary converts
// internal faults into a degraded-but-valid record; no fault escapes to
// the transport layer.
type Checker struct {
	searcher    search.Searcher
	engine      *discover.Engine
	summarizer  *rank.Summarizer
	synthesizer *llm.Synthesizer
	forwarder   *Forwarder
	cfg         *model.Config
	logger      *slog.Logger
}

// NewChecker wires the full pipeline from configuration.
func NewChecker(cfg *model.Config, searcher search.Searcher, embedder rank.Embedder, provider llm.Provider, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}

	summarizer := rank.NewSummarizer(embedder, cfg.Rank)
	extractor := extract.NewExtractor(cfg.Extract, cfg.HTTP, cfg.Cache, logger)
	engine := discover.NewEngine(searcher, extractor, summarizer, cfg.Discovery, cfg.Search, cfg.Extract.MinChars, logger)

	var forwarder *Forwarder
	if cfg.Hub.ForwardURL != "" {
		forwarder = NewForwarder(cfg.Hub, logger)
	}

	return &Checker{
		searcher:    searcher,
		engine:      engine,
		summarizer:  summarizer,
		synthesizer: llm.NewSynthesizer(provider, cfg.LLM.Labels, logger),
		forwarder:   forwarder,
		cfg:         cfg,
		logger:      logger,
	}
}

// Check verifies a claim and returns the broadcastable record. The claim
// must already be trimmed and non-empty; that invariant is enforced at
// the transport boundary. Every produced record, fallback ones included,
// is forwarded to the hub.
func (c *Checker) Check(ctx context.Context, statement string) model.FactCheckRecord {
	record := c.check(ctx, statement)

	if c.forwarder != nil {
		c.forwarder.Forward(ctx, record)
	}

	return record
}

func (c *Checker) check(ctx context.Context, statement string) model.FactCheckRecord {
	c.logger.Info("checking statement", "statement", statement)

	hits := c.gatherHits(ctx, statement)
	if len(hits) == 0 {
		c.logger.Info("no search hits", "statement", statement)
		return model.FactCheckRecord{
			Statement:   statement,
			Result:      model.UnableToVerify,
			Explanation: "No relevant sources found to verify the claim.",
		}
	}

	sources := c.engine.Discover(ctx, statement, hits)
	if len(sources) == 0 {
		c.logger.Info("no usable sources", "statement", statement)
		return model.FactCheckRecord{
			Statement:   statement,
			Result:      model.UnableToVerify,
			Explanation: "No relevant sources found to verify the claim.",
		}
	}

	digest := c.summarizer.Digest(ctx, statement, sources)

	verdict := c.synthesizer.Synthesize(ctx, statement, digest)

	return model.FactCheckRecord{
		Statement:   statement,
		Result:      verdict.Label,
		Explanation: appendSources(verdict.Explanation, sources),
	}
}

// gatherHits merges the initial query with the fixed secondary
// "fact check" query. Search failures degrade to whatever the other
// query produced.
func (c *Checker) gatherHits(ctx context.Context, statement string) []model.SearchHit {
	max := c.cfg.Search.MaxResults

	var hits []model.SearchHit

	primary, err := c.searcher.Search(ctx, statement, max)
	if err != nil {
		c.logger.Warn("primary search failed", "error", err)
	} else {
		hits = append(hits, primary...)
	}

	secondary, err := c.searcher.Search(ctx, fmt.Sprintf("fact check %s", statement), max)
	if err != nil {
		c.logger.Warn("secondary search failed", "error", err)
	} else {
		hits = append(hits, secondary...)
	}

	return hits
}

// appendSources attaches the contributing source URLs to the model's
// explanation, one per line.
func appendSources(explanation string, sources []model.SourceRecord) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(explanation))
	b.WriteString("\n\nSources:")
	for _, s := range sources {
		b.WriteString("\n")
		b.WriteString(s.URL)
	}
	return b.String()
}
