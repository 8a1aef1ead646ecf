package discover

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/search"
)

// escalationQueries are the reformulated queries tried, in order, when
// the pending-hit queue runs dry before enough sources are accepted.
var escalationQueries = []string{
	"fact check %s",
	"verify %s",
	"debunk %s",
	"%s analysis",
	"%s evidence",
	"%s research",
}

// ContentSource turns a URL into cleaned plain text. Empty means the URL
// yielded nothing usable.
type ContentSource interface {
	Text(ctx context.Context, url string) string
}

// SourceSummarizer produces the claim-relevant summary of one source.
type SourceSummarizer interface {
	Summarize(ctx context.Context, claim string, text string) string
}

// Engine drives the search-and-filter loop that produces a deduplicated,
// domain-diverse evidence set for a claim.
type Engine struct {
	searcher   search.Searcher
	content    ContentSource
	summarizer SourceSummarizer
	cfg        model.DiscoveryConfig
	maxPerHit  int
	minChars   int
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewEngine creates a discovery engine. minChars is the acceptance
// threshold for extracted text length.
func NewEngine(searcher search.Searcher, content ContentSource, summarizer SourceSummarizer, cfg model.DiscoveryConfig, searchCfg model.SearchConfig, minChars int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxSources == 0 {
		cfg.MaxSources = 5
	}
	if cfg.AttemptBudget == 0 {
		cfg.AttemptBudget = 15
	}

	delay := cfg.RequestDelay
	if delay == 0 {
		delay = time.Second
	}
	if minChars == 0 {
		minChars = 100
	}

	return &Engine{
		searcher:   searcher,
		content:    content,
		summarizer: summarizer,
		cfg:        cfg,
		maxPerHit:  searchCfg.MaxResults,
		minChars:   minChars,
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
		logger:     logger,
	}
}

// Discover consumes seed hits plus escalating reformulated queries until
// it has accepted the desired number of sources, exhausted the attempt
// budget, or run out of queries. It returns an empty set, not an error,
// when nothing qualifies.
func (e *Engine) Discover(ctx context.Context, claim string, seed []model.SearchHit) []model.SourceRecord {
	desired := e.cfg.MaxSources
	if len(seed) > 0 && len(seed) < desired {
		desired = len(seed)
	}

	queue := append([]model.SearchHit(nil), seed...)
	nextQuery := 0

	processed := make(map[string]bool)
	acceptedDomains := make(map[string]bool)

	var accepted []model.SourceRecord

	for attempts := 0; attempts < e.cfg.AttemptBudget && len(accepted) < desired; {
		if len(queue) == 0 {
			if nextQuery >= len(escalationQueries) {
				break
			}
			query := fmt.Sprintf(escalationQueries[nextQuery], claim)
			nextQuery++

			hits, err := e.searcher.Search(ctx, query, e.maxPerHit)
			if err != nil {
				e.logger.Warn("escalation search failed", "query", query, "error", err)
				continue
			}
			e.logger.Debug("escalation search", "query", query, "hits", len(hits))
			queue = append(queue, hits...)
			continue
		}

		hit := queue[0]
		queue = queue[1:]
		attempts++

		if hit.URL == "" {
			continue
		}
		if processed[hit.URL] {
			continue
		}
		processed[hit.URL] = true

		domain := search.Domain(hit.URL)
		if domain == "" {
			continue
		}
		if e.blacklisted(domain) {
			e.logger.Debug("skipping blacklisted domain", "domain", domain)
			continue
		}
		if acceptedDomains[domain] {
			continue
		}

		// Pace fetches against target hosts.
		if err := e.limiter.Wait(ctx); err != nil {
			break
		}

		text := e.content.Text(ctx, hit.URL)
		if len(strings.TrimSpace(text)) <= e.minChars {
			e.logger.Debug("insufficient content", "url", hit.URL, "chars", len(text))
			continue
		}

		summary := e.summarizer.Summarize(ctx, claim, text)

		acceptedDomains[domain] = true
		accepted = append(accepted, model.SourceRecord{
			Domain:  domain,
			URL:     hit.URL,
			Title:   hit.Title,
			Summary: summary,
		})

		e.logger.Info("accepted source", "domain", domain, "url", hit.URL)
	}

	return accepted
}

// blacklisted reports whether the domain matches a configured low-signal
// domain, including subdomains.
func (e *Engine) blacklisted(domain string) bool {
	for _, b := range e.cfg.Blacklist {
		if domain == b || strings.HasSuffix(domain, "."+b) {
			return true
		}
	}
	return false
}
