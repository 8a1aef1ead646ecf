package extract

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/veracity/internal/cache"
	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Extractor fetches a URL and returns cleaned plain text. Failure is
// never raised to the caller: any fetch or parse problem yields an empty
// string and a log line.
type Extractor struct {
	fetcher  *Fetcher
	robots   *util.RobotsChecker
	pages    cache.Cache
	cacheTTL model.CacheConfig
	maxChars int
	logger   *slog.Logger
}

// NewExtractor creates a content extractor. The page cache and robots
// checker may be nil to disable them.
func NewExtractor(cfg model.ExtractConfig, proxy model.HTTPConfig, cacheCfg model.CacheConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}

	maxChars := cfg.MaxChars
	if maxChars == 0 {
		maxChars = 8000
	}

	var pages cache.Cache
	if cacheCfg.Enabled {
		pages = cache.NewMemoryCache(cacheCfg.TTL, 2*cacheCfg.TTL)
	}

	var robots *util.RobotsChecker
	if cfg.RespectRobots {
		robots = util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout)
	}

	return &Extractor{
		fetcher:  NewFetcher(cfg, proxy),
		robots:   robots,
		pages:    pages,
		cacheTTL: cacheCfg,
		maxChars: maxChars,
		logger:   logger,
	}
}

// Text fetches the URL and extracts readable plain text, truncated to the
// configured maximum. Returns "" on any failure.
func (e *Extractor) Text(ctx context.Context, rawURL string) string {
	if e.pages != nil {
		if cached, ok := e.pages.Get(cache.Key(rawURL)); ok {
			return string(cached)
		}
	}

	if e.robots != nil && !e.robots.Allowed(ctx, rawURL) {
		e.logger.Debug("skipping disallowed url", "url", rawURL)
		return ""
	}

	html, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		e.logger.Debug("fetch failed", "url", rawURL, "error", err)
		return ""
	}

	text := truncate(ExtractText(html), e.maxChars)

	if e.pages != nil && text != "" {
		_ = e.pages.Set(cache.Key(rawURL), []byte(text), e.cacheTTL.TTL)
	}

	return text
}

// truncate caps text at max bytes without splitting a multi-byte rune,
// so downstream consumers always see valid UTF-8.
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// ExtractText strips non-content markup and returns the page's readable
// text. Precedence: a main/article block if present, else concatenated
// paragraphs, else whole-body text. Whitespace runs collapse to single
// spaces.
func ExtractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript, iframe, nav, header, footer, aside").Remove()

	content := ""

	if main := doc.Find("article, main, div[role='main']").First(); main.Length() > 0 {
		content = main.Text()
	}

	if strings.TrimSpace(content) == "" {
		var parts []string
		doc.Find("p").Each(func(_ int, s *goquery.Selection) {
			if t := strings.TrimSpace(s.Text()); t != "" {
				parts = append(parts, t)
			}
		})
		content = strings.Join(parts, " ")
	}

	if strings.TrimSpace(content) == "" {
		content = doc.Find("body").Text()
	}

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(content, " "))
}
