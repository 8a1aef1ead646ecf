package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/veracity/internal/model"
	"github.com/ppiankov/veracity/internal/util"
)

// DuckDuckGo queries the HTML (non-JS) DuckDuckGo endpoint and parses the
// result list. No API key required; results are best-effort and may be
// empty for obscure queries.
type DuckDuckGo struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// DuckDuckGoOption customizes the client.
type DuckDuckGoOption func(*DuckDuckGo)

// WithBaseURL overrides the endpoint, used by tests.
func WithBaseURL(base string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.baseURL = strings.TrimSuffix(base, "/")
	}
}

// NewDuckDuckGo creates a search client.
func NewDuckDuckGo(cfg model.SearchConfig, userAgent string, proxy model.HTTPConfig, opts ...DuckDuckGoOption) *DuckDuckGo {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	d := &DuckDuckGo{
		baseURL: "https://html.duckduckgo.com/html",
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(proxy.HTTPProxy, proxy.HTTPSProxy, proxy.NoProxy),
			},
		},
		userAgent: userAgent,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Search runs a single query and returns up to max normalized hits.
func (d *DuckDuckGo) Search(ctx context.Context, query string, max int) ([]model.SearchHit, error) {
	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	var raw []map[string]string
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if max > 0 && len(raw) >= max {
			return false
		}

		link := s.Find("a.result__a")
		href, _ := link.Attr("href")

		raw = append(raw, map[string]string{
			"href":    resolveRedirect(href),
			"title":   link.Text(),
			"snippet": s.Find("a.result__snippet").Text(),
		})
		return true
	})

	return NormalizeHits(raw), nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<encoded> redirect links
// into the destination URL. Unwrapped links pass through unchanged.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}

	if uddg := parsed.Query().Get("uddg"); uddg != "" {
		if dest, err := url.QueryUnescape(uddg); err == nil {
			return dest
		}
	}

	// Protocol-relative redirect targets
	if parsed.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}

	return href
}
