package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/ppiankov/veracity/internal/model"
)

// Searcher yields search hits for a query. Implementations return at most
// max hits and may return an empty slice without error.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]model.SearchHit, error)
}

// NormalizeHits converts raw result maps into typed SearchHits. Raw
// backends expose the URL under different keys (url, link, href); hits
// with no usable URL are dropped here, once, at the boundary.
func NormalizeHits(raw []map[string]string) []model.SearchHit {
	var hits []model.SearchHit
	for _, r := range raw {
		u := firstNonEmpty(r["url"], r["link"], r["href"])
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if _, err := url.ParseRequestURI(u); err != nil {
			continue
		}
		hits = append(hits, model.SearchHit{
			URL:     u,
			Title:   strings.TrimSpace(r["title"]),
			Snippet: strings.TrimSpace(firstNonEmpty(r["snippet"], r["body"])),
		})
	}
	return hits
}

// Domain extracts the registrable host from a URL, lowercased and with
// any www. prefix removed. Returns "" for unparseable URLs.
func Domain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
