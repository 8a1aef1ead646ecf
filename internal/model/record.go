package model

import "strings"

// SearchHit is a single normalized result from the search backend.
// Raw results expose the URL under inconsistent keys (url/link/href);
// normalization happens once at the search boundary.
type SearchHit struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// SourceRecord is an accepted, ranked evidence document from one domain.
// It is created only after successful extraction and ranking, and is
// immutable once appended to a source set.
type SourceRecord struct {
	Domain  string `json:"domain"`
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary"`
}

// Verdict is the structured judgment returned by the LLM backend.
type Verdict struct {
	Label       string `json:"verdict"`
	Explanation string `json:"explanation"`
}

// FactCheckRecord is the broadcastable unit combining a claim and its
// verdict. Field names match the wire schema consumed by subscribers.
type FactCheckRecord struct {
	Statement   string `json:"statement"`
	Result      string `json:"result"`
	Explanation string `json:"explanation"`
}

// NormalizeClaim trims the submitted statement. An empty result means the
// claim is invalid and must be rejected at the boundary.
func NormalizeClaim(statement string) string {
	return strings.TrimSpace(statement)
}

// ValidLabel reports whether label is a member of the configured verdict
// vocabulary. The vocabulary is configuration, not a fixed contract.
func ValidLabel(label string, labels []string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// UnableToVerify is the fallback label used whenever the backend cannot
// produce a usable verdict. It is always part of the vocabulary.
const UnableToVerify = "Unable to Verify"
