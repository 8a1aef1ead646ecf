package model

import "testing"

func TestNormalizeClaim(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  the sky is blue  ", "the sky is blue"},
		{"\n\ttabs and newlines\t\n", "tabs and newlines"},
		{"   ", ""},
		{"", ""},
	}

	for _, c := range cases {
		if got := NormalizeClaim(c.in); got != c.want {
			t.Errorf("NormalizeClaim(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidLabel(t *testing.T) {
	labels := DefaultConfig().LLM.Labels

	for _, l := range labels {
		if !ValidLabel(l, labels) {
			t.Errorf("Expected %q valid", l)
		}
	}
	if !ValidLabel(UnableToVerify, labels) {
		t.Error("Expected fallback label in default vocabulary")
	}
	if ValidLabel("true", labels) {
		t.Error("Expected label match to be case-sensitive")
	}
	if ValidLabel("Probably", labels) {
		t.Error("Expected unknown label rejected")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Discovery.MaxSources != 5 {
		t.Errorf("Expected 5 max sources, got %d", cfg.Discovery.MaxSources)
	}
	if cfg.Discovery.AttemptBudget != 15 {
		t.Errorf("Expected attempt budget 15, got %d", cfg.Discovery.AttemptBudget)
	}
	if cfg.Extract.MaxChars != 8000 || cfg.Extract.MinChars != 100 {
		t.Errorf("Unexpected extract bounds: %d/%d", cfg.Extract.MaxChars, cfg.Extract.MinChars)
	}
	if len(cfg.Discovery.Blacklist) == 0 {
		t.Error("Expected a non-empty default blacklist")
	}
	if cfg.Rank.SourceSentences != 5 || cfg.Rank.DigestSentences != 10 {
		t.Errorf("Unexpected sentence budgets: %d/%d", cfg.Rank.SourceSentences, cfg.Rank.DigestSentences)
	}
}
