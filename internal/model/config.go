package model

import "time"

// Config is the complete veracity configuration. Values are layered from
// defaults, the config file, VERACITY_* environment variables, and flags.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Hub       HubConfig       `yaml:"hub" mapstructure:"hub"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Rank      RankConfig      `yaml:"rank" mapstructure:"rank"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	HTTP      HTTPConfig      `yaml:"http" mapstructure:"http"`
}

// ServerConfig configures the fact-check API server.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// HubConfig configures the broadcast hub service and the forwarder that
// pushes completed records to it.
type HubConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	// Path is the websocket subscribe endpoint.
	Path string `yaml:"path" mapstructure:"path"`
	// ForwardURL is the publish endpoint the checker forwards records to.
	// Empty disables forwarding.
	ForwardURL string        `yaml:"forward_url" mapstructure:"forward_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// SearchConfig configures the search backend client.
type SearchConfig struct {
	// MaxResults is the per-query result cap requested from the backend.
	MaxResults int           `yaml:"max_results" mapstructure:"max_results"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DiscoveryConfig bounds the source discovery loop.
type DiscoveryConfig struct {
	// MaxSources caps the size of the accepted source set.
	MaxSources int `yaml:"max_sources" mapstructure:"max_sources"`
	// AttemptBudget is the total number of dequeued hits the loop will
	// consider before giving up, duplicates included.
	AttemptBudget int `yaml:"attempt_budget" mapstructure:"attempt_budget"`
	// RequestDelay paces fetches against target hosts.
	RequestDelay time.Duration `yaml:"request_delay" mapstructure:"request_delay"`
	// Blacklist holds low-signal domains skipped during discovery.
	Blacklist []string `yaml:"blacklist" mapstructure:"blacklist"`
}

// ExtractConfig configures content fetching and extraction.
type ExtractConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	// MaxChars truncates extracted text.
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
	// MinChars is the minimum trimmed length for a source to be accepted.
	MinChars int `yaml:"min_chars" mapstructure:"min_chars"`
	// RespectRobots enables robots.txt checks before fetching.
	RespectRobots bool `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// RankConfig configures semantic summarization.
type RankConfig struct {
	// EmbedModel is the sentence embedding model identifier.
	EmbedModel string        `yaml:"embed_model" mapstructure:"embed_model"`
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// SourceSentences is the top-K for per-source summaries.
	SourceSentences int `yaml:"source_sentences" mapstructure:"source_sentences"`
	// DigestSentences is the top-K for the combined cross-source digest.
	DigestSentences int `yaml:"digest_sentences" mapstructure:"digest_sentences"`
	// MinSentenceChars drops fragments below this length.
	MinSentenceChars int `yaml:"min_sentence_chars" mapstructure:"min_sentence_chars"`
}

// LLMConfig configures the verdict backend.
type LLMConfig struct {
	// Provider name: "ollama" or "openai".
	Provider string        `yaml:"provider" mapstructure:"provider"`
	Model    string        `yaml:"model" mapstructure:"model"`
	APIKey   string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Labels is the versioned verdict vocabulary. Out-of-set labels from
	// the backend are clamped to "Unable to Verify".
	Labels []string `yaml:"labels" mapstructure:"labels"`
	// StartupAttempts and StartupInterval bound the readiness probe loop
	// run before the first request.
	StartupAttempts int           `yaml:"startup_attempts" mapstructure:"startup_attempts"`
	StartupInterval time.Duration `yaml:"startup_interval" mapstructure:"startup_interval"`
}

// CacheConfig configures the extracted-page cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// HTTPConfig holds outbound proxy settings shared by all HTTP clients.
type HTTPConfig struct {
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
		},
		Hub: HubConfig{
			Addr:       ":8001",
			Path:       "/ws",
			ForwardURL: "http://localhost:8001/send-fact-check",
			Timeout:    5 * time.Second,
		},
		Search: SearchConfig{
			MaxResults: 5,
			Timeout:    10 * time.Second,
		},
		Discovery: DiscoveryConfig{
			MaxSources:    5,
			AttemptBudget: 15,
			RequestDelay:  time.Second,
			Blacklist: []string{
				"facebook.com",
				"twitter.com",
				"x.com",
				"instagram.com",
				"tiktok.com",
				"reddit.com",
				"quora.com",
				"answers.com",
				"pinterest.com",
				"amazon.com",
				"ebay.com",
			},
		},
		Extract: ExtractConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			MaxBodyBytes: 2 << 20,
			MaxChars:     8000,
			MinChars:     100,
		},
		Rank: RankConfig{
			EmbedModel:       "nomic-embed-text",
			BaseURL:          "http://localhost:11434",
			Timeout:          30 * time.Second,
			SourceSentences:  5,
			DigestSentences:  10,
			MinSentenceChars: 20,
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "mistral",
			BaseURL:  "http://localhost:11434",
			Timeout:  120 * time.Second,
			Labels: []string{
				"True",
				"False",
				"Partially True",
				UnableToVerify,
			},
			StartupAttempts: 30,
			StartupInterval: time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
	}
}
