// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every provider client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. Free-API
	// etiquette expects a descriptive value with contact info
	// (e.g. "citation-engine/0.1 (mailto:ops@example.com)").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ProviderConfig holds settings common to all provider clients.
type ProviderConfig struct {
	// Enabled controls whether the provider participates in chains.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// APIKey authenticates with the provider, where required.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// RequestsPerSecond caps the provider call rate via a token bucket.
	// Fast free APIs tolerate ~10 req/s; paid or strict APIs should be lower.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// MaxRetries is the retry ceiling for transient failures and 429s.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// OpenAlexConfig configures the OpenAlex bibliographic-database client.
type OpenAlexConfig struct {
	ProviderConfig `yaml:",inline"`

	// Email is sent as the mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// SemanticScholarConfig configures the Semantic Scholar community-index client.
type SemanticScholarConfig struct {
	ProviderConfig `yaml:",inline"`
}

// GroundedConfig configures the web-search-grounded LLM client.
type GroundedConfig struct {
	ProviderConfig `yaml:",inline"`

	// Endpoint is the chat-completions URL of the grounded search API.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Model is the model identifier to request.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
}

// WebSearchConfig configures the generic web-search client.
type WebSearchConfig struct {
	ProviderConfig `yaml:",inline"`

	// Endpoint is the search API URL.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// RecallConfig configures the last-resort generative recall client. Recalled
// citations are always tagged with distinct provenance and are excluded from
// valid output unless ValidationConfig.AllowRecalled is set.
type RecallConfig struct {
	ProviderConfig `yaml:",inline"`

	// Endpoint is the chat-completions URL of the recall model API.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Model is the model identifier to request.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
}

// DomainConfig holds the allow/deny lists applied by web-search-style
// providers before accepting a candidate URL. Empty lists fall back to the
// shipped defaults.
type DomainConfig struct {
	// Allow short-circuits acceptance for matching domains.
	Allow []string `json:"allow,omitempty" yaml:"allow,omitempty"`

	// Deny rejects matching domains outright.
	Deny []string `json:"deny,omitempty" yaml:"deny,omitempty"`

	// VerifyReachability enables a live HEAD probe (falling back to GET on
	// 405) for unrecognized domains.
	VerifyReachability bool `json:"verify_reachability" yaml:"verify_reachability"`
}

// ValidationConfig holds quality-filter settings.
type ValidationConfig struct {
	// Strict rejects citations with missing optional fields; lenient mode
	// logs them as warnings instead, which provider-extracted data needs.
	Strict bool `json:"strict" yaml:"strict"`

	// AllowRecalled admits citations recalled from model memory into valid
	// output. Off by default: recalled citations are unverified.
	AllowRecalled bool `json:"allow_recalled" yaml:"allow_recalled"`
}

// CacheConfig holds settings for the persistent research cache.
type CacheConfig struct {
	// Path is the cache file location (a single JSON object mapping exact
	// query strings to outcomes). Entries never expire automatically;
	// invalidation is explicit via the cache subcommand.
	Path string `json:"path" yaml:"path"`
}

// StoreConfig holds settings for the SQLite citation library.
type StoreConfig struct {
	// Path is the SQLite database file location.
	Path string `json:"path" yaml:"path"`
}

// EngineConfig groups all settings the research engine consumes.
type EngineConfig struct {
	HTTP            HTTPConfig            `json:"http" yaml:"http"`
	OpenAlex        OpenAlexConfig        `json:"openalex" yaml:"openalex"`
	SemanticScholar SemanticScholarConfig `json:"semantic_scholar" yaml:"semantic_scholar"`
	Grounded        GroundedConfig        `json:"grounded" yaml:"grounded"`
	WebSearch       WebSearchConfig       `json:"websearch" yaml:"websearch"`
	Recall          RecallConfig          `json:"recall" yaml:"recall"`
	Domains         DomainConfig          `json:"domains" yaml:"domains"`
	Validation      ValidationConfig      `json:"validation" yaml:"validation"`
	Cache           CacheConfig           `json:"cache" yaml:"cache"`
	Store           StoreConfig           `json:"store" yaml:"store"`
}
