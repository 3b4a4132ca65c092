// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paperdex/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// RequestsPerSecond caps the per-provider request rate. Zero disables
	// rate limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// ProviderConfig holds settings for the metadata provider clients.
type ProviderConfig struct {
	HTTPConfig `yaml:",inline"`

	// Mailto is the contact address sent to OpenAlex and Crossref for
	// polite-pool access.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// UnpaywallEmail is the contact address Unpaywall requires on every
	// request.
	UnpaywallEmail string `json:"unpaywall_email,omitempty" yaml:"unpaywall_email,omitempty"`
}

// GroupingConfig holds settings for identity grouping during search.
type GroupingConfig struct {
	// SourcePriority is the configured provider ranking used by the merge
	// stage; entries listed earlier win field conflicts. Each entry is a
	// group of equally ranked source names.
	SourcePriority [][]string `json:"source_priority" yaml:"source_priority"`

	// EnableSoftGrouping turns on token-similarity grouping for DOI-less
	// records (default true).
	EnableSoftGrouping bool `json:"enable_soft_grouping" yaml:"enable_soft_grouping"`

	// SoftThreshold is the minimum token-Jaccard similarity for soft
	// grouping. Values below the 0.82 floor are raised to it.
	SoftThreshold float64 `json:"soft_threshold" yaml:"soft_threshold"`

	// PrefixTokens is the number of leading title tokens that must match
	// before soft grouping compares two titles (default 6).
	PrefixTokens int `json:"prefix_tokens" yaml:"prefix_tokens"`
}

// ChunkConfig holds settings for the TEI chunking stage.
type ChunkConfig struct {
	// MaxTokens bounds the tokenizer count of an emitted chunk (default 400).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// MaxChars bounds the character length of an emitted chunk (default 2000).
	MaxChars int `json:"max_chars" yaml:"max_chars"`

	// Encoding names the tiktoken encoding used for token counting
	// (default "cl100k_base"). A whitespace tokenizer is substituted when
	// the encoding cannot be loaded.
	Encoding string `json:"encoding" yaml:"encoding"`
}

// StoreConfig holds settings for the SQLite paper store.
type StoreConfig struct {
	// DataDir is the base directory for the store (contains index/ and
	// export.yaml).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// IndexConfig holds settings for hybrid retrieval.
type IndexConfig struct {
	// OllamaURL is the embedding server address (default
	// "http://localhost:11434").
	OllamaURL string `json:"ollama_url" yaml:"ollama_url"`

	// EmbedModel is the Ollama embedding model name (default
	// "nomic-embed-text:latest").
	EmbedModel string `json:"embed_model" yaml:"embed_model"`

	// LexicalWeight is the FTS share of the fused hybrid score, in [0, 1]
	// (default 0.5).
	LexicalWeight float64 `json:"lexical_weight" yaml:"lexical_weight"`
}

// GrobidConfig holds settings for the GROBID full-text parsing service.
type GrobidConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the GROBID service address (default "http://localhost:8070").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Image is the container image used when starting GROBID locally.
	Image string `json:"image" yaml:"image"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Providers ProviderConfig `json:"providers" yaml:"providers"`
	Grouping  GroupingConfig `json:"grouping" yaml:"grouping"`
	Chunking  ChunkConfig    `json:"chunking" yaml:"chunking"`
	Store     StoreConfig    `json:"store" yaml:"store"`
	Index     IndexConfig    `json:"index" yaml:"index"`
	Grobid    GrobidConfig   `json:"grobid" yaml:"grobid"`
}
