package types

import "time"

// HTTPConfig holds shared HTTP settings for stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "format-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for calls to the Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the response size requested from the API (default 8192).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// ConversionConfig holds settings for the conversion stage.
// Per prd001-conversion R5.1-R5.3.
type ConversionConfig struct {
	AIConfig   `yaml:",inline"`
	HTTPConfig `yaml:",inline"`

	// Target is the default output format when --to is not given.
	Target ConversionTarget `json:"target" yaml:"target"`

	// Instructions is an optional free-text modifier applied uniformly
	// to every conversion call in a run.
	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty"`

	// OutputDir is where converted files are written (default "converted").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// WatchConfig holds settings for drop-directory mode.
// Per prd003-watch R1.2, R2.1.
type WatchConfig struct {
	// Dir is the directory monitored for new files.
	Dir string `json:"dir" yaml:"dir"`

	// Debounce is the quiet period after the last write event before a
	// file is admitted (default 2s).
	Debounce time.Duration `json:"debounce" yaml:"debounce"`
}

// HistoryConfig holds settings for the conversion history store.
// Per prd004-history R1.1.
type HistoryConfig struct {
	// StateDir is the directory holding history.db. History is disabled
	// when empty.
	StateDir string `json:"state_dir" yaml:"state_dir"`

	// MaxResults is the default maximum number of rows listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// EngineConfig groups all stage configurations.
type EngineConfig struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Watch      WatchConfig      `json:"watch" yaml:"watch"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
