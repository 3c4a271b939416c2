// Configuration types
package llm

import "time"

const (
	DefaultModel      = "claude-3-opus-20240229"
	DefaultBaseURL    = "https://api.anthropic.com"
	DefaultTimeout    = 600 * time.Second
	DefaultMaxRetries = 2
)

// ClientConfig holds configuration for creating backends
type ClientConfig struct {
	Provider   string            `json:"provider"` // anthropic, bedrock, mock
	Model      string            `json:"model"`
	APIKey     string            `json:"api_key,omitempty"`
	BaseURL    string            `json:"base_url,omitempty"`
	Timeout    time.Duration     `json:"timeout,omitempty"`
	MaxRetries int               `json:"max_retries,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"` // Provider-specific configs
}

// WithDefaults returns a copy of the config with zero values replaced by defaults
func (c ClientConfig) WithDefaults() ClientConfig {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	return c
}
