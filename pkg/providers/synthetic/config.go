package synthetic

import (
	"time"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
)

const (
	DefaultInputTokens = 10
	DefaultChunkSize   = 10
	DefaultListSize    = 5
	DefaultResultsSize = 5
)

// DefaultEpoch is the creation time stamped on every synthetic batch
var DefaultEpoch = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// Config holds the defaults the generator falls back to when a request does not
// carry a hint of its own
type Config struct {
	// Model is echoed when the request names no model
	Model string

	// InputTokens is reported when the request carries no prompt text
	InputTokens int

	// ChunkSize is the number of characters per streamed delta
	ChunkSize int

	// ListSize is the number of batches returned by list without a limit
	ListSize int

	// ResultsSize is the number of individual results yielded by results
	ResultsSize int

	// Epoch anchors every synthetic timestamp
	Epoch time.Time

	// BaseURL prefixes the results_url of ended batches
	BaseURL string

	// Models are the ids returned by models.list
	Models []string

	// Seed drives identifiers and filler text. Zero picks a random seed.
	Seed int64

	// Text overrides the filler text generator
	Text func() string
}

// DefaultConfig returns the generator defaults
func DefaultConfig() Config {
	return Config{
		Model:       llm.DefaultModel,
		InputTokens: DefaultInputTokens,
		ChunkSize:   DefaultChunkSize,
		ListSize:    DefaultListSize,
		ResultsSize: DefaultResultsSize,
		Epoch:       DefaultEpoch,
		BaseURL:     llm.DefaultBaseURL,
		Models: []string{
			llm.DefaultModel,
			"claude-3-5-sonnet-20241022",
			"claude-3-haiku-20240307",
		},
	}
}

// withDefaults replaces zero values with the defaults
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.InputTokens <= 0 {
		c.InputTokens = d.InputTokens
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ListSize <= 0 {
		c.ListSize = d.ListSize
	}
	if c.ResultsSize <= 0 {
		c.ResultsSize = d.ResultsSize
	}
	if c.Epoch.IsZero() {
		c.Epoch = d.Epoch
	}
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if len(c.Models) == 0 {
		c.Models = d.Models
	}
	return c
}
