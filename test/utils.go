package test

import (
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inercia/go-anthropic-mock/pkg/factory"
	"github.com/inercia/go-anthropic-mock/pkg/llm"
	"github.com/inercia/go-anthropic-mock/pkg/mockwrap"
)

// testModel is cheap and fast enough for integration runs
const testModel = "claude-3-haiku-20240307"

// configFromEnv builds a client configuration from the environment:
// LLM_PROVIDER, ANTHROPIC_API_KEY, ANTHROPIC_MODEL, ANTHROPIC_BASE_URL and
// ANTHROPIC_MAX_RETRIES
func configFromEnv() llm.ClientConfig {
	config := llm.ClientConfig{
		Provider: os.Getenv("LLM_PROVIDER"),
		Model:    os.Getenv("ANTHROPIC_MODEL"),
		APIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		BaseURL:  os.Getenv("ANTHROPIC_BASE_URL"),
		Timeout:  30 * time.Second,
	}
	if config.Provider == "" {
		config.Provider = factory.DefaultProvider
	}
	if config.Model == "" && config.Provider == factory.DefaultProvider {
		config.Model = testModel
	}
	if n, err := strconv.Atoi(os.Getenv("ANTHROPIC_MAX_RETRIES")); err == nil {
		config.MaxRetries = n
	}
	return config
}

// createTestClient creates a client using environment configuration. The test
// is skipped when no credential is available.
func createTestClient(t *testing.T) *mockwrap.Client {
	t.Helper()

	config := configFromEnv()
	if config.APIKey == "" {
		t.Skip("No Anthropic credential available - set ANTHROPIC_API_KEY")
	}

	client, err := factory.New().CreateClient(config)
	require.NoError(t, err, "Failed to create client")
	require.NotNil(t, client, "Client should not be nil")

	t.Logf("Using %s provider with model %s (test mode: %t)", config.Provider, config.Model, client.IsTestMode())
	return client
}

// createTestClientWithTimeout creates a client with custom timeout
func createTestClientWithTimeout(t *testing.T, timeout time.Duration) *mockwrap.Client {
	t.Helper()

	config := configFromEnv()
	if config.APIKey == "" {
		t.Skip("No Anthropic credential available - set ANTHROPIC_API_KEY")
	}
	config.Timeout = timeout

	client, err := factory.New().CreateClient(config)
	require.NoError(t, err, "Failed to create client with timeout")
	return client
}

// createTestModeClient creates a client over the real Anthropic backend with a
// TEST_ credential. It needs no network and always runs.
func createTestModeClient(t *testing.T, opts ...mockwrap.Option) *mockwrap.Client {
	t.Helper()

	client, err := factory.New(opts...).CreateClient(llm.ClientConfig{
		Provider: "anthropic",
		Model:    testModel,
		APIKey:   "TEST_integration",
		// Unroutable, so a forwarded call could not succeed
		BaseURL:    "http://127.0.0.1:1",
		MaxRetries: 0,
	})
	require.NoError(t, err)
	require.True(t, client.IsTestMode())
	return client
}

// userMessage builds a single user turn request
func userMessage(text string, maxTokens int) llm.MessageParams {
	return llm.MessageParams{
		Model:     testModel,
		MaxTokens: maxTokens,
		Messages:  []llm.MessageParam{llm.NewTextMessage(llm.RoleUser, text)},
	}
}
