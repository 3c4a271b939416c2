package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
	"github.com/inercia/go-anthropic-mock/pkg/mockwrap"
	"github.com/inercia/go-anthropic-mock/pkg/providers/mock"
)

// TestFactory tests the factory functionality
func TestFactory(t *testing.T) {
	t.Parallel()

	t.Run("Unsupported provider", func(t *testing.T) {
		t.Parallel()

		_, err := New().CreateClient(llm.ClientConfig{Provider: "unsupported", APIKey: "sk"})
		var llmErr *llm.Error
		require.ErrorAs(t, err, &llmErr)
		assert.Equal(t, "unsupported_provider", llmErr.Code)
		assert.Equal(t, llm.ErrorTypeConfiguration, llmErr.Type)
	})

	t.Run("Auto registration works", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []string{"anthropic", "bedrock", "mock", "mocked"}, ListProviders())

		_, ok := GetProvider("Anthropic")
		assert.True(t, ok)
	})

	t.Run("Missing credential", func(t *testing.T) {
		t.Parallel()

		_, err := New().CreateClient(llm.ClientConfig{Provider: "mock"})
		assert.ErrorIs(t, err, mockwrap.ErrMissingCredential)

		// The anthropic backend refuses an empty key before wrapping
		_, err = New().CreateClient(llm.ClientConfig{})
		var llmErr *llm.Error
		require.ErrorAs(t, err, &llmErr)
		assert.Equal(t, "missing_credential", llmErr.Code)
	})

	t.Run("Test credential gives a synthetic client", func(t *testing.T) {
		t.Parallel()

		client, err := New().CreateClient(llm.ClientConfig{Provider: "mock", APIKey: "TEST_factory"})
		require.NoError(t, err)
		assert.True(t, client.IsTestMode())

		msg, err := client.Messages.Create(context.Background(), llm.MessageParams{
			MaxTokens: 10,
			Messages:  []llm.MessageParam{llm.NewTextMessage(llm.RoleUser, "hi")},
		})
		require.NoError(t, err)
		assert.Regexp(t, `^msg_[a-z0-9]{24}$`, msg.ID)

		backend, ok := client.Backend().(*mock.Client)
		require.True(t, ok)
		assert.Zero(t, backend.CallCount())
	})

	t.Run("Anthropic backend in test mode", func(t *testing.T) {
		t.Parallel()

		client, err := New().CreateClient(llm.ClientConfig{APIKey: "TEST_anthropic", BaseURL: "http://127.0.0.1:1"})
		require.NoError(t, err)
		assert.True(t, client.IsTestMode())
		assert.Equal(t, "anthropic", client.Backend().(llm.Configured).Config().Provider)

		// The unreachable base URL would fail any forwarded call
		page, err := client.Beta.Messages.Batches.List(context.Background(), llm.BatchListParams{})
		require.NoError(t, err)
		assert.Len(t, page.Data, 5)
	})

	t.Run("Real credential forwards", func(t *testing.T) {
		t.Parallel()

		client, err := New().CreateClient(llm.ClientConfig{Provider: "mock", APIKey: "sk-real"})
		require.NoError(t, err)
		assert.False(t, client.IsTestMode())

		_, err = client.Models.List(context.Background(), llm.ModelListParams{})
		require.NoError(t, err)
		assert.Equal(t, 1, client.Backend().(*mock.Client).CallCount())
	})

	t.Run("Async client with options", func(t *testing.T) {
		t.Parallel()

		f := New(mockwrap.WithSeed(7))
		a, err := f.CreateAsyncClient(llm.ClientConfig{Provider: "mock", APIKey: "TEST_a"})
		require.NoError(t, err)
		b, err := f.CreateAsyncClient(llm.ClientConfig{Provider: "mock", APIKey: "TEST_b"})
		require.NoError(t, err)
		assert.Equal(t, mockwrap.ModeAsync, a.Mode())

		ctx := context.Background()
		ma, err := a.Completions.Create(ctx, llm.CompletionParams{}).Await(ctx)
		require.NoError(t, err)
		mb, err := b.Completions.Create(ctx, llm.CompletionParams{}).Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, ma.ID, mb.ID)
	})
}
