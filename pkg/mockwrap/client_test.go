package mockwrap_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
	"github.com/inercia/go-anthropic-mock/pkg/mockwrap"
	"github.com/inercia/go-anthropic-mock/pkg/providers/mock"
)

var (
	messageIDPattern = regexp.MustCompile(`^msg_[a-z0-9]{24}$`)
	batchIDPattern   = regexp.MustCompile(`^batch_[a-z0-9]{24}$`)
)

func helloParams(maxTokens int) llm.MessageParams {
	return llm.MessageParams{
		Model:     "claude-3-opus-20240229",
		MaxTokens: maxTokens,
		Messages:  []llm.MessageParam{llm.NewTextMessage(llm.RoleUser, "Hello")},
	}
}

func TestNewRequiresCredential(t *testing.T) {
	t.Parallel()

	_, err := mockwrap.New(mock.NewClient(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, mockwrap.ErrMissingCredential)

	var llmErr *llm.Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, llm.ErrorTypeConfiguration, llmErr.Type)

	_, err = mockwrap.New(nil)
	assert.ErrorIs(t, err, mockwrap.ErrMissingBackend)

	_, err = mockwrap.NewAsync(mock.NewClient(""))
	assert.ErrorIs(t, err, mockwrap.ErrMissingCredential)
}

func TestPassThrough(t *testing.T) {
	t.Parallel()

	backend := mock.NewClient("sk-ant-real").WithSimpleResponse("sentinel")
	client, err := mockwrap.New(backend)
	require.NoError(t, err)
	assert.False(t, client.IsTestMode())
	assert.Equal(t, mockwrap.ModeSync, client.Mode())
	assert.Same(t, backend, client.Backend())

	params := helloParams(64)
	msg, err := client.Messages.Create(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "sentinel", msg.GetText())

	require.True(t, backend.AssertCallCount(1))
	last := backend.GetLastCall()
	require.NotNil(t, last)
	assert.Equal(t, llm.OpMessagesCreate, last.Operation)
	assert.Equal(t, params, last.Params)
}

func TestPassThroughErrors(t *testing.T) {
	t.Parallel()

	sentinel := &llm.Error{Code: "overloaded", Message: "Overloaded", Type: llm.ErrorTypeAPI, StatusCode: 529}
	backend := mock.NewClient("sk-ant-real").AddError(sentinel)
	client, err := mockwrap.New(backend)
	require.NoError(t, err)

	msg, err := client.Messages.Create(context.Background(), helloParams(10))
	assert.Nil(t, msg)
	assert.Same(t, sentinel, err)
}

func TestPassThroughAllNamespaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := mock.NewClient("sk-ant-real").WithModels("claude-3-haiku-20240307")
	client, err := mockwrap.New(backend)
	require.NoError(t, err)

	batch, err := client.Messages.Batches.Create(ctx, llm.BatchCreateParams{
		Requests: []llm.BatchRequest{{CustomID: "a", Params: helloParams(10)}},
	})
	require.NoError(t, err)

	_, err = client.Messages.Batches.Retrieve(ctx, batch.ID)
	require.NoError(t, err)
	_, err = client.Messages.Batches.List(ctx, llm.BatchListParams{})
	require.NoError(t, err)
	_, err = client.Messages.Batches.Cancel(ctx, batch.ID)
	require.NoError(t, err)
	_, err = client.Messages.Batches.Results(ctx, batch.ID)
	require.NoError(t, err)
	_, err = client.Messages.Stream(ctx, helloParams(10))
	require.NoError(t, err)
	_, err = client.Completions.Create(ctx, llm.CompletionParams{Model: "claude-2.1", Prompt: "\n\nHuman: hi\n\nAssistant:"})
	require.NoError(t, err)
	models, err := client.Models.List(ctx, llm.ModelListParams{})
	require.NoError(t, err)
	assert.Len(t, models.Data, 1)
	_, err = client.Beta.Messages.Create(ctx, helloParams(10))
	require.NoError(t, err)
	_, err = client.Beta.Messages.Batches.List(ctx, llm.BatchListParams{})
	require.NoError(t, err)

	ops := make([]llm.Operation, 0)
	for _, c := range backend.GetCallLog() {
		ops = append(ops, c.Operation)
	}
	assert.Equal(t, []llm.Operation{
		llm.OpBatchesCreate,
		llm.OpBatchesRetrieve,
		llm.OpBatchesList,
		llm.OpBatchesCancel,
		llm.OpBatchesResults,
		llm.OpMessagesStream,
		llm.OpCompletionsCreate,
		llm.OpModelsList,
		llm.OpBetaMessagesCreate,
		llm.OpBetaBatchesList,
	}, ops)
}

func TestTestModeMessage(t *testing.T) {
	t.Parallel()

	backend := mock.NewClient("TEST_abc")
	client, err := mockwrap.New(backend, mockwrap.WithSeed(42))
	require.NoError(t, err)
	assert.True(t, client.IsTestMode())

	msg, err := client.Messages.Create(context.Background(), helloParams(20))
	require.NoError(t, err)
	require.NotNil(t, msg)

	assert.Regexp(t, messageIDPattern, msg.ID)
	assert.Equal(t, "message", msg.Type)
	assert.Equal(t, llm.RoleAssistant, msg.Role)
	assert.Equal(t, "claude-3-opus-20240229", msg.Model)
	assert.Equal(t, llm.StopReasonEndTurn, msg.StopReason)
	assert.LessOrEqual(t, len(strings.Fields(msg.GetText())), 20)
	assert.NotEmpty(t, msg.GetText())
	assert.Positive(t, msg.Usage.InputTokens)
	assert.Equal(t, len(strings.Fields(msg.GetText())), msg.Usage.OutputTokens)

	assert.Zero(t, backend.CallCount())
}

func TestTestModeNeverReachesBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := mock.NewClient("TEST_abc")
	client, err := mockwrap.New(backend)
	require.NoError(t, err)

	stream, err := client.Messages.Stream(ctx, helloParams(30))
	require.NoError(t, err)
	text, err := llm.CollectText(stream)
	require.NoError(t, err)
	assert.NotEmpty(t, text)

	created, err := client.Messages.Batches.Create(ctx, llm.BatchCreateParams{
		Requests: []llm.BatchRequest{
			{CustomID: "a", Params: helloParams(10)},
			{CustomID: "b", Params: helloParams(10)},
		},
	})
	require.NoError(t, err)
	assert.Regexp(t, batchIDPattern, created.ID)
	assert.Equal(t, llm.BatchStatusInProgress, created.ProcessingStatus)
	assert.Equal(t, 2, created.RequestCounts.Processing)

	retrieved, err := client.Messages.Batches.Retrieve(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
	assert.Equal(t, llm.BatchStatusCompleted, retrieved.ProcessingStatus)

	canceled, err := client.Beta.Messages.Batches.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, canceled.ID)
	assert.Equal(t, llm.BatchStatusCanceled, canceled.ProcessingStatus)

	page, err := client.Messages.Batches.List(ctx, llm.BatchListParams{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)

	results, err := client.Messages.Batches.Results(ctx, created.ID)
	require.NoError(t, err)
	n := 0
	for results.Next() {
		assert.Equal(t, llm.BatchResultSucceeded, results.Current().Result.Type)
		n++
	}
	assert.Positive(t, n)

	completion, err := client.Completions.Create(ctx, llm.CompletionParams{Model: "claude-2.1", MaxTokensToSample: 5})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(strings.Fields(completion.Completion)), 5)

	models, err := client.Models.List(ctx, llm.ModelListParams{})
	require.NoError(t, err)
	assert.NotEmpty(t, models.Data)

	beta, err := client.Beta.Messages.Create(ctx, helloParams(5))
	require.NoError(t, err)
	assert.Regexp(t, messageIDPattern, beta.ID)

	assert.Zero(t, backend.CallCount())
}

func TestClassificationIsFrozen(t *testing.T) {
	t.Parallel()

	backend := mock.NewClient("sk-ant-real")
	client, err := mockwrap.New(backend)
	require.NoError(t, err)

	backend.SetAPIKey("TEST_later")
	_, err = client.Messages.Create(context.Background(), helloParams(10))
	require.NoError(t, err)
	assert.False(t, client.IsTestMode())
	assert.Equal(t, 1, backend.CallCount())

	backend = mock.NewClient("TEST_abc")
	client, err = mockwrap.New(backend)
	require.NoError(t, err)

	backend.SetAPIKey("sk-ant-real")
	_, err = client.Messages.Create(context.Background(), helloParams(10))
	require.NoError(t, err)
	assert.True(t, client.IsTestMode())
	assert.Zero(t, backend.CallCount())
}

func TestOptions(t *testing.T) {
	t.Parallel()

	t.Run("test mode reports fixed options", func(t *testing.T) {
		client, err := mockwrap.New(mock.NewClient("TEST_abc"))
		require.NoError(t, err)

		opts := client.Options()
		assert.Equal(t, "TEST_API_KEY", opts.APIKey)
		assert.Equal(t, llm.DefaultBaseURL, opts.BaseURL)
		assert.Equal(t, llm.DefaultTimeout, opts.Timeout)
		assert.Equal(t, llm.DefaultMaxRetries, opts.MaxRetries)
	})

	t.Run("test mode with options returns the same client", func(t *testing.T) {
		client, err := mockwrap.New(mock.NewClient("TEST_abc"))
		require.NoError(t, err)

		derived, err := client.WithOptions(func(c *llm.ClientConfig) { c.MaxRetries = 7 })
		require.NoError(t, err)
		assert.Same(t, client, derived)
	})

	t.Run("real mode reports backend options", func(t *testing.T) {
		backend := mock.NewClientWithConfig(llm.ClientConfig{APIKey: "sk-ant-real", BaseURL: "http://localhost:9999"})
		client, err := mockwrap.New(backend)
		require.NoError(t, err)

		opts := client.Options()
		assert.Equal(t, "sk-ant-real", opts.APIKey)
		assert.Equal(t, "http://localhost:9999", opts.BaseURL)
	})

	t.Run("real mode with options wraps a derived backend", func(t *testing.T) {
		backend := mock.NewClient("sk-ant-real")
		client, err := mockwrap.New(backend)
		require.NoError(t, err)

		derived, err := client.WithOptions(func(c *llm.ClientConfig) { c.MaxRetries = 7 })
		require.NoError(t, err)
		assert.NotSame(t, client, derived)
		assert.NotSame(t, backend, derived.Backend())
		assert.Equal(t, 7, derived.Options().MaxRetries)
		assert.False(t, derived.IsTestMode())

		// The derived client is classified from its own credential
		testClient, err := client.WithOptions(func(c *llm.ClientConfig) { c.APIKey = "TEST_derived" })
		require.NoError(t, err)
		assert.True(t, testClient.IsTestMode())
	})
}

func TestWithGenerator(t *testing.T) {
	t.Parallel()

	client, err := mockwrap.New(mock.NewClient("TEST_abc"), mockwrap.WithSeed(7))
	require.NoError(t, err)
	other, err := mockwrap.New(mock.NewClient("TEST_abc"), mockwrap.WithSeed(7))
	require.NoError(t, err)

	a, err := client.Messages.Create(context.Background(), helloParams(10))
	require.NoError(t, err)
	b, err := other.Messages.Create(context.Background(), helloParams(10))
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	shared, err := mockwrap.New(mock.NewClient("TEST_abc"), mockwrap.WithGenerator(client.Generator()))
	require.NoError(t, err)
	assert.Same(t, client.Generator(), shared.Generator())
}
