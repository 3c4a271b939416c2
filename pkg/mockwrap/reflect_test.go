package mockwrap_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
	"github.com/inercia/go-anthropic-mock/pkg/mockwrap"
	"github.com/inercia/go-anthropic-mock/pkg/providers/mock"
)

var errFrobnicate = errors.New("frobnicate failed")

type recorder struct {
	calls []string
}

func (r *recorder) record(name string) {
	r.calls = append(r.calls, name)
}

type fakeParams struct {
	Model     string
	MaxTokens int
}

type baseParams struct {
	Model string
}

type embeddedParams struct {
	*baseParams
	MaxTokens int
}

type fakeMessage struct {
	ID    string
	Model string
}

type fakeBatch struct {
	ID string
}

type fakeBatchService struct {
	rec *recorder
}

func (s *fakeBatchService) New(ctx context.Context, params fakeParams) (*fakeBatch, error) {
	s.rec.record("batches.new")
	return &fakeBatch{ID: "batch_real"}, nil
}

func (s *fakeBatchService) Get(ctx context.Context, batchID string) (*fakeBatch, error) {
	s.rec.record("batches.get " + batchID)
	return &fakeBatch{ID: batchID}, nil
}

type fakeMessageService struct {
	Batches fakeBatchService

	rec *recorder
}

func (s *fakeMessageService) New(ctx context.Context, params fakeParams) (*fakeMessage, error) {
	s.rec.record("messages.new")
	return &fakeMessage{ID: "msg_real", Model: params.Model}, nil
}

type fakeBetaService struct {
	Messages fakeMessageService
}

type fakeClient struct {
	Options  []string
	BaseURL  string
	Messages fakeMessageService
	Beta     fakeBetaService

	key string
	rec *recorder
}

func newFakeClient(key string) *fakeClient {
	rec := &recorder{}
	return &fakeClient{
		Options:  []string{"opt"},
		BaseURL:  "http://real.example",
		Messages: fakeMessageService{Batches: fakeBatchService{rec: rec}, rec: rec},
		Beta: fakeBetaService{
			Messages: fakeMessageService{Batches: fakeBatchService{rec: rec}, rec: rec},
		},
		key: key,
		rec: rec,
	}
}

func (c *fakeClient) APIKey() string {
	return c.key
}

func (c *fakeClient) Frobnicate(ctx context.Context) error {
	c.rec.record("frobnicate")
	return errFrobnicate
}

// Get is a raw request helper on the client itself, not a resource verb
func (c *fakeClient) Get(ctx context.Context, path string) (*fakeBatch, error) {
	c.rec.record("get " + path)
	return &fakeBatch{ID: path}, nil
}

func TestReflectDiscovery(t *testing.T) {
	t.Parallel()

	ns, err := mockwrap.Reflect(newFakeClient("sk-real"), "sk-real", mockwrap.ModeSync)
	require.NoError(t, err)

	assert.Equal(t, "", ns.Path())
	assert.Contains(t, ns.Methods(), "frobnicate")
	assert.Contains(t, ns.Methods(), "get")
	assert.NotContains(t, ns.Methods(), "retrieve")
	assert.Equal(t, []string{"beta", "messages"}, ns.Resources())

	messages, err := ns.Sub("Messages")
	require.NoError(t, err)
	assert.Equal(t, "messages", messages.Path())
	assert.Equal(t, []string{"create"}, messages.Methods())

	batches, err := ns.Sub("Beta.Messages.Batches")
	require.NoError(t, err)
	assert.Equal(t, "beta.messages.batches", batches.Path())
	assert.Equal(t, []string{"create", "retrieve"}, batches.Methods())

	_, err = ns.Sub("Files")
	assert.Error(t, err)
}

func TestReflectOperationNames(t *testing.T) {
	t.Parallel()

	ns, err := mockwrap.Reflect(newFakeClient("sk-real"), "sk-real", mockwrap.ModeSync)
	require.NoError(t, err)

	tests := map[string]llm.Operation{
		"Messages.New":                      llm.OpMessagesCreate,
		"Messages.NewStreaming":             llm.OpMessagesStream,
		"Messages.Batches.New":              llm.OpBatchesCreate,
		"Messages.Batches.Get":              llm.OpBatchesRetrieve,
		"Messages.Batches.List":             llm.OpBatchesList,
		"Messages.Batches.Cancel":           llm.OpBatchesCancel,
		"Messages.Batches.ResultsStreaming": llm.OpBatchesResults,
		"Completions.New":                   llm.OpCompletionsCreate,
		"Models.List":                       llm.OpModelsList,
		"Beta.Messages.Batches.Get":         llm.OpBetaBatchesRetrieve,
		"Get":                               llm.Operation("get"),
	}
	for path, want := range tests {
		assert.Equal(t, want, ns.Operation(path), path)
	}
}

func TestReflectPassThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newFakeClient("sk-real")
	ns, err := mockwrap.Reflect(client, "sk-real", mockwrap.ModeSync)
	require.NoError(t, err)
	assert.False(t, ns.IsTestMode())

	v, err := ns.Call(ctx, "Messages.New", fakeParams{Model: "m", MaxTokens: 5})
	require.NoError(t, err)
	assert.Equal(t, &fakeMessage{ID: "msg_real", Model: "m"}, v)

	v, err = ns.Call(ctx, "Beta.Messages.Batches.Get", "batch_1")
	require.NoError(t, err)
	assert.Equal(t, &fakeBatch{ID: "batch_1"}, v)

	v, err = ns.Call(ctx, "Frobnicate")
	assert.Nil(t, v)
	assert.Same(t, errFrobnicate, err)

	assert.Equal(t, []string{"messages.new", "batches.get batch_1", "frobnicate"}, client.rec.calls)

	_, err = ns.Call(ctx, "Messages.Delete")
	var llmErr *llm.Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, "unknown_operation", llmErr.Code)

	_, err = ns.Call(ctx, "Messages.New", 42)
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, "invalid_arguments", llmErr.Code)

	_, err = ns.Call(ctx, "Messages.New")
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, "invalid_arguments", llmErr.Code)
}

func TestReflectTestMode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newFakeClient("TEST_abc")
	ns, err := mockwrap.Reflect(client, client.APIKey(), mockwrap.ModeSync)
	require.NoError(t, err)
	assert.True(t, ns.IsTestMode())

	v, err := ns.Call(ctx, "Messages.New", fakeParams{Model: "claude-3-haiku-20240307", MaxTokens: 20})
	require.NoError(t, err)
	msg, ok := v.(*llm.Message)
	require.True(t, ok)
	assert.Regexp(t, messageIDPattern, msg.ID)
	assert.Equal(t, "claude-3-haiku-20240307", msg.Model)
	assert.LessOrEqual(t, len(strings.Fields(msg.GetText())), 20)

	v, err = ns.Call(ctx, "Beta.Messages.Batches.Get", "batch_given")
	require.NoError(t, err)
	batch, ok := v.(*llm.MessageBatch)
	require.True(t, ok)
	assert.Equal(t, "batch_given", batch.ID)

	sub, err := ns.Sub("Messages.Batches")
	require.NoError(t, err)
	v, err = sub.Call(ctx, "List")
	require.NoError(t, err)
	assert.IsType(t, &llm.BatchPage{}, v)

	// Operations without a synthetic template are answered with nil
	v, err = ns.Call(ctx, "Frobnicate")
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = ns.Call(ctx, "Get", "/v1/anything")
	assert.NoError(t, err)
	assert.Nil(t, v)

	// Hints behind a nil embedded pointer are skipped
	require.NotPanics(t, func() {
		v, err = ns.Call(ctx, "Messages.New", embeddedParams{MaxTokens: 5})
	})
	require.NoError(t, err)
	msg, ok = v.(*llm.Message)
	require.True(t, ok)
	assert.Equal(t, llm.DefaultModel, msg.Model)
	assert.LessOrEqual(t, len(strings.Fields(msg.GetText())), 5)

	v, err = ns.Call(ctx, "Messages.New", &embeddedParams{baseParams: &baseParams{Model: "claude-3-haiku-20240307"}, MaxTokens: 5})
	require.NoError(t, err)
	assert.Equal(t, "claude-3-haiku-20240307", v.(*llm.Message).Model)

	assert.Empty(t, client.rec.calls)
}

func TestReflectAttributes(t *testing.T) {
	t.Parallel()

	t.Run("test mode", func(t *testing.T) {
		ns, err := mockwrap.Reflect(newFakeClient("TEST_abc"), "TEST_abc", mockwrap.ModeSync)
		require.NoError(t, err)

		v, ok := ns.Attr("APIKey")
		assert.True(t, ok)
		assert.Equal(t, "TEST_API_KEY", v)

		v, ok = ns.Attr("Timeout")
		assert.True(t, ok)
		assert.Equal(t, llm.DefaultTimeout, v)

		v, ok = ns.Attr("max_retries")
		assert.True(t, ok)
		assert.Equal(t, llm.DefaultMaxRetries, v)

		v, ok = ns.Attr("Options")
		assert.True(t, ok)
		assert.Equal(t, []string{"opt"}, v)

		_, ok = ns.Attr("Missing")
		assert.False(t, ok)
	})

	t.Run("real mode", func(t *testing.T) {
		ns, err := mockwrap.Reflect(newFakeClient("sk-real"), "sk-real", mockwrap.ModeSync)
		require.NoError(t, err)

		v, ok := ns.Attr("APIKey")
		assert.True(t, ok)
		assert.Equal(t, "sk-real", v)

		v, ok = ns.Attr("BaseURL")
		assert.True(t, ok)
		assert.Equal(t, "http://real.example", v)

		_, ok = ns.Attr("Timeout")
		assert.False(t, ok)
	})
}

func TestReflectAsync(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client := newFakeClient("sk-real")
	ns, err := mockwrap.Reflect(client, "sk-real", mockwrap.ModeAsync)
	require.NoError(t, err)
	assert.Equal(t, mockwrap.ModeAsync, ns.Mode())

	v, err := ns.Go(ctx, "Messages.Batches.New", fakeParams{}).Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, &fakeBatch{ID: "batch_real"}, v)

	test, err := mockwrap.Reflect(newFakeClient("TEST_abc"), "TEST_abc", mockwrap.ModeAsync)
	require.NoError(t, err)
	fut := test.Go(ctx, "Messages.New", fakeParams{MaxTokens: 3})
	select {
	case <-fut.Done():
	default:
		t.Fatal("synthetic future should already be resolved")
	}
	v, err = fut.Await(ctx)
	require.NoError(t, err)
	assert.IsType(t, &llm.Message{}, v)
}

func TestReflectBackendAccessors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := mock.NewClient("sk-ant-real").WithSimpleResponse("sentinel")
	ns, err := mockwrap.Reflect(backend, backend.APIKey(), mockwrap.ModeSync)
	require.NoError(t, err)
	assert.Contains(t, ns.Resources(), "messages")
	assert.Contains(t, ns.Resources(), "beta")

	v, err := ns.Call(ctx, "Messages.Create", helloParams(10))
	require.NoError(t, err)
	msg, ok := v.(*llm.Message)
	require.True(t, ok)
	assert.Equal(t, "sentinel", msg.GetText())

	_, err = ns.Call(ctx, "Beta.Messages.Batches.List", llm.BatchListParams{})
	require.NoError(t, err)

	assert.True(t, backend.AssertOperationCalled(llm.OpMessagesCreate))
	assert.True(t, backend.AssertOperationCalled(llm.OpBetaBatchesList))

	key, ok := ns.Attr("APIKey")
	assert.True(t, ok)
	assert.Equal(t, "sk-ant-real", key)
}

func TestReflectRequiresClientAndCredential(t *testing.T) {
	t.Parallel()

	_, err := mockwrap.Reflect(nil, "TEST_abc", mockwrap.ModeSync)
	assert.ErrorIs(t, err, mockwrap.ErrMissingBackend)

	var client *fakeClient
	_, err = mockwrap.Reflect(client, "TEST_abc", mockwrap.ModeSync)
	assert.ErrorIs(t, err, mockwrap.ErrMissingBackend)

	_, err = mockwrap.Reflect(newFakeClient(""), "", mockwrap.ModeSync)
	assert.ErrorIs(t, err, mockwrap.ErrMissingCredential)
}
