package mockwrap

import (
	"context"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
	"github.com/inercia/go-anthropic-mock/pkg/providers/synthetic"
)

// AsyncClient wraps a backend with the asynchronous calling convention. Every
// operation returns a future; in test mode the future is already resolved.
type AsyncClient struct {
	Messages    *AsyncMessagesService
	Completions *AsyncCompletionsService
	Models      *AsyncModelsService
	Beta        *AsyncBetaService

	d *dispatcher
}

// NewAsync wraps backend for asynchronous use
func NewAsync(backend llm.Backend, opts ...Option) (*AsyncClient, error) {
	d, err := newDispatcher(backend, ModeAsync, opts)
	if err != nil {
		return nil, err
	}
	return newAsyncClient(d), nil
}

func newAsyncClient(d *dispatcher) *AsyncClient {
	b := d.backend
	return &AsyncClient{
		Messages: newAsyncMessagesService(d, "messages", func() llm.MessagesAPI {
			return b.Messages()
		}),
		Completions: &AsyncCompletionsService{d: d},
		Models:      &AsyncModelsService{d: d},
		Beta: &AsyncBetaService{
			Messages: newAsyncMessagesService(d, "beta.messages", func() llm.MessagesAPI {
				return b.Beta().Messages()
			}),
		},
		d: d,
	}
}

func (c *AsyncClient) IsTestMode() bool {
	return c.d.handle.TestMode()
}

func (c *AsyncClient) Mode() Mode {
	return c.d.handle.Mode()
}

func (c *AsyncClient) Backend() llm.Backend {
	return c.d.backend
}

func (c *AsyncClient) Options() llm.ClientConfig {
	return clientOptions(c.d)
}

// WithOptions behaves like Client.WithOptions
func (c *AsyncClient) WithOptions(modify func(*llm.ClientConfig)) (*AsyncClient, error) {
	if c.IsTestMode() {
		return c, nil
	}
	d, err := derive(c.d, ModeAsync, modify)
	if err != nil {
		return nil, err
	}
	return newAsyncClient(d), nil
}

// AsyncMessagesService mirrors a messages namespace
type AsyncMessagesService struct {
	Batches *AsyncBatchesService

	d   *dispatcher
	ns  string
	api func() llm.MessagesAPI
}

func newAsyncMessagesService(d *dispatcher, ns string, api func() llm.MessagesAPI) *AsyncMessagesService {
	return &AsyncMessagesService{
		Batches: &AsyncBatchesService{
			d:   d,
			ns:  ns + ".batches",
			api: func() llm.BatchesAPI { return api().Batches() },
		},
		d:   d,
		ns:  ns,
		api: api,
	}
}

func (s *AsyncMessagesService) Create(ctx context.Context, params llm.MessageParams) *llm.Future[*llm.Message] {
	return start(ctx, s.d, llm.Join(s.ns, "create"), messageRequest(params),
		func(ctx context.Context) (*llm.Message, error) {
			return s.api().Create(ctx, params)
		})
}

func (s *AsyncMessagesService) Stream(ctx context.Context, params llm.MessageParams) *llm.Future[llm.MessageStream] {
	return start(ctx, s.d, llm.Join(s.ns, "stream"), messageRequest(params),
		func(ctx context.Context) (llm.MessageStream, error) {
			return s.api().Stream(ctx, params)
		})
}

// AsyncBatchesService mirrors a message batches namespace
type AsyncBatchesService struct {
	d   *dispatcher
	ns  string
	api func() llm.BatchesAPI
}

func (s *AsyncBatchesService) Create(ctx context.Context, params llm.BatchCreateParams) *llm.Future[*llm.MessageBatch] {
	return start(ctx, s.d, llm.Join(s.ns, "create"), batchCreateRequest(params),
		func(ctx context.Context) (*llm.MessageBatch, error) {
			return s.api().Create(ctx, params)
		})
}

func (s *AsyncBatchesService) Retrieve(ctx context.Context, batchID string) *llm.Future[*llm.MessageBatch] {
	return start(ctx, s.d, llm.Join(s.ns, "retrieve"), synthetic.Request{BatchID: batchID},
		func(ctx context.Context) (*llm.MessageBatch, error) {
			return s.api().Retrieve(ctx, batchID)
		})
}

func (s *AsyncBatchesService) List(ctx context.Context, params llm.BatchListParams) *llm.Future[*llm.BatchPage] {
	return start(ctx, s.d, llm.Join(s.ns, "list"), synthetic.Request{Limit: params.Limit},
		func(ctx context.Context) (*llm.BatchPage, error) {
			return s.api().List(ctx, params)
		})
}

func (s *AsyncBatchesService) Cancel(ctx context.Context, batchID string) *llm.Future[*llm.MessageBatch] {
	return start(ctx, s.d, llm.Join(s.ns, "cancel"), synthetic.Request{BatchID: batchID},
		func(ctx context.Context) (*llm.MessageBatch, error) {
			return s.api().Cancel(ctx, batchID)
		})
}

func (s *AsyncBatchesService) Results(ctx context.Context, batchID string) *llm.Future[llm.BatchResultStream] {
	return start(ctx, s.d, llm.Join(s.ns, "results"), synthetic.Request{BatchID: batchID},
		func(ctx context.Context) (llm.BatchResultStream, error) {
			return s.api().Results(ctx, batchID)
		})
}

// AsyncCompletionsService mirrors the legacy completions namespace
type AsyncCompletionsService struct {
	d *dispatcher
}

func (s *AsyncCompletionsService) Create(ctx context.Context, params llm.CompletionParams) *llm.Future[*llm.Completion] {
	return start(ctx, s.d, llm.OpCompletionsCreate, completionRequest(params),
		func(ctx context.Context) (*llm.Completion, error) {
			return s.d.backend.Completions().Create(ctx, params)
		})
}

// AsyncModelsService mirrors the models namespace
type AsyncModelsService struct {
	d *dispatcher
}

func (s *AsyncModelsService) List(ctx context.Context, params llm.ModelListParams) *llm.Future[*llm.ModelPage] {
	return start(ctx, s.d, llm.OpModelsList, synthetic.Request{Limit: params.Limit},
		func(ctx context.Context) (*llm.ModelPage, error) {
			return s.d.backend.Models().List(ctx, params)
		})
}

// AsyncBetaService mirrors the beta namespace
type AsyncBetaService struct {
	Messages *AsyncMessagesService
}
