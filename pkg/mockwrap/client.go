package mockwrap

import (
	"context"
	"fmt"

	"github.com/mudler/xlog"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
	"github.com/inercia/go-anthropic-mock/pkg/providers/synthetic"
)

// Client wraps a backend with the synchronous calling convention. Its namespaces
// mirror the backend's: client.Messages.Batches.Create, client.Beta.Messages.Create...
type Client struct {
	Messages    *MessagesService
	Completions *CompletionsService
	Models      *ModelsService
	Beta        *BetaService

	d *dispatcher
}

// New wraps backend. The backend's credential is classified once, here.
func New(backend llm.Backend, opts ...Option) (*Client, error) {
	d, err := newDispatcher(backend, ModeSync, opts)
	if err != nil {
		return nil, err
	}
	return newClient(d), nil
}

func newClient(d *dispatcher) *Client {
	b := d.backend
	return &Client{
		Messages: newMessagesService(d, "messages", func() llm.MessagesAPI {
			return b.Messages()
		}),
		Completions: &CompletionsService{d: d},
		Models:      &ModelsService{d: d},
		Beta: &BetaService{
			Messages: newMessagesService(d, "beta.messages", func() llm.MessagesAPI {
				return b.Beta().Messages()
			}),
		},
		d: d,
	}
}

// IsTestMode reports whether calls are answered synthetically
func (c *Client) IsTestMode() bool {
	return c.d.handle.TestMode()
}

// Mode returns the calling convention
func (c *Client) Mode() Mode {
	return c.d.handle.Mode()
}

// Backend returns the wrapped backend
func (c *Client) Backend() llm.Backend {
	return c.d.backend
}

// Generator returns the generator answering test calls
func (c *Client) Generator() *synthetic.Generator {
	return c.d.gen
}

// Options returns the client configuration. Test-mode clients report a fixed
// configuration with a TEST_ credential instead of the backend's.
func (c *Client) Options() llm.ClientConfig {
	return clientOptions(c.d)
}

// WithOptions returns a client with modified options. A test-mode client returns
// itself unchanged; otherwise the backend derives a copy that is wrapped anew.
func (c *Client) WithOptions(modify func(*llm.ClientConfig)) (*Client, error) {
	if c.IsTestMode() {
		return c, nil
	}
	d, err := derive(c.d, ModeSync, modify)
	if err != nil {
		return nil, err
	}
	return newClient(d), nil
}

func clientOptions(d *dispatcher) llm.ClientConfig {
	if d.handle.TestMode() {
		return mockedConfig()
	}
	if c, ok := d.backend.(llm.Configured); ok {
		return c.Config()
	}
	return llm.ClientConfig{APIKey: d.handle.Credential()}
}

func derive(d *dispatcher, mode Mode, modify func(*llm.ClientConfig)) (*dispatcher, error) {
	r, ok := d.backend.(llm.Reconfigurable)
	if !ok {
		xlog.Warn("Backend cannot derive new options", "type", fmt.Sprintf("%T", d.backend))
		return nil, llm.NewUnsupportedError("backend", "with_options")
	}
	cfg := clientOptions(d)
	if modify != nil {
		modify(&cfg)
	}
	backend, err := r.WithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return newDispatcher(backend, mode, []Option{WithGenerator(d.gen)})
}

// MessagesService mirrors a messages namespace
type MessagesService struct {
	Batches *BatchesService

	d   *dispatcher
	ns  string
	api func() llm.MessagesAPI
}

func newMessagesService(d *dispatcher, ns string, api func() llm.MessagesAPI) *MessagesService {
	return &MessagesService{
		Batches: &BatchesService{
			d:   d,
			ns:  ns + ".batches",
			api: func() llm.BatchesAPI { return api().Batches() },
		},
		d:   d,
		ns:  ns,
		api: api,
	}
}

// Create performs a message request
func (s *MessagesService) Create(ctx context.Context, params llm.MessageParams) (*llm.Message, error) {
	return call(ctx, s.d, llm.Join(s.ns, "create"), messageRequest(params),
		func(ctx context.Context) (*llm.Message, error) {
			return s.api().Create(ctx, params)
		})
}

// Stream performs a message request and returns its events
func (s *MessagesService) Stream(ctx context.Context, params llm.MessageParams) (llm.MessageStream, error) {
	return call(ctx, s.d, llm.Join(s.ns, "stream"), messageRequest(params),
		func(ctx context.Context) (llm.MessageStream, error) {
			return s.api().Stream(ctx, params)
		})
}

// BatchesService mirrors a message batches namespace
type BatchesService struct {
	d   *dispatcher
	ns  string
	api func() llm.BatchesAPI
}

func (s *BatchesService) Create(ctx context.Context, params llm.BatchCreateParams) (*llm.MessageBatch, error) {
	return call(ctx, s.d, llm.Join(s.ns, "create"), batchCreateRequest(params),
		func(ctx context.Context) (*llm.MessageBatch, error) {
			return s.api().Create(ctx, params)
		})
}

func (s *BatchesService) Retrieve(ctx context.Context, batchID string) (*llm.MessageBatch, error) {
	return call(ctx, s.d, llm.Join(s.ns, "retrieve"), synthetic.Request{BatchID: batchID},
		func(ctx context.Context) (*llm.MessageBatch, error) {
			return s.api().Retrieve(ctx, batchID)
		})
}

func (s *BatchesService) List(ctx context.Context, params llm.BatchListParams) (*llm.BatchPage, error) {
	return call(ctx, s.d, llm.Join(s.ns, "list"), synthetic.Request{Limit: params.Limit},
		func(ctx context.Context) (*llm.BatchPage, error) {
			return s.api().List(ctx, params)
		})
}

func (s *BatchesService) Cancel(ctx context.Context, batchID string) (*llm.MessageBatch, error) {
	return call(ctx, s.d, llm.Join(s.ns, "cancel"), synthetic.Request{BatchID: batchID},
		func(ctx context.Context) (*llm.MessageBatch, error) {
			return s.api().Cancel(ctx, batchID)
		})
}

func (s *BatchesService) Results(ctx context.Context, batchID string) (llm.BatchResultStream, error) {
	return call(ctx, s.d, llm.Join(s.ns, "results"), synthetic.Request{BatchID: batchID},
		func(ctx context.Context) (llm.BatchResultStream, error) {
			return s.api().Results(ctx, batchID)
		})
}

// CompletionsService mirrors the legacy completions namespace
type CompletionsService struct {
	d *dispatcher
}

func (s *CompletionsService) Create(ctx context.Context, params llm.CompletionParams) (*llm.Completion, error) {
	return call(ctx, s.d, llm.OpCompletionsCreate, completionRequest(params),
		func(ctx context.Context) (*llm.Completion, error) {
			return s.d.backend.Completions().Create(ctx, params)
		})
}

// ModelsService mirrors the models namespace
type ModelsService struct {
	d *dispatcher
}

func (s *ModelsService) List(ctx context.Context, params llm.ModelListParams) (*llm.ModelPage, error) {
	return call(ctx, s.d, llm.OpModelsList, synthetic.Request{Limit: params.Limit},
		func(ctx context.Context) (*llm.ModelPage, error) {
			return s.d.backend.Models().List(ctx, params)
		})
}

// BetaService mirrors the beta namespace
type BetaService struct {
	Messages *MessagesService
}
