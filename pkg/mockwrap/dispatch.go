package mockwrap

import (
	"context"
	"strings"

	"github.com/mudler/xlog"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
	"github.com/inercia/go-anthropic-mock/pkg/providers/synthetic"
)

// dispatcher decides, for every call, between the backend and the generator
type dispatcher struct {
	handle  *Handle
	backend llm.Backend
	gen     *synthetic.Generator
}

func newDispatcher(backend llm.Backend, mode Mode, opts []Option) (*dispatcher, error) {
	if backend == nil {
		return nil, ErrMissingBackend
	}
	handle, err := NewHandle(backend.APIKey(), mode)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	xlog.Info("Wrapping client", "mode", mode.String(), "test_mode", handle.TestMode())

	return &dispatcher{
		handle:  handle,
		backend: backend,
		gen:     o.generator,
	}, nil
}

// synthesize returns the generator's response for op as a T. Operations without
// a template, or whose template has another shape, yield the zero T.
func synthesize[T any](d *dispatcher, op llm.Operation, req synthetic.Request) T {
	xlog.Debug("Answering call synthetically", "operation", string(op))
	v, ok := d.gen.Generate(op, req).(T)
	if !ok {
		xlog.Warn("Synthetic response has an unexpected shape", "operation", string(op))
	}
	return v
}

// call runs op in the calling goroutine
func call[T any](ctx context.Context, d *dispatcher, op llm.Operation, req synthetic.Request, forward func(context.Context) (T, error)) (T, error) {
	if d.handle.TestMode() {
		return synthesize[T](d, op, req), nil
	}
	return forward(ctx)
}

// start runs op with the asynchronous convention. Synthetic results are resolved
// before the future is returned; forwarded calls run in their own goroutine with
// the caller's context.
func start[T any](ctx context.Context, d *dispatcher, op llm.Operation, req synthetic.Request, forward func(context.Context) (T, error)) *llm.Future[T] {
	if d.handle.TestMode() {
		return llm.Resolved(synthesize[T](d, op, req), nil)
	}
	return llm.Go(ctx, forward)
}

func messageRequest(params llm.MessageParams) synthetic.Request {
	prompt := make([]string, 0, len(params.Messages)+1)
	if params.System != "" {
		prompt = append(prompt, params.System)
	}
	for _, m := range params.Messages {
		prompt = append(prompt, m.GetText())
	}
	return synthetic.Request{
		Model:     params.Model,
		MaxTokens: params.MaxTokens,
		Prompt:    strings.Join(prompt, " "),
	}
}

func completionRequest(params llm.CompletionParams) synthetic.Request {
	return synthetic.Request{
		Model:     params.Model,
		MaxTokens: params.MaxTokensToSample,
		Prompt:    params.Prompt,
	}
}

func batchCreateRequest(params llm.BatchCreateParams) synthetic.Request {
	req := synthetic.Request{Requests: len(params.Requests)}
	if len(params.Requests) > 0 {
		req.Model = params.Requests[0].Params.Model
	}
	return req
}

// mockedConfig is what a test-mode client reports as its configuration
func mockedConfig() llm.ClientConfig {
	return llm.ClientConfig{
		APIKey:     TestMarker + "API_KEY",
		BaseURL:    llm.DefaultBaseURL,
		Timeout:    llm.DefaultTimeout,
		MaxRetries: llm.DefaultMaxRetries,
	}
}
