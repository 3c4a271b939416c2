package factory

import (
	"fmt"

	"github.com/mudler/xlog"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
	"github.com/inercia/go-anthropic-mock/pkg/mockwrap"
)

const DefaultProvider = "anthropic"

// Factory creates wrapped clients based on configuration
type Factory struct {
	opts []mockwrap.Option
}

// New creates a new client factory. The options are applied to every client it creates.
func New(opts ...mockwrap.Option) *Factory {
	return &Factory{opts: opts}
}

// CreateBackend creates the unwrapped backend named by config.Provider
func (f *Factory) CreateBackend(config llm.ClientConfig) (llm.Backend, error) {
	// Default to "anthropic" if provider is empty
	provider := config.Provider
	if provider == "" {
		provider = DefaultProvider
	}

	constructor, exists := GetProvider(provider)
	if !exists {
		return nil, &llm.Error{
			Code:    "unsupported_provider",
			Message: fmt.Sprintf("unsupported provider: %s", provider),
			Type:    llm.ErrorTypeConfiguration,
		}
	}

	if config.Provider == "" {
		config.Provider = provider
	}
	return constructor(config)
}

// CreateClient creates a backend and wraps it with the synchronous calling convention
func (f *Factory) CreateClient(config llm.ClientConfig) (*mockwrap.Client, error) {
	backend, err := f.CreateBackend(config)
	if err != nil {
		return nil, err
	}

	client, err := mockwrap.New(backend, f.opts...)
	if err != nil {
		return nil, err
	}
	xlog.Debug("Created client", "provider", config.Provider, "test_mode", client.IsTestMode())
	return client, nil
}

// CreateAsyncClient creates a backend and wraps it with the future-returning calling convention
func (f *Factory) CreateAsyncClient(config llm.ClientConfig) (*mockwrap.AsyncClient, error) {
	backend, err := f.CreateBackend(config)
	if err != nil {
		return nil, err
	}

	client, err := mockwrap.NewAsync(backend, f.opts...)
	if err != nil {
		return nil, err
	}
	xlog.Debug("Created async client", "provider", config.Provider, "test_mode", client.IsTestMode())
	return client, nil
}
