// Backend interfaces mirroring the client namespaces
package llm

import "context"

// Backend is the call surface of a conversational-AI client. Every namespace of
// the client is a separate capability interface so that proxies and stubs can
// implement them one by one.
type Backend interface {
	// APIKey returns the credential the backend authenticates with
	APIKey() string

	Messages() MessagesAPI
	Completions() CompletionsAPI
	Models() ModelsAPI
	Beta() BetaAPI
}

// MessagesAPI is the messages namespace
type MessagesAPI interface {
	// Create performs a single-turn message request
	Create(ctx context.Context, params MessageParams) (*Message, error)

	// Stream performs a message request and returns the incremental events
	Stream(ctx context.Context, params MessageParams) (MessageStream, error)

	// Batches returns the message batches sub-namespace
	Batches() BatchesAPI
}

// BatchesAPI is the message batches namespace
type BatchesAPI interface {
	Create(ctx context.Context, params BatchCreateParams) (*MessageBatch, error)
	Retrieve(ctx context.Context, batchID string) (*MessageBatch, error)
	List(ctx context.Context, params BatchListParams) (*BatchPage, error)
	Cancel(ctx context.Context, batchID string) (*MessageBatch, error)
	Results(ctx context.Context, batchID string) (BatchResultStream, error)
}

// CompletionsAPI is the legacy text completions namespace
type CompletionsAPI interface {
	Create(ctx context.Context, params CompletionParams) (*Completion, error)
}

// ModelsAPI is the models namespace
type ModelsAPI interface {
	List(ctx context.Context, params ModelListParams) (*ModelPage, error)
}

// BetaAPI is the beta namespace
type BetaAPI interface {
	Messages() MessagesAPI
}

// Configured is implemented by backends that expose the configuration they were built with
type Configured interface {
	Config() ClientConfig
}

// Reconfigurable is implemented by backends that can derive a copy with different options
type Reconfigurable interface {
	WithConfig(config ClientConfig) (Backend, error)
}
