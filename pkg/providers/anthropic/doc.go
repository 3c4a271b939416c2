// Package anthropic provides an llm.Backend backed by the official Anthropic Go SDK.
//
// Every namespace of the SDK client that the wrapper mirrors is exposed: messages
// (create and stream), message batches, legacy text completions and models. Beta
// messages are served by the generally available endpoints, which accept the same
// request bodies.
//
// Requests and responses are converted between the SDK's types and the llm
// package's through their JSON wire form, so fields the llm package does not model
// are dropped silently.
//
// Usage:
//
//	backend, err := anthropic.NewClient(llm.ClientConfig{
//	    Provider: "anthropic",
//	    Model:    "claude-3-opus-20240229",
//	    APIKey:   os.Getenv("ANTHROPIC_API_KEY"),
//	})
//
// SDK errors are normalised into *llm.Error values that unwrap to the SDK's error.
package anthropic
