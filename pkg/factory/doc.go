// Package factory creates wrapped clients from configuration.
//
// Backends register themselves by provider name ("anthropic", "bedrock", "mock")
// and the factory wraps the backend it builds with mockwrap, so a TEST_
// credential yields a client that never reaches the provider.
//
// Example usage:
//
//	import (
//	    "github.com/inercia/go-anthropic-mock/pkg/factory"
//	    "github.com/inercia/go-anthropic-mock/pkg/llm"
//	)
//
//	f := factory.New()
//	client, err := f.CreateClient(llm.ClientConfig{
//	    Provider: "anthropic",
//	    Model:    "claude-3-haiku-20240307",
//	    APIKey:   os.Getenv("ANTHROPIC_API_KEY"),
//	})
package factory
