package factory

import (
	"github.com/inercia/go-anthropic-mock/pkg/llm"
	"github.com/inercia/go-anthropic-mock/pkg/providers/anthropic"
	"github.com/inercia/go-anthropic-mock/pkg/providers/bedrock"
	"github.com/inercia/go-anthropic-mock/pkg/providers/mock"
)

func init() {
	// The Anthropic API
	RegisterProvider("anthropic", func(config llm.ClientConfig) (llm.Backend, error) {
		return anthropic.NewClient(config)
	})

	// Anthropic models on AWS Bedrock
	RegisterProvider("bedrock", func(config llm.ClientConfig) (llm.Backend, error) {
		return bedrock.NewClient(config)
	})

	// The in-memory recording backend
	RegisterProvider("mock", func(config llm.ClientConfig) (llm.Backend, error) {
		return mock.NewClientWithConfig(config), nil
	})
	RegisterProvider("mocked", func(config llm.ClientConfig) (llm.Backend, error) {
		return mock.NewClientWithConfig(config), nil
	})
}
