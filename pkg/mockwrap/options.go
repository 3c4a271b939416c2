package mockwrap

import (
	"github.com/inercia/go-anthropic-mock/pkg/providers/synthetic"
)

// Option configures a wrapper
type Option func(*options)

type options struct {
	generator *synthetic.Generator
	config    synthetic.Config
}

// WithGenerator makes the wrapper answer test calls with gen
func WithGenerator(gen *synthetic.Generator) Option {
	return func(o *options) {
		o.generator = gen
	}
}

// WithGeneratorConfig builds the wrapper's generator from config
func WithGeneratorConfig(config synthetic.Config) Option {
	return func(o *options) {
		o.config = config
	}
}

// WithSeed makes synthetic identifiers and text reproducible
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.config.Seed = seed
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.generator == nil {
		o.generator = synthetic.NewGenerator(o.config)
	}
	return o
}
