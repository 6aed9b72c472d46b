package worker

import (
	"github.com/okian/stockwatch/pkg/logger"
)

type config struct {
	name   string
	logger logger.Logger
}

func newConfig(opts ...Option) config {
	c := config{name: "worker"}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("worker-pool")
	}
	return c
}

// Option applies a configuration option to a Run.
type Option func(*config)

// WithName sets the worker name prefix used in logs.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets a custom logger for the workers.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
