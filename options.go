package gorawrstash

import (
	"github.com/Keksclan/goRawrStash/internal/core"
	"github.com/Keksclan/goRawrStash/metrics"
	"github.com/Keksclan/goRawrStash/tracing"
	"github.com/Keksclan/goRawrStash/track"
	"github.com/apex/log"
)

// Option configures a Cache.
type Option func(*config)

// WithMethodName sets the name Store calls are tracked under. The name is
// used verbatim as the store key namespace, so two caches sharing a store
// must use distinct names to keep separate histories.
func WithMethodName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.methodName = name
		}
	}
}

// WithKeyFunc replaces the random key generator used by Store. Keys must be
// unique for the lifetime of the store.
func WithKeyFunc(fn func() string) Option {
	return func(c *config) {
		if fn != nil {
			c.newKey = fn
		}
	}
}

// WithLogger sets the logger. The default is the apex/log package logger.
func WithLogger(l log.Interface) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMiddleware adds mw around every tracked method, outside the counting
// and history bookkeeping. Multiple calls run in the order given.
func WithMiddleware(mw track.Middleware) Option {
	return func(c *config) {
		c.layers = append(c.layers, layer{
			order: core.OrderCustom,
			build: func(string) track.Middleware { return mw },
		})
	}
}

// WithTracing opens an OpenTelemetry span for every tracked call.
func WithTracing(cfg tracing.Config) Option {
	return func(c *config) {
		c.layers = append(c.layers, layer{
			order: core.OrderTracing,
			build: func(name string) track.Middleware { return tracing.Middleware(&cfg, name) },
		})
	}
}

// WithMetrics records Prometheus series for every tracked call.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *config) {
		if m == nil {
			return
		}
		c.layers = append(c.layers, layer{
			order: core.OrderMetrics,
			build: m.Middleware,
		})
	}
}
