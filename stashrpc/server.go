package stashrpc

import (
	"github.com/Keksclan/goRawrStash/tracing"
	"github.com/apex/log"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

// config holds the internal configuration assembled via functional options.
type config struct {
	logger  log.Interface
	tracing *tracing.Config
	limiter *rate.Limiter
	extra   []grpc.UnaryServerInterceptor
}

// Option configures the server built by NewServer.
type Option func(*config)

// WithLogger sets the logger used to report recovered panics.
func WithLogger(l log.Interface) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracing opens a server span for every RPC.
func WithTracing(cfg tracing.Config) Option {
	return func(c *config) {
		c.tracing = &cfg
	}
}

// WithRateLimit admits at most rps requests per second with the given burst,
// across all methods. Rejected calls fail with codes.ResourceExhausted.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *config) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithUnaryInterceptor appends a unary server interceptor after the built-in
// ones.
func WithUnaryInterceptor(i grpc.UnaryServerInterceptor) Option {
	return func(c *config) {
		c.extra = append(c.extra, i)
	}
}

// NewServer returns a gRPC server with h registered as rawr.Stash. Panic
// recovery always runs first, then tracing, then rate limiting, then any
// interceptors added with WithUnaryInterceptor.
func NewServer(h Handler, opts ...Option) *grpc.Server {
	cfg := config{logger: log.Log}
	for _, o := range opts {
		o(&cfg)
	}

	chain := []grpc.UnaryServerInterceptor{recoveryUnary(cfg.logger)}
	if cfg.tracing != nil {
		chain = append(chain, tracing.UnaryServerInterceptor(cfg.tracing))
	}
	if cfg.limiter != nil {
		chain = append(chain, rateLimitUnary(cfg.limiter))
	}
	chain = append(chain, cfg.extra...)

	s := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	Register(s, h)
	return s
}
