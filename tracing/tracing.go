// Package tracing wraps tracked calls and the rawr.Stash gRPC service in
// OpenTelemetry spans. It is optional and only active when a [Config] is
// passed to the cache or the RPC server.
package tracing

import (
	"context"

	"github.com/Keksclan/goRawrStash/track"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Keksclan/goRawrStash/tracing"

// Config holds the OpenTelemetry wiring.
type Config struct {
	// TracerProvider supplies the Tracer used to create spans. When nil the
	// global otel.GetTracerProvider() is used.
	TracerProvider trace.TracerProvider

	// Propagators extracts trace context from incoming RPC metadata.
	// When nil the global otel.GetTextMapPropagator() is used.
	Propagators propagation.TextMapPropagator
}

func (c *Config) tracer() trace.Tracer {
	tp := c.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(instrumentationName)
}

func (c *Config) propagators() propagation.TextMapPropagator {
	if c.Propagators != nil {
		return c.Propagators
	}
	return otel.GetTextMapPropagator()
}

// Middleware returns a [track.Middleware] that opens an internal span named
// after the tracked method for every call. A nil cfg yields a passthrough.
func Middleware(cfg *Config, name string) track.Middleware {
	if cfg == nil {
		return func(next track.Func) track.Func { return next }
	}
	return func(next track.Func) track.Func {
		return func(ctx context.Context, args ...any) (any, error) {
			ctx, span := cfg.tracer().Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
			defer span.End()

			span.SetAttributes(
				attribute.String("stash.method", name),
				attribute.Int("stash.args", len(args)),
			)

			res, err := next(ctx, args...)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return res, err
		}
	}
}
