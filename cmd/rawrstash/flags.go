package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Keksclan/goRawrStash/retry"
	"github.com/Keksclan/goRawrStash/store"
	"github.com/Keksclan/goRawrStash/tracing"
	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "redis-addr",
			Usage:   "Redis server address",
			Value:   "localhost:6379",
			Sources: cli.EnvVars("RAWRSTASH_REDIS_ADDR"),
		},
		&cli.StringFlag{
			Name:    "redis-password",
			Usage:   "Redis password",
			Sources: cli.EnvVars("RAWRSTASH_REDIS_PASSWORD"),
		},
		&cli.IntFlag{
			Name:    "redis-db",
			Usage:   "Redis database number",
			Sources: cli.EnvVars("RAWRSTASH_REDIS_DB"),
		},
		&cli.BoolFlag{
			Name:  "memory",
			Usage: "use an in-process store instead of Redis",
		},
		&cli.IntFlag{
			Name:  "l1-size",
			Usage: "entries kept in the in-process read cache, 0 disables it",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "print OpenTelemetry spans to stderr",
		},
	}
}

// openStore builds the store selected by the global flags. The returned
// func releases it.
func openStore(ctx context.Context, cmd *cli.Command) (store.Store, func(), error) {
	var (
		s       store.Store
		cleanup = func() {}
	)

	if cmd.Bool("memory") {
		s = store.NewMemory()
		log.Debug("using in-process store")
	} else {
		addr := cmd.String("redis-addr")
		r := store.NewRedis(addr, cmd.String("redis-password"), int(cmd.Int("redis-db")),
			store.WithRetry(retry.Config{
				MaxAttempts: 3,
				BaseDelay:   50 * time.Millisecond,
				MaxDelay:    time.Second,
				Jitter:      0.2,
			}))
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
		}
		log.WithField("addr", addr).Debug("connected to redis")
		s = r
		cleanup = func() { _ = r.Close() }
	}

	if n := int64(cmd.Int("l1-size")); n > 0 {
		t, err := store.NewTiered(s, n)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		next := cleanup
		cleanup = func() {
			t.Close()
			next()
		}
		s = t
	}
	return s, cleanup, nil
}

// tracingConfig returns a stdout tracing setup when --trace is set, nil
// otherwise. The returned func flushes pending spans.
func tracingConfig(cmd *cli.Command) (*tracing.Config, func(context.Context), error) {
	if !cmd.Bool("trace") {
		return nil, func(context.Context) {}, nil
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, nil, fmt.Errorf("create stdout exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	shutdown := func(ctx context.Context) {
		if err := tp.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("tracer shutdown")
		}
	}
	return &tracing.Config{TracerProvider: tp}, shutdown, nil
}
