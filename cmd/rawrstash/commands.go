package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	gorawrstash "github.com/Keksclan/goRawrStash"
	"github.com/Keksclan/goRawrStash/metrics"
	"github.com/Keksclan/goRawrStash/stashrpc"
	"github.com/Keksclan/goRawrStash/tracing"
	"github.com/Keksclan/goRawrStash/track"
	"github.com/apex/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
)

func cacheOptions(tcfg *tracing.Config) []gorawrstash.Option {
	if tcfg == nil {
		return nil
	}
	return []gorawrstash.Option{gorawrstash.WithTracing(*tcfg)}
}

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "flush the store, store two values and replay the ledger",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, closeStore, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			tcfg, shutdown, err := tracingConfig(cmd)
			if err != nil {
				return err
			}
			defer shutdown(context.Background())

			c, err := gorawrstash.New(ctx, s, cacheOptions(tcfg)...)
			if err != nil {
				return err
			}
			w := cmd.Root().Writer

			var keys []string
			for _, v := range []any{"foo", 42} {
				key, err := c.Store(ctx, v)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "stored %v as %s\n", v, key)
				keys = append(keys, key)
			}

			n, err := c.CallCount(ctx, c.MethodName())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "call count: %d\n", n)

			text, _, err := gorawrstash.GetStr(ctx, c, keys[0])
			if err != nil {
				return err
			}
			num, _, err := gorawrstash.GetInt(ctx, c, keys[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "read back: %q %d\n\n", text, num)

			return c.Replay(ctx, c.MethodName(), w)
		},
	}
}

func replayCommand() *cli.Command {
	return &cli.Command{
		Name:  "replay",
		Usage: "print the recorded calls of a method without touching the store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "method",
				Usage: "tracked method name",
				Value: gorawrstash.DefaultMethodName,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			s, closeStore, err := openStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeStore()
			return track.Replay(ctx, s, cmd.String("method"), cmd.Root().Writer)
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "flush the store and serve rawr.Stash over gRPC",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "listen",
				Usage:   "gRPC listen address",
				Value:   "127.0.0.1:7420",
				Sources: cli.EnvVars("RAWRSTASH_LISTEN"),
			},
			&cli.StringFlag{
				Name:    "metrics-listen",
				Usage:   "Prometheus /metrics listen address, empty disables it",
				Value:   "127.0.0.1:7421",
				Sources: cli.EnvVars("RAWRSTASH_METRICS_LISTEN"),
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "requests per second across all methods, 0 disables limiting",
			},
			&cli.IntFlag{
				Name:  "burst",
				Usage: "rate limiter burst",
				Value: 10,
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	s, closeStore, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	tcfg, shutdown, err := tracingConfig(cmd)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	if err != nil {
		return err
	}
	opts := append(cacheOptions(tcfg), gorawrstash.WithMetrics(collector))

	c, err := gorawrstash.New(ctx, s, opts...)
	if err != nil {
		return err
	}

	var rpcOpts []stashrpc.Option
	if tcfg != nil {
		rpcOpts = append(rpcOpts, stashrpc.WithTracing(*tcfg))
	}
	if rps := cmd.Float("rate-limit"); rps > 0 {
		rpcOpts = append(rpcOpts, stashrpc.WithRateLimit(rps, int(cmd.Int("burst"))))
	}
	srv := stashrpc.NewServer(stashrpc.NewHandler(c), rpcOpts...)

	lis, err := net.Listen("tcp", cmd.String("listen"))
	if err != nil {
		return err
	}

	errc := make(chan error, 2)
	go func() { errc <- srv.Serve(lis) }()
	log.WithField("addr", lis.Addr().String()).Info("serving rawr.Stash")

	var metricsSrv *http.Server
	if addr := cmd.String("metrics-listen"); addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
		log.WithField("addr", addr).Info("serving metrics")
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errc:
		log.WithError(err).Error("server stopped")
	}

	srv.GracefulStop()
	if metricsSrv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(sctx)
	}
	return err
}
