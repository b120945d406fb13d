// Command rawrstash drives an instrumented cache from the shell: a scripted
// demo, a read-only replay of a tracked method, and a gRPC server exposing
// the cache.
//
// Run:
//
//	go run ./cmd/rawrstash --memory demo
//	go run ./cmd/rawrstash --redis-addr localhost:6379 replay --method Cache.Store
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mylog "github.com/Keksclan/goRawrStash/internal/log"
	"github.com/apex/log"
	"github.com/urfave/cli/v3"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	mylog.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.WithError(err).Debug("command failed")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "rawrstash",
		Usage: "key-value cache that records every store call",
		Flags: storeFlags(),
		Commands: []*cli.Command{
			demoCommand(),
			replayCommand(),
			serveCommand(),
		},
	}
}
