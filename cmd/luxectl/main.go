package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/stwalsh4118/luxeestate/internal/cli"
	"github.com/stwalsh4118/luxeestate/internal/config"
	"github.com/stwalsh4118/luxeestate/internal/datasource"
	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Results go to stdout, logs to stderr.
	log := logger.NewWithOutput(cfg.Server.Env, os.Stderr)

	opener := func(ctx context.Context) (store.Store, func() error, error) {
		h, err := datasource.Open(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return h.Store, h.Close, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app := cli.New(opener, log, os.Stdout)

	err = app.RootCmd().ExecuteContext(ctx)
	if cerr := app.Close(); cerr != nil {
		log.Error("Failed to close store", cerr, nil)
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
