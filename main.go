package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shootingrange/rangesim/internal/config"
	"shootingrange/rangesim/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "rangesim:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDaemon(cfg, logger)
	if err != nil {
		logger.Error("range startup failed", logging.Error(err))
		return err
	}
	if err := d.listen(); err != nil {
		d.close()
		logger.Error("range listen failed", logging.Error(err))
		return err
	}
	return d.serve(ctx)
}
