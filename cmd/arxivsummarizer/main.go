package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"ArxivSummarizer/internal/app"
	"ArxivSummarizer/internal/config"
	"ArxivSummarizer/internal/logging"
)

func main() {
	once := flag.Bool("once", false, "run a single processing pass and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	if err := application.Run(ctx, *once); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
