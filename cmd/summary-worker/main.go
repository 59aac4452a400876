package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/knowyourrights/internal/app/summaryworker"
	"github.com/magabrotheeeer/knowyourrights/internal/config"
)

func main() {
	cfg := config.MustLoad()
	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	logger.Info("starting summary worker", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := summaryworker.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize summary worker", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("summary worker stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("summary worker stopped gracefully")
}
