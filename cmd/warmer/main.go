package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonas-jun/inv-secretary/internal/app"
	"github.com/jonas-jun/inv-secretary/internal/config"
	"github.com/jonas-jun/inv-secretary/internal/warmer"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}
	app.SetupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("error starting app: %v", err)
	}
	defer a.Close()

	if a.Queue == nil {
		log.Fatalf("REDIS_URL is required for the warmer")
	}

	slog.Info("warmer started", "languages", cfg.WarmLanguages, "max_attempts", cfg.WarmMaxAttempts)

	w := warmer.NewWorker(a.Queue, a.Pipeline, cfg.WarmLanguages, cfg.WarmMaxAttempts)
	if err := w.Run(ctx); err != nil {
		slog.Error("warmer stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("warmer stopped")
}
