package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/kirinyoku/deskgo/docs"
	"github.com/kirinyoku/deskgo/internal/app"
	"github.com/kirinyoku/deskgo/internal/config"
)

// @title DeskGo API
// @version 1.0
// @description Office seat reservations: booking, check-in, extension and return.
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Error("application finished with error", "error", err)
		os.Exit(1)
	}
}
