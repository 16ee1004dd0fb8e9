package main

import (
	"context"
	"log"

	"github.com/almostcrackd/caption-pipeline/internal/server"
	"github.com/almostcrackd/caption-pipeline/pkg/config"
	"github.com/almostcrackd/caption-pipeline/pkg/container"
	"github.com/almostcrackd/caption-pipeline/pkg/logger"
)

func main() {
	// Initialize basic logger for startup
	startupLogger := logger.New(logger.Config{
		Level:  "info",
		Format: "text",
	})

	startupLogger.Info("Starting Caption Pipeline Proxy")

	cfg, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	appLogger.Info("Configuration loaded",
		"env", cfg.Env,
		"upstream", cfg.Upstream.BaseURL,
		"auth_mode", cfg.Auth.Mode,
	)

	ctx := context.Background()

	cnt, err := container.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize container", "error", err)
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer func() {
		if err := cnt.Close(); err != nil {
			appLogger.Error("Error closing container", "error", err)
		}
	}()

	if err := server.Start(cfg, cnt.PipelineHandler, appLogger); err != nil {
		appLogger.Error("Server stopped", "error", err)
		log.Fatalf("Server stopped: %v", err)
	}
}
