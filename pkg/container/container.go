package container

import (
	"context"
	"log/slog"

	"github.com/almostcrackd/caption-pipeline/internal/auth"
	"github.com/almostcrackd/caption-pipeline/internal/captioning"
	"github.com/almostcrackd/caption-pipeline/internal/handler"
	"github.com/almostcrackd/caption-pipeline/pkg/config"
	"github.com/almostcrackd/caption-pipeline/pkg/errors"
)

// Container wires the pipeline proxy's dependencies.
type Container struct {
	Config          *config.Config
	Logger          *slog.Logger
	AuthProvider    auth.Provider
	CaptionClient   *captioning.Client
	PipelineHandler *handler.PipelineHandler
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	logger.Info("Initializing container")

	var authProvider auth.Provider
	switch cfg.Auth.Mode {
	case "static":
		authProvider = auth.NewStaticProvider(cfg.Auth.StaticToken)
	case "gotrue":
		authProvider = auth.NewGoTrueProvider(cfg.Auth.BaseURL, logger)
	default:
		return nil, errors.NewConfigurationError("unknown auth mode: " + cfg.Auth.Mode)
	}

	captionClient := captioning.NewClient(cfg.Upstream, logger)

	pipelineHandler := handler.NewPipelineHandler(cfg, authProvider, captionClient, logger)

	logger.Info("Container initialized successfully",
		"auth_mode", cfg.Auth.Mode,
		"upstream", cfg.Upstream.BaseURL,
	)

	return &Container{
		Config:          cfg,
		Logger:          logger,
		AuthProvider:    authProvider,
		CaptionClient:   captionClient,
		PipelineHandler: pipelineHandler,
	}, nil
}

func (c *Container) Close() error {
	c.Logger.Info("Closing container resources")
	return nil
}
