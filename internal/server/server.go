package server

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/almostcrackd/caption-pipeline/internal/handler"
	"github.com/almostcrackd/caption-pipeline/pkg/config"
)

// New builds the proxy's gin engine with routes and middleware attached.
func New(cfg *config.Config, h *handler.PipelineHandler, logger *slog.Logger) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogging(logger))

	router.POST("/api/pipeline", h.Handle)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// Start runs the proxy server until it fails.
func Start(cfg *config.Config, h *handler.PipelineHandler, logger *slog.Logger) error {
	router := New(cfg, h, logger)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting pipeline proxy", "addr", addr)
	return router.Run(addr)
}
