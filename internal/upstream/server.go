package upstream

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/almostcrackd/caption-pipeline/pkg/config"
)

// NewRouter builds the emulator's gin engine. Object routes are mounted
// only when the local signer serves its own storage.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/pipeline/generate-presigned-url", h.GeneratePresignedURL)
	router.POST("/pipeline/upload-image-from-url", h.UploadImageFromURL)
	router.POST("/pipeline/generate-captions", h.GenerateCaptions)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if h.signer != nil {
		router.PUT("/objects/:key", h.PutObject)
		router.GET("/objects/:key", h.GetObject)
	}

	return router
}

// Start runs the emulator until it fails.
func Start(cfg *config.Config, h *Handler, logger *slog.Logger) error {
	gin.SetMode(cfg.Server.GinMode)
	router := NewRouter(h)
	addr := fmt.Sprintf("%s:%d", cfg.Emulator.Host, cfg.Emulator.Port)
	logger.Info("Starting captioning service emulator", "addr", addr)
	return router.Run(addr)
}
