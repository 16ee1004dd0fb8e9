package upstream

import (
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/almostcrackd/caption-pipeline/pkg/errors"
)

// Handler exposes the captioning service endpoints the proxy consumes.
type Handler struct {
	service *CaptionService
	signer  *LocalSigner // nil unless the local signer serves objects itself
	logger  *slog.Logger
}

func NewHandler(service *CaptionService, signer *LocalSigner, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		signer:  signer,
		logger:  logger,
	}
}

type presignRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

func (h *Handler) GeneratePresignedURL(c *gin.Context) {
	if !authorized(c) {
		return
	}

	var req presignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Missing contentType"})
		return
	}

	target, err := h.service.IssuePresignedURL(c.Request.Context(), req.ContentType)
	if err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, target)
}

type registerRequest struct {
	ImageURL    string `json:"imageUrl" binding:"required"`
	IsCommonUse bool   `json:"isCommonUse"`
}

func (h *Handler) UploadImageFromURL(c *gin.Context) {
	if !authorized(c) {
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Missing imageUrl"})
		return
	}

	img, err := h.service.RegisterImage(c.Request.Context(), req.ImageURL, req.IsCommonUse)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"imageId": img.ID, "cdnUrl": img.SourceURL})
}

type generateRequest struct {
	ImageID string `json:"imageId" binding:"required"`
}

func (h *Handler) GenerateCaptions(c *gin.Context) {
	if !authorized(c) {
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Missing imageId"})
		return
	}

	img, captions, err := h.service.GetCaptions(c.Request.Context(), req.ImageID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.ErrorTypeNotFound) {
			c.JSON(404, gin.H{"error": "image not found"})
			return
		}
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	switch img.Status {
	case StatusReady:
		c.JSON(200, gin.H{"captions": captions})
	case StatusFailed:
		c.JSON(500, gin.H{"error": "caption generation failed"})
	default:
		c.JSON(202, gin.H{"processing": true, "message": "Caption generation is queued"})
	}
}

// PutObject accepts the raw byte write to a locally signed URL.
func (h *Handler) PutObject(c *gin.Context) {
	key := c.Param("key")
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(400, gin.H{"error": "failed to read request body"})
		return
	}
	h.signer.PutObject(key, c.ContentType(), data)
	c.Status(200)
}

// GetObject serves a locally stored object.
func (h *Handler) GetObject(c *gin.Context) {
	key := c.Param("key")
	contentType, data, ok := h.signer.GetObject(key)
	if !ok {
		c.JSON(404, gin.H{"error": "object not found"})
		return
	}
	c.Data(200, contentType, data)
}

// authorized requires a bearer credential. The emulator does not validate
// tokens; it only enforces that callers send one, like the hosted service.
func authorized(c *gin.Context) bool {
	if c.GetHeader("Authorization") == "" {
		c.JSON(401, gin.H{"error": "Unauthorized"})
		return false
	}
	return true
}
