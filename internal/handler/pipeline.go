package handler

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/almostcrackd/caption-pipeline/internal/auth"
	"github.com/almostcrackd/caption-pipeline/internal/captioning"
	"github.com/almostcrackd/caption-pipeline/pkg/config"
	"github.com/almostcrackd/caption-pipeline/pkg/errors"
)

// UnsupportedActionMessage is returned for unknown pipeline actions.
const UnsupportedActionMessage = "Unsupported action. Use presign/register/generate/poll."

// PipelineHandler is the proxy for the external captioning service. It
// authenticates the caller, forwards one action per request, and
// normalizes the upstream's inconsistent response shapes.
type PipelineHandler struct {
	cfg      *config.Config
	authProv auth.Provider
	client   *captioning.Client
	logger   *slog.Logger
}

func NewPipelineHandler(cfg *config.Config, authProv auth.Provider, client *captioning.Client, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{
		cfg:      cfg,
		authProv: authProv,
		client:   client,
		logger:   logger,
	}
}

// Handle serves POST /api/pipeline.
func (h *PipelineHandler) Handle(c *gin.Context) {
	session, err := h.authProv.Verify(c.Request.Context(), auth.BearerToken(c.Request))
	if err != nil {
		pipelineActions.WithLabelValues("unknown", resultUnauthorized).Inc()
		c.JSON(401, gin.H{"error": "Unauthorized"})
		return
	}
	if session.AccessToken == "" {
		pipelineActions.WithLabelValues("unknown", resultUnauthorized).Inc()
		c.JSON(401, gin.H{"error": "Missing auth access token"})
		return
	}

	rawData, err := c.GetRawData()
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid JSON body"})
		return
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(rawData, &payload); err != nil {
		c.JSON(400, gin.H{"error": "Invalid JSON body"})
		return
	}

	action, _ := payload["action"].(string)

	switch action {
	case "presign":
		h.presign(c, session, payload)
	case "register":
		h.register(c, session, payload)
	case "generate":
		h.generate(c, session, payload, "generate", h.cfg.Upstream.GenerateTimeout)
	case "poll":
		h.generate(c, session, payload, "poll", h.cfg.Upstream.PollTimeout)
	default:
		pipelineActions.WithLabelValues("unknown", resultBadRequest).Inc()
		c.JSON(400, gin.H{"error": UnsupportedActionMessage})
	}
}

func (h *PipelineHandler) presign(c *gin.Context, session *auth.Session, payload map[string]interface{}) {
	contentType, _ := payload["contentType"].(string)
	if contentType == "" {
		pipelineActions.WithLabelValues("presign", resultBadRequest).Inc()
		c.JSON(400, gin.H{"error": "Missing contentType"})
		return
	}
	if !captioning.IsSupportedContentType(contentType) {
		pipelineActions.WithLabelValues("presign", resultBadRequest).Inc()
		c.JSON(400, gin.H{"error": "Unsupported contentType: " + contentType})
		return
	}

	start := time.Now()
	resp, err := h.client.Presign(c.Request.Context(), session.AccessToken, contentType)
	upstreamDuration.WithLabelValues("presign").Observe(time.Since(start).Seconds())
	h.forward(c, "presign", resp, err)
}

func (h *PipelineHandler) register(c *gin.Context, session *auth.Session, payload map[string]interface{}) {
	imageURL, _ := payload["imageUrl"].(string)
	if imageURL == "" {
		pipelineActions.WithLabelValues("register", resultBadRequest).Inc()
		c.JSON(400, gin.H{"error": "Missing imageUrl"})
		return
	}

	start := time.Now()
	resp, err := h.client.Register(c.Request.Context(), session.AccessToken, imageURL)
	upstreamDuration.WithLabelValues("register").Observe(time.Since(start).Seconds())
	h.forward(c, "register", resp, err)
}

// forward passes a presign/register upstream reply through unchanged on
// success and propagates the upstream error verbatim otherwise. Transport
// failures degrade: timeout-shaped ones become 202 processing, the rest a 500.
func (h *PipelineHandler) forward(c *gin.Context, action string, resp *captioning.Response, err error) {
	if err != nil {
		if captioning.IsTimeoutError(err) || errors.Is(err, errors.ErrorTypeNetworkTimeout) {
			pipelineActions.WithLabelValues(action, resultProcessing).Inc()
			c.JSON(202, gin.H{"processing": true, "message": captioning.StillProcessingMessage})
			return
		}
		pipelineActions.WithLabelValues(action, resultError).Inc()
		h.logger.Error("Upstream call failed", "action", action, "error", err)
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	if !resp.OK() {
		pipelineActions.WithLabelValues(action, resultError).Inc()
		c.JSON(resp.Status, gin.H{"error": captioning.ExtractErrorMessage(resp.Payload, resp.Raw)})
		return
	}

	pipelineActions.WithLabelValues(action, resultOK).Inc()
	c.JSON(200, resp.Payload)
}

func (h *PipelineHandler) generate(c *gin.Context, session *auth.Session, payload map[string]interface{}, action string, timeout time.Duration) {
	imageID, _ := payload["imageId"].(string)
	if imageID == "" {
		pipelineActions.WithLabelValues(action, resultBadRequest).Inc()
		c.JSON(400, gin.H{"error": "Missing imageId"})
		return
	}

	start := time.Now()
	outcome := h.client.AttemptGeneration(c.Request.Context(), session.AccessToken, imageID, timeout)
	upstreamDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())

	switch {
	case outcome.Done:
		pipelineActions.WithLabelValues(action, resultOK).Inc()
		c.JSON(200, outcome.Captions)
	case outcome.Processing:
		pipelineActions.WithLabelValues(action, resultProcessing).Inc()
		c.JSON(202, gin.H{"processing": true, "message": outcome.Message})
	default:
		pipelineActions.WithLabelValues(action, resultError).Inc()
		h.logger.Warn("Caption generation failed",
			"action", action,
			"image_id", imageID,
			"status", outcome.Status,
			"error", outcome.Err,
		)
		c.JSON(outcome.Status, gin.H{"error": outcome.Err})
	}
}
