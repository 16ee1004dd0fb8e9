package captioning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/almostcrackd/caption-pipeline/pkg/config"
	"github.com/almostcrackd/caption-pipeline/pkg/errors"
)

const (
	pathPresign  = "/pipeline/generate-presigned-url"
	pathRegister = "/pipeline/upload-image-from-url"
	pathGenerate = "/pipeline/generate-captions"

	// StillProcessingMessage is returned for every processing-like outcome.
	StillProcessingMessage = "Caption generation is still processing."
)

// Response is one upstream reply: HTTP status, the opportunistically
// JSON-decoded payload, and the raw body text.
type Response struct {
	Status  int
	Payload interface{}
	Raw     string
}

// OK reports whether the upstream answered with a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client talks to the external captioning service. It holds no state
// between calls; every call carries the caller's bearer token and a
// bounded timeout.
type Client struct {
	baseURL    string
	timeouts   config.UpstreamConfig
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg config.UpstreamConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		timeouts: cfg,
		// Per-call budgets come from the request context, not the client.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Presign asks the upstream for a one-time write URL for the content type.
func (c *Client) Presign(ctx context.Context, token, contentType string) (*Response, error) {
	return c.post(ctx, pathPresign, map[string]interface{}{
		"contentType": contentType,
	}, token, c.timeouts.PresignTimeout)
}

// Register registers an uploaded object by its public URL.
func (c *Client) Register(ctx context.Context, token, imageURL string) (*Response, error) {
	return c.post(ctx, pathRegister, map[string]interface{}{
		"imageUrl":    imageURL,
		"isCommonUse": false,
	}, token, c.timeouts.RegisterTimeout)
}

// AttemptGeneration issues one caption generation call and classifies the
// outcome. Both the generate and poll actions land here; they differ only
// in the timeout budget.
func (c *Client) AttemptGeneration(ctx context.Context, token, imageID string, timeout time.Duration) Outcome {
	resp, err := c.post(ctx, pathGenerate, map[string]interface{}{
		"imageId": imageID,
	}, token, timeout)
	if err != nil {
		if IsTimeoutError(err) {
			c.logger.Warn("Caption generation call timed out, treating as processing",
				"image_id", imageID,
				"timeout", timeout,
			)
			return Outcome{Processing: true, Message: StillProcessingMessage}
		}
		return Outcome{
			Err:    err.Error(),
			Status: 500,
		}
	}

	captions := ExtractCaptions(resp.Payload)
	if resp.OK() && len(captions) > 0 {
		return Outcome{Done: true, Captions: captions}
	}

	if IsProcessingLike(resp.Status, resp.Payload, resp.Raw) || (resp.OK() && len(captions) == 0) {
		return Outcome{Processing: true, Message: StillProcessingMessage}
	}

	status := resp.Status
	if status == 0 {
		status = 500
	}
	fallback := resp.Raw
	if fallback == "" {
		fallback = "Caption generation failed"
	}
	return Outcome{
		Err:    ExtractErrorMessage(resp.Payload, fallback),
		Status: status,
	}
}

func (c *Client) post(ctx context.Context, path string, body interface{}, token string, timeout time.Duration) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.WrapInternalError(err, "failed to marshal upstream request")
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapInternalError(err, "failed to build upstream request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if IsTimeoutError(err) {
			return nil, errors.Wrap(err, errors.ErrorTypeNetworkTimeout,
				fmt.Sprintf("upstream call to %s timed out after %s", path, timeout))
		}
		return nil, errors.WrapUpstreamFailedError(err, fmt.Sprintf("upstream call to %s failed", path))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapUpstreamFailedError(err, "failed to read upstream response body")
	}

	c.logger.Debug("Upstream call completed",
		"path", path,
		"status", resp.StatusCode,
	)

	return &Response{
		Status:  resp.StatusCode,
		Payload: DecodePayload(raw),
		Raw:     string(raw),
	}, nil
}
