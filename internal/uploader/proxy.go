package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/almostcrackd/caption-pipeline/internal/captioning"
	"github.com/almostcrackd/caption-pipeline/pkg/errors"
)

// ProxyResponse is one reply from the pipeline proxy: status, the
// opportunistically JSON-decoded payload, and the raw body text.
type ProxyResponse struct {
	Status  int
	Payload interface{}
	Raw     string
}

func (r *ProxyResponse) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// ProxyClient issues one pipeline action against the proxy endpoint.
type ProxyClient interface {
	Do(ctx context.Context, action string, fields map[string]interface{}) (*ProxyResponse, error)
}

// HTTPProxyClient talks to a running pipeline proxy over HTTP.
type HTTPProxyClient struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

func NewHTTPProxyClient(endpoint, token string) *HTTPProxyClient {
	return &HTTPProxyClient{
		endpoint: endpoint,
		token:    token,
		// Generous: the proxy itself bounds each upstream call; this only
		// guards against a wedged proxy.
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPProxyClient) Do(ctx context.Context, action string, fields map[string]interface{}) (*ProxyResponse, error) {
	body := map[string]interface{}{"action": action}
	for k, v := range fields {
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.WrapInternalError(err, "failed to marshal pipeline request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapInternalError(err, "failed to build pipeline request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUpstreamFailed, "pipeline request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeUpstreamFailed, "failed to read pipeline response")
	}

	return &ProxyResponse{
		Status:  resp.StatusCode,
		Payload: captioning.DecodePayload(raw),
		Raw:     string(raw),
	}, nil
}

var _ ProxyClient = (*HTTPProxyClient)(nil)
