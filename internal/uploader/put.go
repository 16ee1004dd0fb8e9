package uploader

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/almostcrackd/caption-pipeline/pkg/errors"
)

// ObjectWriter performs the direct byte write to a presigned URL.
type ObjectWriter interface {
	Put(ctx context.Context, url, contentType string, body []byte) error
}

// HTTPObjectWriter PUTs the raw file bytes at the presigned URL with the
// declared content type. No SDK is involved; a presigned URL carries its
// own credentials.
type HTTPObjectWriter struct {
	httpClient *http.Client
}

func NewHTTPObjectWriter() *HTTPObjectWriter {
	return &HTTPObjectWriter{
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (w *HTTPObjectWriter) Put(ctx context.Context, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return errors.WrapInternalError(err, "failed to build upload request")
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeByteUploadFailed, "byte upload failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewByteUploadFailedError(fmt.Sprintf("Step 2 failed with HTTP %d", resp.StatusCode)).
			WithStatus(resp.StatusCode)
	}
	return nil
}

var _ ObjectWriter = (*HTTPObjectWriter)(nil)
