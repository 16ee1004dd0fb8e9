package upstream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
)

// GCSSigner issues V4 signed PUT URLs against a GCS bucket.
type GCSSigner struct {
	client     *storage.Client
	bucketName string
	expiry     time.Duration
}

func NewGCSSigner(client *storage.Client, bucketName string) *GCSSigner {
	return &GCSSigner{
		client:     client,
		bucketName: bucketName,
		expiry:     15 * time.Minute,
	}
}

func (s *GCSSigner) SignPut(ctx context.Context, objectKey, contentType string) (string, string, error) {
	putURL, err := s.client.Bucket(s.bucketName).SignedURL(objectKey, &storage.SignedURLOptions{
		Scheme:      storage.SigningSchemeV4,
		Method:      http.MethodPut,
		Expires:     time.Now().Add(s.expiry),
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to sign PUT URL for %s: %w", objectKey, err)
	}

	publicURL := fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, objectKey)
	return putURL, publicURL, nil
}

var _ ObjectSigner = (*GCSSigner)(nil)
