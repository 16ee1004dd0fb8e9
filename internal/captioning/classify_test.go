package captioning

import (
	"context"
	"errors"
	"testing"
)

func TestIsProcessingLike(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload interface{}
		raw     string
		want    bool
	}{
		{"status 202", 202, nil, "", true},
		{"status 429", 429, nil, "", true},
		{"status 502", 502, nil, "", true},
		{"status 503", 503, nil, "", true},
		{"status 504", 504, nil, "", true},
		{"status 200 plain", 200, map[string]interface{}{"ok": true}, "", false},
		{"status 500 plain", 500, map[string]interface{}{"error": "boom"}, "", false},
		{"boolean true body", 200, true, "true", true},
		{"raw true string", 200, "true", "true", true},
		{"processing field true", 200, map[string]interface{}{"processing": true}, "", true},
		{"processing field false", 500, map[string]interface{}{"processing": false}, "", false},
		{"message contains processing", 500, map[string]interface{}{"error": "still PROCESSING your image"}, "", true},
		{"message contains queued", 500, map[string]interface{}{"message": "request queued"}, "", true},
		{"message contains request timed out", 500, map[string]interface{}{"error": "Request timed out"}, "", true},
		{"raw text fallback", 500, nil, "image is processing", true},
		{"unrelated error text", 500, map[string]interface{}{"error": "invalid image id"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProcessingLike(tt.status, tt.payload, tt.raw); got != tt.want {
				t.Errorf("IsProcessingLike(%d, %v, %q) = %v, want %v",
					tt.status, tt.payload, tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsProcessingLikeWithPhrases(t *testing.T) {
	extra := []string{"gateway timeout", "cloudfront", "request could not be satisfied", "error inserting captions"}

	tests := []struct {
		name    string
		status  int
		payload interface{}
		want    bool
	}{
		{"cloudfront error page", 500, map[string]interface{}{"error": "CloudFront attempted to connect"}, true},
		{"gateway timeout text", 500, map[string]interface{}{"message": "504 Gateway Timeout"}, true},
		{"request could not be satisfied", 403, map[string]interface{}{"error": "The request could not be satisfied."}, true},
		{"error inserting captions", 500, map[string]interface{}{"error": "Error inserting captions"}, true},
		{"still a real error", 500, map[string]interface{}{"error": "image rejected"}, false},
		{"base phrases still apply", 500, map[string]interface{}{"error": "queued for work"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProcessingLikeWithPhrases(tt.status, tt.payload, "", extra); got != tt.want {
				t.Errorf("IsProcessingLikeWithPhrases() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", errors.Join(errors.New("call failed"), context.DeadlineExceeded), true},
		{"timed out text", errors.New("request timed out after 30s"), true},
		{"aborted text", errors.New("request aborted"), true},
		{"plain error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimeoutError(tt.err); got != tt.want {
				t.Errorf("IsTimeoutError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
