package captioning

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/almostcrackd/caption-pipeline/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(config.UpstreamConfig{
		BaseURL:         baseURL,
		PresignTimeout:  time.Second,
		RegisterTimeout: time.Second,
		GenerateTimeout: time.Second,
		PollTimeout:     time.Second,
	}, testLogger())
}

func TestPresignForwardsRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"presignedUrl":"https://s3/x","cdnUrl":"https://cdn/x.png"}`))
	}))
	defer ts.Close()

	resp, err := testClient(ts.URL).Presign(context.Background(), "tok-123", "image/png")
	if err != nil {
		t.Fatalf("Presign() error: %v", err)
	}

	if gotPath != "/pipeline/generate-presigned-url" {
		t.Errorf("path = %q, want /pipeline/generate-presigned-url", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
	if gotBody["contentType"] != "image/png" {
		t.Errorf("contentType = %v, want image/png", gotBody["contentType"])
	}
	if !resp.OK() {
		t.Errorf("status = %d, want 2xx", resp.Status)
	}
	obj, ok := resp.Payload.(map[string]interface{})
	if !ok || obj["presignedUrl"] != "https://s3/x" {
		t.Errorf("payload = %v, want presignedUrl passthrough", resp.Payload)
	}
}

func TestRegisterSendsIsCommonUse(t *testing.T) {
	var gotBody map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"imageId":"img_1"}`))
	}))
	defer ts.Close()

	if _, err := testClient(ts.URL).Register(context.Background(), "tok", "https://cdn/x.png"); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	if gotBody["imageUrl"] != "https://cdn/x.png" {
		t.Errorf("imageUrl = %v, want https://cdn/x.png", gotBody["imageUrl"])
	}
	if v, ok := gotBody["isCommonUse"].(bool); !ok || v {
		t.Errorf("isCommonUse = %v, want false", gotBody["isCommonUse"])
	}
}

func TestAttemptGeneration(t *testing.T) {
	tests := []struct {
		name           string
		status         int
		body           string
		wantDone       bool
		wantProcessing bool
		wantErr        string
		wantStatus     int
	}{
		{
			name:     "captions ready",
			status:   200,
			body:     `[{"id":1,"content":"a cat"}]`,
			wantDone: true,
		},
		{
			name:     "wrapped captions",
			status:   200,
			body:     `{"captions":[{"id":1,"content":"a cat"}]}`,
			wantDone: true,
		},
		{
			name:           "success with zero captions is processing",
			status:         200,
			body:           `[]`,
			wantProcessing: true,
		},
		{
			name:           "202 accepted",
			status:         202,
			body:           `{"processing":true}`,
			wantProcessing: true,
		},
		{
			name:           "503 unavailable",
			status:         503,
			body:           `upstream unavailable`,
			wantProcessing: true,
		},
		{
			name:           "boolean true body",
			status:         200,
			body:           `true`,
			wantProcessing: true,
		},
		{
			name:       "definitive error",
			status:     422,
			body:       `{"error":"invalid image id"}`,
			wantErr:    "invalid image id",
			wantStatus: 422,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			outcome := testClient(ts.URL).AttemptGeneration(context.Background(), "tok", "img_1", time.Second)

			if outcome.Done != tt.wantDone {
				t.Errorf("Done = %v, want %v", outcome.Done, tt.wantDone)
			}
			if outcome.Processing != tt.wantProcessing {
				t.Errorf("Processing = %v, want %v", outcome.Processing, tt.wantProcessing)
			}
			if tt.wantErr != "" {
				if !outcome.Failed() {
					t.Fatal("expected failed outcome")
				}
				if outcome.Err != tt.wantErr {
					t.Errorf("Err = %q, want %q", outcome.Err, tt.wantErr)
				}
				if outcome.Status != tt.wantStatus {
					t.Errorf("Status = %d, want %d", outcome.Status, tt.wantStatus)
				}
			}
			if tt.wantDone && len(outcome.Captions) == 0 {
				t.Error("Done outcome carries no captions")
			}
		})
	}
}

func TestAttemptGenerationTimeoutIsProcessing(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	outcome := testClient(ts.URL).AttemptGeneration(context.Background(), "tok", "img_1", 50*time.Millisecond)

	if !outcome.Processing {
		t.Fatalf("timeout outcome = %+v, want Processing", outcome)
	}
	if outcome.Message != StillProcessingMessage {
		t.Errorf("Message = %q, want %q", outcome.Message, StillProcessingMessage)
	}
}
