package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/almostcrackd/caption-pipeline/internal/auth"
	"github.com/almostcrackd/caption-pipeline/internal/captioning"
	"github.com/almostcrackd/caption-pipeline/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter wires a pipeline handler against the given fake upstream.
func newTestRouter(t *testing.T, upstreamURL string) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env: config.EnvLocal,
		Upstream: config.UpstreamConfig{
			BaseURL:         upstreamURL,
			PresignTimeout:  time.Second,
			RegisterTimeout: time.Second,
			GenerateTimeout: time.Second,
			PollTimeout:     time.Second,
		},
		Auth: config.AuthConfig{Mode: "static", StaticToken: "valid-token"},
	}

	h := NewPipelineHandler(
		cfg,
		auth.NewStaticProvider("valid-token"),
		captioning.NewClient(cfg.Upstream, testLogger()),
		testLogger(),
	)

	router := gin.New()
	router.POST("/api/pipeline", h.Handle)
	return router, cfg
}

func doPipeline(router *gin.Engine, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/pipeline", reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestUnauthenticatedNoUpstreamCall(t *testing.T) {
	var upstreamCalls int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&upstreamCalls, 1)
	}))
	defer upstream.Close()

	router, _ := newTestRouter(t, upstream.URL)

	for _, action := range []string{"presign", "register", "generate", "poll"} {
		tests := []struct {
			name  string
			token string
		}{
			{"no token", ""},
			{"wrong token", "bogus"},
		}
		for _, tt := range tests {
			t.Run(action+"/"+tt.name, func(t *testing.T) {
				w := doPipeline(router, tt.token, map[string]interface{}{
					"action":      action,
					"contentType": "image/png",
					"imageUrl":    "https://cdn/x.png",
					"imageId":     "img_1",
				})
				if w.Code != 401 {
					t.Errorf("status = %d, want 401", w.Code)
				}
				if body := decodeBody(t, w); body["error"] != "Unauthorized" {
					t.Errorf("error = %v, want Unauthorized", body["error"])
				}
			})
		}
	}

	if n := atomic.LoadInt64(&upstreamCalls); n != 0 {
		t.Errorf("upstream received %d calls from unauthenticated requests, want 0", n)
	}
}

func TestPresignContentTypeValidation(t *testing.T) {
	var upstreamCalls int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&upstreamCalls, 1)
		w.Write([]byte(`{"presignedUrl":"https://s3/x","cdnUrl":"https://cdn/x.png"}`))
	}))
	defer upstream.Close()

	router, _ := newTestRouter(t, upstream.URL)

	tests := []struct {
		name        string
		contentType string
		wantStatus  int
		wantError   string
	}{
		{"allowed jpeg", "image/jpeg", 200, ""},
		{"allowed png", "image/png", 200, ""},
		{"allowed heic", "image/heic", 200, ""},
		{"pdf rejected", "application/pdf", 400, "Unsupported contentType: application/pdf"},
		{"svg rejected", "image/svg+xml", 400, "Unsupported contentType: image/svg+xml"},
		{"missing", "", 400, "Missing contentType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := atomic.LoadInt64(&upstreamCalls)

			body := map[string]interface{}{"action": "presign"}
			if tt.contentType != "" {
				body["contentType"] = tt.contentType
			}
			w := doPipeline(router, "valid-token", body)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantError != "" {
				if got := decodeBody(t, w)["error"]; got != tt.wantError {
					t.Errorf("error = %v, want %q", got, tt.wantError)
				}
				if atomic.LoadInt64(&upstreamCalls) != before {
					t.Error("rejected presign still reached upstream")
				}
			}
		})
	}
}

func TestUnknownActionAndBadJSON(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	router, _ := newTestRouter(t, upstream.URL)

	w := doPipeline(router, "valid-token", map[string]interface{}{"action": "destroy"})
	if w.Code != 400 {
		t.Errorf("unknown action status = %d, want 400", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != UnsupportedActionMessage {
		t.Errorf("error = %v, want %q", got, UnsupportedActionMessage)
	}

	w = doPipeline(router, "valid-token", `{not json`)
	if w.Code != 400 {
		t.Errorf("bad JSON status = %d, want 400", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != "Invalid JSON body" {
		t.Errorf("error = %v, want Invalid JSON body", got)
	}
}

func TestGenerateOutcomeMapping(t *testing.T) {
	tests := []struct {
		name           string
		upstreamStatus int
		upstreamBody   string
		wantStatus     int
		check          func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:           "done returns captions array",
			upstreamStatus: 200,
			upstreamBody:   `[{"id":1,"content":"a cat"}]`,
			wantStatus:     200,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var captions []map[string]interface{}
				if err := json.Unmarshal(w.Body.Bytes(), &captions); err != nil {
					t.Fatalf("body is not a caption array: %v", err)
				}
				if len(captions) != 1 || captions[0]["content"] != "a cat" {
					t.Errorf("captions = %v, want single 'a cat'", captions)
				}
			},
		},
		{
			name:           "zero captions is processing",
			upstreamStatus: 200,
			upstreamBody:   `[]`,
			wantStatus:     202,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				body := decodeBody(t, w)
				if body["processing"] != true {
					t.Errorf("processing = %v, want true", body["processing"])
				}
				if body["message"] != captioning.StillProcessingMessage {
					t.Errorf("message = %v, want %q", body["message"], captioning.StillProcessingMessage)
				}
			},
		},
		{
			name:           "upstream 503 is processing",
			upstreamStatus: 503,
			upstreamBody:   `service unavailable`,
			wantStatus:     202,
			check:          func(t *testing.T, w *httptest.ResponseRecorder) {},
		},
		{
			name:           "definitive upstream error propagates status and message",
			upstreamStatus: 422,
			upstreamBody:   `{"error":"invalid image id"}`,
			wantStatus:     422,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				if got := decodeBody(t, w)["error"]; got != "invalid image id" {
					t.Errorf("error = %v, want invalid image id", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.upstreamStatus)
				w.Write([]byte(tt.upstreamBody))
			}))
			defer upstream.Close()

			router, _ := newTestRouter(t, upstream.URL)

			for _, action := range []string{"generate", "poll"} {
				w := doPipeline(router, "valid-token", map[string]interface{}{
					"action":  action,
					"imageId": "img_1",
				})
				if w.Code != tt.wantStatus {
					t.Errorf("%s: status = %d, want %d", action, w.Code, tt.wantStatus)
					continue
				}
				tt.check(t, w)
			}
		})
	}
}

func TestGenerateMissingImageID(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	router, _ := newTestRouter(t, upstream.URL)

	for _, action := range []string{"generate", "poll"} {
		w := doPipeline(router, "valid-token", map[string]interface{}{"action": action})
		if w.Code != 400 {
			t.Errorf("%s: status = %d, want 400", action, w.Code)
		}
		if got := decodeBody(t, w)["error"]; got != "Missing imageId" {
			t.Errorf("%s: error = %v, want Missing imageId", action, got)
		}
	}
}

func TestRegisterForwardsUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(409)
		w.Write([]byte(`{"error":"image already registered"}`))
	}))
	defer upstream.Close()

	router, _ := newTestRouter(t, upstream.URL)

	w := doPipeline(router, "valid-token", map[string]interface{}{
		"action":   "register",
		"imageUrl": "https://cdn/x.png",
	})
	if w.Code != 409 {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != "image already registered" {
		t.Errorf("error = %v, want image already registered", got)
	}
}

func TestGenerateTimeoutReturns202(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer upstream.Close()
	defer close(release)

	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			BaseURL:         upstream.URL,
			PresignTimeout:  50 * time.Millisecond,
			RegisterTimeout: 50 * time.Millisecond,
			GenerateTimeout: 50 * time.Millisecond,
			PollTimeout:     50 * time.Millisecond,
		},
	}
	h := NewPipelineHandler(cfg, auth.NewStaticProvider("valid-token"),
		captioning.NewClient(cfg.Upstream, testLogger()), testLogger())
	router := gin.New()
	router.POST("/api/pipeline", h.Handle)

	w := doPipeline(router, "valid-token", map[string]interface{}{
		"action":  "generate",
		"imageId": "img_1",
	})
	if w.Code != 202 {
		t.Fatalf("status = %d, want 202 on timeout", w.Code)
	}
	body := decodeBody(t, w)
	if body["processing"] != true {
		t.Errorf("processing = %v, want true", body["processing"])
	}
}
