package captioning

import (
	"encoding/json"
	"testing"
)

func decode(t *testing.T, raw string) interface{} {
	t.Helper()
	var payload interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("failed to decode test payload %q: %v", raw, err)
	}
	return payload
}

func TestExtractCaptions(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, 2},
		{"captions field", `{"captions":[{"id":1},{"id":2}]}`, 2},
		{"data field", `{"data":[{"id":1},{"id":2}]}`, 2},
		{"items field", `{"items":[{"id":1},{"id":2}]}`, 2},
		{"nested captions.captions", `{"captions":{"captions":[{"id":1}]}}`, 1},
		{"nested captions.data", `{"captions":{"data":[{"id":1}]}}`, 1},
		{"nested captions.items", `{"captions":{"items":[{"id":1}]}}`, 1},
		{"empty array", `[]`, 0},
		{"no captions anywhere", `{"status":"ok"}`, 0},
		{"scalar", `42`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractCaptions(decode(t, tt.payload))
			if len(got) != tt.want {
				t.Errorf("ExtractCaptions() returned %d captions, want %d", len(got), tt.want)
			}
		})
	}
}

func TestExtractCaptionsEquivalentShapes(t *testing.T) {
	// The same sequence wrapped in any supported shape must extract
	// identically.
	shapes := []string{
		`[{"id":1,"content":"a"}]`,
		`{"captions":[{"id":1,"content":"a"}]}`,
		`{"data":[{"id":1,"content":"a"}]}`,
		`{"items":[{"id":1,"content":"a"}]}`,
	}

	for _, shape := range shapes {
		got := ExtractCaptions(decode(t, shape))
		if len(got) != 1 {
			t.Fatalf("shape %s: got %d captions, want 1", shape, len(got))
		}
		if text := CaptionText(got[0]); text != "a" {
			t.Errorf("shape %s: caption text = %q, want %q", shape, text, "a")
		}
	}
}

func TestExtractCaptionsFirstShapeWins(t *testing.T) {
	payload := decode(t, `{"captions":[{"id":1}],"data":[{"id":2},{"id":3}]}`)
	got := ExtractCaptions(payload)
	if len(got) != 1 {
		t.Fatalf("got %d captions, want 1 (captions field takes precedence)", len(got))
	}
}

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		payload  interface{}
		fallback string
		want     string
	}{
		{"nil payload", nil, "fallback", "fallback"},
		{"string body", "upstream exploded", "fallback", "upstream exploded"},
		{"blank string body", "   ", "fallback", "fallback"},
		{"message field", map[string]interface{}{"message": "busy"}, "fallback", "busy"},
		{"error field", map[string]interface{}{"error": "broken"}, "fallback", "broken"},
		{
			"message preferred over error",
			map[string]interface{}{"message": "busy", "error": "broken"},
			"fallback",
			"busy",
		},
		{"no usable field", map[string]interface{}{"code": 7}, "fallback", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractErrorMessage(tt.payload, tt.fallback); got != tt.want {
				t.Errorf("ExtractErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCaptionText(t *testing.T) {
	tests := []struct {
		name    string
		caption interface{}
		want    string
	}{
		{"content field", map[string]interface{}{"content": "a cat"}, "a cat"},
		{"caption field", map[string]interface{}{"caption": "a dog"}, "a dog"},
		{"text field", map[string]interface{}{"text": "a bird"}, "a bird"},
		{
			"content preferred",
			map[string]interface{}{"content": "a cat", "text": "a bird"},
			"a cat",
		},
		{"plain string", "already text", "already text"},
		{"fallback to json", map[string]interface{}{"id": "x"}, `{"id":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CaptionText(tt.caption); got != tt.want {
				t.Errorf("CaptionText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	if got := DecodePayload(nil); got != nil {
		t.Errorf("DecodePayload(nil) = %v, want nil", got)
	}
	if got := DecodePayload([]byte(`{"a":1}`)); got == nil {
		t.Error("DecodePayload(valid JSON) = nil, want decoded object")
	}
	if got := DecodePayload([]byte("not json at all")); got != "not json at all" {
		t.Errorf("DecodePayload(non-JSON) = %v, want raw string passthrough", got)
	}
}

func TestIsSupportedContentType(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif", "image/heic"} {
		if !IsSupportedContentType(ct) {
			t.Errorf("IsSupportedContentType(%q) = false, want true", ct)
		}
	}
	for _, ct := range []string{"application/pdf", "image/svg+xml", "text/html", ""} {
		if IsSupportedContentType(ct) {
			t.Errorf("IsSupportedContentType(%q) = true, want false", ct)
		}
	}
}
