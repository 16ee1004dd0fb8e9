package captioning

import "encoding/json"

// supportedContentTypes is the upstream's image MIME allow-list. Both the
// proxy and the orchestrator validate against it before any network call.
var supportedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/heic": true,
}

// IsSupportedContentType reports whether the MIME type can be presigned.
func IsSupportedContentType(contentType string) bool {
	return supportedContentTypes[contentType]
}

// PresignedTarget is the result of the presign step. PresignedURL is a
// one-time write endpoint; CDNURL is the durable public address of the object.
type PresignedTarget struct {
	PresignedURL string `json:"presignedUrl"`
	CDNURL       string `json:"cdnUrl"`
}

// RegisteredImage is the result of registering an uploaded object by URL.
type RegisteredImage struct {
	ImageID string `json:"imageId"`
	CDNURL  string `json:"cdnUrl"`
}

// Outcome is the normalized result of one caption generation attempt.
// Exactly one of Done, Processing, or neither (failed) holds.
type Outcome struct {
	Done       bool
	Processing bool
	Captions   []interface{}
	Message    string
	Err        string
	Status     int
}

// Failed reports whether the attempt ended in a definitive upstream error.
func (o Outcome) Failed() bool {
	return !o.Done && !o.Processing
}

// DecodePayload opportunistically JSON-decodes a raw upstream body.
// Non-JSON bodies are passed through as strings; empty bodies become nil.
func DecodePayload(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return string(raw)
	}
	return payload
}

// CaptionText picks the display text for a caption object: the first
// non-empty of content, caption, text, falling back to the raw JSON.
func CaptionText(caption interface{}) string {
	if m, ok := caption.(map[string]interface{}); ok {
		for _, key := range []string{"content", "caption", "text"} {
			if s, ok := m[key].(string); ok && s != "" {
				return s
			}
		}
	}
	if s, ok := caption.(string); ok {
		return s
	}
	data, err := json.Marshal(caption)
	if err != nil {
		return ""
	}
	return string(data)
}
