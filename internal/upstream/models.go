package upstream

import "time"

type ImageStatus string

const (
	StatusPending ImageStatus = "pending" // registered, captions not generated yet
	StatusReady   ImageStatus = "ready"   // captions available
	StatusFailed  ImageStatus = "failed"  // generation failed
)

// ImageRecord is a registered image in the captioning service.
type ImageRecord struct {
	ID          string      `json:"id" firestore:"id"`
	SourceURL   string      `json:"source_url" firestore:"source_url"`
	IsCommonUse bool        `json:"is_common_use" firestore:"is_common_use"`
	Status      ImageStatus `json:"status" firestore:"status"`
	CreatedAt   time.Time   `json:"created_at" firestore:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" firestore:"updated_at"`
}

// CaptionRecord is one generated caption for an image.
type CaptionRecord struct {
	ID      string `json:"id" firestore:"id"`
	ImageID string `json:"-" firestore:"image_id"`
	Content string `json:"content" firestore:"content"`
}
