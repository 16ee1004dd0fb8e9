package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const EventTypeCaptionGenerationResult EventType = "caption.generation.result"

type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// CaptionGenerationResultEvent is published once per generation job,
// whether it produced captions or failed.
type CaptionGenerationResultEvent struct {
	BaseEvent
	ImageID      string `json:"image_id"`
	Success      bool   `json:"success"`
	CaptionCount int    `json:"caption_count,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

func NewCaptionGenerationResultEvent(imageID string, success bool) *CaptionGenerationResultEvent {
	return &CaptionGenerationResultEvent{
		BaseEvent: NewBaseEvent(EventTypeCaptionGenerationResult),
		ImageID:   imageID,
		Success:   success,
	}
}

func (e *CaptionGenerationResultEvent) WithCaptions(count int) *CaptionGenerationResultEvent {
	e.CaptionCount = count
	return e
}

func (e *CaptionGenerationResultEvent) WithFailure(reason string) *CaptionGenerationResultEvent {
	e.Reason = reason
	return e
}

// Attributes returns the message attributes published alongside the event.
func (e *CaptionGenerationResultEvent) Attributes() map[string]string {
	success := "false"
	if e.Success {
		success = "true"
	}
	return map[string]string{
		"event_type": string(e.EventType),
		"image_id":   e.ImageID,
		"success":    success,
	}
}

// Publisher delivers serialized events to a topic.
type Publisher interface {
	Publish(ctx context.Context, topicID string, data []byte, attributes map[string]string) error
	Close() error
}
