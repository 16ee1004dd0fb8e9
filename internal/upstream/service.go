package upstream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/almostcrackd/caption-pipeline/internal/captioning"
	"github.com/almostcrackd/caption-pipeline/internal/upstream/events"
	"github.com/almostcrackd/caption-pipeline/pkg/config"
)

var extensionByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

var captionTemplates = []string{
	"A quietly dramatic moment, frozen mid-scene.",
	"Someone clearly did not think this through.",
	"The calm before absolutely nothing happens.",
	"Proof that timing is everything.",
	"This is fine. Everything is fine.",
}

// CaptionService is the local captioning service behind cmd/captiond:
// it signs upload URLs, registers images, and generates captions
// asynchronously, publishing a result event per job.
type CaptionService struct {
	logger       *slog.Logger
	store        ImageStore
	signer       ObjectSigner
	publisher    events.Publisher
	serializer   events.EventSerializer
	topicID      string
	worker       *Worker
	captionCount int
}

func NewCaptionService(
	logger *slog.Logger,
	store ImageStore,
	signer ObjectSigner,
	publisher events.Publisher,
	serializer events.EventSerializer,
	cfg config.EmulatorConfig,
) *CaptionService {
	s := &CaptionService{
		logger:       logger,
		store:        store,
		signer:       signer,
		publisher:    publisher,
		serializer:   serializer,
		topicID:      cfg.ResultTopicID,
		captionCount: cfg.CaptionCount,
	}
	s.worker = NewWorker(logger, cfg.WorkerLimit, cfg.GenerationDelay, s.generateCaptions)
	return s
}

// Start begins processing queued generation jobs.
func (s *CaptionService) Start(ctx context.Context) {
	s.worker.Start(ctx)
}

// Close drains the generation worker.
func (s *CaptionService) Close() error {
	return s.worker.Close()
}

// IssuePresignedURL signs a one-time PUT URL for a new object.
func (s *CaptionService) IssuePresignedURL(ctx context.Context, contentType string) (*captioning.PresignedTarget, error) {
	ext, ok := extensionByContentType[contentType]
	if !ok {
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}

	objectKey := uuid.New().String() + ext
	putURL, publicURL, err := s.signer.SignPut(ctx, objectKey, contentType)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Issued presigned URL",
		"object_key", objectKey,
		"content_type", contentType,
	)
	return &captioning.PresignedTarget{
		PresignedURL: putURL,
		CDNURL:       publicURL,
	}, nil
}

// RegisterImage records an uploaded image and queues caption generation.
func (s *CaptionService) RegisterImage(ctx context.Context, imageURL string, isCommonUse bool) (*ImageRecord, error) {
	now := time.Now()
	img := &ImageRecord{
		ID:          "img_" + uuid.New().String(),
		SourceURL:   imageURL,
		IsCommonUse: isCommonUse,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateImage(ctx, img); err != nil {
		return nil, err
	}

	s.worker.Enqueue(img.ID)
	s.logger.Info("Image registered", "image_id", img.ID, "source_url", imageURL)
	return img, nil
}

// GetCaptions returns the image record and whatever captions exist so far.
func (s *CaptionService) GetCaptions(ctx context.Context, imageID string) (*ImageRecord, []CaptionRecord, error) {
	img, err := s.store.GetImage(ctx, imageID)
	if err != nil {
		return nil, nil, err
	}
	if img.Status != StatusReady {
		return img, nil, nil
	}
	captions, err := s.store.ListCaptions(ctx, imageID)
	if err != nil {
		return nil, nil, err
	}
	return img, captions, nil
}

// generateCaptions runs on the worker after the configured delay.
func (s *CaptionService) generateCaptions(ctx context.Context, imageID string) error {
	captions := make([]CaptionRecord, 0, s.captionCount)
	for i := 0; i < s.captionCount; i++ {
		captions = append(captions, CaptionRecord{
			ID:      "cap_" + uuid.New().String(),
			ImageID: imageID,
			Content: captionTemplates[i%len(captionTemplates)],
		})
	}

	if err := s.store.SaveCaptions(ctx, imageID, captions); err != nil {
		s.publishResult(ctx, events.NewCaptionGenerationResultEvent(imageID, false).WithFailure(err.Error()))
		return err
	}
	if err := s.store.SetImageStatus(ctx, imageID, StatusReady); err != nil {
		s.publishResult(ctx, events.NewCaptionGenerationResultEvent(imageID, false).WithFailure(err.Error()))
		return err
	}

	s.publishResult(ctx, events.NewCaptionGenerationResultEvent(imageID, true).WithCaptions(len(captions)))
	return nil
}

func (s *CaptionService) publishResult(ctx context.Context, event *events.CaptionGenerationResultEvent) {
	data, err := s.serializer.Serialize(event)
	if err != nil {
		s.logger.Error("Failed to serialize result event", "image_id", event.ImageID, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, s.topicID, data, event.Attributes()); err != nil {
		s.logger.Error("Failed to publish result event", "image_id", event.ImageID, "error", err)
	}
}
