package upstream

import (
	"context"

	"github.com/almostcrackd/caption-pipeline/pkg/errors"
)

// ErrImageNotFound is returned when an image id is unknown.
var ErrImageNotFound = errors.NewNotFoundError("image")

// ImageStore persists registered images and their generated captions.
type ImageStore interface {
	CreateImage(ctx context.Context, img *ImageRecord) error
	GetImage(ctx context.Context, id string) (*ImageRecord, error)
	SetImageStatus(ctx context.Context, id string, status ImageStatus) error
	SaveCaptions(ctx context.Context, imageID string, captions []CaptionRecord) error
	ListCaptions(ctx context.Context, imageID string) ([]CaptionRecord, error)
}
