package upstream

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const captionSubcollection = "captions"

// FirestoreStore persists images in a Firestore collection with captions
// in a per-image subcollection.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: collection,
	}
}

func (s *FirestoreStore) CreateImage(ctx context.Context, img *ImageRecord) error {
	docRef := s.client.Collection(s.collection).Doc(img.ID)
	if _, err := docRef.Set(ctx, img); err != nil {
		return fmt.Errorf("failed to create image document: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetImage(ctx context.Context, id string) (*ImageRecord, error) {
	doc, err := s.client.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to read image document: %w", err)
	}

	var img ImageRecord
	if err := doc.DataTo(&img); err != nil {
		return nil, fmt.Errorf("failed to decode image document: %w", err)
	}
	return &img, nil
}

func (s *FirestoreStore) SetImageStatus(ctx context.Context, id string, imgStatus ImageStatus) error {
	docRef := s.client.Collection(s.collection).Doc(id)
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: "status", Value: imgStatus},
		{Path: "updated_at", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrImageNotFound
		}
		return fmt.Errorf("failed to update image status: %w", err)
	}
	return nil
}

func (s *FirestoreStore) SaveCaptions(ctx context.Context, imageID string, captions []CaptionRecord) error {
	batch := s.client.Batch()
	imageRef := s.client.Collection(s.collection).Doc(imageID)
	for _, caption := range captions {
		batch.Set(imageRef.Collection(captionSubcollection).Doc(caption.ID), caption)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to save captions: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListCaptions(ctx context.Context, imageID string) ([]CaptionRecord, error) {
	iter := s.client.Collection(s.collection).Doc(imageID).Collection(captionSubcollection).Documents(ctx)
	defer iter.Stop()

	var captions []CaptionRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list captions: %w", err)
		}
		var caption CaptionRecord
		if err := doc.DataTo(&caption); err != nil {
			return nil, fmt.Errorf("failed to decode caption document: %w", err)
		}
		captions = append(captions, caption)
	}
	return captions, nil
}

var _ ImageStore = (*FirestoreStore)(nil)
