package upstream

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps images and captions in process memory. The default
// store for LOCAL runs and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	images   map[string]*ImageRecord
	captions map[string][]CaptionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		images:   make(map[string]*ImageRecord),
		captions: make(map[string][]CaptionRecord),
	}
}

func (s *MemoryStore) CreateImage(ctx context.Context, img *ImageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *img
	s.images[img.ID] = &copied
	return nil
}

func (s *MemoryStore) GetImage(ctx context.Context, id string) (*ImageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[id]
	if !ok {
		return nil, ErrImageNotFound
	}
	copied := *img
	return &copied, nil
}

func (s *MemoryStore) SetImageStatus(ctx context.Context, id string, status ImageStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[id]
	if !ok {
		return ErrImageNotFound
	}
	img.Status = status
	img.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) SaveCaptions(ctx context.Context, imageID string, captions []CaptionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.images[imageID]; !ok {
		return ErrImageNotFound
	}
	s.captions[imageID] = append([]CaptionRecord(nil), captions...)
	return nil
}

func (s *MemoryStore) ListCaptions(ctx context.Context, imageID string) ([]CaptionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.images[imageID]; !ok {
		return nil, ErrImageNotFound
	}
	return append([]CaptionRecord(nil), s.captions[imageID]...), nil
}

var _ ImageStore = (*MemoryStore)(nil)
