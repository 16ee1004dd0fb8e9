package upstream

import (
	"context"
	"fmt"
	"sync"
)

type localObject struct {
	contentType string
	data        []byte
}

// LocalSigner keeps uploaded objects in process memory and hands out
// write URLs served by the emulator itself. LOCAL only.
type LocalSigner struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]localObject
}

func NewLocalSigner(baseURL string) *LocalSigner {
	return &LocalSigner{
		baseURL: baseURL,
		objects: make(map[string]localObject),
	}
}

func (s *LocalSigner) SignPut(ctx context.Context, objectKey, contentType string) (string, string, error) {
	url := fmt.Sprintf("%s/objects/%s", s.baseURL, objectKey)
	return url, url, nil
}

// PutObject stores the bytes written to a signed URL.
func (s *LocalSigner) PutObject(objectKey, contentType string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey] = localObject{
		contentType: contentType,
		data:        append([]byte(nil), data...),
	}
}

// GetObject returns a stored object's content type and bytes.
func (s *LocalSigner) GetObject(objectKey string) (string, []byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[objectKey]
	if !ok {
		return "", nil, false
	}
	return obj.contentType, obj.data, true
}

var _ ObjectSigner = (*LocalSigner)(nil)
