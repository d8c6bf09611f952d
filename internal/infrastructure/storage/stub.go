package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	appdocument "github.com/recyclemart/backend/internal/application/document"
)

// Ensure StubBlobStore implements BlobStore
var _ appdocument.BlobStore = (*StubBlobStore)(nil)

// StubBlobStore keeps uploads in memory. Use for development and tests when
// no S3-compatible backend is configured.
type StubBlobStore struct {
	// BaseURL prefixes the fake download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubBlobStore creates a new StubBlobStore
func NewStubBlobStore() *StubBlobStore {
	return &StubBlobStore{
		BaseURL: "https://storage.example.com",
		objects: make(map[string][]byte),
	}
}

// Upload keeps the bytes in memory and returns the key
func (s *StubBlobStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(body))
	copy(stored, body)
	s.objects[key] = stored
	return key, nil
}

// PresignGet returns a fake expiring URL for a stored key
func (s *StubBlobStore) PresignGet(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	expires := time.Now().Add(15 * time.Minute)
	return s.BaseURL + "/download/" + key + "?expires=" + expires.Format(time.RFC3339), nil
}

// Get returns the stored bytes for a key, for test assertions
func (s *StubBlobStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	return b, ok
}
