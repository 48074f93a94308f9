// Package storage defines the object-store collaborator used for profile
// display pictures. The inbox core never touches it; only the avatar upload
// handler does.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// ObjectStore uploads binary blobs under a caller-chosen key and hands back a
// public URL. Implementations wrap whatever provider the deployment uses.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	URL(key string) string
}

// MemoryStore is an in-process ObjectStore for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		baseURL: baseURL,
		objects: make(map[string][]byte),
	}
}

func (s *MemoryStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
	return s.URL(key), nil
}

func (s *MemoryStore) URL(key string) string {
	return s.baseURL + "/" + key
}

// Get returns a stored object, for tests.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	return data, ok
}
