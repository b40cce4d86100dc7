package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore holds serialized documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[Collection][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[Collection][]byte{}}
}

func (s *MemoryStore) Load(_ context.Context, c Collection) (Snapshot, error) {
	s.mu.RLock()
	raw, ok := s.docs[c]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{Collection: c, State: Empty}, nil
	}
	return snapshotFrom(c, raw)
}

func (s *MemoryStore) Save(_ context.Context, c Collection, doc any) error {
	data, err := encode(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	s.mu.Lock()
	s.docs[c] = data
	s.mu.Unlock()
	return nil
}

// Put stores raw bytes as-is. Tests use it to plant malformed content.
func (s *MemoryStore) Put(c Collection, raw []byte) {
	s.mu.Lock()
	s.docs[c] = append([]byte(nil), raw...)
	s.mu.Unlock()
}
