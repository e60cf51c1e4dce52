package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/blogkeeper/internal/common"
)

// MemStore is a memory-based asset store used in tests and development.
type MemStore struct {
	mu     sync.Mutex
	blobs  map[ID][]byte
	stored map[ID]time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		blobs:  make(map[ID][]byte),
		stored: make(map[ID]time.Time),
	}
}

func (s *MemStore) Put(_ context.Context, filename string, r io.Reader) (ID, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStoreWrite, err)
	}

	id := NewID(filename)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[id] = data
	s.stored[id] = time.Now()
	return id, nil
}

func (s *MemStore) Get(_ context.Context, id ID) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[id]
	if !ok {
		return nil, common.ErrAssetNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemStore) Delete(_ context.Context, id ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[id]; !ok {
		return common.ErrAssetNotFound
	}
	delete(s.blobs, id)
	delete(s.stored, id)
	return nil
}

func (s *MemStore) List(_ context.Context, fn func(id ID, createdAt time.Time) error) error {
	s.mu.Lock()
	snapshot := make(map[ID]time.Time, len(s.stored))
	for id, at := range s.stored {
		snapshot[id] = at
	}
	s.mu.Unlock()

	for id, at := range snapshot {
		if err := fn(id, at); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemStore) Close() error { return nil }

// SetStoredAt overrides an asset's creation time. Test helper for sweeper
// age checks.
func (s *MemStore) SetStoredAt(id ID, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[id]; ok {
		s.stored[id] = at
	}
}

var _ Store = (*MemStore)(nil)
