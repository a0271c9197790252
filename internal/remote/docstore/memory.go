package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/fishlog/internal/common"
)

// MemoryStore is an in-memory Store used in tests and offline development.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]any)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, common.ErrNotFound
	}

	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, fields map[string]any, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.docs[key]
	if doc == nil || !merge {
		doc = make(map[string]any, len(fields))
	}
	for k, v := range fields {
		if v == ServerTimestamp {
			v = time.Now().UTC()
		}
		doc[k] = v
	}
	s.docs[key] = doc
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key)
	return nil
}

// Len reports the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}
