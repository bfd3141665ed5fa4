package persistence

import (
	"context"
	"maps"
	"sync"

	"github.com/asaidimu/go-umbra/core/query"
	"github.com/asaidimu/go-umbra/core/schema"
)

// MemoryStore is an in-process Store backed by a slice. It is intended for
// tests and small tools; matching is equality only.
type MemoryStore struct {
	mu   sync.RWMutex
	docs []schema.Document
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert stores a copy of the document.
func (m *MemoryStore) Insert(ctx context.Context, doc schema.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, maps.Clone(doc))
	return nil
}

// Find returns copies of the documents matching all conditions.
func (m *MemoryStore) Find(ctx context.Context, conditions map[string]any, limit int) ([]schema.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []schema.Document
	for _, doc := range m.docs {
		matched, err := query.MatchConditions(doc, conditions)
		if err != nil {
			return nil, err
		}
		if matched {
			results = append(results, maps.Clone(doc))
			if limit > 0 && len(results) == limit {
				break
			}
		}
	}
	return results, nil
}

// Len returns the number of stored documents.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
