package persistence

import (
	"context"

	"github.com/asaidimu/go-umbra/core/schema"
)

// Store persists documents for one collection. Implementations interpret
// condition values with equality semantics; whether operator documents are
// supported is implementation-defined.
type Store interface {
	// Insert persists a document.
	Insert(ctx context.Context, doc schema.Document) error
	// Find returns documents matching all conditions, up to limit. A limit
	// of zero means no limit.
	Find(ctx context.Context, conditions map[string]any, limit int) ([]schema.Document, error)
}
