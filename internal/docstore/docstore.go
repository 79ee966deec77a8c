// Package docstore is a schemaless document store keyed by (collection, id).
// Values are JSON objects; server timestamps are requested with the
// ServerTimestamp transform and resolved by the store's clock on write.
package docstore

import (
	"context"

	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
)

type Fields map[string]any

type Document struct {
	ID     string `json:"id"`
	Fields Fields `json:"data"`
}

// Filter selects documents whose Field equals Value.
type Filter struct {
	Field string
	Value string
}

func Equal(field, value string) Filter {
	return Filter{Field: field, Value: value}
}

type Store interface {
	// Put creates or replaces the document.
	Put(ctx context.Context, collection, id string, fields Fields) error
	// Get returns ErrNotFound when the document does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Add stores a new document under a generated id.
	Add(ctx context.Context, collection string, fields Fields) (string, error)
	// Query returns every matching document, ordered by id.
	Query(ctx context.Context, collection string, filter Filter) ([]Document, error)
	// Merge overwrites only the given top-level fields; nested objects are
	// replaced whole and nil is stored as null. ErrNotFound when absent.
	Merge(ctx context.Context, collection, id string, fields Fields) error
	// Remove succeeds whether or not the document exists.
	Remove(ctx context.Context, collection, id string) error
}

var ErrNotFound = commonerrors.ErrDocumentNotFound
