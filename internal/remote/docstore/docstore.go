// Package docstore abstracts the keyed cloud document store the sync layer
// writes to. The production implementation is Cloud Firestore; tests use the
// in-memory implementation.
package docstore

import "context"

type serverTimestamp struct{}

// ServerTimestamp is a sentinel field value that the backing store resolves
// to the server-side write time. Meaningful only on a document's first write;
// merge writes preserve the value already stored.
var ServerTimestamp = serverTimestamp{}

// Store is a keyed document store with merge-upsert semantics.
type Store interface {
	// Get returns the document's fields, or common.ErrNotFound.
	Get(ctx context.Context, key string) (map[string]any, error)

	// Set writes the document. With merge=true, fields not present in the
	// payload keep their stored values; otherwise the document is replaced.
	Set(ctx context.Context, key string, fields map[string]any, merge bool) error

	// Delete removes the document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, key string) error
}
