// Package blobstore abstracts the photo blob storage. The production
// implementation is S3-compatible object storage; tests use the in-memory
// implementation.
package blobstore

import "context"

// Store writes and deletes photo blobs under hierarchical keys like
// photos/{ownerID}/{catchID}.
type Store interface {
	// Put stores the blob and returns a retrievable URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Delete removes the blob. An absent object is reported as
	// common.ErrNotFound so callers can treat it as an idempotent success.
	Delete(ctx context.Context, key string) error
}
