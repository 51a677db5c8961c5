// Package blobstore stores gallery binary content (photos, documents)
// outside the collection records, which only carry the resulting URL.
package blobstore

import "context"

// Store persists opaque blobs under string keys and returns a URL the
// gallery record can reference.
type Store interface {
	// Put stores data under key and returns its URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Get returns the stored blob.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
