package remote

import (
	"context"

	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

// SnapshotFunc receives a full-collection snapshot. The slice is owned by
// the receiver.
type SnapshotFunc func(docs []models.Document)

// ErrorFunc receives subscription failures. Errors matching
// common.ErrPermissionDenied must be treated like a rejected write.
type ErrorFunc func(err error)

// Subscription is the handle for one active collection subscription.
// Unsubscribe stops further callbacks; it is safe to call more than once.
type Subscription interface {
	Unsubscribe()
}

// Store is the remote collection service: a document database exposing
// streaming snapshots and per-document CRUD. Implementations normalize
// their error values to the sentinel taxonomy in internal/common, so
// callers can distinguish a policy rejection (common.ErrPermissionDenied)
// from a transient failure (common.ErrUnavailable).
type Store interface {
	// Subscribe starts delivering full snapshots of the collection, sorted
	// by order when configured. The first snapshot reflects current
	// contents; later ones follow remote changes.
	Subscribe(ctx context.Context, collection string, order models.Order, onSnapshot SnapshotFunc, onError ErrorFunc) (Subscription, error)

	// Get returns one document, or common.ErrNotFound.
	Get(ctx context.Context, collection, id string) (models.Document, error)

	// ReadAll returns the current full snapshot of a collection, sorted by
	// order when configured. Used for forced refreshes outside the
	// subscription stream.
	ReadAll(ctx context.Context, collection string, order models.Order) ([]models.Document, error)

	// Set overwrites the full document under id, creating it if absent.
	Set(ctx context.Context, collection, id string, doc models.Document) error

	// Update applies a partial patch to an existing document.
	Update(ctx context.Context, collection, id string, patch models.Document) error

	// Delete removes the document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, collection, id string) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
