package localstore

// KV describes the durable key/value store the sync engine persists into.
// Production code uses the Badger-backed implementation; the in-memory one
// backs tests.
type KV interface {
	// Get returns the value for key. The second result is false when the key
	// has never been written.
	Get(key string) ([]byte, bool, error)

	// Set stores the value under key, overwriting any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Clear removes every key. Used by the explicit fallback reset.
	Clear() error

	// Close releases the underlying resources.
	Close() error
}
