package storage

import "context"

// CollectionKeyPrefix prefixes the key of every collection blob.
const CollectionKeyPrefix = "coll_"

// CategoryKeyPrefix prefixes the key of every category table.
const CategoryKeyPrefix = "cat_"

// MaxBlobSize is the largest collection blob accepted over the network, in bytes.
const MaxBlobSize int64 = 16 << 20

// CollectionKey returns the medium key for a collection name.
func CollectionKey(name string) string {
	return CollectionKeyPrefix + name
}

// CategoryKey returns the medium key for a category registry name.
func CategoryKey(name string) string {
	return CategoryKeyPrefix + name
}

// Source persists named blobs. It is the only contract the encrypted store
// requires from a backend.
// Implementations must be thread-safe.
type Source interface {
	// Fetch returns the blob saved under name.
	// Returns ErrNotFound if nothing was saved, or a *TransportError
	// if the medium failed.
	Fetch(ctx context.Context, name string) ([]byte, error)

	// Save stores data under name, replacing any previous blob.
	// Saving identical bytes twice leaves the same persisted state.
	// Returns a *TransportError if the medium failed.
	Save(ctx context.Context, name string, data []byte) error

	// Exists reports whether a blob is saved under name.
	// Absence is reported as false, never as ErrNotFound.
	Exists(ctx context.Context, name string) (bool, error)
}

// KeyValueStore is a synchronous key-value medium addressed by raw keys.
// Implementations must be thread-safe.
type KeyValueStore interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Has reports whether key is present.
	Has(ctx context.Context, key string) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
