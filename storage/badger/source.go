package badger

import (
	"context"

	"github.com/poiesic/lockbox/storage"
)

// NewSource creates the local Source over an open backend.
// Collections are stored under "coll_" + name.
func NewSource(backend *Backend) storage.Source {
	return storage.NewKVSource(backend, Medium)
}

// ListCollections returns the names of every collection saved in the backend.
func (b *Backend) ListCollections(ctx context.Context) ([]string, error) {
	keys, err := b.Keys(ctx, storage.CollectionKeyPrefix)
	if err != nil {
		return nil, err
	}
	return CollectionNames(keys), nil
}
