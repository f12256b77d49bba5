package badger

import (
	"context"
	"testing"

	"github.com/poiesic/lockbox/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_FetchMissing(t *testing.T) {
	src, backend, err := NewMemorySource()
	require.NoError(t, err)
	defer backend.Close()

	_, err = src.Fetch(context.Background(), "default")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NotErrorIs(t, err, storage.ErrTransport)
}

func TestSource_SaveFetchExists(t *testing.T) {
	src, backend, err := NewMemorySource()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	ok, err := src.Exists(ctx, "default")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, src.Save(ctx, "default", []byte(`{"ct":"x"}`)))
	require.NoError(t, src.Save(ctx, "default", []byte(`{"ct":"x"}`)))

	data, err := src.Fetch(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"ct":"x"}`), data)

	ok, err = src.Exists(ctx, "default")
	require.NoError(t, err)
	assert.True(t, ok)

	// Blobs live under the collection key prefix.
	raw, err := backend.Get(ctx, "coll_default")
	require.NoError(t, err)
	assert.Equal(t, data, raw)
}

func TestSource_ClosedBackendIsTransportError(t *testing.T) {
	src, backend, err := NewMemorySource()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	_, err = src.Fetch(context.Background(), "default")
	assert.ErrorIs(t, err, storage.ErrTransport)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	err = src.Save(context.Background(), "default", []byte("x"))
	assert.ErrorIs(t, err, storage.ErrTransport)

	_, err = src.Exists(context.Background(), "default")
	assert.ErrorIs(t, err, storage.ErrTransport)
}

func TestBackend_ListCollections(t *testing.T) {
	src, backend, err := NewMemorySource()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, src.Save(ctx, "default", []byte("a")))
	require.NoError(t, src.Save(ctx, "work", []byte("b")))
	require.NoError(t, backend.Set(ctx, storage.CategoryKey("default"), []byte("c")))

	names, err := backend.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "work"}, names)
}
