package vault

import (
	"context"
	"testing"

	"github.com/poiesic/lockbox/storage"
	"github.com/poiesic/lockbox/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *badger.Backend {
	t.Helper()
	backend, err := badger.OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func TestCategories_SetGetRemove(t *testing.T) {
	cats := NewCategories("", newTestBackend(t), 5)

	cats.Set("work", 2)
	color, ok := cats.Get("work")
	require.True(t, ok)
	assert.Equal(t, 2, color)

	cats.Set("work", 3)
	color, _ = cats.Get("work")
	assert.Equal(t, 3, color)

	cats.Remove("work")
	_, ok = cats.Get("work")
	assert.False(t, ok)
	assert.Equal(t, 0, cats.Len())
}

func TestCategories_SaveFetch(t *testing.T) {
	ctx := context.Background()
	backend := newTestBackend(t)

	saved := NewCategories("main", backend, 5)
	saved.Set("work", 1)
	saved.Set("home", 2)
	require.NoError(t, saved.Save(ctx))

	ok, err := backend.Has(ctx, storage.CategoryKey("main"))
	require.NoError(t, err)
	assert.True(t, ok)

	loaded := NewCategories("main", backend, 5)
	require.NoError(t, loaded.Fetch(ctx))
	assert.Equal(t, []Category{{Name: "home", Color: 2}, {Name: "work", Color: 1}}, loaded.List())
}

func TestCategories_FetchDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	backend := newTestBackend(t)

	saved := NewCategories("main", backend, 5)
	saved.Set("work", 1)
	saved.Set("home", 2)
	require.NoError(t, saved.Save(ctx))

	current := NewCategories("main", backend, 5)
	current.Set("work", 4)
	require.NoError(t, current.Fetch(ctx))

	work, _ := current.Get("work")
	home, _ := current.Get("home")
	assert.Equal(t, 4, work, "in-memory entry wins")
	assert.Equal(t, 2, home, "missing entry merged in")
}

func TestCategories_FetchMissingTable(t *testing.T) {
	cats := NewCategories("none", newTestBackend(t), 5)
	require.NoError(t, cats.Fetch(context.Background()))
	assert.Equal(t, 0, cats.Len())
}

func TestCategories_FetchCorruptTable(t *testing.T) {
	ctx := context.Background()
	backend := newTestBackend(t)
	require.NoError(t, backend.Set(ctx, storage.CategoryKey("bad"), []byte{0xff}))

	cats := NewCategories("bad", backend, 5)
	assert.ErrorIs(t, cats.Fetch(ctx), storage.ErrSerializationFailed)
}

func TestCategories_AutoColor(t *testing.T) {
	cats := NewCategories("", newTestBackend(t), 4)
	for i := 0; i < 200; i++ {
		color := cats.AutoColor()
		assert.GreaterOrEqual(t, color, 1)
		assert.LessOrEqual(t, color, 4)
	}

	empty := NewCategories("", newTestBackend(t), 0)
	assert.Equal(t, 0, empty.AutoColor())
}
