package vault

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/lockbox/core"
	"github.com/poiesic/lockbox/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(d.Release)
	return d
}

func TestDispatcher_SaveFetchExists(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)
	coll, _ := newTestCollection(t)

	exists, err := d.Exists(ctx, coll).Result()
	require.NoError(t, err)
	assert.False(t, exists)

	coll.Add(&core.Record{ID: "a", Name: "A", UpdatedAt: t1})
	saved, err := d.Save(ctx, coll, WithSecret([]byte("pw"))).Result()
	require.NoError(t, err)
	assert.Same(t, coll, saved)

	exists, err = d.Exists(ctx, coll).Result()
	require.NoError(t, err)
	assert.True(t, exists)

	coll.Lock()
	fetched, err := d.Fetch(ctx, coll, WithSecret([]byte("pw"))).Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.Len())
}

func TestDispatcher_ReportsFailure(t *testing.T) {
	ctx := context.Background()
	d := newTestDispatcher(t)

	src := &failingSource{}
	store, err := NewStore(src, WithCipher(testCipher(t)))
	require.NoError(t, err)
	coll, err := NewCollection("x", store)
	require.NoError(t, err)

	f := d.Fetch(ctx, coll, WithSecret([]byte("pw")))
	select {
	case <-f.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("future never completed")
	}

	_, err = f.Result()
	assert.ErrorIs(t, err, storage.ErrTransport)
	assert.Equal(t, 1, src.calls)

	// Result is stable on repeated reads.
	_, err2 := f.Result()
	assert.Equal(t, err, err2)
}

func TestDispatcher_AfterRelease(t *testing.T) {
	d, err := NewDispatcher()
	require.NoError(t, err)
	d.Release()

	coll, _ := newTestCollection(t)
	_, err = d.Exists(context.Background(), coll).Result()
	assert.ErrorIs(t, err, ErrDispatch)
}

func TestFuture_WaitHonoursContext(t *testing.T) {
	f := newFuture[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	f.complete(7, nil)
	f.complete(8, nil)
	v, err := f.Result()
	require.NoError(t, err)
	assert.Equal(t, 7, v, "first completion wins")
}

func TestSubmit_RecoversPanic(t *testing.T) {
	d := newTestDispatcher(t)
	f := submit(d, "boom", func() (int, error) {
		panic("kaboom")
	})
	_, err := f.Result()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}
