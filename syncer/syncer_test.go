package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/lockbox/core"
	"github.com/poiesic/lockbox/crypto"
	"github.com/poiesic/lockbox/storage"
	"github.com/poiesic/lockbox/storage/badger"
	"github.com/poiesic/lockbox/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t1 = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 = t1.Add(time.Hour)
)

var secret = []byte("correct horse")

func memorySource(t *testing.T) storage.Source {
	t.Helper()
	src, backend, err := badger.NewMemorySource()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return src
}

func newCollection(t *testing.T, src storage.Source) *vault.Collection {
	t.Helper()
	cipher, err := crypto.New(crypto.Params{Time: 1, Memory: 64, Threads: 1})
	require.NoError(t, err)
	store, err := vault.NewStore(src, vault.WithCipher(cipher))
	require.NoError(t, err)
	coll, err := vault.NewCollection("", store)
	require.NoError(t, err)
	return coll
}

// flakySource fails the first n calls with a transport error.
type flakySource struct {
	storage.Source
	n     int
	calls int
}

func (f *flakySource) fail(op, name string) error {
	f.calls++
	if f.calls <= f.n {
		return &storage.TransportError{Op: op, Name: name, Status: 502}
	}
	return nil
}

func (f *flakySource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := f.fail("fetch", name); err != nil {
		return nil, err
	}
	return f.Source.Fetch(ctx, name)
}

func (f *flakySource) Save(ctx context.Context, name string, data []byte) error {
	if err := f.fail("save", name); err != nil {
		return err
	}
	return f.Source.Save(ctx, name, data)
}

func fastSyncer(t *testing.T) *Syncer {
	t.Helper()
	s, err := New(NewConfig(WithMaxRetries(3), WithRetryDelay(time.Millisecond)))
	require.NoError(t, err)
	return s
}

func TestSync_MergesBothWays(t *testing.T) {
	ctx := context.Background()
	remote := memorySource(t)

	// Another device saved B(t2) and C.
	other := newCollection(t, remote)
	other.Add(
		&core.Record{ID: "b", Name: "B remote", UpdatedAt: t2},
		&core.Record{ID: "c", Name: "C", UpdatedAt: t1},
	)
	require.NoError(t, other.Save(ctx, vault.WithSecret(secret)))

	local := memorySource(t)
	coll := newCollection(t, local)
	coll.Add(
		&core.Record{ID: "a", Name: "A", UpdatedAt: t1},
		&core.Record{ID: "b", Name: "B local", UpdatedAt: t1},
	)

	report, err := fastSyncer(t).Sync(ctx, coll, remote, vault.WithSecret(secret))
	require.NoError(t, err)
	assert.Equal(t, &Report{RemoteFound: true, Fetched: 2, Added: 1, Updated: 1, Pushed: true, SavedLocal: true}, report)

	b, ok := coll.Get("b")
	require.True(t, ok)
	assert.Equal(t, "B remote", b.Name)
	assert.Equal(t, 3, coll.Len())

	// Both sides now hold the merged set.
	for _, src := range []storage.Source{remote, local} {
		check := newCollection(t, src)
		require.NoError(t, check.Fetch(ctx, vault.WithSecret(secret)))
		assert.Equal(t, 3, check.Len())
	}
}

func TestSync_EmptyRemote(t *testing.T) {
	ctx := context.Background()
	remote := memorySource(t)
	coll := newCollection(t, memorySource(t))
	coll.Add(&core.Record{ID: "a", Name: "A", UpdatedAt: t1})

	report, err := fastSyncer(t).Sync(ctx, coll, remote, vault.WithSecret(secret))
	require.NoError(t, err)
	assert.False(t, report.RemoteFound)
	assert.True(t, report.Pushed)
	assert.True(t, report.SavedLocal)

	ok, err := remote.Exists(ctx, coll.Name())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSync_RetriesTransportFailures(t *testing.T) {
	ctx := context.Background()
	remote := &flakySource{Source: memorySource(t), n: 2}
	coll := newCollection(t, memorySource(t))

	report, err := fastSyncer(t).Sync(ctx, coll, remote, vault.WithSecret(secret))
	require.NoError(t, err)
	assert.True(t, report.Pushed)
	// Two failed fetches, one not-found fetch, one save.
	assert.Equal(t, 4, remote.calls)
}

func TestSync_GivesUpAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	remote := &flakySource{Source: memorySource(t), n: 100}
	coll := newCollection(t, memorySource(t))

	report, err := fastSyncer(t).Sync(ctx, coll, remote, vault.WithSecret(secret))
	assert.ErrorIs(t, err, storage.ErrTransport)
	assert.Equal(t, 3, remote.calls)
	assert.False(t, report.Pushed)
}

func TestSync_DecryptionIsNotRetried(t *testing.T) {
	ctx := context.Background()
	remote := &flakySource{Source: memorySource(t)}

	other := newCollection(t, remote)
	other.Add(&core.Record{ID: "x", UpdatedAt: t1})
	require.NoError(t, other.Save(ctx, vault.WithSecret([]byte("other secret"))))
	remote.calls = 0

	coll := newCollection(t, memorySource(t))
	coll.Add(&core.Record{ID: "a", UpdatedAt: t1})

	report, err := fastSyncer(t).Sync(ctx, coll, remote, vault.WithSecret(secret))
	assert.ErrorIs(t, err, vault.ErrDecryption)
	assert.Equal(t, 1, remote.calls)
	assert.False(t, report.Pushed)
	assert.Equal(t, 1, coll.Len(), "collection untouched")
}

func TestSync_RequiresArguments(t *testing.T) {
	s := fastSyncer(t)
	_, err := s.Sync(context.Background(), nil, memorySource(t))
	assert.ErrorIs(t, err, ErrCollectionRequired)

	_, err = s.Sync(context.Background(), newCollection(t, memorySource(t)), nil)
	assert.ErrorIs(t, err, ErrRemoteRequired)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, NewConfig(WithMaxRetries(0)).Validate())
	assert.Error(t, NewConfig(WithRetryDelay(-time.Second)).Validate())

	_, err := New(NewConfig(WithMaxRetries(0)))
	assert.Error(t, err)
}
