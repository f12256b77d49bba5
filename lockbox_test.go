package lockbox

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/lockbox/core"
	"github.com/poiesic/lockbox/crypto"
	"github.com/poiesic/lockbox/server"
	"github.com/poiesic/lockbox/storage/badger"
	"github.com/poiesic/lockbox/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKDF = crypto.Params{Time: 1, Memory: 64, Threads: 1}

func openTestVault(t *testing.T, opts ...ConfigOption) *Vault {
	t.Helper()
	opts = append([]ConfigOption{WithInMemory(), WithKDFParams(testKDF), WithWorkers(2)}, opts...)
	v, err := Open(context.Background(), NewConfig(opts...))
	require.NoError(t, err)
	t.Cleanup(func() { v.Close() })
	return v
}

func TestOpen(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		v := openTestVault(t)
		assert.NotNil(t, v.Collection())
		assert.NotNil(t, v.Categories())
		assert.NotNil(t, v.Dispatcher())
		assert.NotNil(t, v.Source())
		assert.Nil(t, v.Remote())
		assert.Equal(t, vault.DefaultCollectionName, v.Collection().Name())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		v, err := Open(context.Background(), NewConfig(WithDataDir(tmpFile), WithKDFParams(testKDF)))
		assert.Error(t, err)
		assert.Nil(t, v)
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := Open(context.Background(), NewConfig(WithInMemory(), WithBackend("leveldb")))
		assert.Error(t, err)
	})
}

func TestVault_PersistsAcrossReopen(t *testing.T) {
	for _, backend := range []string{BackendBadger, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			cfg := func() *Config {
				return NewConfig(WithDataDir(t.TempDir()), WithBackend(backend), WithKDFParams(testKDF))
			}
			first := cfg()
			dir := first.DataDir

			v, err := Open(ctx, first)
			require.NoError(t, err)
			require.NoError(t, v.Unlock(ctx, []byte("pw")))
			require.NoError(t, v.Collection().Save(ctx, vault.WithRecord(&core.Record{
				Name:   "Bank",
				Fields: []core.Field{{Name: "pin", Value: "1234"}},
			})))
			v.Categories().Set("finance", 3)
			require.NoError(t, v.Save(ctx))
			require.NoError(t, v.Close())

			second := cfg()
			second.DataDir = dir
			v, err = Open(ctx, second)
			require.NoError(t, err)
			defer v.Close()

			require.NoError(t, v.Unlock(ctx, []byte("pw")))
			require.Equal(t, 1, v.Collection().Len())
			assert.Equal(t, "Bank", v.Collection().Records()[0].Name)

			require.NoError(t, v.Categories().Fetch(ctx))
			color, ok := v.Categories().Get("finance")
			require.True(t, ok)
			assert.Equal(t, 3, color)
		})
	}
}

func TestVault_UnlockWrongSecret(t *testing.T) {
	ctx := context.Background()
	v := openTestVault(t)

	require.NoError(t, v.Unlock(ctx, []byte("right")))
	v.Collection().Add(&core.Record{ID: "a", Name: "A", UpdatedAt: time.Now()})
	require.NoError(t, v.Collection().Save(ctx))
	v.Collection().Lock()

	err := v.Unlock(ctx, []byte("wrong"))
	assert.ErrorIs(t, err, vault.ErrDecryption)
	assert.Equal(t, 0, v.Collection().Len())
	assert.False(t, v.Store().HasSecret())
}

func TestVault_SyncWithoutRemote(t *testing.T) {
	v := openTestVault(t)
	_, err := v.Sync(context.Background())
	assert.ErrorIs(t, err, ErrRemoteNotConfigured)
}

func TestVault_SyncBetweenDevices(t *testing.T) {
	ctx := context.Background()

	src, backend, err := badger.NewMemorySource()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	srv, err := server.New(src)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	remoteOpt := WithRemote(ts.URL+"/", "me@example.com")
	laptop := openTestVault(t, remoteOpt, WithSyncRetry(2, time.Millisecond))
	phone := openTestVault(t, remoteOpt, WithSyncRetry(2, time.Millisecond))

	require.NoError(t, laptop.Unlock(ctx, []byte("pw")))
	laptop.Collection().Add(&core.Record{ID: "x", Name: "Email", UpdatedAt: time.Now()})
	report, err := laptop.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, report.RemoteFound)
	assert.True(t, report.Pushed)

	report, err = phone.Sync(ctx, vault.WithSecret([]byte("pw")))
	require.NoError(t, err)
	assert.True(t, report.RemoteFound)
	assert.Equal(t, 1, report.Added)

	rec, ok := phone.Collection().Get("x")
	require.True(t, ok)
	assert.Equal(t, "Email", rec.Name)
}

func TestVault_DispatcherRoundTrip(t *testing.T) {
	ctx := context.Background()
	v := openTestVault(t)

	v.Collection().Add(&core.Record{ID: "a", UpdatedAt: time.Now()})
	_, err := v.Dispatcher().Save(ctx, v.Collection(), vault.WithSecret([]byte("pw"))).Result()
	require.NoError(t, err)

	exists, err := v.Dispatcher().Exists(ctx, v.Collection()).Result()
	require.NoError(t, err)
	assert.True(t, exists)
}
