package lockbox

import (
	"testing"
	"time"

	"github.com/poiesic/lockbox/crypto"
	"github.com/poiesic/lockbox/storage/s3store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, BackendBadger, cfg.Backend)
	assert.Equal(t, "default", cfg.Collection)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, crypto.DefaultParams(), cfg.KDF)
	assert.False(t, cfg.HasRemote())
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithDataDir("/tmp/lb"),
		WithBackend(" SQLite "),
		WithCollection("work"),
		WithRemote("https://sync.example.com//", "me"),
		WithWorkers(3),
		WithSyncRetry(5, time.Second),
		WithColors(12),
	)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/tmp/lb", cfg.DataDir)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "work", cfg.Collection)
	assert.Equal(t, "https://sync.example.com", cfg.RemoteHost)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 5, cfg.SyncRetries)
	assert.Equal(t, 12, cfg.Colors)
	assert.True(t, cfg.HasRemote())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		opts []ConfigOption
	}{
		{"unknown backend", []ConfigOption{WithBackend("bolt")}},
		{"host without account", []ConfigOption{WithRemote("https://x", "")}},
		{"two remotes", []ConfigOption{WithRemote("https://x", "me"), WithS3Remote(s3store.NewConfig())}},
		{"no workers", []ConfigOption{WithWorkers(0)}},
		{"no retries", []ConfigOption{WithSyncRetry(0, time.Second)}},
		{"negative colors", []ConfigOption{WithColors(-1)}},
		{"bad kdf", []ConfigOption{WithKDFParams(crypto.Params{})}},
		{"no data dir", []ConfigOption{WithDataDir("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewConfig(tt.opts...).Validate())
		})
	}

	assert.NoError(t, NewConfig(WithDataDir(""), WithInMemory()).Validate())
}
