// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package lockbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/poiesic/lockbox/crypto"
	"github.com/poiesic/lockbox/storage/s3store"
	"github.com/poiesic/lockbox/vault"
)

// Local storage engines.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Config holds everything Open needs to assemble a Vault.
type Config struct {
	// DataDir holds the local database.
	// Default: $HOME/.lockbox
	DataDir string

	// InMemory keeps the local database in memory. Used by tests.
	InMemory bool

	// Backend selects the local storage engine: "badger" or "sqlite".
	// Default: "badger"
	Backend string

	// Collection is the name of the collection to open.
	// Default: "default"
	Collection string

	// RemoteHost and RemoteAccount configure the HTTP sync service.
	// Both empty disables HTTP sync.
	RemoteHost    string
	RemoteAccount string

	// RemoteTimeout bounds each request to the sync service.
	// Default: 30s
	RemoteTimeout time.Duration

	// S3 configures an S3-compatible bucket as the sync remote.
	// Mutually exclusive with RemoteHost.
	S3 *s3store.Config

	// Workers is the size of the dispatcher pool.
	// Default: runtime.NumCPU() / 2, at least 1
	Workers int

	// KDF is the cost of deriving keys from the secret.
	// Default: crypto.DefaultParams()
	KDF crypto.Params

	// SyncRetries is the number of attempts for each remote call during sync.
	// Default: 3
	SyncRetries int

	// SyncRetryDelay is the base backoff delay between attempts.
	// Default: 500ms
	SyncRetryDelay time.Duration

	// Colors is the size of the category color palette.
	// Default: 8
	Colors int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDataDir sets the local data directory.
func WithDataDir(dir string) ConfigOption {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// WithInMemory keeps the local database in memory.
func WithInMemory() ConfigOption {
	return func(c *Config) {
		c.InMemory = true
	}
}

// WithBackend selects the local storage engine.
func WithBackend(backend string) ConfigOption {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithCollection sets the collection name.
func WithCollection(name string) ConfigOption {
	return func(c *Config) {
		c.Collection = name
	}
}

// WithRemote configures the HTTP sync service.
func WithRemote(host, account string) ConfigOption {
	return func(c *Config) {
		c.RemoteHost = host
		c.RemoteAccount = account
	}
}

// WithS3Remote uses an S3 bucket as the sync remote.
func WithS3Remote(cfg *s3store.Config) ConfigOption {
	return func(c *Config) {
		c.S3 = cfg
	}
}

// WithWorkers sets the dispatcher pool size.
func WithWorkers(n int) ConfigOption {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithKDFParams sets the key derivation cost.
func WithKDFParams(p crypto.Params) ConfigOption {
	return func(c *Config) {
		c.KDF = p
	}
}

// WithSyncRetry sets the sync retry policy.
func WithSyncRetry(attempts int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.SyncRetries = attempts
		c.SyncRetryDelay = delay
	}
}

// WithColors sets the category palette size.
func WithColors(n int) ConfigOption {
	return func(c *Config) {
		c.Colors = n
	}
}

// DefaultConfig returns a Config for a badger database under $HOME/.lockbox
// with no remote.
func DefaultConfig() *Config {
	dataDir := ".lockbox"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".lockbox")
	}

	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}

	return &Config{
		DataDir:        dataDir,
		Backend:        BackendBadger,
		Collection:     vault.DefaultCollectionName,
		RemoteTimeout:  30 * time.Second,
		Workers:        workers,
		KDF:            crypto.DefaultParams(),
		SyncRetries:    3,
		SyncRetryDelay: 500 * time.Millisecond,
		Colors:         8,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithDataDir("/var/lib/lockbox"),
//	    WithRemote("https://sync.example.com", "me@example.com"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It trims trailing slashes from the remote host and lower-cases the backend.
func (c *Config) Normalize() {
	c.RemoteHost = strings.TrimRight(strings.TrimSpace(c.RemoteHost), "/")
	c.RemoteAccount = strings.TrimSpace(c.RemoteAccount)
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = BackendBadger
	}
	if c.Collection == "" {
		c.Collection = vault.DefaultCollectionName
	}
}

// HasRemote reports whether a sync remote is configured.
func (c *Config) HasRemote() bool {
	return c.RemoteHost != "" || c.S3 != nil
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if !c.InMemory && c.DataDir == "" {
		return errors.New("lockbox config: DataDir is required")
	}
	if c.Backend != BackendBadger && c.Backend != BackendSQLite {
		return fmt.Errorf("lockbox config: unknown Backend %q", c.Backend)
	}
	if (c.RemoteHost == "") != (c.RemoteAccount == "") {
		return errors.New("lockbox config: RemoteHost and RemoteAccount must be set together")
	}
	if c.RemoteHost != "" && c.S3 != nil {
		return errors.New("lockbox config: RemoteHost and S3 are mutually exclusive")
	}
	if c.Workers < 1 {
		return errors.New("lockbox config: Workers must be at least 1")
	}
	if c.SyncRetries < 1 {
		return errors.New("lockbox config: SyncRetries must be at least 1")
	}
	if c.Colors < 0 {
		return errors.New("lockbox config: Colors must not be negative")
	}
	if err := c.KDF.Validate(); err != nil {
		return fmt.Errorf("lockbox config: %w", err)
	}
	return nil
}
