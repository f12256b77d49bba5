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


// Package lockbox wires the encrypted record store together: a local
// database, the collection and category registry stored in it, a
// dispatcher for asynchronous operations and an optional sync remote.
package lockbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/lockbox/crypto"
	"github.com/poiesic/lockbox/storage"
	"github.com/poiesic/lockbox/storage/badger"
	"github.com/poiesic/lockbox/storage/remote"
	"github.com/poiesic/lockbox/storage/s3store"
	"github.com/poiesic/lockbox/storage/sqlite"
	"github.com/poiesic/lockbox/syncer"
	"github.com/poiesic/lockbox/vault"
)

type Vault struct {
	closer     io.Closer
	source     storage.Source
	store      *vault.Store
	collection *vault.Collection
	categories *vault.Categories
	dispatcher *vault.Dispatcher
	remote     storage.Source
	syncer     *syncer.Syncer
	logger     *slog.Logger
}

// Open assembles a Vault from cfg. A nil cfg uses DefaultConfig.
func Open(ctx context.Context, cfg *Config) (*Vault, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.Default().With("collection", cfg.Collection)

	// Open local storage
	kv, closer, err := openLocal(cfg)
	if err != nil {
		return nil, err
	}
	source := storage.NewKVSource(kv, cfg.Backend)

	v := &Vault{
		closer: closer,
		source: source,
		logger: logger,
	}

	cipher, err := crypto.New(cfg.KDF)
	if err != nil {
		v.Close()
		return nil, err
	}

	v.store, err = vault.NewStore(source, vault.WithCipher(cipher), vault.WithLogger(logger))
	if err != nil {
		v.Close()
		return nil, err
	}

	v.collection, err = vault.NewCollection(cfg.Collection, v.store)
	if err != nil {
		v.Close()
		return nil, err
	}
	v.categories = vault.NewCategories(cfg.Collection, kv, cfg.Colors)

	v.dispatcher, err = vault.NewDispatcher(vault.WithPoolSize(cfg.Workers), vault.WithDispatcherLogger(logger))
	if err != nil {
		v.Close()
		return nil, err
	}

	// Optional remote
	if cfg.HasRemote() {
		v.remote, err = openRemote(ctx, cfg)
		if err != nil {
			v.Close()
			return nil, err
		}
		v.syncer, err = syncer.New(
			syncer.NewConfig(syncer.WithMaxRetries(cfg.SyncRetries), syncer.WithRetryDelay(cfg.SyncRetryDelay)),
			syncer.WithLogger(logger),
		)
		if err != nil {
			v.Close()
			return nil, err
		}
	}

	return v, nil
}

func openLocal(cfg *Config) (storage.KeyValueStore, io.Closer, error) {
	switch cfg.Backend {
	case BackendSQLite:
		path := filepath.Join(cfg.DataDir, "lockbox.db")
		if cfg.InMemory {
			path = ":memory:"
		}
		st, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	default:
		backend, err := badger.OpenBackend(filepath.Join(cfg.DataDir, "badger"), cfg.InMemory)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend, nil
	}
}

func openRemote(ctx context.Context, cfg *Config) (storage.Source, error) {
	if cfg.S3 != nil {
		return s3store.NewFromConfig(ctx, cfg.S3)
	}
	return remote.New(remote.NewConfig(
		remote.WithHost(cfg.RemoteHost),
		remote.WithAccount(cfg.RemoteAccount),
		remote.WithTimeout(cfg.RemoteTimeout),
	))
}

// Close locks the collection, stops the dispatcher and closes local storage.
func (v *Vault) Close() error {
	if v.collection != nil {
		v.collection.Lock()
	}
	if v.dispatcher != nil {
		v.dispatcher.Release()
	}
	if v.closer != nil {
		if err := v.closer.Close(); err != nil {
			v.logger.Error("error closing local storage", "err", err)
			return err
		}
	}
	return nil
}

// Unlock loads the collection with secret. A collection that was never
// saved is left empty and the secret is kept for the first save.
func (v *Vault) Unlock(ctx context.Context, secret []byte) error {
	exists, err := v.collection.Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		v.store.SetSecret(secret)
		return nil
	}
	return v.collection.Fetch(ctx, vault.WithSecret(secret))
}

// Sync reconciles the collection with the configured remote.
func (v *Vault) Sync(ctx context.Context, opts ...vault.CallOption) (*syncer.Report, error) {
	if v.syncer == nil {
		return nil, ErrRemoteNotConfigured
	}
	return v.syncer.Sync(ctx, v.collection, v.remote, opts...)
}

// Save persists the collection and the category table.
func (v *Vault) Save(ctx context.Context, opts ...vault.CallOption) error {
	return errors.Join(
		v.collection.Save(ctx, opts...),
		v.categories.Save(ctx),
	)
}

func (v *Vault) Collection() *vault.Collection {
	return v.collection
}

func (v *Vault) Categories() *vault.Categories {
	return v.categories
}

func (v *Vault) Dispatcher() *vault.Dispatcher {
	return v.dispatcher
}

func (v *Vault) Store() *vault.Store {
	return v.store
}

// Source returns the local source.
func (v *Vault) Source() storage.Source {
	return v.source
}

// Remote returns the sync remote, or nil.
func (v *Vault) Remote() storage.Source {
	return v.remote
}
