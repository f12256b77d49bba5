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


package vault

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/lockbox/crypto"
	"github.com/poiesic/lockbox/storage"
)

// Store encrypts collections and forwards them to a storage.Source.
// It caches the most recently used secret.
type Store struct {
	source    storage.Source
	cipher    crypto.Cipher
	secret    []byte
	hasSecret bool
	now       func() time.Time
	logger    *slog.Logger
}

// NewStore creates a store bound to a default source.
func NewStore(source storage.Source, opts ...StoreOption) (*Store, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	s := &Store{
		source: source,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cipher == nil {
		cipher, err := crypto.New(crypto.DefaultParams())
		if err != nil {
			return nil, err
		}
		s.cipher = cipher
	}
	return s, nil
}

// Source returns the store's default source.
func (s *Store) Source() storage.Source {
	return s.source
}

// SetSecret replaces the cached secret.
func (s *Store) SetSecret(secret []byte) {
	s.remember(secret)
}

// HasSecret reports whether a secret is cached.
func (s *Store) HasSecret() bool {
	return s.hasSecret
}

// Forget zeroes and discards the cached secret.
func (s *Store) Forget() {
	for i := range s.secret {
		s.secret[i] = 0
	}
	s.secret = nil
	s.hasSecret = false
}

// Fetch loads coll from the source, decrypts it and replaces its records.
//
// Storage failures are returned as reported by the source. A blob that
// cannot be decrypted or parsed yields an error wrapping ErrDecryption.
// On any failure coll is left untouched and the cached secret is kept.
func (s *Store) Fetch(ctx context.Context, coll *Collection, opts ...CallOption) error {
	o := applyCallOptions(opts)
	source := s.sourceFor(o)

	secret, err := s.secretFor(o)
	if err != nil {
		return err
	}

	blob, err := source.Fetch(ctx, coll.name)
	if err != nil {
		s.logger.Debug("fetch failed", "collection", coll.name, "err", err)
		return err
	}

	plaintext, err := s.cipher.Decrypt(secret, blob)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrDecryption, coll.name, err)
	}

	records, err := storage.UnmarshalRecords(plaintext)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrDecryption, coll.name, err)
	}

	coll.reset(records)
	s.remember(secret)

	s.logger.Debug("fetched collection", "collection", coll.name, "records", len(records))
	return nil
}

// Save encrypts coll's records and writes them to the source.
//
// If WithRecord is given, the draft is normalized and merged into coll
// before serialization so the persisted blob reflects it.
func (s *Store) Save(ctx context.Context, coll *Collection, opts ...CallOption) error {
	o := applyCallOptions(opts)
	source := s.sourceFor(o)

	secret, err := s.secretFor(o)
	if err != nil {
		return err
	}

	if o.record != nil {
		coll.stage(o.record)
	}

	plaintext, err := storage.MarshalRecords(coll.records)
	if err != nil {
		return err
	}

	blob, err := s.cipher.Encrypt(secret, plaintext)
	if err != nil {
		return fmt.Errorf("encrypt collection %q: %w", coll.name, err)
	}

	if err := source.Save(ctx, coll.name, blob); err != nil {
		s.logger.Debug("save failed", "collection", coll.name, "err", err)
		return err
	}
	s.remember(secret)

	s.logger.Debug("saved collection", "collection", coll.name, "records", len(coll.records))
	return nil
}

// CollectionExists reports whether the source holds a blob for coll.
func (s *Store) CollectionExists(ctx context.Context, coll *Collection, opts ...CallOption) (bool, error) {
	o := applyCallOptions(opts)
	return s.sourceFor(o).Exists(ctx, coll.name)
}

func (s *Store) sourceFor(o *callOptions) storage.Source {
	if o.source != nil {
		return o.source
	}
	return s.source
}

// secretFor applies the precedence explicit > cached > absent.
func (s *Store) secretFor(o *callOptions) ([]byte, error) {
	if o.hasSecret {
		return o.secret, nil
	}
	if s.hasSecret {
		return s.secret, nil
	}
	return nil, ErrSecretRequired
}

// remember caches a private copy of secret. The copy is taken before the
// old secret is wiped, since secret may alias it.
func (s *Store) remember(secret []byte) {
	cached := make([]byte, len(secret))
	copy(cached, secret)
	s.Forget()
	s.secret = cached
	s.hasSecret = true
}
