package vault

import (
	"log/slog"
	"time"

	"github.com/poiesic/lockbox/core"
	"github.com/poiesic/lockbox/crypto"
	"github.com/poiesic/lockbox/storage"
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCipher sets the encryption primitive.
// Default is crypto.New(crypto.DefaultParams()).
func WithCipher(cipher crypto.Cipher) StoreOption {
	return func(s *Store) {
		if cipher != nil {
			s.cipher = cipher
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithClock sets the time source used to stamp records.
// Default is time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// CallOption adjusts a single Fetch, Save or Exists call.
type CallOption func(*callOptions)

type callOptions struct {
	source    storage.Source
	secret    []byte
	hasSecret bool
	record    *core.Record
}

// WithSource overrides the store's default source for one call.
func WithSource(source storage.Source) CallOption {
	return func(o *callOptions) {
		o.source = source
	}
}

// WithSecret supplies the secret for one call. On success it becomes the
// store's cached secret.
func WithSecret(secret []byte) CallOption {
	return func(o *callOptions) {
		o.secret = secret
		o.hasSecret = true
	}
}

// WithRecord names the record draft being saved. The draft is normalized
// (default name, empty fields pruned, UpdatedAt stamped) and merged into
// the collection before it is serialized.
func WithRecord(record *core.Record) CallOption {
	return func(o *callOptions) {
		o.record = record
	}
}

func applyCallOptions(opts []CallOption) *callOptions {
	o := &callOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
