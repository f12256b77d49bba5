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


// Package syncer reconciles a collection with a remote source.
//
// A sync fetches the remote copy, merges it into the local collection
// with last-writer-wins and writes the merged set back to both sides.
// Transport failures on remote calls are retried with exponential
// backoff; decryption failures are returned at once.
package syncer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/lockbox/core"
	"github.com/poiesic/lockbox/storage"
	"github.com/poiesic/lockbox/vault"
)

// Report summarizes one sync.
type Report struct {
	// RemoteFound is false when the remote held no blob yet.
	RemoteFound bool
	// Fetched is the number of records in the remote copy.
	Fetched int
	// Added counts remote records that were unknown locally.
	Added int
	// Updated counts local records replaced by newer remote ones.
	Updated int
	// Pushed is true once the merged set was saved to the remote.
	Pushed bool
	// SavedLocal is true once the merged set was saved to the default source.
	SavedLocal bool
}

// Syncer runs syncs with a fixed retry policy.
type Syncer struct {
	cfg    *Config
	logger *slog.Logger
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a syncer. A nil cfg uses DefaultConfig.
func New(cfg *Config, opts ...Option) (*Syncer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Syncer{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sync merges the remote copy of coll into coll and saves the result to
// remote and to coll's default source.
//
// opts apply to the first remote call; typically just vault.WithSecret.
// Later calls reuse the secret cached by the store. On error the report
// describes how far the sync got.
func (s *Syncer) Sync(ctx context.Context, coll *vault.Collection, remote storage.Source, opts ...vault.CallOption) (*Report, error) {
	if coll == nil {
		return nil, ErrCollectionRequired
	}
	if remote == nil {
		return nil, ErrRemoteRequired
	}

	report := &Report{}
	logger := s.logger.With("collection", coll.Name())

	scratch, err := vault.NewCollection(coll.Name(), coll.Store())
	if err != nil {
		return report, err
	}

	fetchOpts := append(append([]vault.CallOption{}, opts...), vault.WithSource(remote))
	err = s.retry(ctx, func() error {
		return scratch.Fetch(ctx, fetchOpts...)
	})
	switch {
	case errors.Is(err, storage.ErrNotFound):
		logger.Debug("no remote copy yet")
	case err != nil:
		logger.Warn("remote fetch failed", "err", err)
		return report, err
	default:
		report.RemoteFound = true
		s.merge(coll, scratch.Records(), report)
		logger.Debug("merged remote copy", "fetched", report.Fetched, "added", report.Added, "updated", report.Updated)
	}

	pushOpts := fetchOpts
	if report.RemoteFound {
		pushOpts = []vault.CallOption{vault.WithSource(remote)}
	}
	err = s.retry(ctx, func() error {
		return coll.Save(ctx, pushOpts...)
	})
	if err != nil {
		logger.Warn("remote save failed", "err", err)
		return report, err
	}
	report.Pushed = true

	if err := coll.Save(ctx); err != nil {
		logger.Warn("local save failed", "err", err)
		return report, err
	}
	report.SavedLocal = true

	logger.Info("sync complete", "added", report.Added, "updated", report.Updated)
	return report, nil
}

func (s *Syncer) merge(coll *vault.Collection, remote []*core.Record, report *Report) {
	report.Fetched = len(remote)
	for _, r := range remote {
		existing, ok := coll.Get(r.ID)
		switch {
		case !ok:
			report.Added++
		case r.NewerThan(existing):
			report.Updated++
		}
	}
	coll.Add(remote...)
}

// retry runs op with the configured backoff, retrying only transport failures.
func (s *Syncer) retry(ctx context.Context, op func() error) error {
	return RetryWithBackoff(ctx, func() error {
		err := op()
		if err != nil && !errors.Is(err, storage.ErrTransport) {
			return Permanent(err)
		}
		return err
	}, s.cfg.MaxRetries, s.cfg.RetryDelay)
}
