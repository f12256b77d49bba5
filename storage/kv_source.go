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


package storage

import (
	"context"
	"errors"
	"log/slog"
)

// KVSource adapts a synchronous KeyValueStore to the Source contract.
// Collection blobs are addressed as CollectionKey(name).
type KVSource struct {
	kv     KeyValueStore
	medium string
	logger *slog.Logger
}

var _ Source = (*KVSource)(nil)

// NewKVSource creates a Source over kv. medium names the backing store in log output.
func NewKVSource(kv KeyValueStore, medium string) *KVSource {
	return &KVSource{
		kv:     kv,
		medium: medium,
		logger: slog.Default().With("source", medium),
	}
}

// Fetch returns the blob saved under name.
func (s *KVSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := s.kv.Get(ctx, CollectionKey(name))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Debug("fetch failed", "collection", name, "err", err)
		return nil, NewTransportError("fetch", name, err)
	}
	return data, nil
}

// Save stores data under name.
func (s *KVSource) Save(ctx context.Context, name string, data []byte) error {
	if err := s.kv.Set(ctx, CollectionKey(name), data); err != nil {
		s.logger.Debug("save failed", "collection", name, "err", err)
		return NewTransportError("save", name, err)
	}
	return nil
}

// Exists reports whether a blob is saved under name.
func (s *KVSource) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := s.kv.Has(ctx, CollectionKey(name))
	if err != nil {
		return false, NewTransportError("exists", name, err)
	}
	return ok, nil
}
