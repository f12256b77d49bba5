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


// Package storage provides the persistence abstraction layer for lockbox.
//
// This package defines the Source interface that decouples encrypted
// collections from the medium they are persisted to. A Source stores opaque
// named blobs; it knows nothing about records, secrets or ciphertext.
// Local (BadgerDB, SQLite) and remote (HTTP, S3) implementations can be
// used interchangeably.
//
// # Architecture
//
//   - Source: fetch/save/exists over named blobs
//   - KeyValueStore: synchronous key-value medium used by local sources
//     and by the category registry
//
// # Errors
//
// Implementations report a missing blob as ErrNotFound and any I/O or
// network failure as a *TransportError. Callers distinguish the two with
// errors.Is:
//
//	data, err := src.Fetch(ctx, "default")
//	switch {
//	case errors.Is(err, storage.ErrNotFound):
//	    // nothing saved yet
//	case errors.Is(err, storage.ErrTransport):
//	    // medium unavailable
//	}
//
// Exists never reports ErrNotFound; absence is the false result.
//
// # Thread Safety
//
// All Source implementations must be safe for concurrent use.
//
// # Context Support
//
// All Source methods accept context.Context for cancellation and timeout
// support. Sources do not impose timeouts of their own.
package storage
