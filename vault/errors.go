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

import "errors"

var (
	// ErrDecryption indicates a fetched blob could not be decrypted with the
	// secret, or its plaintext is not a valid record sequence. It is never
	// returned for storage failures.
	ErrDecryption = errors.New("cannot decrypt collection")

	// ErrSecretRequired is returned when no secret was supplied and none is cached.
	ErrSecretRequired = errors.New("secret required")

	// ErrRecordNotFound is returned when a record id is not in the collection.
	ErrRecordNotFound = errors.New("record not found in collection")

	// ErrStoreRequired is returned when a collection is created without a store.
	ErrStoreRequired = errors.New("store required")

	// ErrSourceRequired is returned when a store is created without a default source.
	ErrSourceRequired = errors.New("source required")

	// ErrDispatch is returned by a future whose work could not be scheduled.
	ErrDispatch = errors.New("cannot dispatch operation")
)
