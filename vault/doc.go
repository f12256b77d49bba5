// Package vault implements encrypted, source-agnostic record collections.
//
// A Store sits between a storage.Source and a Collection. It owns the
// working secret, encrypts a collection's records on save and decrypts them
// on fetch. A Collection holds the decrypted records in memory and merges
// incoming records last-writer-wins by UpdatedAt.
//
// # Secrets
//
// The secret used for an operation is chosen in this order:
//
//  1. the secret passed with WithSecret
//  2. the secret cached by the last successful Fetch or Save
//  3. none: the call fails with ErrSecretRequired
//
// Collection.Lock clears the records and discards the cached secret.
//
// # Errors
//
// Storage failures are returned unchanged (storage.ErrNotFound,
// *storage.TransportError). A blob that cannot be decrypted or parsed is
// reported as ErrDecryption. A failed Fetch never modifies the collection.
//
// # Concurrency
//
// A Collection is not safe for concurrent use. Callers must not overlap
// Fetch, Save or Add on the same collection. Dispatcher runs operations on a
// worker pool and reports each outcome exactly once through a Future.
package vault
