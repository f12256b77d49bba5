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
	"time"

	"github.com/poiesic/lockbox/core"
)

// DefaultCollectionName is used when a collection is created without a name.
const DefaultCollectionName = "default"

// Collection is the in-memory record set of one logical dataset.
//
// Records keep their insertion order. The index maps every record id to its
// position in that order, so lookups during a merge are O(1).
type Collection struct {
	name    string
	store   *Store
	records []*core.Record
	index   map[string]int
}

// NewCollection creates an empty collection bound to store.
// An empty name selects DefaultCollectionName.
func NewCollection(name string, store *Store) (*Collection, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if name == "" {
		name = DefaultCollectionName
	}
	return &Collection{
		name:  name,
		store: store,
		index: make(map[string]int),
	}, nil
}

// Name returns the collection name used to address its blob.
func (c *Collection) Name() string {
	return c.name
}

// Store returns the store the collection is bound to.
func (c *Collection) Store() *Store {
	return c.store
}

// Len returns the number of records, tombstones included.
func (c *Collection) Len() int {
	return len(c.records)
}

// Records returns the records in order. The slice is a copy; the records
// are shared with the collection.
func (c *Collection) Records() []*core.Record {
	out := make([]*core.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Live returns the records that are not tombstones, in order.
func (c *Collection) Live() []*core.Record {
	out := make([]*core.Record, 0, len(c.records))
	for _, r := range c.records {
		if !r.Deleted {
			out = append(out, r)
		}
	}
	return out
}

// Get returns the record with the given id.
func (c *Collection) Get(id string) (*core.Record, bool) {
	pos, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.records[pos], true
}

// Add merges records into the collection, last writer wins.
//
// Records without an id are assigned a new one. A record whose id is
// unknown is appended. A record whose id is known replaces the existing
// one, in place, only if its UpdatedAt is strictly later; otherwise it is
// discarded. Fields are never merged.
func (c *Collection) Add(records ...*core.Record) {
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.ID == "" {
			r.ID = core.NewID()
		}

		pos, ok := c.index[r.ID]
		if !ok {
			c.index[r.ID] = len(c.records)
			c.records = append(c.records, r)
			continue
		}

		existing := c.records[pos]
		if r == existing || !r.NewerThan(existing) {
			continue
		}
		c.records[pos] = r
	}
}

// Remove turns the record with the given id into a tombstone. The record
// stays in the collection so the deletion reaches other sources.
func (c *Collection) Remove(id string) error {
	r, ok := c.Get(id)
	if !ok {
		return ErrRecordNotFound
	}
	r.Tombstone(c.store.now())
	return nil
}

// Lock empties the collection and discards the store's cached secret.
// A later Fetch needs the secret again.
func (c *Collection) Lock() {
	for i := range c.records {
		c.records[i] = nil
	}
	c.records = nil
	c.index = make(map[string]int)
	c.store.Forget()
}

// Fetch replaces the records with the ones stored in the source.
func (c *Collection) Fetch(ctx context.Context, opts ...CallOption) error {
	return c.store.Fetch(ctx, c, opts...)
}

// Save persists the records to the source.
func (c *Collection) Save(ctx context.Context, opts ...CallOption) error {
	return c.store.Save(ctx, c, opts...)
}

// Exists reports whether the source holds data for this collection.
func (c *Collection) Exists(ctx context.Context, opts ...CallOption) (bool, error) {
	return c.store.CollectionExists(ctx, c, opts...)
}

// SetPassword makes secret the store's secret and saves the collection
// encrypted under it.
func (c *Collection) SetPassword(ctx context.Context, secret []byte) error {
	c.store.SetSecret(secret)
	return c.Save(ctx)
}

// reset replaces the record set after a successful fetch.
func (c *Collection) reset(records []*core.Record) {
	c.records = make([]*core.Record, 0, len(records))
	c.index = make(map[string]int, len(records))
	c.Add(records...)
}

// stage normalizes a draft and puts it into the collection so the next
// serialization includes it. A draft for a known id always replaces the
// stored record, and is stamped strictly after it so it also wins when
// merged elsewhere.
func (c *Collection) stage(draft *core.Record) {
	now := c.store.now()
	pos, ok := c.index[draft.ID]
	if ok {
		if last := c.records[pos].UpdatedAt; !now.After(last) {
			now = last.Add(time.Nanosecond)
		}
	}

	core.NormalizeDraft(draft, now)
	if ok {
		c.records[pos] = draft
		return
	}
	c.Add(draft)
}
