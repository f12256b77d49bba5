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
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/poiesic/lockbox/storage"
)

// Category is a named color slot.
type Category struct {
	Name  string
	Color int
}

// Categories maps category names to colors numbered 1..numColors.
// The table is persisted unencrypted under "cat_" + name.
// Categories is not safe for concurrent use.
type Categories struct {
	name       string
	kv         storage.KeyValueStore
	numColors  int
	categories map[string]int
}

// NewCategories creates an empty registry persisted to kv.
// An empty name selects DefaultCollectionName.
func NewCategories(name string, kv storage.KeyValueStore, numColors int) *Categories {
	if name == "" {
		name = DefaultCollectionName
	}
	if numColors < 0 {
		numColors = 0
	}
	return &Categories{
		name:       name,
		kv:         kv,
		numColors:  numColors,
		categories: make(map[string]int),
	}
}

// Set assigns color to category, adding the category if needed.
func (c *Categories) Set(category string, color int) {
	c.categories[category] = color
}

// Get returns the color of category.
func (c *Categories) Get(category string) (int, bool) {
	color, ok := c.categories[category]
	return color, ok
}

// Remove deletes category.
func (c *Categories) Remove(category string) {
	delete(c.categories, category)
}

// Len returns the number of categories.
func (c *Categories) Len() int {
	return len(c.categories)
}

// List returns the categories ordered by name.
func (c *Categories) List() []Category {
	out := make([]Category, 0, len(c.categories))
	for name, color := range c.categories {
		out = append(out, Category{Name: name, Color: color})
	}
	slices.SortFunc(out, func(a, b Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// AutoColor suggests a color for a new category, uniformly from 1..numColors.
// Returns 0 when the palette is empty.
func (c *Categories) AutoColor() int {
	if c.numColors <= 0 {
		return 0
	}
	return rand.IntN(c.numColors) + 1
}

// Fetch loads the persisted table and merges it in. Categories already
// present in memory keep their color. A missing table is not an error.
func (c *Categories) Fetch(ctx context.Context) error {
	data, err := c.kv.Get(ctx, storage.CategoryKey(c.name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch categories %q: %w", c.name, err)
	}

	fetched, err := storage.UnmarshalCategories(data)
	if err != nil {
		return fmt.Errorf("fetch categories %q: %w", c.name, err)
	}

	for name, color := range fetched {
		if _, ok := c.categories[name]; !ok {
			c.categories[name] = color
		}
	}
	return nil
}

// Save persists the whole table.
func (c *Categories) Save(ctx context.Context) error {
	if err := c.kv.Set(ctx, storage.CategoryKey(c.name), storage.MarshalCategories(c.categories)); err != nil {
		return fmt.Errorf("save categories %q: %w", c.name, err)
	}
	return nil
}
