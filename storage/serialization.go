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
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/lockbox/core"
)

// MarshalRecords serializes an ordered record sequence to the JSON plaintext
// that is encrypted and persisted.
func MarshalRecords(records []*core.Record) ([]byte, error) {
	if records == nil {
		records = []*core.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalRecords parses JSON plaintext into an ordered record sequence.
// Every record must pass core.ValidateRecord.
func UnmarshalRecords(data []byte) ([]*core.Record, error) {
	var records []*core.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	for i, r := range records {
		if err := core.ValidateRecord(r); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrSerializationFailed, i, err)
		}
	}
	return records, nil
}

// MarshalCategories serializes a category table. Entries are written in
// name order so equal tables produce equal bytes.
func MarshalCategories(categories map[string]int) []byte {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	slices.Sort(names)

	size := varint.Int.Size(len(names))
	for _, name := range names {
		size += ord.String.Size(name) + varint.Int.Size(categories[name])
	}

	buf := make([]byte, size)
	offset := varint.Int.Marshal(len(names), buf)
	for _, name := range names {
		offset += ord.String.Marshal(name, buf[offset:])
		offset += varint.Int.Marshal(categories[name], buf[offset:])
	}
	return buf
}

// UnmarshalCategories deserializes a category table.
func UnmarshalCategories(data []byte) (map[string]int, error) {
	count, offset, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if count < 0 || count > len(data) {
		return nil, fmt.Errorf("%w: invalid entry count %d", ErrSerializationFailed, count)
	}

	categories := make(map[string]int, count)
	for i := 0; i < count; i++ {
		name, n, err := ord.String.Unmarshal(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d name: %w", ErrTruncatedData, i, err)
		}
		offset += n

		color, n, err := varint.Int.Unmarshal(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d color: %w", ErrTruncatedData, i, err)
		}
		offset += n

		categories[name] = color
	}
	return categories, nil
}
