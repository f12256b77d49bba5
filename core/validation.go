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


package core

import (
	"fmt"
	"time"
)

// NormalizeDraft prepares a record for persistence.
//
// Normalization rules:
//   - an empty Name becomes DefaultRecordName
//   - a tombstone loses its name, category and fields
//   - fields with neither a name nor a value are dropped
//   - UpdatedAt is set to now
//
// Malformed fields are dropped rather than rejected; NormalizeDraft never fails.
func NormalizeDraft(r *Record, now time.Time) {
	if r == nil {
		return
	}
	if r.Deleted {
		r.Name, r.Category, r.Fields = "", "", nil
	} else {
		if r.Name == "" {
			r.Name = DefaultRecordName
		}
		r.Fields = PruneFields(r.Fields)
	}
	r.UpdatedAt = now.UTC()
}

// PruneFields returns fields without the entries that have neither a name nor a value.
func PruneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	kept := fields[:0:0]
	for _, f := range fields {
		if f.IsEmpty() {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// ValidateRecord checks the structural rules a persisted Record must satisfy.
//
// Validation rules:
//   - ID must not be empty
//   - a tombstone must not carry name, category or fields
func ValidateRecord(r *Record) error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrMissingID)
	}
	if r.Deleted && (r.Name != "" || r.Category != "" || len(r.Fields) > 0) {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrTombstonePayload)
	}
	return nil
}
