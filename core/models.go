package core

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRecordName is assigned to records saved without a name.
const DefaultRecordName = "Unnamed"

// NewID returns a fresh record identifier.
// Identifiers are random UUIDs; collisions are treated as impossible.
func NewID() string {
	return uuid.NewString()
}

// Field is a single name/value pair inside a Record.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// IsEmpty reports whether the field carries neither a name nor a value.
func (f Field) IsEmpty() bool {
	return f.Name == "" && f.Value == ""
}

// Record is a single user entry, e.g. a set of credentials.
//
// A Record with Deleted set is a tombstone: it carries no payload but
// stays in the collection so the deletion propagates to other sources.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Category  string    `json:"category,omitempty"`
	Fields    []Field   `json:"fields,omitempty"`
	UpdatedAt time.Time `json:"updated"`
	Deleted   bool      `json:"deleted,omitempty"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.Fields != nil {
		c.Fields = make([]Field, len(r.Fields))
		copy(c.Fields, r.Fields)
	}
	return &c
}

// NewerThan reports whether r should replace other under last-writer-wins.
// Both timestamps must be set and r's must be strictly later.
func (r *Record) NewerThan(other *Record) bool {
	if r.UpdatedAt.IsZero() || other.UpdatedAt.IsZero() {
		return false
	}
	return r.UpdatedAt.After(other.UpdatedAt)
}

// Tombstone clears the payload of r and marks it deleted at the given time.
func (r *Record) Tombstone(now time.Time) {
	r.Name = ""
	r.Category = ""
	r.Fields = nil
	r.UpdatedAt = now.UTC()
	r.Deleted = true
}
