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
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that no blob exists under the requested name.
	ErrNotFound = errors.New("collection not found")

	// ErrTransport matches every *TransportError via errors.Is.
	ErrTransport = errors.New("transport failure")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrTruncatedData indicates that data was truncated during reading.
	ErrTruncatedData = errors.New("truncated data")

	// ErrBlobTooLarge indicates a blob larger than the configured limit.
	ErrBlobTooLarge = errors.New("blob too large")
)

// TransportError reports a failure of the underlying medium or network.
type TransportError struct {
	// Op is the source operation that failed ("fetch", "save", "exists").
	Op string
	// Name is the collection or key involved.
	Name string
	// Status is a backend specific status code, e.g. an HTTP status. Zero if none.
	Status int
	// Detail carries backend specific diagnostic text, e.g. a response body.
	Detail string
	// Err is the underlying cause, if any.
	Err error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("%s %q: %s", e.Op, e.Name, ErrTransport)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes every TransportError match ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// NewTransportError wraps err as a TransportError for the given operation.
func NewTransportError(op, name string, err error) *TransportError {
	return &TransportError{Op: op, Name: name, Err: err}
}
