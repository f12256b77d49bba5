package vault

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/lockbox/crypto"
	"github.com/poiesic/lockbox/storage"
	"github.com/poiesic/lockbox/storage/badger"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
	t2 = t1.Add(time.Hour)
)

func testCipher(t *testing.T) crypto.Cipher {
	t.Helper()
	c, err := crypto.New(crypto.Params{Time: 1, Memory: 64, Threads: 1})
	require.NoError(t, err)
	return c
}

// newTestCollection returns a collection over an in-memory badger source.
func newTestCollection(t *testing.T, opts ...StoreOption) (*Collection, *badger.Backend) {
	t.Helper()

	src, backend, err := badger.NewMemorySource()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	opts = append([]StoreOption{WithCipher(testCipher(t))}, opts...)
	store, err := NewStore(src, opts...)
	require.NoError(t, err)

	coll, err := NewCollection("", store)
	require.NoError(t, err)
	return coll, backend
}

// fixedClock returns a clock that starts at start and advances by one
// second per call.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := current
		current = current.Add(time.Second)
		return now
	}
}

// failingSource fails every call with a transport error.
type failingSource struct {
	calls int
}

func (s *failingSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	s.calls++
	return nil, &storage.TransportError{Op: "fetch", Name: name, Status: 503}
}

func (s *failingSource) Save(ctx context.Context, name string, data []byte) error {
	s.calls++
	return &storage.TransportError{Op: "save", Name: name, Status: 503}
}

func (s *failingSource) Exists(ctx context.Context, name string) (bool, error) {
	s.calls++
	return false, &storage.TransportError{Op: "exists", Name: name, Status: 503}
}

// rawSource serves a fixed blob.
type rawSource struct {
	blob []byte
}

func (s *rawSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	return s.blob, nil
}

func (s *rawSource) Save(ctx context.Context, name string, data []byte) error {
	s.blob = data
	return nil
}

func (s *rawSource) Exists(ctx context.Context, name string) (bool, error) {
	return s.blob != nil, nil
}
