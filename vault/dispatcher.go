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
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Future holds the outcome of an operation run by a Dispatcher.
// It completes exactly once.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) complete(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Done is closed when the operation has completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Result blocks until the operation completes and returns its outcome.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.value, f.err
}

// Wait blocks until the operation completes or ctx is done. Giving up on
// ctx does not cancel the operation itself.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Dispatcher runs collection operations on a worker pool.
// It adds no retries; each Future reports the single attempt.
type Dispatcher struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher) error

// WithPoolSize sets the worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) DispatcherOption {
	return func(d *Dispatcher) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if d.pool != nil {
			d.pool.Release()
		}
		d.pool = pool
		return nil
	}
}

// WithDispatcherLogger sets a custom logger.
// Default is slog.Default().
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		d.logger = logger
		return nil
	}
}

// NewDispatcher creates a dispatcher with its own worker pool.
func NewDispatcher(opts ...DispatcherOption) (*Dispatcher, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	d := &Dispatcher{
		pool:   pool,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(d); optErr != nil {
			d.Release()
			return nil, optErr
		}
	}
	return d, nil
}

// Fetch runs coll.Fetch on the pool.
func (d *Dispatcher) Fetch(ctx context.Context, coll *Collection, opts ...CallOption) *Future[*Collection] {
	return submit(d, "fetch", func() (*Collection, error) {
		if err := coll.Fetch(ctx, opts...); err != nil {
			return nil, err
		}
		return coll, nil
	})
}

// Save runs coll.Save on the pool.
func (d *Dispatcher) Save(ctx context.Context, coll *Collection, opts ...CallOption) *Future[*Collection] {
	return submit(d, "save", func() (*Collection, error) {
		if err := coll.Save(ctx, opts...); err != nil {
			return nil, err
		}
		return coll, nil
	})
}

// Exists runs coll.Exists on the pool.
func (d *Dispatcher) Exists(ctx context.Context, coll *Collection, opts ...CallOption) *Future[bool] {
	return submit(d, "exists", func() (bool, error) {
		return coll.Exists(ctx, opts...)
	})
}

// Running returns the number of operations currently executing.
func (d *Dispatcher) Running() int {
	return d.pool.Running()
}

// Release stops the worker pool. Operations submitted afterwards fail
// with ErrDispatch.
func (d *Dispatcher) Release() {
	if d.pool != nil {
		d.pool.Release()
	}
}

func submit[T any](d *Dispatcher, op string, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()

	err := d.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("operation panicked", "op", op, "panic", r)
				var zero T
				f.complete(zero, fmt.Errorf("%s panicked: %v", op, r))
			}
		}()
		value, err := fn()
		f.complete(value, err)
	})
	if err != nil {
		d.logger.Error("cannot submit operation", "op", op, "err", err)
		var zero T
		f.complete(zero, fmt.Errorf("%w: %s: %w", ErrDispatch, op, err))
	}
	return f
}
