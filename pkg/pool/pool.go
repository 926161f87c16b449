// Package pool provides generic object pooling to reduce allocations
// in hot, repeated scan paths.
//
// A Pool[T] wraps a sync.Pool behind a typed Get/Put pair and a
// runtime on/off switch: disabling a pool falls back to calling the
// constructor directly, so pooling can be turned off wholesale (e.g.
// for a debug build chasing a use-after-free) without touching call
// sites.
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a typed wrapper around sync.Pool. The zero value is not
// usable; construct with New.
type Pool[T any] struct {
	newFn   func() T
	pool    sync.Pool
	enabled atomic.Bool
}

// New creates a pool whose Get falls back to newFn when empty, or when
// the pool has been disabled with SetEnabled(false).
func New[T any](newFn func() T) *Pool[T] {
	p := &Pool[T]{newFn: newFn}
	p.pool.New = func() any { return newFn() }
	p.enabled.Store(true)
	return p
}

// SetEnabled toggles pooling at runtime.
func (p *Pool[T]) SetEnabled(v bool) { p.enabled.Store(v) }

// Get returns a pooled value, or a freshly constructed one if the pool
// is empty or disabled.
func (p *Pool[T]) Get() T {
	if !p.enabled.Load() {
		return p.newFn()
	}
	return p.pool.Get().(T)
}

// Put returns v to the pool for reuse. Callers must not use v again
// after calling Put. A no-op when the pool is disabled.
func (p *Pool[T]) Put(v T) {
	if !p.enabled.Load() {
		return
	}
	p.pool.Put(v)
}
