// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cache provides a small in-memory TTL cache. The public
// content listing is read on every page view but changes only when an
// admin edits something, so one cached value absorbs nearly all reads.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Value caches a single value of type T with a TTL. The zero value is
// not usable; create instances with NewValue.
type Value[T any] struct {
	mu        sync.RWMutex
	value     T
	expiresAt time.Time
	ttl       time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewValue creates a cache holding one value for at most ttl.
func NewValue[T any](ttl time.Duration) *Value[T] {
	return &Value[T]{ttl: ttl}
}

// Get returns the cached value and true while it is fresh.
func (v *Value[T]) Get() (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.expiresAt.IsZero() || time.Now().After(v.expiresAt) {
		v.misses.Add(1)
		var zero T
		return zero, false
	}
	v.hits.Add(1)
	return v.value, true
}

// Set stores a fresh value.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.value = value
	v.expiresAt = time.Now().Add(v.ttl)
}

// Invalidate drops the cached value. The next Get misses.
func (v *Value[T]) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()

	var zero T
	v.value = zero
	v.expiresAt = time.Time{}
}

// Stats holds hit counters for diagnostics.
type Stats struct {
	Hits   int64
	Misses int64
}

// Stats returns the current counters.
func (v *Value[T]) Stats() Stats {
	return Stats{
		Hits:   v.hits.Load(),
		Misses: v.misses.Load(),
	}
}
