// Package cache provides a thread-safe memo table for results that are
// expensive to compute and fully determined by their key.
package cache

import "sync"

// Memo maps keys to computed values. Entries never expire; a Memo is meant
// to live for one batch of work and then be dropped.
type Memo[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
	hits int
}

// New creates an empty Memo.
func New[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{data: make(map[K]V)}
}

// Do returns the stored value for key, computing and storing it with fn on
// a miss. Concurrent misses on the same key may each call fn; the first
// stored value wins and is returned to every caller.
func (m *Memo[K, V]) Do(key K, fn func() V) V {
	m.mu.Lock()
	if v, ok := m.data[key]; ok {
		m.hits++
		m.mu.Unlock()
		return v
	}
	m.mu.Unlock()

	v := fn()

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.data[key]; ok {
		return prev
	}
	m.data[key] = v
	return v
}

// Len returns the number of stored entries.
func (m *Memo[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Hits returns how many Do calls were answered from storage.
func (m *Memo[K, V]) Hits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits
}
