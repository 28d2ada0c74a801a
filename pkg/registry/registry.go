// Package registry keeps observers grouped by the native instance that owns
// them and fans events out to them.
package registry

import "sync"

// Registry maps an owner key to the ordered set of observers registered under
// it. All methods are safe for concurrent use. Observers are compared with ==;
// callers must not store values whose dynamic type is not comparable.
type Registry[K comparable, O comparable] struct {
	mu      sync.RWMutex
	buckets map[K][]O
}

// New creates an empty registry.
func New[K comparable, O comparable]() *Registry[K, O] {
	return &Registry[K, O]{buckets: make(map[K][]O)}
}

// Add appends o to the bucket for key, creating the bucket if needed.
// It reports whether o was added; adding an observer already present is a no-op.
func (r *Registry[K, O]) Add(key K, o O) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.buckets[key]
	for _, existing := range bucket {
		if existing == o {
			return false
		}
	}
	r.buckets[key] = append(bucket, o)
	return true
}

// Remove drops o from the bucket for key and returns the position it held,
// or -1 when o was not in the bucket. found reports whether the bucket existed
// at all. The bucket itself is kept, even when it becomes empty.
func (r *Registry[K, O]) Remove(key K, o O) (index int, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, found := r.buckets[key]
	if !found {
		return -1, false
	}

	index = -1
	// Build a new slice so snapshots taken earlier stay intact.
	kept := make([]O, 0, len(bucket))
	for i, existing := range bucket {
		if existing == o {
			index = i
			continue
		}
		kept = append(kept, existing)
	}
	r.buckets[key] = kept
	return index, true
}

// Insert puts o at position index of the bucket for key, shifting later
// observers back. The index is clamped to the bucket bounds. Like Add, it
// reports whether o was inserted and is a no-op when o is already present.
func (r *Registry[K, O]) Insert(key K, index int, o O) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.buckets[key]
	for _, existing := range bucket {
		if existing == o {
			return false
		}
	}
	index = max(0, min(index, len(bucket)))

	grown := make([]O, 0, len(bucket)+1)
	grown = append(grown, bucket[:index]...)
	grown = append(grown, o)
	grown = append(grown, bucket[index:]...)
	r.buckets[key] = grown
	return true
}

// Snapshot returns a copy of the bucket for key in registration order.
func (r *Registry[K, O]) Snapshot(key K) ([]O, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, ok := r.buckets[key]
	if !ok {
		return nil, false
	}
	out := make([]O, len(bucket))
	copy(out, bucket)
	return out, true
}

// Each calls fn for every observer registered under key, in registration
// order. fn runs on a snapshot, outside the lock, so it may register or
// unregister observers itself. It reports whether the bucket existed.
func (r *Registry[K, O]) Each(key K, fn func(O)) bool {
	observers, ok := r.Snapshot(key)
	for _, o := range observers {
		fn(o)
	}
	return ok
}

// Contains reports whether o is registered under key.
func (r *Registry[K, O]) Contains(key K, o O) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, existing := range r.buckets[key] {
		if existing == o {
			return true
		}
	}
	return false
}

// Len returns the number of observers registered under key.
func (r *Registry[K, O]) Len(key K) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buckets[key])
}

// Keys returns the keys that currently have a bucket, in no particular order.
func (r *Registry[K, O]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, 0, len(r.buckets))
	for k := range r.buckets {
		keys = append(keys, k)
	}
	return keys
}

// Delete drops the whole bucket for key.
func (r *Registry[K, O]) Delete(key K) {
	r.mu.Lock()
	delete(r.buckets, key)
	r.mu.Unlock()
}

// Reset drops every bucket.
func (r *Registry[K, O]) Reset() {
	r.mu.Lock()
	r.buckets = make(map[K][]O)
	r.mu.Unlock()
}
