package cache

import "sync"

// Map is a concurrency-safe keyed map guarded by a single RWMutex
type Map[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// NewMap creates an empty map
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{items: make(map[K]V)}
}

// Get retrieves a value by key
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	return v, ok
}

// Set stores a value
func (m *Map[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = value
}

// SetIfAbsent stores value only if key is not present and reports whether it did
func (m *Map[K, V]) SetIfAbsent(key K, value V) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; exists {
		return false
	}
	m.items[key] = value
	return true
}

// Update atomically replaces the value for key with fn's result.
// fn receives the current value and whether it exists; returning keep=false leaves the map unchanged.
func (m *Map[K, V]) Update(key K, fn func(current V, exists bool) (next V, keep bool)) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.items[key]
	next, keep := fn(current, exists)
	if !keep {
		return current, false
	}
	m.items[key] = next
	return next, true
}

// DeleteIf removes key when pred holds for its current value
func (m *Map[K, V]) DeleteIf(key K, pred func(V) bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[key]
	if !ok || !pred(v) {
		return false
	}
	delete(m.items, key)
	return true
}

// CollectKeys returns the keys whose values satisfy pred under a read lock
func (m *Map[K, V]) CollectKeys(pred func(V) bool) []K {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]K, 0)
	for k, v := range m.items {
		if pred(v) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Values returns a snapshot of all values in unspecified order
func (m *Map[K, V]) Values() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := make([]V, 0, len(m.items))
	for _, v := range m.items {
		values = append(values, v)
	}
	return values
}

// Len returns the number of entries
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.items)
}
