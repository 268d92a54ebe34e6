package cache

import (
	"sync"
	"time"
)

type expiringItem[V any] struct {
	value    V
	expireAt time.Time
}

// ExpiringMap is a concurrency-safe keyed map whose entries expire after a TTL.
// Expired entries are invisible to Get immediately and are purged in the background.
type ExpiringMap[K comparable, V any] struct {
	mu       sync.RWMutex
	items    map[K]expiringItem[V]
	now      func() time.Time
	stopOnce sync.Once
	stop     chan struct{}
}

// NewExpiringMap creates a map that purges expired entries every cleanupInterval.
// A non-positive interval disables background cleanup.
func NewExpiringMap[K comparable, V any](cleanupInterval time.Duration) *ExpiringMap[K, V] {
	m := &ExpiringMap[K, V]{
		items: make(map[K]expiringItem[V]),
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go m.cleanupExpired(cleanupInterval)
	}

	return m
}

// Set stores value under key until ttl elapses
func (m *ExpiringMap[K, V]) Set(key K, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = expiringItem[V]{value: value, expireAt: m.now().Add(ttl)}
}

// Get returns the live value for key
func (m *ExpiringMap[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	if !ok || m.now().After(item.expireAt) {
		var zero V
		return zero, false
	}
	return item.value, true
}

// Len counts stored entries, including expired ones not yet purged
func (m *ExpiringMap[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.items)
}

// Close stops the cleanup goroutine
func (m *ExpiringMap[K, V]) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// purgeExpired removes expired entries and returns how many were dropped
func (m *ExpiringMap[K, V]) purgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, item := range m.items {
		if now.After(item.expireAt) {
			delete(m.items, key)
			removed++
		}
	}
	return removed
}

func (m *ExpiringMap[K, V]) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.purgeExpired()
		}
	}
}
