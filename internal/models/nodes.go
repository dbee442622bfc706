package models

import (
	"sort"
	"sync"
)

// nodeMap is a lazily populated child collection of the stat tree.
type nodeMap[K comparable, V any] struct {
	mu    sync.RWMutex
	data  map[K]*V
	newFn func() *V
}

func newNodeMap[K comparable, V any](newFn func() *V) *nodeMap[K, V] {
	return &nodeMap[K, V]{
		data:  make(map[K]*V),
		newFn: newFn,
	}
}

// getOrCreate materializes the node on first touch.
func (m *nodeMap[K, V]) getOrCreate(key K) *V {
	// Fast path: node already exists (read lock only)
	m.mu.RLock()
	node, ok := m.data[key]
	m.mu.RUnlock()
	if ok {
		return node
	}

	// Slow path: write lock with double-check
	m.mu.Lock()
	defer m.mu.Unlock()
	node, ok = m.data[key]
	if !ok {
		node = m.newFn()
		m.data[key] = node
	}
	return node
}

func (m *nodeMap[K, V]) get(key K) (*V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	node, ok := m.data[key]
	return node, ok
}

func (m *nodeMap[K, V]) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *nodeMap[K, V]) snapshot() map[K]*V {
	m.mu.RLock()
	defer m.mu.RUnlock()
	copyMap := make(map[K]*V, len(m.data))
	for k, v := range m.data {
		copyMap[k] = v
	}
	return copyMap
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
