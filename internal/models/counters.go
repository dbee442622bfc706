package models

import (
	"sort"
	"sync"
)

// Deltas is a set of counter increments emitted for one event.
type Deltas map[string]int

// Counters is a counter bag: metric key to count, keys created on first write.
type Counters struct {
	mu   sync.RWMutex
	data map[string]int
}

func NewCounters() *Counters {
	return &Counters{data: make(map[string]int)}
}

func (c *Counters) Get(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data[key]
}

func (c *Counters) Inc(key string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] += delta
}

func (c *Counters) Add(deltas Deltas) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range deltas {
		c.data[k] += v
	}
}

func (c *Counters) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func (c *Counters) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetData returns a copy of the bag.
func (c *Counters) GetData() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	copyMap := make(map[string]int, len(c.data))
	for k, v := range c.data {
		copyMap[k] = v
	}
	return copyMap
}

func (c *Counters) PutData(data map[string]int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]int, len(data))
	for k, v := range data {
		c.data[k] = v
	}
}
