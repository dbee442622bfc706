package models

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounters_IncAndGet(t *testing.T) {
	c := NewCounters()
	assert.Equal(t, 0, c.Get("message"))

	c.Inc("message", 1)
	c.Inc("message", 2)
	assert.Equal(t, 3, c.Get("message"))
	assert.Equal(t, 1, c.Len())
}

func TestCounters_Add(t *testing.T) {
	c := NewCounters()
	c.Add(Deltas{"a": 1, "b": 2})
	c.Add(Deltas{"b": 3})

	assert.Equal(t, map[string]int{"a": 1, "b": 5}, c.GetData())
	assert.Equal(t, []string{"a", "b"}, c.Keys())
}

func TestCounters_GetDataIsCopy(t *testing.T) {
	c := NewCounters()
	c.Inc("a", 1)

	data := c.GetData()
	data["a"] = 100
	assert.Equal(t, 1, c.Get("a"))
}

func TestCounters_PutData(t *testing.T) {
	c := NewCounters()
	c.Inc("old", 1)
	c.PutData(map[string]int{"new": 4})

	assert.Equal(t, 0, c.Get("old"))
	assert.Equal(t, 4, c.Get("new"))

	c.PutData(nil)
	assert.Equal(t, 0, c.Len())
	c.Inc("after", 1)
	assert.Equal(t, 1, c.Get("after"))
}

func TestCounters_ConcurrentAdd(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Add(Deltas{"n": 1})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5000, c.Get("n"))
}
