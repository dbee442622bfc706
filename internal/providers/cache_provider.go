package providers

import (
	"bytes"
	"unsafe"

	"github.com/coocood/freecache"

	"ircstat/internal/structures"
)

// CacheProviderInterface is the byte cache shared by the identity resolver
// and the API. Callers namespace their keys with a prefix so that Evict can
// drop one kind of entry without touching the others.
type CacheProviderInterface interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Evict(prefix string) int
}

type CacheProvider struct {
	cache  *freecache.Cache
	ttl    int
	logger Logger
}

// NewCacheProvider returns a freecache-backed cache, or a noop one when the
// cache is disabled. A zero ttl keeps entries until they are evicted by size.
func NewCacheProvider(conf *structures.Config, logger Logger) CacheProviderInterface {
	if !conf.Cache.Enabled || conf.Cache.Size <= 0 {
		logger.Infof(TypeApp, "Cache disabled")
		return &noopCache{}
	}

	ttl := int(conf.Cache.TTL.Seconds())
	logger.Infof(TypeApp, "Cache initialized: %dMB, TTL=%ds", conf.Cache.Size, ttl)

	return &CacheProvider{
		cache:  freecache.NewCache(conf.Cache.Size * 1024 * 1024),
		ttl:    ttl,
		logger: logger,
	}
}

// keyBytes views s as bytes without copying. freecache copies keys on Set and
// only reads them on Get, so the view is never written to.
func keyBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func (c *CacheProvider) Get(key string) ([]byte, bool) {
	val, err := c.cache.Get(keyBytes(key))
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores value. Entries larger than a freecache segment allows are
// skipped; the caller recomputes them next time.
func (c *CacheProvider) Set(key string, value []byte) {
	if err := c.cache.Set(keyBytes(key), value, c.ttl); err != nil {
		c.logger.Debugf(TypeApp, "Cache skipped %s (%d bytes): %s", key, len(value), err)
	}
}

// Evict deletes every entry whose key starts with prefix and returns how many
// were removed. An empty prefix empties the cache.
func (c *CacheProvider) Evict(prefix string) int {
	if prefix == "" {
		n := int(c.cache.EntryCount())
		c.cache.Clear()
		return n
	}

	p := []byte(prefix)
	var stale [][]byte
	it := c.cache.NewIterator()
	for e := it.Next(); e != nil; e = it.Next() {
		if bytes.HasPrefix(e.Key, p) {
			stale = append(stale, e.Key)
		}
	}
	for _, k := range stale {
		c.cache.Del(k)
	}
	return len(stale)
}

type noopCache struct{}

func (n *noopCache) Get(_ string) ([]byte, bool) { return nil, false }
func (n *noopCache) Set(_ string, _ []byte)      {}
func (n *noopCache) Evict(_ string) int          { return 0 }
