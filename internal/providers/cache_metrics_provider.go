package providers

import "ircstat/internal/structures"

// MetricsCacheProvider counts hits and misses of every Get on the inner cache.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *MetricsCacheProvider) Evict(prefix string) int {
	return c.inner.Evict(prefix)
}

// NewInstrumentedCacheProvider is the cache the resolver and the API share.
// A disabled cache is returned unwrapped, it would only report misses.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if _, noop := inner.(*noopCache); noop {
		return inner
	}
	return &MetricsCacheProvider{inner: inner, metrics: metrics}
}
