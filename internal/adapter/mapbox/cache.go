package mapbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/couchcryptid/pna-map-generator/internal/observability"
	"github.com/paulmach/orb/geojson"
)

// CachedProvider wraps an IsochroneProvider with an in-memory LRU cache.
// Cached collections are shared between callers and must not be modified.
type CachedProvider struct {
	inner   domain.IsochroneProvider
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner domain.IsochroneProvider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedProvider) Isochrone(ctx context.Context, req domain.IsochroneRequest) (*geojson.FeatureCollection, error) {
	key := cacheKey(req)
	if fc, ok := c.cache.get(key); ok {
		c.metrics.IsochroneCache.WithLabelValues("hit").Inc()
		return fc, nil
	}
	c.metrics.IsochroneCache.WithLabelValues("miss").Inc()

	fc, err := c.inner.Isochrone(ctx, req)
	if err != nil {
		return fc, err
	}
	// Only cache non-empty results so an unreachable point is asked again.
	if fc != nil && len(fc.Features) > 0 {
		c.cache.put(key, fc)
	}
	return fc, nil
}

func cacheKey(req domain.IsochroneRequest) string {
	return fmt.Sprintf("%s|%.6f,%.6f|%d", req.Mode, req.Lon, req.Lat, req.Minutes)
}

// lruCache is a simple thread-safe LRU cache of isochrone collections.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value *geojson.FeatureCollection
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) get(key string) (*geojson.FeatureCollection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value *geojson.FeatureCollection) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.unlink(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.unlink(c.tail)
}
