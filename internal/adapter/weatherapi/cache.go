package weatherapi

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/envwatch-service/internal/domain"
	"github.com/couchcryptid/envwatch-service/internal/observability"
)

// CachedLookup wraps a WeatherLookup with an in-memory LRU cache whose
// entries expire after a TTL.
type CachedLookup struct {
	inner   domain.WeatherLookup
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedLookup creates a cache decorator around a weather lookup.
func NewCachedLookup(inner domain.WeatherLookup, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedLookup {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedLookup{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl, clock),
		metrics: metrics,
	}
}

// CurrentWeather serves a fresh cached entry or calls through. Errors are
// not cached so the next reading retries the API.
func (c *CachedLookup) CurrentWeather(ctx context.Context, location string) (domain.Weather, error) {
	if w, ok := c.cache.get(location); ok {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return w, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	w, err := c.inner.CurrentWeather(ctx, location)
	if err != nil {
		return w, err
	}
	c.cache.put(location, w)
	return w, nil
}

// lruCache is a thread-safe LRU cache of Weather values with per-entry expiry.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key     string
	value   domain.Weather
	expires time.Time
	prev    *entry
	next    *entry
}

func newLRUCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.Weather, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Weather{}, false
	}
	if !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return domain.Weather{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.Weather) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.clock.Now().Add(c.ttl)
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
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

func (c *lruCache) remove(e *entry) {
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
	c.remove(c.tail)
}
