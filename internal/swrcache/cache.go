// Package swrcache implements a stale-while-revalidate cache with
// single-flight request coalescing, keyed on an arbitrary string (in
// bifrost's case, the fully-formed upstream URL).
package swrcache

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

// Producer computes a fresh value for a key. It must tolerate being called
// with a background context that outlives the request that triggered it:
// background refreshes are never cancelled by the originating request.
type Producer[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value     V
	fetchedAt time.Time
}

// Cache is a generic stale-while-revalidate cache. The zero value is not
// usable; construct one with New.
type Cache[V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]entry[V]

	sf      singleflight.Group
	stats   *Stats
	metrics *cacheMetrics
}

// Option configures a Cache at construction time.
type Option[V any] func(*Cache[V])

// WithMetrics registers Prometheus metrics for this cache under the given
// name, in addition to the always-on Stats tracker.
func WithMetrics[V any](reg prometheus.Registerer, name string) Option[V] {
	return func(c *Cache[V]) {
		c.metrics = newCacheMetrics(reg, name)
	}
}

// New creates a Cache with the given TTL, applied uniformly to all keys.
func New[V any](ttl time.Duration, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		ttl:   ttl,
		items: make(map[string]entry[V]),
		stats: NewStats(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key, computing it via producer when necessary.
//
//   - No entry: blocks until producer resolves; the error, if any, propagates
//     to the caller and nothing is stored.
//   - Fresh entry (age <= ttl): returns immediately, producer is not invoked.
//   - Stale entry: returns the stale value immediately and, unless a refresh
//     for this key is already in flight, spawns one in the background.
//
// Concurrent calls for the same key that would each trigger a producer
// invocation are coalesced via single-flight: the producer runs at most
// once, and all callers waiting on it observe the same result.
//
// ctx only governs how long THIS call is willing to wait; a cancelled ctx
// makes Get return early with ctx.Err(), but the underlying producer
// invocation (shared with any concurrent callers) keeps running and, on
// success, still populates the cache.
func (c *Cache[V]) Get(ctx context.Context, key string, producer Producer[V]) (V, error) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if ok {
		if time.Since(e.fetchedAt) <= c.ttl {
			c.recordHit()
			return e.value, nil
		}

		c.refreshInBackground(key, producer)
		return e.value, nil
	}

	c.recordMiss()
	return c.fetchBlocking(ctx, key, producer)
}

func (c *Cache[V]) fetchBlocking(ctx context.Context, key string, producer Producer[V]) (V, error) {
	ch := c.sf.DoChan(key, func() (any, error) {
		c.recordRefreshStart()
		val, err := producer(context.Background())
		if err != nil {
			c.recordError()
			return nil, err
		}
		c.store(key, val)
		return val, nil
	})

	var zero V
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// refreshInBackground registers the refresh with the single-flight group
// before it returns, so stale reads arriving while it runs join it instead
// of starting another. The producer runs on singleflight's own goroutine;
// the buffered result channel is not read.
func (c *Cache[V]) refreshInBackground(key string, producer Producer[V]) {
	c.sf.DoChan(key, func() (any, error) {
		c.recordRefreshStart()
		val, err := producer(context.Background())
		if err != nil {
			c.recordError()
			return nil, err
		}
		c.store(key, val)
		return val, nil
	})
}

func (c *Cache[V]) store(key string, value V) {
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, fetchedAt: time.Now()}
	size := len(c.items)
	c.mu.Unlock()

	c.stats.updateSize(size)
	if c.metrics != nil {
		c.metrics.updateSize(size)
	}
}

func (c *Cache[V]) recordHit() {
	c.stats.Hit()
	if c.metrics != nil {
		c.metrics.recordHit()
	}
}

func (c *Cache[V]) recordMiss() {
	c.stats.Miss()
	if c.metrics != nil {
		c.metrics.recordMiss()
	}
}

func (c *Cache[V]) recordRefreshStart() {
	c.stats.Refresh()
	if c.metrics != nil {
		c.metrics.recordRefresh()
	}
}

func (c *Cache[V]) recordError() {
	c.stats.Error()
	if c.metrics != nil {
		c.metrics.recordError()
	}
}

// Stats returns the always-on statistics tracker for this cache.
func (c *Cache[V]) Stats() *Stats {
	return c.stats
}

// Size returns the current number of keys tracked (fresh or stale).
func (c *Cache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
