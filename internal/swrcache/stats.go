package swrcache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats tracks cache performance counters. Always enabled, regardless of
// whether Prometheus metrics are additionally wired via WithMetrics.
type Stats struct {
	hits      int64
	misses    int64
	refreshes int64
	errors    int64

	mu        sync.RWMutex
	startTime time.Time
	size      int64
}

// NewStats creates a new stats tracker.
func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

// Hit records a fresh-entry read.
func (s *Stats) Hit() { atomic.AddInt64(&s.hits, 1) }

// Miss records a first-ever miss (synchronous producer invocation).
func (s *Stats) Miss() { atomic.AddInt64(&s.misses, 1) }

// Refresh records a background (or synchronous miss) producer invocation.
func (s *Stats) Refresh() { atomic.AddInt64(&s.refreshes, 1) }

// Error records a producer failure.
func (s *Stats) Error() { atomic.AddInt64(&s.errors, 1) }

func (s *Stats) updateSize(size int) {
	s.mu.Lock()
	s.size = int64(size)
	s.mu.Unlock()
}

// Hits returns the total number of fresh reads.
func (s *Stats) Hits() int64 { return atomic.LoadInt64(&s.hits) }

// Misses returns the total number of first-ever misses.
func (s *Stats) Misses() int64 { return atomic.LoadInt64(&s.misses) }

// Refreshes returns the total number of producer invocations (first-miss + background).
func (s *Stats) Refreshes() int64 { return atomic.LoadInt64(&s.refreshes) }

// Errors returns the total number of producer failures.
func (s *Stats) Errors() int64 { return atomic.LoadInt64(&s.errors) }

// Size returns the current number of keys tracked by the cache.
func (s *Stats) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Uptime returns how long the cache has been running.
func (s *Stats) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Summary is a point-in-time snapshot of Stats.
type Summary struct {
	Hits       int64         `json:"hits"`
	Misses     int64         `json:"misses"`
	Refreshes  int64         `json:"refreshes"`
	Errors     int64         `json:"errors"`
	Size       int64         `json:"size"`
	Uptime     time.Duration `json:"uptime"`
	HitRatio   float64       `json:"hit_ratio"`
}

// Summary returns a snapshot of all statistics.
func (s *Stats) Summary() Summary {
	hits := s.Hits()
	misses := s.Misses()
	total := hits + misses
	var hitRatio float64
	if total > 0 {
		hitRatio = float64(hits) / float64(total)
	}
	return Summary{
		Hits:      hits,
		Misses:    misses,
		Refreshes: s.Refreshes(),
		Errors:    s.Errors(),
		Size:      s.Size(),
		Uptime:    s.Uptime(),
		HitRatio:  hitRatio,
	}
}
