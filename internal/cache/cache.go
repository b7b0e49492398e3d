package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Default cache tuning. The exported equivalents live in the config package;
// these keep the cache usable as a standalone library component.
const (
	// defaultCapacity bounds memory: 100 pages at the 5MB content cap is the
	// worst case the host application accepts.
	defaultCapacity = 100

	// defaultTTL keeps content fresh enough for document preparation while
	// sparing provider sites repeat traffic within one working session.
	defaultTTL = 30 * time.Minute

	// defaultSweepInterval is how often the janitor removes expired entries.
	// Sweeping runs independent of request traffic so an idle cache still
	// sheds stale content.
	defaultSweepInterval = 5 * time.Minute
)

// Entry is one cached page: the URL it was fetched from, its content, and
// when the fetch happened. Entries are returned by value; mutating a
// returned Entry does not affect the cache.
type Entry struct {
	// URL is the cache key as stored.
	URL string

	// Content is the fetched page content.
	Content string

	// FetchedAt is when the content entered the cache.
	FetchedAt time.Time
}

// Cache is a bounded FIFO cache with TTL expiry. All methods are safe for
// concurrent use. None of the operations fail: a miss is a normal outcome,
// and eviction is routine maintenance.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*Entry

	// order holds cache keys in insertion order; order[0] is the oldest
	// surviving insertion and the FIFO eviction victim.
	order []string

	capacity      int
	ttl           time.Duration
	sweepInterval time.Duration

	// now is the clock; replaceable in tests.
	now func() time.Time

	logger *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithCapacity sets the maximum number of entries. Values below 1 are ignored.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithTTL sets the maximum entry age. Values below 1 are ignored.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithSweepInterval sets the janitor period. Values below 1 are ignored.
func WithSweepInterval(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.sweepInterval = d
		}
	}
}

// WithClock replaces the time source. Tests use this to control expiry
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used by the sweeper.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Cache with the given options applied over the defaults.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:       make(map[string]*Entry),
		capacity:      defaultCapacity,
		ttl:           defaultTTL,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Get returns the entry for the URL if present and unexpired. Expired
// entries are dropped lazily and reported as absent. Lookups never affect
// insertion order.
func (c *Cache) Get(url string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[url]
	if !ok {
		return Entry{}, false
	}

	if c.now().Sub(e.FetchedAt) > c.ttl {
		c.remove(url)
		return Entry{}, false
	}

	return *e, true
}

// Put stores content under the URL. Inserting a new key at capacity first
// evicts the oldest-inserted entry. Re-putting an existing key refreshes its
// content and timestamp but keeps its original insertion slot, so it does
// not gain eviction protection.
func (c *Cache) Put(url, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[url]; ok {
		e.Content = content
		e.FetchedAt = c.now()
		return
	}

	if len(c.entries) >= c.capacity {
		c.remove(c.order[0])
	}

	c.entries[url] = &Entry{URL: url, Content: content, FetchedAt: c.now()}
	c.order = append(c.order, url)
}

// Sweep removes every entry older than the TTL and returns how many were
// removed. Entries at exactly the TTL boundary survive.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0

	// Walk a copy: remove mutates c.order.
	keys := make([]string, len(c.order))
	copy(keys, c.order)

	for _, url := range keys {
		if e, ok := c.entries[url]; ok && now.Sub(e.FetchedAt) > c.ttl {
			c.remove(url)
			removed++
		}
	}

	return removed
}

// Clear drops all entries. Used by the host's cache-reset control command.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)
	c.order = c.order[:0]
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// StartSweeper launches the janitor goroutine, sweeping every sweep interval
// until the context is cancelled.
func (c *Cache) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(c.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := c.Sweep(); removed > 0 {
					c.logger.Debug("cache sweep removed expired entries",
						"removed", removed,
						"remaining", c.Len(),
					)
				}
			}
		}
	}()
}

// remove deletes a key from both the map and the order index.
// Callers must hold c.mu.
func (c *Cache) remove(url string) {
	delete(c.entries, url)
	for i, key := range c.order {
		if key == url {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
