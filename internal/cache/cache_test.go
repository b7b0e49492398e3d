package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a controllable time source for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// TestCachePutGet verifies basic storage and retrieval.
func TestCachePutGet(t *testing.T) {
	t.Parallel()

	c := New()
	c.Put("https://example.org/treatment", "<html>program details</html>")

	entry, ok := c.Get("https://example.org/treatment")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if entry.Content != "<html>program details</html>" {
		t.Errorf("unexpected content: %q", entry.Content)
	}
	if entry.URL != "https://example.org/treatment" {
		t.Errorf("unexpected URL: %q", entry.URL)
	}
	if entry.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be set")
	}

	if _, ok := c.Get("https://example.org/missing"); ok {
		t.Error("expected miss for absent key")
	}
}

// TestCacheCapacityEviction verifies the entry count never exceeds capacity
// and the evicted entry is always the oldest surviving insertion.
func TestCacheCapacityEviction(t *testing.T) {
	t.Parallel()

	const capacity = 3
	c := New(WithCapacity(capacity))

	for i := 0; i < capacity; i++ {
		c.Put(fmt.Sprintf("https://example.org/page%d", i), "content")
	}
	if c.Len() != capacity {
		t.Fatalf("expected %d entries, got %d", capacity, c.Len())
	}

	// One over capacity evicts page0, the oldest insertion.
	c.Put("https://example.org/page3", "content")

	if c.Len() != capacity {
		t.Errorf("expected count to stay at %d, got %d", capacity, c.Len())
	}
	if _, ok := c.Get("https://example.org/page0"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok := c.Get("https://example.org/page1"); !ok {
		t.Error("expected second-oldest entry to survive")
	}
	if _, ok := c.Get("https://example.org/page3"); !ok {
		t.Error("expected newest entry to be present")
	}

	// The next eviction removes page1, the oldest survivor.
	c.Put("https://example.org/page4", "content")
	if _, ok := c.Get("https://example.org/page1"); ok {
		t.Error("expected page1 to be the next eviction victim")
	}
}

// TestCacheGetDoesNotAffectOrder verifies eviction is FIFO, not LRU: a read
// does not protect an entry from eviction.
func TestCacheGetDoesNotAffectOrder(t *testing.T) {
	t.Parallel()

	c := New(WithCapacity(2))
	c.Put("https://example.org/first", "a")
	c.Put("https://example.org/second", "b")

	// Touch the oldest entry; under LRU this would protect it.
	if _, ok := c.Get("https://example.org/first"); !ok {
		t.Fatal("expected hit")
	}

	c.Put("https://example.org/third", "c")

	if _, ok := c.Get("https://example.org/first"); ok {
		t.Error("expected first insertion to be evicted despite the recent read")
	}
	if _, ok := c.Get("https://example.org/second"); !ok {
		t.Error("expected second insertion to survive")
	}
}

// TestCacheRePutKeepsSlot verifies updating an existing key refreshes the
// entry without granting it a newer eviction slot.
func TestCacheRePutKeepsSlot(t *testing.T) {
	t.Parallel()

	c := New(WithCapacity(2))
	c.Put("https://example.org/first", "old")
	c.Put("https://example.org/second", "b")

	c.Put("https://example.org/first", "new")

	entry, ok := c.Get("https://example.org/first")
	if !ok {
		t.Fatal("expected hit after re-put")
	}
	if entry.Content != "new" {
		t.Errorf("expected refreshed content, got %q", entry.Content)
	}
	if c.Len() != 2 {
		t.Errorf("expected re-put to not grow the cache, got %d entries", c.Len())
	}

	// first is still the oldest insertion, so it is evicted next.
	c.Put("https://example.org/third", "c")
	if _, ok := c.Get("https://example.org/first"); ok {
		t.Error("expected re-put entry to keep its original eviction slot")
	}
}

// TestCacheTTLExpiry verifies expired entries read as absent.
func TestCacheTTLExpiry(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := New(WithTTL(30*time.Minute), WithClock(clock.Now))

	c.Put("https://example.org/treatment", "content")

	// At exactly the TTL the entry is still valid.
	clock.Advance(30 * time.Minute)
	if _, ok := c.Get("https://example.org/treatment"); !ok {
		t.Error("expected entry at exactly the TTL boundary to survive")
	}

	// Past the TTL the entry reads as absent and is dropped.
	clock.Advance(time.Second)
	if _, ok := c.Get("https://example.org/treatment"); ok {
		t.Error("expected expired entry to read as absent")
	}
	if c.Len() != 0 {
		t.Errorf("expected lazy removal of expired entry, got %d entries", c.Len())
	}
}

// TestCacheSweep verifies the sweep removes exactly the expired entries.
func TestCacheSweep(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	c := New(WithTTL(30*time.Minute), WithClock(clock.Now))

	c.Put("https://example.org/old", "a")
	clock.Advance(20 * time.Minute)
	c.Put("https://example.org/newer", "b")
	clock.Advance(15 * time.Minute)

	// old is now 35 minutes, newer is 15 minutes.
	removed := c.Sweep()

	if removed != 1 {
		t.Errorf("expected 1 entry removed, got %d", removed)
	}
	if _, ok := c.Get("https://example.org/old"); ok {
		t.Error("expected expired entry to be swept")
	}
	if _, ok := c.Get("https://example.org/newer"); !ok {
		t.Error("expected fresh entry to survive the sweep")
	}
}

// TestCacheClear verifies the reset control command drops everything.
func TestCacheClear(t *testing.T) {
	t.Parallel()

	c := New()
	c.Put("https://example.org/a", "1")
	c.Put("https://example.org/b", "2")

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
	if _, ok := c.Get("https://example.org/a"); ok {
		t.Error("expected miss after clear")
	}

	// The cache remains usable after a clear.
	c.Put("https://example.org/c", "3")
	if _, ok := c.Get("https://example.org/c"); !ok {
		t.Error("expected cache to accept entries after clear")
	}
}

// TestCacheStartSweeper verifies the janitor removes expired entries without
// explicit Sweep calls.
func TestCacheStartSweeper(t *testing.T) {
	t.Parallel()

	c := New(WithTTL(time.Millisecond), WithSweepInterval(5*time.Millisecond))
	c.Put("https://example.org/a", "1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.StartSweeper(ctx)

	deadline := time.Now().Add(time.Second)
	for c.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}

	if c.Len() != 0 {
		t.Error("expected sweeper to remove the expired entry")
	}
}

// TestCacheConcurrentAccess exercises the mutex under parallel readers and
// writers. Failures here surface as race detector reports.
func TestCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New(WithCapacity(10))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				url := fmt.Sprintf("https://example.org/page%d", (n+j)%20)
				c.Put(url, "content")
				c.Get(url)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 10 {
		t.Errorf("capacity exceeded under concurrency: %d entries", c.Len())
	}
}
