// Package cache provides the bounded fetch cache that backs crawling.
//
// The cache is a key-value store keyed by normalized URL with two eviction
// mechanisms: FIFO over capacity (inserting beyond the capacity evicts the
// single oldest-inserted entry) and TTL expiry (a periodic sweep removes
// entries older than the TTL, and reads treat expired entries as absent).
// Reads never affect eviction order — this is FIFO, not LRU.
//
// Design decision: We track insertion order in an explicit slice next to the
// lookup map because:
//  1. Go maps do not preserve insertion order, and FIFO eviction needs it
//  2. At a capacity of 100 entries, linear slice maintenance is cheaper than
//     a linked-list structure and far simpler to reason about
//  3. The order index makes "evict exactly the oldest surviving insertion"
//     trivially testable
//
// The cache is owned by a single orchestrator instance and injected where
// needed; there is no process-wide cache. All operations are serialized by
// an internal mutex, which also covers the sweeper goroutine.
package cache
