// Package progress streams crawl status to the host without ever blocking
// the crawl.
//
// Reporters are fire-and-forget: Report never blocks, never panics, and
// never returns an error. When the host is slow or gone, events are dropped
// and the drop is logged — losing a progress update is always preferable to
// stalling a fetch. Consumers must treat events as latest-wins snapshots,
// not a transactional log.
//
// Design decision: The channel reporter uses a bounded buffer with
// drop-on-full semantics instead of an unbounded queue because:
//  1. An absent consumer must not grow memory for the lifetime of a crawl
//  2. Progress is periodic; a newer event supersedes a dropped older one
//  3. Bounded-drop behavior is trivial to verify in tests
package progress
