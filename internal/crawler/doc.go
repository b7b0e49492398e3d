// Package crawler orchestrates the fetch/crawl pass over discovered links.
//
// The orchestrator takes the seed links a host discovered on a page, ranks
// them, fetches the useful subset in bounded-concurrency batches with
// write-through caching, derives a small second-level link set from
// high-value first-pass pages, and returns one aggregated result. Progress
// streams to the host throughout; failures stay local to the URL they
// concern and never abort the crawl.
//
// Batches are a synchronization barrier: batch N+1 never starts before
// batch N fully settles, which bounds peak in-flight requests to the batch
// size and keeps load on provider sites predictable. Cancellation is
// honored at batch boundaries and before retry sleeps; an in-flight fetch
// is bounded by its own timeout.
package crawler
