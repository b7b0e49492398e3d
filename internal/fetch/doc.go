// Package fetch retrieves single pages over HTTP with timeout, retry, and
// backoff.
//
// The fetcher treats a response as a failure unless it looks like real page
// content: success status, a minimum body length, and at least one markup
// marker. Provider sites routinely serve 200-status error stubs and empty
// shells; the sanity check keeps those out of the cache and the result set.
//
// Retry policy is an explicit value (BackoffPolicy) rather than timers
// wired into the fetch loop, so delay growth is unit-testable and tunable
// without touching transport code. Every pre-retry sleep honors context
// cancellation.
//
// Design decision: Each attempt gets its own context deadline instead of a
// client-wide timeout because:
//  1. A retry should get a fresh time budget, not inherit a nearly-spent one
//  2. The caller's context still bounds the whole call, so cancellation
//     composes naturally
//  3. It keeps the injected http.Client reusable across differently-tuned
//     fetchers
package fetch
