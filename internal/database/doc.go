// Package database provides SQLite-based storage for the crawl journal.
//
// The journal records crawl session metadata and per-URL visit outcomes:
//   - When each crawl ran, with what seeds, and how it went
//   - Which URLs were fetched, served from cache, or failed
//
// Page content is never persisted. The journal stores metadata only, so
// a crawl history can be reviewed and repeat visits avoided without
// keeping copies of provider pages on disk.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of
// other databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. Sufficient performance for our use case
//  4. WAL mode provides good concurrent read performance
package database
