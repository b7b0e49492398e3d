// Package model defines the core data structures used throughout doccrawl.
//
// This package contains the following main types:
//   - CandidateLink: A discovered URL together with its relevance score
//   - Page: A successfully retrieved page with its content and provenance
//   - CrawlResult: The aggregated outcome of one crawl invocation
//   - CrawlStats: Monotonic counters accumulated across both crawl passes
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (rank, cache, crawler, report, database)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// journal storage.
package model
