// Package rank scores and orders candidate links before fetching.
//
// Scoring is a pure string heuristic: fixed weights keyed by substring
// presence in the lowercased URL, plus a depth penalty for deeply nested
// paths. There is deliberately no HTML or network awareness here — the
// scorer must be deterministic and unit-testable in isolation, and the
// weight table must be tunable (see config.ScoringRules) without touching
// fetch logic.
//
// Design decision: We match substrings rather than parsing URL structure
// because provider sites disagree wildly about where the interesting words
// appear (path segments, query strings, file names). Substring presence is
// robust to all of them and degrades gracefully on unparsable URLs.
package rank
