package model

import "time"

// CrawlError records one URL whose fetch attempts were all exhausted during
// the first pass. Second-level failures are never recorded here; they are
// speculative fetches and are dropped silently.
type CrawlError struct {
	// URL is the candidate URL that failed.
	URL string `json:"url"`

	// Message is the last failure reason after all retries.
	Message string `json:"message"`

	// Attempts is the number of fetch attempts made before giving up.
	Attempts int `json:"attempts,omitempty"`
}

// CrawlStats holds monotonic counters accumulated across both crawl passes.
// Counters are never decremented; a cache hit counts toward Cached, never
// Fetched.
type CrawlStats struct {
	// Requested is the total number of URLs handed to the scheduler,
	// including URLs later served from the cache.
	Requested int `json:"requested"`

	// Fetched is the number of pages successfully retrieved from the network.
	Fetched int `json:"fetched"`

	// Cached is the number of URLs served from the fetch cache without
	// touching the network.
	Cached int `json:"cached"`

	// Failed is the number of URLs whose fetch attempts were all exhausted,
	// in either pass.
	Failed int `json:"failed"`
}

// Add accumulates another set of counters into s.
func (s *CrawlStats) Add(other CrawlStats) {
	s.Requested += other.Requested
	s.Fetched += other.Fetched
	s.Cached += other.Cached
	s.Failed += other.Failed
}

// CrawlResult is the sole return value of a crawl invocation. It is complete
// even when every fetch failed: Pages may be empty while Errors and Stats
// describe what happened. The result is immutable once returned.
type CrawlResult struct {
	// Pages holds every page retrieved during the crawl, first pass and
	// second level combined. A URL appears at most once.
	Pages []Page `json:"pages"`

	// Errors lists first-pass URLs that failed all fetch attempts.
	Errors []CrawlError `json:"errors"`

	// Stats holds the accumulated counters for the whole invocation.
	Stats CrawlStats `json:"stats"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the total wall-clock time of the crawl.
	Duration time.Duration `json:"duration"`

	// Seeds is the number of candidate links supplied by the caller.
	Seeds int `json:"seeds"`
}

// PageCount returns the number of retrieved pages.
func (r *CrawlResult) PageCount() int {
	return len(r.Pages)
}

// HasErrors reports whether any first-pass URL exhausted its retries.
func (r *CrawlResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// SuccessRate returns the fraction of requested URLs that produced a page,
// in the range 0.0 to 1.0. A crawl with no requested URLs reports 1.0.
func (r *CrawlResult) SuccessRate() float64 {
	if r.Stats.Requested == 0 {
		return 1.0
	}
	return float64(r.Stats.Fetched+r.Stats.Cached) / float64(r.Stats.Requested)
}

// SecondLevelCount returns the number of pages contributed by the
// second-level pass.
func (r *CrawlResult) SecondLevelCount() int {
	n := 0
	for i := range r.Pages {
		if r.Pages[i].SecondLevel {
			n++
		}
	}
	return n
}
