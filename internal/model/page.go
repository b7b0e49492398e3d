package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// MaxContentSize is the maximum size of page content to retain in bytes.
// Larger bodies are truncated to this size before storage in the cache.
// 5MB is sufficient for any real HTML page while preventing memory
// exhaustion from unexpectedly large responses.
const MaxContentSize = 5 * 1024 * 1024 // 5MB

// Page represents one successfully retrieved page. It is the unit stored in
// the fetch cache and returned inside CrawlResult.Pages.
//
// Design decision: We keep the decoded content as a string rather than raw
// bytes because:
//  1. Downstream consumers (extraction, reporting) are all text-oriented
//  2. The fetcher already decodes the body to UTF-8 before constructing a Page
//  3. Binary responses are rejected by the content sanity check, so there is
//     no binary payload to preserve
type Page struct {
	// URL is the normalized absolute URL the content was fetched from.
	URL string `json:"url"`

	// Content is the decoded response body, truncated to MaxContentSize.
	Content string `json:"content,omitempty"`

	// FetchedAt records when the content was retrieved from the network.
	// For a cache hit this is the original fetch time, not the hit time.
	FetchedAt time.Time `json:"fetched_at"`

	// FromCache is true when the page was served from the fetch cache
	// rather than the network during this crawl.
	FromCache bool `json:"from_cache,omitempty"`

	// SecondLevel is true when the page was discovered and fetched by the
	// second-level pass rather than supplied as a seed link.
	SecondLevel bool `json:"second_level,omitempty"`

	// Hash is the SHA-256 hash of the content. Used by the journal for
	// change detection between crawls without persisting the content itself.
	Hash string `json:"hash,omitempty"`
}

// ComputeHash calculates and sets the SHA-256 hash of the page content.
// Call this after setting Content.
func (p *Page) ComputeHash() {
	if p.Content == "" {
		p.Hash = ""
		return
	}

	sum := sha256.Sum256([]byte(p.Content))
	p.Hash = hex.EncodeToString(sum[:])
}

// TruncateContent ensures the content doesn't exceed MaxContentSize.
// Call this after setting Content to enforce the size limit.
func (p *Page) TruncateContent() {
	if len(p.Content) > MaxContentSize {
		p.Content = p.Content[:MaxContentSize]
	}
}

// Age returns how long ago the page was fetched, relative to now.
func (p *Page) Age(now time.Time) time.Duration {
	return now.Sub(p.FetchedAt)
}
