package crawler

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// hrefPattern matches link attributes in raw markup.
//
// Design decision: We extract links by textual pattern matching rather than
// DOM parsing because:
//  1. Provider sites serve spectacularly malformed markup; a lenient regex
//     recovers links a strict parser would drop with the rest of the tree
//  2. The second-level pass only needs hrefs, not document structure
//  3. Responses are untrusted byte streams that we never want to interpret
//     beyond locating link attributes
var hrefPattern = regexp.MustCompile(`(?i)href\s*=\s*["']([^"'<>]+)["']`)

// Schemes and pseudo-links that never lead to fetchable page content.
var skipPrefixes = []string{
	"javascript:", "mailto:", "tel:", "data:", "#",
}

// extractLinks returns the raw href values found in the content, in
// document order, without resolution or deduplication.
func extractLinks(content string) []string {
	matches := hrefPattern.FindAllStringSubmatch(content, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, m[1])
	}
	return links
}

// resolveLink resolves an extracted href against the source page URL and
// reports whether the result is a crawlable same-host link. Pseudo-links,
// malformed references, and links resolving to a different host are
// rejected; a malformed URL is a skip, not an error.
func resolveLink(base *url.URL, href string) (string, bool) {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" {
		return "", false
	}

	lower := strings.ToLower(trimmed)
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	ref, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(resolved.Host, base.Host) {
		return "", false
	}

	resolved.Fragment = ""
	return resolved.String(), true
}

// normalizeURL normalizes a URL for cache keys and per-crawl deduplication.
//
// Design decision: We normalize because the same page routinely appears
// under trivially different spellings:
//  1. Fragments (#anchor) don't change content
//  2. Scheme and host are case-insensitive
//  3. An empty path and "/" address the same resource
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String()
}

// containsAny reports whether the lowercased URL contains any of the
// given substrings.
func containsAny(rawURL string, substrings []string) bool {
	lower := strings.ToLower(rawURL)
	for _, s := range substrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// visitSet tracks URLs already handled during one crawl invocation so no
// URL is fetched twice, regardless of which pass encounters it. Keys are
// normalized before storage.
type visitSet struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newVisitSet() *visitSet {
	return &visitSet{seen: make(map[string]bool)}
}

// Visit marks the URL as handled and reports whether this call was the
// first to do so.
func (v *visitSet) Visit(rawURL string) bool {
	key := normalizeURL(rawURL)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.seen[key] {
		return false
	}
	v.seen[key] = true
	return true
}

// Seen reports whether the URL was already handled this crawl.
func (v *visitSet) Seen(rawURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.seen[normalizeURL(rawURL)]
}

// seedFilter drops seed URLs matching host-configured ignore patterns and,
// when follow patterns are set, anything matching none of them. Patterns
// use glob syntax against the URL path.
type seedFilter struct {
	ignorePatterns []string
	followPatterns []string
}

// Allow reports whether the URL passes the filter. Unparsable URLs pass;
// scoring and fetching handle them downstream.
func (f *seedFilter) Allow(rawURL string) bool {
	if len(f.ignorePatterns) == 0 && len(f.followPatterns) == 0 {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range f.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(f.followPatterns) > 0 {
		for _, pattern := range f.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/blog/*" matches "/blog/post", "/blog/archive"
//   - "*.pdf" matches "/docs/brochure.pdf"
func matchPattern(pattern, path string) bool {
	// Prefix patterns like "/blog/*" should match the whole subtree.
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// Extension patterns like "*.pdf" match anywhere in the path.
	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Filename-only patterns match against the last path segment.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}
