package config

import "github.com/jimmyjon121/Doc-Creator-sub009/internal/rank"

// SiteRules holds per-host crawl rules. Hosts are matched by the seed
// URL's hostname; rules customize fetch headers and link filtering for
// providers that need them.
type SiteRules struct {
	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// IgnorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/blog/*", "*.pdf").
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns are URL path patterns to follow during crawling.
	// If specified, only seeds matching these patterns are crawled.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`

	// SecondLevelLimit overrides the global second-level candidate cap
	// for this host. Zero means use the global limit.
	SecondLevelLimit int `yaml:"secondLevelLimit,omitempty"`
}

// File represents the structure of the .doccrawl configuration file.
type File struct {
	// Defaults contains rules applied to every host unless overridden
	// in the host-specific entry.
	Defaults SiteRules `yaml:"defaults,omitempty"`

	// Sites maps hostnames to their rules. Keys are bare hostnames
	// (e.g., "example.org"), no scheme.
	Sites map[string]SiteRules `yaml:"sites,omitempty"`

	// Scoring overrides the built-in link scoring weight tiers.
	// Empty tiers and zero weights fall back to the defaults.
	Scoring rank.Weights `yaml:"scoring,omitempty"`
}

// GetSiteRules returns the rules for a specific host, merging the
// host-specific entry over the defaults.
func (cf *File) GetSiteRules(host string) SiteRules {
	result := cf.Defaults

	if rules, ok := cf.Sites[host]; ok {
		if len(rules.Headers) > 0 {
			// Copy so host entries never mutate the shared defaults map
			merged := make(map[string]string, len(result.Headers)+len(rules.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range rules.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
		if len(rules.IgnorePatterns) > 0 {
			result.IgnorePatterns = rules.IgnorePatterns
		}
		if len(rules.FollowPatterns) > 0 {
			result.FollowPatterns = rules.FollowPatterns
		}
		if rules.SecondLevelLimit > 0 {
			result.SecondLevelLimit = rules.SecondLevelLimit
		}
	}

	return result
}

// ScoringWeights returns the scoring table with file overrides applied
// over the built-in defaults. Tier lists replace wholesale when set;
// weights override only when non-zero.
func (cf *File) ScoringWeights() rank.Weights {
	w := rank.DefaultWeights()

	if len(cf.Scoring.High) > 0 {
		w.High = cf.Scoring.High
	}
	if len(cf.Scoring.Medium) > 0 {
		w.Medium = cf.Scoring.Medium
	}
	if len(cf.Scoring.Negative) > 0 {
		w.Negative = cf.Scoring.Negative
	}
	if cf.Scoring.HighWeight != 0 {
		w.HighWeight = cf.Scoring.HighWeight
	}
	if cf.Scoring.MediumWeight != 0 {
		w.MediumWeight = cf.Scoring.MediumWeight
	}
	if cf.Scoring.NegativeWeight != 0 {
		w.NegativeWeight = cf.Scoring.NegativeWeight
	}

	return w
}
