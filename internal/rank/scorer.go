package rank

import (
	"net/url"
	"sort"
	"strings"

	"github.com/jimmyjon121/Doc-Creator-sub009/internal/model"
)

// Depth penalty tuning.
const (
	// depthThreshold is the path depth beyond which the penalty applies.
	// Five segments covers every sensible provider URL layout
	// (/programs/residential/adolescent/anxiety/overview); anything deeper
	// is almost always pagination, archives, or asset paths.
	depthThreshold = 5

	// depthPenaltyFactor is the score subtracted per segment beyond the
	// threshold.
	depthPenaltyFactor = 2
)

// Default tier weights. A URL can match several tiers; contributions are
// additive, and a matching substring contributes once regardless of how
// often it occurs.
const (
	// DefaultHighWeight rewards treatment/program-style paths, the pages
	// the documentation tool exists to collect.
	DefaultHighWeight = 10

	// DefaultMediumWeight rewards general clinical context pages (about,
	// services, named conditions) that support but rarely headline a doc.
	DefaultMediumWeight = 5

	// DefaultNegativeWeight pushes marketing, legal, and binary-document
	// paths to the back of the queue. Negative totals are valid; they sort
	// last rather than excluding the link.
	DefaultNegativeWeight = -8
)

// Weights holds the substring tiers and their weights. The zero value is not
// useful; start from DefaultWeights and override tiers from configuration.
type Weights struct {
	// High is the substring list for strongly relevant paths.
	High []string `yaml:"high,omitempty"`

	// Medium is the substring list for moderately relevant paths.
	Medium []string `yaml:"medium,omitempty"`

	// Negative is the substring list for paths to deprioritize.
	Negative []string `yaml:"negative,omitempty"`

	// HighWeight, MediumWeight, and NegativeWeight are the per-tier score
	// contributions. NegativeWeight should be negative.
	HighWeight     int `yaml:"highWeight,omitempty"`
	MediumWeight   int `yaml:"mediumWeight,omitempty"`
	NegativeWeight int `yaml:"negativeWeight,omitempty"`
}

// DefaultWeights returns the built-in weight table.
func DefaultWeights() Weights {
	return Weights{
		High: []string{
			"treatment", "program", "residential", "clinical", "therapy",
		},
		Medium: []string{
			"about", "service", "approach", "condition", "disorder", "admission",
		},
		Negative: []string{
			"blog", "career", "news", "privacy", "terms", "login",
			".pdf", ".jpg", ".png", ".doc",
		},
		HighWeight:     DefaultHighWeight,
		MediumWeight:   DefaultMediumWeight,
		NegativeWeight: DefaultNegativeWeight,
	}
}

// rule is one compiled substring-to-weight binding.
type rule struct {
	substring string
	weight    int
}

// Scorer assigns relevance scores to candidate URLs. It is safe for
// concurrent use; scoring performs no I/O and mutates nothing.
type Scorer struct {
	rules []rule
}

// NewScorer compiles a Scorer from the given weight table. Substrings are
// lowercased at compile time so Score only lowercases the URL.
func NewScorer(w Weights) *Scorer {
	rules := make([]rule, 0, len(w.High)+len(w.Medium)+len(w.Negative))
	for _, s := range w.High {
		rules = append(rules, rule{substring: strings.ToLower(s), weight: w.HighWeight})
	}
	for _, s := range w.Medium {
		rules = append(rules, rule{substring: strings.ToLower(s), weight: w.MediumWeight})
	}
	for _, s := range w.Negative {
		rules = append(rules, rule{substring: strings.ToLower(s), weight: w.NegativeWeight})
	}
	return &Scorer{rules: rules}
}

// Score computes the relevance score for a single URL. It is deterministic
// and never fails: unparsable URLs still receive substring scoring, they
// just skip the depth penalty.
func (s *Scorer) Score(rawURL string) int {
	lower := strings.ToLower(rawURL)

	score := 0
	for _, r := range s.rules {
		if strings.Contains(lower, r.substring) {
			score += r.weight
		}
	}

	if depth := pathDepth(rawURL); depth > depthThreshold {
		score -= depthPenaltyFactor * (depth - depthThreshold)
	}

	return score
}

// Rank scores every URL and returns candidates ordered by descending score.
// The sort is stable: equal scores keep their discovery order, which makes
// scheduling deterministic for identical inputs.
func (s *Scorer) Rank(urls []string) []model.CandidateLink {
	links := make([]model.CandidateLink, len(urls))
	for i, u := range urls {
		links[i] = model.CandidateLink{URL: u, Score: s.Score(u)}
	}

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].Score > links[j].Score
	})

	return links
}

// pathDepth returns the number of path segments in the URL, or 0 when the
// URL cannot be parsed.
func pathDepth(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}

	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "/") + 1
}
