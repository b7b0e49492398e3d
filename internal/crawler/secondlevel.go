package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/jimmyjon121/Doc-Creator-sub009/internal/cache"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/model"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/progress"
)

// defaultSecondLevelLimit caps the second-level candidate set. The second
// pass is speculative; ten extra fetches bound its worst-case latency
// contribution while still picking up the condition and modality pages
// that matter.
const defaultSecondLevelLimit = 10

// highValuePatterns select the first-pass pages whose content is worth
// mining for further links.
var highValuePatterns = []string{
	"treatment", "program", "approach", "clinical",
}

// valuablePatterns select which extracted links are worth the speculative
// second-level fetch. Narrower than the first-pass scoring tiers.
var valuablePatterns = []string{
	"condition", "special", "modalit", "approach", "method",
}

// secondLevelCrawler derives a bounded additional link set from first-pass
// results and fetches it with a reduced retry budget. Second-level fetches
// are low-confidence; their failures are counted but never surface in the
// crawl's error list.
type secondLevelCrawler struct {
	fetcher  Fetcher
	cache    *cache.Cache
	seen     *visitSet
	limit    int
	pacing   Pacing
	reporter progress.Reporter
	logger   *slog.Logger
}

func newSecondLevelCrawler(fetcher Fetcher, c *cache.Cache, seen *visitSet, limit int, pacing Pacing, reporter progress.Reporter, logger *slog.Logger) *secondLevelCrawler {
	if limit < 1 {
		limit = defaultSecondLevelLimit
	}
	if reporter == nil {
		reporter = progress.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &secondLevelCrawler{
		fetcher:  fetcher,
		cache:    c,
		seen:     seen,
		limit:    limit,
		pacing:   pacing,
		reporter: reporter,
		logger:   logger,
	}
}

// Run mines high-value first-pass pages for same-host links worth a
// speculative fetch, caps the set, and fetches it. Only successes are
// returned; the stats carry the full accounting.
func (s *secondLevelCrawler) Run(ctx context.Context, firstPass []model.Page) ([]model.Page, model.CrawlStats, error) {
	candidates := s.collectCandidates(firstPass)

	s.reporter.Report(progress.NewEvent(
		progress.StageSecondLevel,
		0,
		len(candidates),
		fmt.Sprintf("fetching %d second-level links", len(candidates)),
	))

	if len(candidates) == 0 {
		return nil, model.CrawlStats{}, nil
	}

	links := make([]model.CandidateLink, len(candidates))
	for i, u := range candidates {
		links[i] = model.CandidateLink{URL: u}
	}

	// Reuse the batch mechanics with a silent progress sink; the single
	// secondLevel event above is the only progress this pass emits.
	sched := newBatchScheduler(s.fetcher, s.cache, s.seen, s.pacing, progress.Nop{}, s.logger)
	sched.secondLevel = true

	result, err := sched.Run(ctx, links)

	// Second-level failures are dropped from the error list: these are
	// speculative, low-confidence fetches. The stats keep the counts.
	if n := len(result.Errors); n > 0 {
		s.logger.Debug("second-level fetches failed", "failed", n)
	}

	return result.Pages, result.Stats, err
}

// collectCandidates extracts, resolves, and filters second-level links
// from the high-value subset of the first-pass pages, capped at the limit.
func (s *secondLevelCrawler) collectCandidates(firstPass []model.Page) []string {
	candidates := make([]string, 0, s.limit)
	candidateSet := make(map[string]bool)

	for i := range firstPass {
		page := &firstPass[i]
		if !containsAny(page.URL, highValuePatterns) {
			continue
		}

		base, err := url.Parse(page.URL)
		if err != nil {
			continue
		}

		for _, href := range extractLinks(page.Content) {
			resolved, ok := resolveLink(base, href)
			if !ok {
				continue
			}
			if !containsAny(resolved, valuablePatterns) {
				continue
			}

			key := normalizeURL(resolved)
			if candidateSet[key] {
				continue
			}
			// Anything already cached or already handled this crawl is
			// not worth a second-level slot.
			if s.seen.Seen(key) {
				continue
			}
			if _, cached := s.cache.Get(key); cached {
				continue
			}

			candidateSet[key] = true
			candidates = append(candidates, resolved)
			if len(candidates) >= s.limit {
				return candidates
			}
		}
	}

	return candidates
}
