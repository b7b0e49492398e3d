package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jimmyjon121/Doc-Creator-sub009/internal/cache"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/fetch"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/model"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/progress"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/rank"
)

// secondLevelAttempts is the total attempt budget for second-level fetches.
// One retry instead of two: speculative pages should fail fast.
const secondLevelAttempts = 2

// Orchestrator runs the whole crawl: rank seeds, fetch in batches, derive
// and fetch the second-level set, aggregate one result. It is a library
// first; the CLI is one host of it.
//
// Design decision: The cache is constructor-injected rather than
// process-global because:
//  1. Sweeping, clearing, and testing become explicit operations on an
//     owned component
//  2. Two orchestrators (or two tests) never share hidden state
//  3. The host decides the cache's lifetime, not the package
type Orchestrator struct {
	cache              *cache.Cache
	fetcher            Fetcher
	secondLevelFetcher Fetcher
	reporter           progress.Reporter
	scorer             *rank.Scorer
	pacing             Pacing
	secondLevel        bool
	secondLevelLimit   int
	filter             seedFilter
	logger             *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCache injects the fetch cache. The orchestrator never starts the
// cache's sweeper; that is the owner's call.
func WithCache(c *cache.Cache) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithFetcher replaces the first-pass fetcher.
func WithFetcher(f Fetcher) Option {
	return func(o *Orchestrator) {
		if f != nil {
			o.fetcher = f
		}
	}
}

// WithSecondLevelFetcher replaces the second-level fetcher. The default
// uses the reduced attempt budget.
func WithSecondLevelFetcher(f Fetcher) Option {
	return func(o *Orchestrator) {
		if f != nil {
			o.secondLevelFetcher = f
		}
	}
}

// WithReporter sets the progress sink. The default discards events.
func WithReporter(r progress.Reporter) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reporter = r
		}
	}
}

// WithScorer replaces the link scorer.
func WithScorer(s *rank.Scorer) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.scorer = s
		}
	}
}

// WithPacing sets the batch pacing policy.
func WithPacing(p Pacing) Option {
	return func(o *Orchestrator) {
		if p.BatchSize > 0 {
			o.pacing = p
		}
	}
}

// WithBatchSize sets only the batch size, keeping the default pause.
func WithBatchSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.pacing.BatchSize = n
		}
	}
}

// WithSecondLevel enables or disables the second-level pass.
func WithSecondLevel(enabled bool) Option {
	return func(o *Orchestrator) {
		o.secondLevel = enabled
	}
}

// WithSecondLevelLimit caps the second-level candidate set.
func WithSecondLevelLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.secondLevelLimit = n
		}
	}
}

// WithSeedFilter sets glob patterns applied to seed URL paths before
// ranking. Ignored seeds never count toward the crawl's stats.
func WithSeedFilter(ignorePatterns, followPatterns []string) Option {
	return func(o *Orchestrator) {
		o.filter = seedFilter{
			ignorePatterns: ignorePatterns,
			followPatterns: followPatterns,
		}
	}
}

// WithLogger sets the logger shared by the orchestrator's passes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an Orchestrator with the given options applied over the
// defaults.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		reporter:         progress.Nop{},
		scorer:           rank.NewScorer(rank.DefaultWeights()),
		pacing:           DefaultPacing(),
		secondLevel:      true,
		secondLevelLimit: defaultSecondLevelLimit,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.cache == nil {
		o.cache = cache.New(cache.WithLogger(o.logger))
	}
	if o.fetcher == nil {
		o.fetcher = fetch.New(fetch.WithLogger(o.logger))
	}
	if o.secondLevelFetcher == nil {
		o.secondLevelFetcher = fetch.New(
			fetch.WithAttempts(secondLevelAttempts),
			fetch.WithLogger(o.logger),
		)
	}

	return o
}

// ClearCache drops all cached pages. This is the host's cache-reset
// control command.
func (o *Orchestrator) ClearCache() {
	o.cache.Clear()
}

// Crawl ranks the seed URLs, fetches them in batches, runs the
// second-level pass over the results, and returns the aggregate.
//
// Every invocation is independent: the dedup set is per-call, only the
// cache persists between calls. On cancellation the partial result is
// returned together with the context error; a crawl that fetches nothing
// still returns a well-formed result.
func (o *Orchestrator) Crawl(ctx context.Context, urls []string) (*model.CrawlResult, error) {
	started := time.Now()

	result := &model.CrawlResult{
		Pages:     []model.Page{},
		Errors:    []model.CrawlError{},
		StartedAt: started,
		Seeds:     len(urls),
	}

	seeds := make([]string, 0, len(urls))
	for _, u := range urls {
		if o.filter.Allow(u) {
			seeds = append(seeds, u)
		}
	}

	o.reporter.Report(progress.NewEvent(
		progress.StageInitialization,
		0,
		len(seeds),
		fmt.Sprintf("prioritizing %d links", len(seeds)),
	))

	links := o.scorer.Rank(seeds)

	o.logger.Debug("crawl starting",
		"seeds", len(urls),
		"after_filter", len(seeds),
		"batch_size", o.pacing.BatchSize,
		"second_level", o.secondLevel,
	)

	seen := newVisitSet()
	sched := newBatchScheduler(o.fetcher, o.cache, seen, o.pacing, o.reporter, o.logger)

	first, err := sched.Run(ctx, links)
	result.Pages = append(result.Pages, first.Pages...)
	result.Errors = append(result.Errors, first.Errors...)
	result.Stats.Add(first.Stats)

	if err != nil {
		result.Duration = time.Since(started)
		return result, err
	}

	if o.secondLevel {
		slc := newSecondLevelCrawler(
			o.secondLevelFetcher, o.cache, seen,
			o.secondLevelLimit, o.pacing, o.reporter, o.logger,
		)

		pages, stats, err := slc.Run(ctx, first.Pages)
		result.Pages = append(result.Pages, pages...)
		result.Stats.Add(stats)

		if err != nil {
			result.Duration = time.Since(started)
			return result, err
		}
	}

	result.Duration = time.Since(started)

	o.reporter.Report(progress.NewEvent(
		progress.StageComplete,
		len(result.Pages),
		result.Stats.Requested,
		fmt.Sprintf("crawl complete: %d pages, %d errors", len(result.Pages), len(result.Errors)),
	))

	o.logger.Debug("crawl finished",
		"pages", len(result.Pages),
		"errors", len(result.Errors),
		"fetched", result.Stats.Fetched,
		"cached", result.Stats.Cached,
		"failed", result.Stats.Failed,
		"duration", result.Duration,
	)

	return result, nil
}
