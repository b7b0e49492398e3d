package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jimmyjon121/Doc-Creator-sub009/internal/cache"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/model"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/progress"
)

// Scheduler pacing defaults. The exported equivalents live in the config
// package.
const (
	// defaultBatchSize bounds in-flight requests per batch. Five concurrent
	// fetches is gentle on small provider sites while keeping a typical
	// 20-link crawl interactive.
	defaultBatchSize = 5

	// defaultBatchPause is the fixed delay between batches, spreading load
	// so consecutive barriers don't land as bursts on the origin.
	defaultBatchPause = 100 * time.Millisecond
)

// Fetcher retrieves a single URL. Satisfied by *fetch.Fetcher; tests
// substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.Page, error)
	Attempts() int
}

// Pacing holds the scheduler's load-shaping knobs as an explicit policy
// value, so batch behavior is tunable and testable apart from fetch logic.
type Pacing struct {
	// BatchSize is the number of links fetched concurrently per batch.
	BatchSize int

	// BatchPause is the delay inserted between consecutive batches.
	BatchPause time.Duration
}

// DefaultPacing returns the standard pacing policy.
func DefaultPacing() Pacing {
	return Pacing{
		BatchSize:  defaultBatchSize,
		BatchPause: defaultBatchPause,
	}
}

// PassResult accumulates the outcome of one scheduling pass.
type PassResult struct {
	// Pages holds every page obtained during the pass, cache hits included.
	Pages []model.Page

	// Errors lists URLs whose fetch attempts were all exhausted.
	Errors []model.CrawlError

	// Stats holds the counters accumulated during the pass.
	Stats model.CrawlStats
}

// batchScheduler partitions prioritized links into fixed-size batches and
// drives the fetcher and cache through them. Each batch is a barrier: all
// of its fetches settle before the next batch starts.
type batchScheduler struct {
	fetcher  Fetcher
	cache    *cache.Cache
	seen     *visitSet
	pacing   Pacing
	reporter progress.Reporter
	logger   *slog.Logger

	// secondLevel marks pages produced by this scheduler as second-level
	// discoveries.
	secondLevel bool
}

func newBatchScheduler(fetcher Fetcher, c *cache.Cache, seen *visitSet, pacing Pacing, reporter progress.Reporter, logger *slog.Logger) *batchScheduler {
	if pacing.BatchSize < 1 {
		pacing.BatchSize = defaultBatchSize
	}
	if reporter == nil {
		reporter = progress.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &batchScheduler{
		fetcher:  fetcher,
		cache:    c,
		seen:     seen,
		pacing:   pacing,
		reporter: reporter,
		logger:   logger,
	}
}

// Run fetches the links batch by batch. A single URL's exhausted retries
// never abort the batch or the pass; they are recorded and scheduling
// continues. On cancellation the partial accumulation is returned together
// with the context error.
func (s *batchScheduler) Run(ctx context.Context, links []model.CandidateLink) (PassResult, error) {
	var result PassResult
	result.Stats.Requested = len(links)

	total := len(links)
	batches := partition(links, s.pacing.BatchSize)

	for i, batch := range batches {
		// Cancellation is checked at the batch boundary; settled work is
		// kept and returned.
		if err := ctx.Err(); err != nil {
			return result, err
		}

		s.runBatch(ctx, batch, &result)

		s.reporter.Report(progress.NewEvent(
			progress.StageBatch,
			len(result.Pages),
			total,
			fmt.Sprintf("batch %d/%d settled", i+1, len(batches)),
		))

		// Inter-batch pause, skipped after the final batch.
		if s.pacing.BatchPause > 0 && i < len(batches)-1 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.pacing.BatchPause):
			}
		}
	}

	// Cancellation during the final batch still surfaces to the caller.
	if err := ctx.Err(); err != nil {
		return result, err
	}

	return result, nil
}

// batchOutcome is one settled slot of a batch, kept indexed so results
// retain priority order regardless of goroutine completion order.
type batchOutcome struct {
	page      *model.Page
	fromCache bool
	err       error
	url       string
}

// runBatch settles one batch: cache hits short-circuit, misses fetch
// concurrently, and the errgroup Wait is the synchronization barrier.
// Outcomes are pre-allocated per slot so the aggregated pages keep the
// prioritized order even though fetches settle in any order.
func (s *batchScheduler) runBatch(ctx context.Context, batch []model.CandidateLink, result *PassResult) {
	outcomes := make([]batchOutcome, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.pacing.BatchSize)

	for i, link := range batch {
		i, link := i, link
		// The dedup set guards the whole invocation: a URL already handled
		// by either pass is never fetched again.
		if !s.seen.Visit(link.URL) {
			continue
		}

		key := normalizeURL(link.URL)

		// Cache hits never invoke the fetcher and count toward Cached.
		if entry, ok := s.cache.Get(key); ok {
			outcomes[i] = batchOutcome{
				page: &model.Page{
					URL:         key,
					Content:     entry.Content,
					FetchedAt:   entry.FetchedAt,
					FromCache:   true,
					SecondLevel: s.secondLevel,
				},
				fromCache: true,
			}
			continue
		}

		g.Go(func() error {
			page, err := s.fetcher.Fetch(gctx, link.URL)
			if err != nil {
				outcomes[i] = batchOutcome{err: err, url: link.URL}
				s.logger.Debug("link exhausted all fetch attempts",
					"url", link.URL,
					"error", err,
				)
				// The failure is recorded; returning it would cancel the
				// batch's siblings via the errgroup context.
				return nil
			}

			page.URL = key
			page.SecondLevel = s.secondLevel
			s.cache.Put(key, page.Content)

			outcomes[i] = batchOutcome{page: page}
			return nil
		})
	}

	// Barrier: every fetch in the batch settles before the caller moves on.
	// Goroutines never return errors, so Wait's error is always nil.
	_ = g.Wait() //nolint:errcheck // failures are recorded per slot

	for _, out := range outcomes {
		switch {
		case out.page != nil && out.fromCache:
			result.Pages = append(result.Pages, *out.page)
			result.Stats.Cached++
		case out.page != nil:
			result.Pages = append(result.Pages, *out.page)
			result.Stats.Fetched++
		case out.err != nil:
			result.Errors = append(result.Errors, model.CrawlError{
				URL:      out.url,
				Message:  out.err.Error(),
				Attempts: s.fetcher.Attempts(),
			})
			result.Stats.Failed++
		}
	}
}

// partition splits links into consecutive batches of at most size entries.
func partition(links []model.CandidateLink, size int) [][]model.CandidateLink {
	if len(links) == 0 {
		return nil
	}

	batches := make([][]model.CandidateLink, 0, (len(links)+size-1)/size)
	for start := 0; start < len(links); start += size {
		end := start + size
		if end > len(links) {
			end = len(links)
		}
		batches = append(batches, links[start:end])
	}
	return batches
}
