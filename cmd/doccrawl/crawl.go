package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jimmyjon121/Doc-Creator-sub009/internal/cache"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/config"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/crawler"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/database"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/fetch"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/log"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/model"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/progress"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/rank"
	"github.com/jimmyjon121/Doc-Creator-sub009/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url...]",
		Short: "Crawl treatment-provider sites and collect clinical pages",
		Long: `Crawl fetches treatment-provider pages for aftercare documentation.

Seed URLs are scored by clinical relevance (treatment, program, and
clinical pages first; blogs, careers, and binary assets last), fetched
in small concurrent batches with retries, and cached for repeat runs.
A second-level pass follows the most valuable links discovered on
high-value pages.

Examples:
  # Crawl a provider site
  doccrawl crawl https://provider.example.org/treatment

  # Crawl multiple seed URLs
  doccrawl crawl https://a.example.org/programs https://b.example.org/clinical

  # Read seeds from a file (one URL per line, # comments allowed)
  doccrawl crawl --list seeds.txt

  # Output a Markdown report to a file
  doccrawl crawl --markdown -o report.md https://provider.example.org

  # Use a custom configuration file
  doccrawl crawl -c myconfig.yaml https://provider.example.org

Configuration file (.doccrawl) example:
  defaults:
    ignorePatterns:
      - "/blog/*"
  sites:
    provider.example.org:
      headers:
        X-Referral-Source: aftercare
      secondLevelLimit: 5
  scoring:
    high:
      - treatment
      - recovery`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Seed sources
	cmd.Flags().StringP("list", "l", "",
		"File containing seed URLs, one per line (# comments allowed)")

	// Crawl behavior flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of links fetched concurrently per batch")
	cmd.Flags().Duration("pause", config.DefaultBatchPause,
		"Pause between consecutive batches")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Timeout for each fetch attempt")
	cmd.Flags().IntP("attempts", "a", config.DefaultFetchAttempts,
		"Total fetch attempts per URL before recording a failure")

	// Cache flags
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL,
		"Maximum age of a cached page")
	cmd.Flags().Int("cache-capacity", config.DefaultCacheCapacity,
		"Maximum number of cached pages")

	// Second-level flags
	cmd.Flags().Bool("second-level", true,
		"Follow valuable links found on high-value pages")
	cmd.Flags().Int("second-level-limit", config.DefaultSecondLevelLimit,
		"Maximum second-level links to fetch")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .doccrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Journal flags
	cmd.Flags().String("db-dir", "",
		"Directory for the crawl journal (default: XDG data directory)")
	cmd.Flags().Bool("no-save", false,
		"Do not record this crawl in the journal")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown.
	// Cancellation surfaces partial results rather than discarding them.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.BatchPause, err = cmd.Flags().GetDuration("pause")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.FetchAttempts, err = cmd.Flags().GetInt("attempts")
	if err != nil {
		return nil, err
	}

	cfg.CacheTTL, err = cmd.Flags().GetDuration("cache-ttl")
	if err != nil {
		return nil, err
	}

	cfg.CacheCapacity, err = cmd.Flags().GetInt("cache-capacity")
	if err != nil {
		return nil, err
	}

	cfg.SecondLevel, err = cmd.Flags().GetBool("second-level")
	if err != nil {
		return nil, err
	}

	cfg.SecondLevelLimit, err = cmd.Flags().GetInt("second-level-limit")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site rules and scoring overrides from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteRules),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Seeds come from positional arguments and/or a list file
	cfg.Seeds = append(cfg.Seeds, args...)

	listPath, err := cmd.Flags().GetString("list")
	if err != nil {
		return nil, err
	}
	if listPath != "" {
		fromFile, err := readSeedList(listPath)
		if err != nil {
			return nil, err
		}
		cfg.Seeds = append(cfg.Seeds, fromFile...)
	}

	return cfg, nil
}

// readSeedList reads seed URLs from a file, one per line.
// Blank lines and lines starting with # are skipped.
func readSeedList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided seed list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open seed list: %w", err)
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed list: %w", err)
	}

	return seeds, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Debug("starting crawl",
		"seeds", len(cfg.Seeds),
		"batchSize", cfg.BatchSize,
		"secondLevel", cfg.SecondLevel,
		"saveToDB", cfg.SaveToDB,
	)

	// Open the journal if saving is enabled
	var journal *database.Journal
	if cfg.SaveToDB {
		var err error
		journal, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open crawl journal: %w", err)
		}
		defer journal.Close()
		logger.Debug("journal opened", "dir", cfg.DBDir)
	}

	// Progress events stream to the terminal from a consumer goroutine.
	// The reporter is bounded and drop-on-full: a slow terminal never
	// stalls the crawl.
	reporter := progress.NewChannelReporter(cfg.ProgressBuffer)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range reporter.Events() {
			fmt.Printf("[%s] %d/%d %s\n", e.Stage, e.Current, e.Total, e.Message)
		}
	}()

	orc, pageCache := buildOrchestrator(cfg, reporter, logger)
	pageCache.StartSweeper(ctx)

	startTime := time.Now()
	result, crawlErr := orc.Crawl(ctx, cfg.Seeds)

	reporter.Close()
	wg.Wait()

	if dropped := reporter.Dropped(); dropped > 0 {
		logger.Debug("progress events dropped", "count", dropped)
	}

	if crawlErr != nil {
		// Partial results still get reported and journaled
		fmt.Fprintf(os.Stderr, "Crawl interrupted: %v (reporting partial results)\n", crawlErr)
	} else {
		fmt.Printf("Crawl completed in %s\n\n", time.Since(startTime).Round(time.Millisecond))
	}

	if err := outputReport(cfg, result); err != nil {
		logger.Error("report failed", "error", err)
		return err
	}

	if err := saveResult(ctx, journal, result, logger); err != nil {
		logger.Error("failed to save crawl result", "error", err)
	}

	return crawlErr
}

// buildOrchestrator assembles the crawler from the configuration.
// It returns the cache separately so the caller can start its sweeper.
func buildOrchestrator(cfg *config.Config, reporter progress.Reporter, logger *slog.Logger) (*crawler.Orchestrator, *cache.Cache) {
	pageCache := cache.New(
		cache.WithCapacity(cfg.CacheCapacity),
		cache.WithTTL(cfg.CacheTTL),
		cache.WithSweepInterval(cfg.SweepInterval),
		cache.WithLogger(logger),
	)

	backoff := fetch.BackoffPolicy{
		Initial: cfg.InitialBackoff,
		Factor:  cfg.BackoffFactor,
		Max:     cfg.MaxBackoff,
	}

	// Per-host headers from the config file apply to every request; the
	// defaults entry is the one consulted since seeds may span hosts.
	rules := cfg.SiteConfigs.GetSiteRules(seedHost(cfg.Seeds))

	fetcherOpts := []fetch.Option{
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithBackoff(backoff),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMinContentLength(cfg.MinContentLength),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	}
	if len(rules.Headers) > 0 {
		fetcherOpts = append(fetcherOpts, fetch.WithHeaders(rules.Headers))
	}

	fetcher := fetch.New(append(fetcherOpts, fetch.WithAttempts(cfg.FetchAttempts))...)
	secondLevelFetcher := fetch.New(append(fetcherOpts, fetch.WithAttempts(cfg.SecondLevelAttempts))...)

	secondLevelLimit := cfg.SecondLevelLimit
	if rules.SecondLevelLimit > 0 {
		secondLevelLimit = rules.SecondLevelLimit
	}

	orc := crawler.New(
		crawler.WithCache(pageCache),
		crawler.WithFetcher(fetcher),
		crawler.WithSecondLevelFetcher(secondLevelFetcher),
		crawler.WithReporter(reporter),
		crawler.WithScorer(rank.NewScorer(cfg.SiteConfigs.ScoringWeights())),
		crawler.WithPacing(crawler.Pacing{
			BatchSize:  cfg.BatchSize,
			BatchPause: cfg.BatchPause,
		}),
		crawler.WithSecondLevel(cfg.SecondLevel),
		crawler.WithSecondLevelLimit(secondLevelLimit),
		crawler.WithSeedFilter(rules.IgnorePatterns, rules.FollowPatterns),
		crawler.WithLogger(logger),
	)

	return orc, pageCache
}

// seedHost returns the hostname of the first seed, for site rule lookup.
func seedHost(seeds []string) string {
	if len(seeds) == 0 {
		return ""
	}
	u, err := url.Parse(seeds[0])
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// outputReport outputs the crawl result in the requested format.
func outputReport(cfg *config.Config, result *model.CrawlResult) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may quote provider page content; owner-only permissions
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := writer.Write(result)
	return err
}

// saveResult records the crawl result in the journal if enabled.
// If journal is nil, this function is a no-op.
func saveResult(ctx context.Context, journal *database.Journal, result *model.CrawlResult, logger *slog.Logger) error {
	if journal == nil {
		return nil
	}

	// A cancelled crawl context must not block the save
	if ctx.Err() != nil {
		ctx = context.Background()
	}

	sessionID, err := journal.SaveCrawlResult(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to save crawl result: %w", err)
	}

	logger.Debug("crawl result saved", "session", sessionID)
	return nil
}
