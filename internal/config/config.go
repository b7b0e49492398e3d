package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are tuned for small treatment-provider sites on shared
// hosting: slow, occasionally flaky, and easy to overwhelm.
const (
	// DefaultBatchSize of 5 concurrent fetches keeps a typical 20-link
	// crawl interactive without bursting a small origin server. The batch
	// boundary is a synchronization barrier, so this is also the hard cap
	// on in-flight requests.
	DefaultBatchSize = 5

	// DefaultBatchPause is the fixed delay between batches. 100ms is
	// enough to break up burst patterns without noticeably slowing the
	// crawl.
	DefaultBatchPause = 100 * time.Millisecond

	// DefaultFetchTimeout bounds each fetch attempt. Provider sites are
	// often slow shared hosting; 10 seconds tolerates that while keeping a
	// dead host from stalling its batch.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultFetchAttempts is the total attempt budget per first-pass URL
	// (first try plus two retries). Bounded retries trade latency for
	// completeness without unbounded hangs.
	DefaultFetchAttempts = 3

	// DefaultSecondLevelAttempts is the attempt budget for speculative
	// second-level fetches. One retry only: low-confidence pages should
	// fail fast.
	DefaultSecondLevelAttempts = 2

	// DefaultInitialBackoff is the delay before the first retry.
	DefaultInitialBackoff = 1 * time.Second

	// DefaultBackoffFactor doubles the delay for each subsequent retry,
	// giving the 1s, 2s schedule.
	DefaultBackoffFactor = 2.0

	// DefaultMaxBackoff caps retry delays regardless of growth.
	DefaultMaxBackoff = 30 * time.Second

	// DefaultCacheCapacity bounds cache memory. 100 pages at the body
	// size cap is the worst case the host accepts.
	DefaultCacheCapacity = 100

	// DefaultCacheTTL keeps content fresh for one documentation session
	// while sparing provider sites repeat traffic.
	DefaultCacheTTL = 30 * time.Minute

	// DefaultSweepInterval is how often expired cache entries are removed,
	// independent of request traffic.
	DefaultSweepInterval = 5 * time.Minute

	// DefaultSecondLevelLimit caps the second-level candidate set, keeping
	// the speculative pass cheap.
	DefaultSecondLevelLimit = 10

	// DefaultMinContentLength is the minimum decoded body length accepted
	// as real page content. Error stubs and empty shells are shorter.
	DefaultMinContentLength = 100

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for any real HTML page while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies doccrawl in provider logs. A descriptive
	// User-Agent lets operators recognize and contact us.
	DefaultUserAgent = "doccrawl/1.0 (+https://github.com/jimmyjon121/Doc-Creator-sub009)"

	// DefaultProgressBuffer is the progress queue depth. A 100-seed crawl
	// emits well under this many events.
	DefaultProgressBuffer = 64

	// AppName is the application name used for XDG directory paths.
	AppName = "doccrawl"
)

// Config holds all configuration options for doccrawl.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, CacheConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant
// benefit.
type Config struct {
	// Seeds is the list of URLs to crawl, from positional arguments
	// and/or a list file.
	Seeds []string

	// BatchSize is the number of links fetched concurrently per batch.
	// This is the hard cap on in-flight requests.
	BatchSize int

	// BatchPause is the fixed delay between consecutive batches.
	BatchPause time.Duration

	// FetchTimeout is the per-attempt timeout for each HTTP request.
	FetchTimeout time.Duration

	// FetchAttempts is the total attempt budget per first-pass URL.
	FetchAttempts int

	// SecondLevelAttempts is the attempt budget for second-level fetches.
	SecondLevelAttempts int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// BackoffFactor multiplies the retry delay after each attempt.
	BackoffFactor float64

	// MaxBackoff caps retry delays.
	MaxBackoff time.Duration

	// CacheCapacity is the maximum number of cached pages.
	CacheCapacity int

	// CacheTTL is the maximum age of a cache entry.
	CacheTTL time.Duration

	// SweepInterval is the cache janitor period.
	SweepInterval time.Duration

	// SecondLevel enables the second-level crawl pass.
	SecondLevel bool

	// SecondLevelLimit caps the second-level candidate set.
	SecondLevelLimit int

	// MinContentLength is the body length below which a response is
	// rejected as not real page content.
	MinContentLength int

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of the human-readable
	// format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .doccrawl in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-site rules loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory path for the SQLite crawl journal.
	// When empty, crawl metadata is not persisted.
	DBDir string

	// SaveToDB indicates whether to save crawl metadata to the journal.
	SaveToDB bool

	// ProgressBuffer is the progress event queue depth.
	ProgressBuffer int
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases; users override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeouts, batch size).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		BatchSize:           DefaultBatchSize,
		BatchPause:          DefaultBatchPause,
		FetchTimeout:        DefaultFetchTimeout,
		FetchAttempts:       DefaultFetchAttempts,
		SecondLevelAttempts: DefaultSecondLevelAttempts,
		InitialBackoff:      DefaultInitialBackoff,
		BackoffFactor:       DefaultBackoffFactor,
		MaxBackoff:          DefaultMaxBackoff,
		CacheCapacity:       DefaultCacheCapacity,
		CacheTTL:            DefaultCacheTTL,
		SweepInterval:       DefaultSweepInterval,
		SecondLevel:         true,
		SecondLevelLimit:    DefaultSecondLevelLimit,
		MinContentLength:    DefaultMinContentLength,
		MaxBodySize:         DefaultMaxBodySize,
		UserAgent:           DefaultUserAgent,
		ProgressBuffer:      DefaultProgressBuffer,
	}
}

// XDGDataDir returns the XDG data directory for doccrawl.
// On Linux: ~/.local/share/doccrawl
// On macOS: ~/Library/Application Support/doccrawl
// On Windows: %LOCALAPPDATA%\doccrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for doccrawl.
// On Linux: ~/.config/doccrawl
// On macOS: ~/Library/Application Support/doccrawl
// On Windows: %APPDATA%\doccrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for doccrawl.
// On Linux: ~/.cache/doccrawl
// On macOS: ~/Library/Caches/doccrawl
// On Windows: %LOCALAPPDATA%\doccrawl\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast with clear messages, once, after CLI parsing
// and before any fetching begins. The first error found is returned:
// fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one seed to crawl
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}

	// BatchSize must be positive; zero would mean no fetching
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// BatchPause must be non-negative
	if c.BatchPause < 0 {
		return ErrInvalidBatchPause
	}

	// FetchTimeout must be positive; zero would fail every attempt
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// Attempt budgets must be positive
	if c.FetchAttempts <= 0 || c.SecondLevelAttempts <= 0 {
		return ErrInvalidAttempts
	}

	// Cache bounds must be positive
	if c.CacheCapacity <= 0 {
		return ErrInvalidCacheCapacity
	}
	if c.CacheTTL <= 0 {
		return ErrInvalidCacheTTL
	}

	// Second-level cap must be positive when the pass is enabled
	if c.SecondLevel && c.SecondLevelLimit <= 0 {
		return ErrInvalidSecondLevelLimit
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
