package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than
// fmt.Errorf() because we don't need to include dynamic values in these
// messages.
var (
	// ErrNoSeeds is returned when no seed URL is specified.
	// This occurs when neither --list nor a positional argument provides
	// a URL.
	ErrNoSeeds = errors.New("no seed URLs specified: provide URLs as arguments or use --list")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no fetching at all.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidBatchPause is returned when the inter-batch pause is
	// negative. Use 0 for no pause between batches.
	ErrInvalidBatchPause = errors.New("invalid batch pause: must be non-negative")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	// A zero or negative timeout would fail every attempt immediately.
	ErrInvalidTimeout = errors.New("invalid fetch timeout: must be positive")

	// ErrInvalidAttempts is returned when a fetch attempt budget is not
	// positive. Every URL gets at least one attempt.
	ErrInvalidAttempts = errors.New("invalid fetch attempts: must be positive")

	// ErrInvalidCacheCapacity is returned when the cache capacity is not
	// positive. The cache must be able to hold at least one entry.
	ErrInvalidCacheCapacity = errors.New("invalid cache capacity: must be positive")

	// ErrInvalidCacheTTL is returned when the cache TTL is not positive.
	// A zero TTL would expire entries as they are written.
	ErrInvalidCacheTTL = errors.New("invalid cache TTL: must be positive")

	// ErrInvalidSecondLevelLimit is returned when the second-level pass is
	// enabled with a non-positive candidate cap.
	ErrInvalidSecondLevelLimit = errors.New("invalid second-level limit: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a
	// time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
