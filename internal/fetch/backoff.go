package fetch

import "time"

// Backoff policy defaults: 1s before the second attempt, 2s before the
// third. Short enough that a full retry cycle stays within interactive
// latency, long enough to let a briefly overloaded server recover.
const (
	defaultInitialBackoff = 1 * time.Second
	defaultBackoffFactor  = 2.0
	defaultMaxBackoff     = 30 * time.Second
)

// BackoffPolicy maps a retry ordinal to a delay. The zero value means no
// delay; use DefaultBackoffPolicy for the standard exponential schedule.
//
// The policy is a plain value so schedules can be compared in tests and
// swapped per fetcher (the second-level pass uses the same policy with a
// smaller attempt budget).
type BackoffPolicy struct {
	// Initial is the delay before the first retry.
	Initial time.Duration

	// Factor multiplies the delay for each subsequent retry.
	Factor float64

	// Max caps the delay regardless of growth.
	Max time.Duration
}

// DefaultBackoffPolicy returns the standard schedule: 1s, 2s, 4s, ...
// capped at 30s.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		Initial: defaultInitialBackoff,
		Factor:  defaultBackoffFactor,
		Max:     defaultMaxBackoff,
	}
}

// Delay returns how long to wait before the given retry. Retry 1 is the
// first retry (the second attempt overall). Values below 1 return zero.
func (p BackoffPolicy) Delay(retry int) time.Duration {
	if retry < 1 || p.Initial <= 0 {
		return 0
	}

	d := p.Initial
	for i := 1; i < retry; i++ {
		d = time.Duration(float64(d) * p.Factor)
		if p.Max > 0 && d >= p.Max {
			return p.Max
		}
	}

	if p.Max > 0 && d > p.Max {
		return p.Max
	}
	return d
}
