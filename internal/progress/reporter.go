package progress

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// defaultBuffer is the channel reporter's queue depth. A crawl of 100 seeds
// emits well under this many events, so drops only occur when the consumer
// is truly stuck.
const defaultBuffer = 64

// Reporter receives progress events. Implementations must not block, panic,
// or fail; delivery problems are theirs to swallow.
type Reporter interface {
	Report(Event)
}

// ChannelReporter delivers events over a bounded channel. When the buffer
// is full or the reporter is closed, events are dropped and counted.
type ChannelReporter struct {
	mu     sync.RWMutex
	ch     chan Event
	closed bool

	dropped atomic.Int64
	logger  *slog.Logger
}

// ChannelOption configures a ChannelReporter.
type ChannelOption func(*ChannelReporter)

// WithChannelLogger sets the logger used when events are dropped.
func WithChannelLogger(logger *slog.Logger) ChannelOption {
	return func(r *ChannelReporter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewChannelReporter creates a reporter with the given buffer depth.
// Depths below 1 use the default.
func NewChannelReporter(buffer int, opts ...ChannelOption) *ChannelReporter {
	if buffer < 1 {
		buffer = defaultBuffer
	}

	r := &ChannelReporter{
		ch:     make(chan Event, buffer),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Report queues the event without blocking. Full buffer or closed reporter
// drops the event.
func (r *ChannelReporter) Report(e Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.dropped.Add(1)
		r.logger.Debug("progress event dropped, reporter closed",
			"stage", string(e.Stage),
		)
		return
	}

	select {
	case r.ch <- e:
	default:
		r.dropped.Add(1)
		r.logger.Debug("progress event dropped, buffer full",
			"stage", string(e.Stage),
			"current", e.Current,
			"total", e.Total,
		)
	}
}

// Events returns the receive side of the queue. The channel closes when
// Close is called; events already queued remain readable.
func (r *ChannelReporter) Events() <-chan Event {
	return r.ch
}

// Close shuts the queue. Safe to call more than once; Report calls after
// Close are dropped, not panics.
func (r *ChannelReporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.closed {
		r.closed = true
		close(r.ch)
	}
}

// Dropped returns how many events were discarded.
func (r *ChannelReporter) Dropped() int64 {
	return r.dropped.Load()
}

// LogReporter writes each event to a structured logger. Useful when no UI
// is attached but progress should still be observable.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a LogReporter. A nil logger uses slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// Report implements Reporter.
func (r *LogReporter) Report(e Event) {
	r.logger.Info("crawl progress",
		"stage", string(e.Stage),
		"current", e.Current,
		"total", e.Total,
		"percent", e.Percent,
		"message", e.Message,
	)
}

// Nop discards all events. It is the default reporter when the host does
// not care about progress.
type Nop struct{}

// Report implements Reporter.
func (Nop) Report(Event) {}

// Multi fans one event out to several reporters in order.
type Multi struct {
	reporters []Reporter
}

// NewMulti creates a reporter that forwards to all given reporters.
func NewMulti(reporters ...Reporter) *Multi {
	return &Multi{reporters: reporters}
}

// Report implements Reporter.
func (m *Multi) Report(e Event) {
	for _, r := range m.reporters {
		r.Report(e)
	}
}
