package progress

import (
	"io"
	"log/slog"
	"sync"
	"testing"
)

// TestNewEvent tests percent derivation and clamping.
func TestNewEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		stage   Stage
		current int
		total   int
		want    int
	}{
		{"zero progress", StageInitialization, 0, 10, 0},
		{"half done", StageBatch, 5, 10, 50},
		{"all done", StageBatch, 10, 10, 100},
		{"overshoot clamps to 100", StageBatch, 15, 10, 100},
		{"negative clamps to 0", StageBatch, -3, 10, 0},
		{"zero total reports 0", StageBatch, 5, 0, 0},
		{"negative total reports 0", StageBatch, 5, -1, 0},
		{"complete always 100", StageComplete, 3, 10, 100},
		{"complete with zero total still 100", StageComplete, 0, 0, 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := NewEvent(tt.stage, tt.current, tt.total, "msg")
			if e.Percent != tt.want {
				t.Errorf("Percent = %d, want %d", e.Percent, tt.want)
			}
			if e.Stage != tt.stage || e.Current != tt.current || e.Total != tt.total {
				t.Errorf("event fields not preserved: %+v", e)
			}
			if e.Message != "msg" {
				t.Errorf("Message = %q", e.Message)
			}
		})
	}
}

// TestChannelReporterDelivery tests queued events are readable in order.
func TestChannelReporterDelivery(t *testing.T) {
	t.Parallel()

	r := NewChannelReporter(4)
	defer r.Close()

	r.Report(NewEvent(StageInitialization, 0, 2, "starting"))
	r.Report(NewEvent(StageBatch, 1, 2, "batch done"))

	first := <-r.Events()
	if first.Stage != StageInitialization {
		t.Errorf("first event stage = %q, expected initialization", first.Stage)
	}

	second := <-r.Events()
	if second.Stage != StageBatch || second.Current != 1 {
		t.Errorf("unexpected second event: %+v", second)
	}

	if r.Dropped() != 0 {
		t.Errorf("Dropped() = %d, expected 0", r.Dropped())
	}
}

// TestChannelReporterDropOnFull tests that a full buffer never blocks.
func TestChannelReporterDropOnFull(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewChannelReporter(2, WithChannelLogger(logger))
	defer r.Close()

	// Nobody is draining; only the first two fit.
	for i := 0; i < 5; i++ {
		r.Report(NewEvent(StageBatch, i, 5, "batch"))
	}

	if got := r.Dropped(); got != 3 {
		t.Errorf("Dropped() = %d, expected 3", got)
	}

	// Queued events survive the drops.
	e := <-r.Events()
	if e.Current != 0 {
		t.Errorf("expected oldest event first, got %+v", e)
	}
}

// TestChannelReporterClose tests close semantics.
func TestChannelReporterClose(t *testing.T) {
	t.Parallel()

	t.Run("close drains remaining events", func(t *testing.T) {
		t.Parallel()

		r := NewChannelReporter(4)
		r.Report(NewEvent(StageComplete, 2, 2, "done"))
		r.Close()

		e, ok := <-r.Events()
		if !ok {
			t.Fatal("queued event should remain readable after Close")
		}
		if e.Stage != StageComplete {
			t.Errorf("unexpected event: %+v", e)
		}

		if _, ok := <-r.Events(); ok {
			t.Error("channel should be closed after draining")
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		r := NewChannelReporter(1)
		r.Close()
		r.Close() // must not panic
	})

	t.Run("report after close drops", func(t *testing.T) {
		t.Parallel()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		r := NewChannelReporter(4, WithChannelLogger(logger))
		r.Close()

		r.Report(NewEvent(StageBatch, 1, 2, "late")) // must not panic

		if got := r.Dropped(); got != 1 {
			t.Errorf("Dropped() = %d, expected 1", got)
		}
	})
}

// TestChannelReporterConcurrent tests concurrent producers against Close.
func TestChannelReporterConcurrent(t *testing.T) {
	t.Parallel()

	r := NewChannelReporter(8)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range r.Events() {
		}
	}()

	var wg sync.WaitGroup
	for n := 0; n < 10; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				r.Report(NewEvent(StageBatch, j, 20, "batch"))
			}
		}()
	}
	wg.Wait()

	r.Close()
	<-done
}

// TestNewChannelReporterBufferDefault tests the default buffer depth.
func TestNewChannelReporterBufferDefault(t *testing.T) {
	t.Parallel()

	r := NewChannelReporter(0)
	defer r.Close()

	if got := cap(r.ch); got != defaultBuffer {
		t.Errorf("buffer = %d, expected default %d", got, defaultBuffer)
	}
}

// recordingReporter captures events for assertions.
type recordingReporter struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingReporter) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// TestMulti tests fan-out to multiple reporters.
func TestMulti(t *testing.T) {
	t.Parallel()

	a := &recordingReporter{}
	b := &recordingReporter{}
	m := NewMulti(a, b, Nop{})

	m.Report(NewEvent(StageInitialization, 0, 3, "starting"))
	m.Report(NewEvent(StageComplete, 3, 3, "done"))

	for name, r := range map[string]*recordingReporter{"first": a, "second": b} {
		if len(r.events) != 2 {
			t.Errorf("%s reporter saw %d events, expected 2", name, len(r.events))
			continue
		}
		if r.events[1].Stage != StageComplete {
			t.Errorf("%s reporter last event = %+v", name, r.events[1])
		}
	}
}

// TestLogReporter tests that events reach the logger without error.
func TestLogReporter(t *testing.T) {
	t.Parallel()

	t.Run("writes to given logger", func(t *testing.T) {
		t.Parallel()

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		r := NewLogReporter(logger)
		r.Report(NewEvent(StageBatch, 1, 2, "batch settled"))
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()

		r := NewLogReporter(nil)
		if r.logger == nil {
			t.Error("expected fallback logger")
		}
	})
}

// TestNop tests the discard reporter.
func TestNop(t *testing.T) {
	t.Parallel()

	var r Reporter = Nop{}
	r.Report(NewEvent(StageComplete, 1, 1, "done")) // must not panic
}
