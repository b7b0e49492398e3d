package progress

// Stage identifies the crawl phase an event belongs to.
type Stage string

// Crawl stages in emission order. The values are part of the host-facing
// wire format and must not change.
const (
	// StageInitialization is emitted once, before any fetching.
	StageInitialization Stage = "initialization"

	// StageBatch is emitted after each first-pass batch settles.
	StageBatch Stage = "batch"

	// StageSecondLevel is emitted once, before the second-level fetches.
	StageSecondLevel Stage = "secondLevel"

	// StageComplete is emitted once, after the result is assembled.
	StageComplete Stage = "complete"
)

// Event is one progress snapshot. Events are transient: they are not
// persisted, and delivery is best-effort.
type Event struct {
	// Stage is the crawl phase this snapshot describes.
	Stage Stage `json:"stage"`

	// Current is the number of pages accumulated so far.
	Current int `json:"current"`

	// Total is the total number of URLs requested.
	Total int `json:"total"`

	// Message is a human-readable description of the snapshot.
	Message string `json:"message"`

	// Percent is the completion estimate, 0 to 100.
	Percent int `json:"percent"`
}

// NewEvent builds an event and derives Percent from current/total, clamped
// to 0..100. The complete stage always reports 100: completion is a fact,
// not an estimate, even when some URLs failed.
func NewEvent(stage Stage, current, total int, message string) Event {
	e := Event{
		Stage:   stage,
		Current: current,
		Total:   total,
		Message: message,
	}

	switch {
	case stage == StageComplete:
		e.Percent = 100
	case total <= 0:
		e.Percent = 0
	default:
		p := current * 100 / total
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		e.Percent = p
	}

	return e
}
