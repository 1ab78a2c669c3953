package handbrake

import "time"

// EventKind discriminates the tagged outcomes emitted while a worker runs.
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventComplete EventKind = "complete"
	EventError    EventKind = "error"
)

// Progress is one supervision tick from the worker.
type Progress struct {
	Task    string
	Percent float64
	Rate    float64
	AvgRate float64
	ETA     time.Duration
}

// Event is a single tagged worker outcome. Progress is valid when Kind is
// EventProgress; Err is valid when Kind is EventError. A complete or error
// event is always the final event on the stream.
type Event struct {
	Kind     EventKind
	Progress Progress
	Err      error
}
