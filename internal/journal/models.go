package journal

import "time"

// Status records where a job ended up, or where it currently is.
type Status string

const (
	StatusStarted   Status = "started"
	StatusEncoding  Status = "encoding"
	StatusSkipped   Status = "skipped"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	switch s {
	case StatusSkipped, StatusCompleted, StatusCancelled, StatusFailed:
		return true
	default:
		return false
	}
}

// Entry is one journal row.
type Entry struct {
	ID              string
	SourcePath      string
	DestinationPath string
	Status          Status
	ProgressPercent float64
	ProgressTask    string
	ErrorMessage    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
