package services

import (
	"errors"

	"winnow/internal/journal"
)

// FailureStatus maps a job-ending error to the journal status that should be
// recorded for it. Cancellation is the only failure that is not a failure.
func FailureStatus(err error) journal.Status {
	if errors.Is(err, ErrCancelled) {
		return journal.StatusCancelled
	}
	return journal.StatusFailed
}
