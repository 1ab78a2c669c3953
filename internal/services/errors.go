package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks preset-resolution and config failures. These are
	// absorbed locally (the preset degrades to empty) and never abort a job.
	ErrConfiguration = errors.New("configuration error")
	// ErrProbe marks a source file that could not be probed.
	ErrProbe = errors.New("probe error")
	// ErrNoVideoStream marks a probe that succeeded but found no video stream.
	ErrNoVideoStream = errors.New("no video stream")
	// ErrWorker marks a failure reported by the external encoding process.
	ErrWorker = errors.New("worker error")
	// ErrCancelled marks a job whose identifier was removed from the registry
	// while the encode was in flight.
	ErrCancelled = errors.New("job cancelled")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrWorker
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
