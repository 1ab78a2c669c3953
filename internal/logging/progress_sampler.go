package logging

import "strings"

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when tasks or percentage buckets change.
type ProgressSampler struct {
	bucketSize float64
	lastTask   string
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 5%) or when the task changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress tick should be logged. Percent can be
// negative to indicate "unknown"; task is trimmed before comparison.
func (s *ProgressSampler) ShouldLog(percent float64, task string) bool {
	if s == nil {
		return true
	}
	task = strings.TrimSpace(task)
	emit := false
	if task != "" && task != s.lastTask {
		s.lastTask = task
		s.lastBucket = -1
		emit = true
	}
	if percent >= 0 {
		bucket := int(percent / s.bucketSize)
		if percent >= 100 {
			bucket = int(100 / s.bucketSize)
		}
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state when a new job starts.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastTask = ""
	s.lastBucket = -1
}
