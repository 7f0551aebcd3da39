package runner

import (
	"fmt"
	"time"
)

// Stats accumulates per-run counters. Every processed code increments
// exactly one of the three counters; items whose filters matched no data
// count as failed.
type Stats struct {
	Successful int
	Failed     int
	Skipped    int

	Started  time.Time
	Finished time.Time
}

// Total returns the number of codes that reached a terminal outcome,
// skips included.
func (s *Stats) Total() int {
	return s.Successful + s.Failed + s.Skipped
}

// Summary renders a human-readable run report.
func (s *Stats) Summary() string {
	duration := s.Finished.Sub(s.Started).Round(time.Second)
	processed := s.Successful + s.Failed

	rate := 0.0
	if processed > 0 {
		rate = float64(s.Successful) / float64(processed) * 100
	}
	perMinute := 0.0
	if minutes := duration.Minutes(); minutes > 0 {
		perMinute = float64(processed) / minutes
	}

	return fmt.Sprintf(
		"processed %d codes in %s: %d created, %d failed, %d skipped (%.1f%% success, %.1f items/min)",
		processed, duration, s.Successful, s.Failed, s.Skipped, rate, perMinute,
	)
}
