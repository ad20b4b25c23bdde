package pipeline

import (
	"fmt"
	"time"
)

// RunResult tracks the outcome of one full pipeline pass.
type RunResult struct {
	UsersFound     int
	UsersEvaluated int
	UsersSkipped   int
	PointsComputed int
	AlertsCreated  int
	AlertsDeduped  int
	Duration       time.Duration
	Errors         []string
}

// Summary returns a human-readable summary.
func (r *RunResult) Summary() string {
	return fmt.Sprintf(
		"found=%d evaluated=%d skipped=%d points=%d alerts=%d deduped=%d dur=%s",
		r.UsersFound, r.UsersEvaluated, r.UsersSkipped, r.PointsComputed,
		r.AlertsCreated, r.AlertsDeduped, r.Duration.Round(time.Millisecond))
}
