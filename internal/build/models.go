// Package build turns raw Buildkite records into normalized build/job
// records, filters them, and derives the step-key histogram.
package build

import "time"

// Build is one normalized pipeline run. Timestamp fields are nil when the
// upstream record carried null (a build that never started, for example);
// DurationSeconds is non-nil exactly when both StartedAt and FinishedAt are.
type Build struct {
	Number          int
	State           string
	Branch          string
	CreatedAt       *time.Time
	ScheduledAt     *time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
	DurationSeconds *float64
	Jobs            []Job
}

// Job is one normalized step execution, carrying a back-reference to its
// owning build's number. Structural waiter jobs are dropped during
// normalization and never appear here.
type Job struct {
	ID              string
	Type            string
	Name            string
	StepKey         *string
	BuildNumber     int
	CreatedAt       *time.Time
	ScheduledAt     *time.Time
	StartedAt       *time.Time
	FinishedAt      *time.Time
	DurationSeconds *float64
}

// StateValuePassed is the upstream state of a successful build.
const StateValuePassed = "passed"
