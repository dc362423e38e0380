package build

import (
	"time"

	"github.com/sirupsen/logrus"

	"cistat/internal/buildkite"
)

// jobTypeWaiter marks structural wait steps; they carry no step key and no
// meaningful duration.
const jobTypeWaiter = "waiter"

// Normalize converts raw API records into normalized Build records: parses
// timestamp strings, derives durations, skips waiter jobs and stamps each job
// with its owning build number. The input is not modified, so normalizing is
// a pure transformation and cannot be applied twice to the same data.
//
// Null or malformed timestamps are never fatal: the anomaly is logged and the
// affected derived duration stays nil.
func Normalize(raw []buildkite.Build) []Build {
	logrus.Infof("process %d builds, rewrite meta data", len(raw))

	builds := make([]Build, 0, len(raw))
	for _, rb := range raw {
		b := Build{
			Number:      rb.Number,
			State:       rb.State,
			Branch:      rb.Branch,
			CreatedAt:   parseTimestamp(rb.CreatedAt, rb.Number, "created_at"),
			ScheduledAt: parseTimestamp(rb.ScheduledAt, rb.Number, "scheduled_at"),
			StartedAt:   parseTimestamp(rb.StartedAt, rb.Number, "started_at"),
			FinishedAt:  parseTimestamp(rb.FinishedAt, rb.Number, "finished_at"),
		}
		b.DurationSeconds = deriveDuration(b.StartedAt, b.FinishedAt)

		for _, rj := range rb.Jobs {
			if rj.Type == jobTypeWaiter {
				continue
			}
			j := Job{
				ID:          rj.ID,
				Type:        rj.Type,
				Name:        rj.Name,
				StepKey:     rj.StepKey,
				BuildNumber: rb.Number,
				CreatedAt:   parseTimestamp(rj.CreatedAt, rb.Number, "job created_at"),
				ScheduledAt: parseTimestamp(rj.ScheduledAt, rb.Number, "job scheduled_at"),
				StartedAt:   parseTimestamp(rj.StartedAt, rb.Number, "job started_at"),
				FinishedAt:  parseTimestamp(rj.FinishedAt, rb.Number, "job finished_at"),
			}
			j.DurationSeconds = deriveDuration(j.StartedAt, j.FinishedAt)
			b.Jobs = append(b.Jobs, j)
		}

		builds = append(builds, b)
	}

	logrus.Info("done re-writing builds")
	return builds
}

// parseTimestamp parses a Zulu-suffixed ISO 8601 string. An empty string
// (field null or absent upstream) yields nil without noise; a malformed value
// is logged and also yields nil.
func parseTimestamp(s string, buildNumber int, field string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		logrus.Warnf("build %d: unparsable %s %q: %v", buildNumber, field, s, err)
		return nil
	}
	t = t.UTC()
	return &t
}

func deriveDuration(started, finished *time.Time) *float64 {
	if started == nil || finished == nil {
		return nil
	}
	d := finished.Sub(*started).Seconds()
	return &d
}
