package build

import (
	"time"

	"github.com/sirupsen/logrus"
)

// FilterByDuration drops builds with a derived duration below minSeconds or
// above maxSeconds. A nil bound is not applied. Builds without a duration
// survive only when no bound is set at all: a bound expresses interest in
// duration, and a record without one carries no durational information.
func FilterByDuration(builds []Build, minSeconds, maxSeconds *int) []Build {
	kept := builds

	if minSeconds != nil {
		logrus.Info("filter builds: ignore_builds_shorter_than")
		kept = keep(kept, func(b Build) bool {
			return b.DurationSeconds != nil && *b.DurationSeconds >= float64(*minSeconds)
		})
	}

	if maxSeconds != nil {
		logrus.Info("filter builds: ignore_builds_longer_than")
		kept = keep(kept, func(b Build) bool {
			return b.DurationSeconds != nil && *b.DurationSeconds <= float64(*maxSeconds)
		})
	}

	return kept
}

// FilterFinishedSince drops builds that finished before the given time.
// Builds without a finish timestamp are dropped too.
func FilterFinishedSince(builds []Build, earliest time.Time) []Build {
	logrus.Infof("filter builds: ignore_builds_before: %s", earliest)
	return keep(builds, func(b Build) bool {
		return b.FinishedAt != nil && !b.FinishedAt.Before(earliest)
	})
}

// FilterPassed keeps only builds in the passed state.
func FilterPassed(builds []Build) []Build {
	logrus.Info("filter builds: passed (keep)")
	return keep(builds, func(b Build) bool {
		return b.State == StateValuePassed
	})
}

func keep(builds []Build, pred func(Build) bool) []Build {
	kept := make([]Build, 0, len(builds))
	for _, b := range builds {
		if pred(b) {
			kept = append(kept, b)
		}
	}
	logrus.Infof("survived filter: %d", len(kept))
	logrus.Infof("dropped by filter: %d", len(builds)-len(kept))
	return kept
}
