package build

import (
	"testing"
	"time"
)

func durBuild(number int, state string, durationSeconds float64) Build {
	d := durationSeconds
	return Build{Number: number, State: state, DurationSeconds: &d}
}

func intPtr(v int) *int { return &v }

func TestFilterByDuration(t *testing.T) {
	builds := []Build{
		durBuild(1, "passed", 10),
		durBuild(2, "passed", 100),
		durBuild(3, "passed", 1000),
		{Number: 4, State: "passed"}, // no duration
	}

	kept := FilterByDuration(builds, intPtr(50), intPtr(500))
	if len(kept) != 1 || kept[0].Number != 2 {
		t.Errorf("kept = %+v, want only build 2", kept)
	}

	// No bounds: everything survives, including the duration-less build.
	kept = FilterByDuration(builds, nil, nil)
	if len(kept) != 4 {
		t.Errorf("kept %d builds with no bounds, want 4", len(kept))
	}
}

func TestFilterFinishedSince(t *testing.T) {
	cutoff := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	before := cutoff.Add(-time.Hour)
	after := cutoff.Add(time.Hour)

	builds := []Build{
		{Number: 1, FinishedAt: &before},
		{Number: 2, FinishedAt: &after},
		{Number: 3}, // never finished
	}

	kept := FilterFinishedSince(builds, cutoff)
	if len(kept) != 1 || kept[0].Number != 2 {
		t.Errorf("kept = %+v, want only build 2", kept)
	}
}

func TestFilterPassed(t *testing.T) {
	builds := []Build{
		{Number: 1, State: "passed"},
		{Number: 2, State: "failed"},
		{Number: 3, State: "canceled"},
		{Number: 4, State: "passed"},
	}

	kept := FilterPassed(builds)
	if len(kept) != 2 || kept[0].Number != 1 || kept[1].Number != 4 {
		t.Errorf("kept = %+v, want builds 1 and 4", kept)
	}
}
