package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cistat/internal/build"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"acme main pipeline duration_seconds linscale", "acme-main-pipeline-duration-seconds-linscale"},
		{"Stability acme/main", "stability-acme-main"},
		{"--weird--  title!!", "weird-title"},
	}
	for _, tc := range tests {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Org:                 "acme",
		Pipeline:            "main",
		OutputDir:           t.TempDir(),
		TopN:                7,
		ChartTopN:           4,
		DurationWindowDays:  10,
		RateWindowDays:      2,
		StabilityWindowDays: 2,
	}
}

func syntheticBuilds(n int) []build.Build {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	key := "compile"

	builds := make([]build.Build, 0, n)
	for i := 0; i < n; i++ {
		s := start.Add(time.Duration(i) * 2 * time.Hour)
		f := s.Add(45 * time.Minute)
		d := f.Sub(s).Seconds()
		state := "passed"
		if i%5 == 4 {
			state = "failed"
		}

		js := s.Add(time.Minute)
		jf := js.Add(30 * time.Minute)
		jd := jf.Sub(js).Seconds()

		builds = append(builds, build.Build{
			Number:          i + 1,
			State:           state,
			StartedAt:       &s,
			FinishedAt:      &f,
			DurationSeconds: &d,
			Jobs: []build.Job{
				{
					ID:              "job",
					Type:            "script",
					StepKey:         &key,
					BuildNumber:     i + 1,
					StartedAt:       &js,
					FinishedAt:      &jf,
					DurationSeconds: &jd,
				},
			},
		})
	}
	return builds
}

func TestGenerateEmptyPipeline(t *testing.T) {
	c := NewContext(testOptions(t))
	var out bytes.Buffer
	c.Stdout = &out

	if err := Generate(c, nil); err != nil {
		t.Fatalf("Generate with no builds: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no table output, got %q", out.String())
	}
	if len(c.FigurePaths) != 0 {
		t.Errorf("expected no figures, got %v", c.FigurePaths)
	}
}

func TestGenerateWritesFiguresAndTable(t *testing.T) {
	opts := testOptions(t)
	c := NewContext(opts)
	var out bytes.Buffer
	c.Stdout = &out

	// A week of builds every two hours gives all analyses enough data.
	if err := Generate(c, syntheticBuilds(7*12)); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(out.String(), "compile") {
		t.Errorf("step-key table missing from stdout:\n%s", out.String())
	}

	for _, figID := range []string{
		"pipeline_duration_linscale",
		"pipeline_duration_logscale",
		"step_compile_linscale",
		"build_rate",
		"stability",
		"summary",
	} {
		fname, ok := c.FigurePaths[figID]
		if !ok {
			t.Errorf("figure %q not recorded; have %v", figID, c.FigurePaths)
			continue
		}
		if _, err := os.Stat(filepath.Join(opts.OutputDir, fname)); err != nil {
			t.Errorf("figure file %s missing: %v", fname, err)
		}
	}
}

func TestGenerateMultiPlotOnly(t *testing.T) {
	opts := testOptions(t)
	opts.MultiPlotOnly = true
	c := NewContext(opts)
	c.Stdout = &bytes.Buffer{}

	if err := Generate(c, syntheticBuilds(7*12)); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, ok := c.FigurePaths["summary"]; !ok {
		t.Errorf("summary figure missing; have %v", c.FigurePaths)
	}
	if len(c.FigurePaths) != 1 {
		t.Errorf("expected only the summary figure, got %v", c.FigurePaths)
	}

	entries, err := os.ReadDir(opts.OutputDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file in output dir, found %d", len(entries))
	}
}

func TestGenerateExtraStepKeyPanel(t *testing.T) {
	opts := testOptions(t)
	opts.MultiPlotOnly = true
	opts.ExtraStepKeys = []string{"compile", "does-not-exist"}
	c := NewContext(opts)
	c.Stdout = &bytes.Buffer{}

	// The unknown key is skipped with a warning; the known one adds a panel
	// and the report still renders.
	if err := Generate(c, syntheticBuilds(7*12)); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, ok := c.FigurePaths["summary"]; !ok {
		t.Errorf("summary figure missing; have %v", c.FigurePaths)
	}
}
