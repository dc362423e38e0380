// Package settings loads optional analysis tunables from a YAML file.
package settings

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings are the analysis tunables. Zero values in the file fall back to
// the defaults.
type Settings struct {
	// DurationWindowDays is the rolling window for duration trends.
	DurationWindowDays int `yaml:"duration_window_days"`

	// RateWindowDays is the rolling window for the build-rate chart.
	RateWindowDays int `yaml:"rate_window_days"`

	// StabilityWindowDays is the rolling window for the stability ratio.
	StabilityWindowDays int `yaml:"stability_window_days"`

	// TopN is the number of rows in the step-key table.
	TopN int `yaml:"top_step_keys"`

	// ChartTopN is the number of busiest step keys charted individually.
	ChartTopN int `yaml:"chart_step_keys"`

	// CacheMaxAgeMinutes is how long the local build cache is considered
	// fresh before an incremental top-up fetch.
	CacheMaxAgeMinutes int `yaml:"cache_max_age_minutes"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		DurationWindowDays:  10,
		RateWindowDays:      7,
		StabilityWindowDays: 7,
		TopN:                7,
		ChartTopN:           4,
		CacheMaxAgeMinutes:  300,
	}
}

// Load reads settings from path, overlaying the defaults. Unknown fields are
// rejected so typos surface instead of silently falling back.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	s := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return Settings{}, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if err := s.validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) validate() error {
	for name, v := range map[string]int{
		"duration_window_days":  s.DurationWindowDays,
		"rate_window_days":      s.RateWindowDays,
		"stability_window_days": s.StabilityWindowDays,
		"top_step_keys":         s.TopN,
		"chart_step_keys":       s.ChartTopN,
		"cache_max_age_minutes": s.CacheMaxAgeMinutes,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	return nil
}
