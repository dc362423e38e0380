package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"cistat/internal/build"
	"cistat/internal/buildkite"
	"cistat/internal/cache"
	"cistat/internal/report"
	"cistat/internal/settings"
)

// tokenEnvVar holds the Buildkite API access token.
const tokenEnvVar = "BUILDKITE_API_TOKEN"

var (
	outputDirectory     string
	ignoreShorterThan   int
	ignoreLongerThan    int
	ignoreBuildsBefore  string
	multiPlotOnly       bool
	multiPlotStepKeys   []string
	settingsFile        string
	cachePath           string
	logLevel            string
)

var bkCmd = &cobra.Command{
	Use:   "bk ORG PIPELINE",
	Short: "Analyze a Buildkite pipeline",
	Long: `Fetch finished builds for the given org and pipeline slugs from the
Buildkite API (incrementally topping up a local cache), compute duration
trends, build rate and stability over rolling windows, and write PNG figures
plus a Markdown table of the busiest build steps.

The API access token is read from ` + tokenEnvVar + `.`,
	Args: cobra.ExactArgs(2),
	RunE: runBK,
}

func init() {
	today := time.Now().UTC().Format("2006-01-02")

	bkCmd.Flags().StringVar(&outputDirectory, "output-directory", today+"_report", "Directory receiving the figure files")
	bkCmd.Flags().IntVar(&ignoreShorterThan, "ignore-builds-shorter-than", 0, "Drop builds shorter than this many seconds")
	bkCmd.Flags().IntVar(&ignoreLongerThan, "ignore-builds-longer-than", 0, "Drop builds longer than this many seconds")
	bkCmd.Flags().StringVar(&ignoreBuildsBefore, "ignore-builds-before", "", "Drop builds that finished before this date (YYYY-MM-DD)")
	bkCmd.Flags().BoolVar(&multiPlotOnly, "multi-plot-only", false, "Do not write individual figure files, only the multi-panel figure")
	bkCmd.Flags().StringArrayVar(&multiPlotStepKeys, "multi-plot-add-step-duration", nil, "Add a duration panel for this step key (repeatable)")
	bkCmd.Flags().StringVar(&settingsFile, "settings", "", "Path to a YAML settings file with analysis tunables")
	bkCmd.Flags().StringVar(&cachePath, "cache-path", "builds.db", "Path to the local build cache database")
	bkCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runBK(cmd *cobra.Command, args []string) error {
	org, pipeline := args[0], args[1]

	if err := setupLogging(logLevel); err != nil {
		return err
	}

	token := os.Getenv(tokenEnvVar)
	if token == "" {
		return fmt.Errorf("%s is not set; an API access token is required", tokenEnvVar)
	}

	cfg := settings.Default()
	if settingsFile != "" {
		var err error
		cfg, err = settings.Load(settingsFile)
		if err != nil {
			return err
		}
	}

	var earliest time.Time
	if ignoreBuildsBefore != "" {
		var err error
		earliest, err = time.ParseInLocation("2006-01-02", ignoreBuildsBefore, time.UTC)
		if err != nil {
			return fmt.Errorf("bad --ignore-builds-before: %w", err)
		}
	}

	if err := prepareOutputDirectory(outputDirectory); err != nil {
		return err
	}

	store, err := cache.Open(cachePath)
	if err != nil {
		return err
	}
	defer store.Close()

	client := buildkite.NewClient(token)
	maxAge := time.Duration(cfg.CacheMaxAgeMinutes) * time.Minute

	raw, err := buildkite.SyncBuilds(cmd.Context(), client, store, org, pipeline,
		[]string{buildkite.StateFinished}, maxAge)
	if err != nil {
		return err
	}

	builds := build.Normalize(raw)
	builds = build.FilterByDuration(builds, optionalSeconds(cmd, "ignore-builds-shorter-than", ignoreShorterThan),
		optionalSeconds(cmd, "ignore-builds-longer-than", ignoreLongerThan))
	if !earliest.IsZero() {
		builds = build.FilterFinishedSince(builds, earliest)
	}

	rctx := report.NewContext(report.Options{
		Org:                 org,
		Pipeline:            pipeline,
		OutputDir:           outputDirectory,
		TopN:                cfg.TopN,
		ChartTopN:           cfg.ChartTopN,
		DurationWindowDays:  cfg.DurationWindowDays,
		RateWindowDays:      cfg.RateWindowDays,
		StabilityWindowDays: cfg.StabilityWindowDays,
		MultiPlotOnly:       multiPlotOnly,
		ExtraStepKeys:       multiPlotStepKeys,
	})

	return report.Generate(rctx, builds)
}

// prepareOutputDirectory ensures a clean output directory. A path that exists
// but is not a directory is a fatal configuration error.
func prepareOutputDirectory(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			logrus.Errorf("the specified output directory path does not point to a directory: %s", path)
			return fmt.Errorf("output directory path is not a directory: %s", path)
		}
		logrus.Infof("remove output directory: %s", path)
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("removing output directory: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("inspecting output directory: %w", err)
	}

	logrus.Infof("create output directory: %s", path)
	return os.MkdirAll(path, 0755)
}

// optionalSeconds returns the flag value as a pointer, or nil when the flag
// was not set (zero is a valid threshold, so presence matters).
func optionalSeconds(cmd *cobra.Command, name string, value int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func setupLogging(level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("bad --log-level: %w", err)
	}
	logrus.SetLevel(parsed)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "060102-15:04:05",
	})
	return nil
}
