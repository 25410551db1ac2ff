// Package main implements the forge CLI commands.
// This file contains the analytics commands: metric recording, trend
// inspection, and report export.
package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"forge/internal/analytics"
	"forge/internal/config"
)

var (
	recordTags []string

	trendsMetric string
	trendsWindow time.Duration

	reportOutput string
	reportWindow time.Duration
)

// analyticsCmd is the parent command for analytics operations
var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Record and inspect project metrics",
	Long: `Metrics live in a SQLite database at .forge/analytics.db. forge knows
three canonical metrics with their own trend windows:

  test_coverage  - percent, 30 day window
  velocity       - features per recording, 14 day window
  quality_score  - 0-100, 30 day window

Any other metric name records and trends just as well.

Examples:
  forge analytics record test_coverage 84.5
  forge analytics trends
  forge analytics report --output report.md`,
}

var analyticsRecordCmd = &cobra.Command{
	Use:   "record <metric> <value>",
	Short: "Record a metric data point",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyticsRecord,
}

var analyticsTrendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Show metric trends",
	RunE:  runAnalyticsTrends,
}

var analyticsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize recorded metrics",
	Long: `Prints a summary of every metric recorded in the window. With
--output the summary is written as a markdown report instead.`,
	RunE: runAnalyticsReport,
}

// openStore opens the analytics database for the current workspace,
// honoring the configured database path and trend threshold.
func openStore() (*analytics.Store, *config.Config, error) {
	ws := resolveWorkspace()
	cfg, err := config.Load(config.ConfigPathIn(ws))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	dbPath := cfg.Analytics.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(".forge", "analytics.db")
	}
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(ws, dbPath)
	}

	store, err := analytics.NewStore(filepath.Dir(dbPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open analytics store: %w", err)
	}
	store.TrendThreshold = cfg.Analytics.GetTrendThreshold()
	return store, cfg, nil
}

func runAnalyticsRecord(cmd *cobra.Command, args []string) error {
	name := args[0]
	value, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid metric value %q: %w", args[1], err)
	}

	tags, err := parseTags(recordTags)
	if err != nil {
		return err
	}

	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	metric, err := store.RecordMetric(name, value, tags, nil)
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}

	fmt.Printf("✅ Recorded %s = %g at %s\n", metric.Name, metric.Value, metric.Timestamp.Format("2006-01-02 15:04"))
	return nil
}

func runAnalyticsTrends(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	type namedTrend struct {
		label string
		fn    func() (*analytics.Trend, error)
	}
	lookups := []namedTrend{
		{"Test Coverage", store.CoverageTrend},
		{"Velocity", store.VelocityTrend},
		{"Quality Score", store.QualityTrend},
	}
	if trendsMetric != "" {
		window := trendsWindow
		if window <= 0 {
			window = 30 * 24 * time.Hour
		}
		lookups = []namedTrend{{trendsMetric, func() (*analytics.Trend, error) {
			return store.Trend(trendsMetric, window)
		}}}
	}

	fmt.Println("📊 Metric Trends")
	fmt.Println(strings.Repeat("─", 50))
	shown := 0
	for _, lookup := range lookups {
		t, err := lookup.fn()
		if err != nil {
			return fmt.Errorf("failed to compute trend: %w", err)
		}
		if t == nil {
			continue
		}
		shown++
		fmt.Printf(" %s %-16s %.1f (%+.1f%% over %dd)\n", trendArrow(t.Direction), lookup.label, t.Current, t.ChangePercent, t.Days())
	}
	if shown == 0 {
		fmt.Println(" Not enough data yet. Record at least two points per metric.")
	}
	return nil
}

func runAnalyticsReport(cmd *cobra.Command, args []string) error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	window := reportWindow
	if window <= 0 {
		window = cfg.Analytics.GetTrendWindow()
	}

	if reportOutput != "" {
		if err := store.ExportReport(reportOutput, window); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		fmt.Printf("✅ Report written to %s\n", reportOutput)
		return nil
	}

	summary, err := store.Summarize(window)
	if err != nil {
		return fmt.Errorf("failed to summarize metrics: %w", err)
	}

	fmt.Printf("📊 Analytics Summary (last %dd)\n", int(window.Hours()/24))
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("   Data points:    %d\n", summary.TotalMetrics)
	fmt.Printf("   Unique metrics: %d\n", summary.UniqueMetrics)

	if len(summary.Metrics) == 0 {
		fmt.Println("\nNo metrics recorded in this window.")
		return nil
	}

	names := make([]string, 0, len(summary.Metrics))
	for name := range summary.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	for _, name := range names {
		m := summary.Metrics[name]
		line := fmt.Sprintf("   %-16s current %.1f  min %.1f  max %.1f  avg %.1f  (n=%d)",
			name, m.Current, m.Min, m.Max, m.Avg, m.Count)
		if m.Trend != nil {
			line += "  " + trendArrow(m.Trend.Direction)
		}
		fmt.Println(line)
	}
	return nil
}

func trendArrow(d analytics.Direction) string {
	switch d {
	case analytics.TrendUp:
		return "📈"
	case analytics.TrendDown:
		return "📉"
	default:
		return "➡️"
	}
}

// parseTags converts repeated key=value flags into a tag map.
func parseTags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	tags := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid tag %q, expected key=value", pair)
		}
		tags[key] = value
	}
	return tags, nil
}

func init() {
	analyticsRecordCmd.Flags().StringArrayVar(&recordTags, "tag", nil, "Tag the data point (key=value, repeatable)")

	analyticsTrendsCmd.Flags().StringVar(&trendsMetric, "metric", "", "Trend a single metric by name")
	analyticsTrendsCmd.Flags().DurationVar(&trendsWindow, "window", 0, "Window for --metric (default 720h)")

	analyticsReportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write a markdown report to this path")
	analyticsReportCmd.Flags().DurationVar(&reportWindow, "window", 0, "Summary window (default 168h)")

	analyticsCmd.AddCommand(analyticsRecordCmd)
	analyticsCmd.AddCommand(analyticsTrendsCmd)
	analyticsCmd.AddCommand(analyticsReportCmd)
}
