package analytics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"forge/internal/logging"
)

// Summarize aggregates every metric recorded inside the window ending now.
func (s *Store) Summarize(window time.Duration) (*Summary, error) {
	now := s.now().UTC()
	start := now.Add(-window)

	recent, err := s.GetMetrics("", start, now, nil)
	if err != nil {
		return nil, err
	}

	byName := make(map[string][]Metric)
	for _, m := range recent {
		byName[m.Name] = append(byName[m.Name], m)
	}

	summary := &Summary{
		Window:        window,
		Start:         start,
		End:           now,
		TotalMetrics:  len(recent),
		UniqueMetrics: len(byName),
		Metrics:       make(map[string]MetricSummary, len(byName)),
	}

	for name, metrics := range byName {
		ms := MetricSummary{
			Count:   len(metrics),
			Current: metrics[len(metrics)-1].Value,
			Min:     metrics[0].Value,
			Max:     metrics[0].Value,
		}
		var sum float64
		for _, m := range metrics {
			sum += m.Value
			if m.Value < ms.Min {
				ms.Min = m.Value
			}
			if m.Value > ms.Max {
				ms.Max = m.Value
			}
		}
		ms.Avg = sum / float64(len(metrics))

		if trend, err := s.Trend(name, window); err == nil && trend != nil {
			ms.Trend = trend
		}
		summary.Metrics[name] = ms
	}

	return summary, nil
}

// directionGlyph maps trend directions to their report markers.
var directionGlyph = map[Direction]string{
	TrendUp:     "📈",
	TrendDown:   "📉",
	TrendStable: "➡️",
}

// ExportReport writes a markdown analytics report for the window to path.
func (s *Store) ExportReport(path string, window time.Duration) error {
	summary, err := s.Summarize(window)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("# Project Analytics Report\n\n")
	b.WriteString(fmt.Sprintf("**Period**: %d days\n", int(window.Hours()/24)))
	b.WriteString(fmt.Sprintf("**Generated**: %s\n\n", summary.End.Format("2006-01-02 15:04:05 UTC")))
	b.WriteString("---\n\n")

	b.WriteString("## Summary\n\n")
	b.WriteString(fmt.Sprintf("- **Total Data Points**: %d\n", summary.TotalMetrics))
	b.WriteString(fmt.Sprintf("- **Unique Metrics**: %d\n", summary.UniqueMetrics))
	b.WriteString(fmt.Sprintf("- **Period**: %s to %s\n\n",
		summary.Start.Format(time.RFC3339), summary.End.Format(time.RFC3339)))
	b.WriteString("---\n\n")

	b.WriteString("## Metrics\n\n")

	names := make([]string, 0, len(summary.Metrics))
	for name := range summary.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		stats := summary.Metrics[name]
		b.WriteString(fmt.Sprintf("### %s\n\n", metricTitle(name)))
		b.WriteString(fmt.Sprintf("- **Current Value**: %.2f\n", stats.Current))
		b.WriteString(fmt.Sprintf("- **Average**: %.2f\n", stats.Avg))
		b.WriteString(fmt.Sprintf("- **Min**: %.2f\n", stats.Min))
		b.WriteString(fmt.Sprintf("- **Max**: %.2f\n", stats.Max))
		b.WriteString(fmt.Sprintf("- **Data Points**: %d\n\n", stats.Count))

		if stats.Trend != nil {
			b.WriteString(fmt.Sprintf("**Trend**: %s %s (%+.1f%%)\n\n",
				directionGlyph[stats.Trend.Direction],
				strings.ToUpper(string(stats.Trend.Direction)),
				stats.Trend.ChangePercent))
		}
	}

	b.WriteString("---\n\n")
	b.WriteString("## Interpretation\n\n")
	b.WriteString("- 📈 **Up**: Metric is increasing over time\n")
	b.WriteString("- 📉 **Down**: Metric is decreasing over time\n")
	b.WriteString(fmt.Sprintf("- ➡️ **Stable**: Metric has less than %.0f%% change\n\n", s.threshold()))
	b.WriteString("---\n\n")
	b.WriteString(fmt.Sprintf("*Generated by Forge Analytics on %s*\n", summary.End.Format("2006-01-02")))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	logging.Analytics("report exported to %s", path)
	return nil
}

func (s *Store) threshold() float64 {
	if s.TrendThreshold > 0 {
		return s.TrendThreshold
	}
	return defaultTrendThreshold
}

// metricTitle turns a snake_case metric name into a heading.
func metricTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
