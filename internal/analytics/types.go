// Package analytics records project metrics in SQLite and derives trends,
// summaries, and markdown reports from them.
package analytics

import "time"

// Canonical trend windows per metric family.
const (
	CoverageWindow = 30 * 24 * time.Hour
	VelocityWindow = 14 * 24 * time.Hour
	QualityWindow  = 30 * 24 * time.Hour
)

// Direction classifies how a metric moves over a window.
type Direction string

const (
	TrendUp     Direction = "up"
	TrendDown   Direction = "down"
	TrendStable Direction = "stable"
)

// Metric is a single recorded data point.
type Metric struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Timestamp time.Time         `json:"timestamp"`
	Tags      map[string]string `json:"tags,omitempty"`
	Metadata  map[string]any    `json:"metadata,omitempty"`
}

// Trend compares the first and second half of a metric's window.
type Trend struct {
	Metric        string        `json:"metric"`
	Direction     Direction     `json:"direction"`
	ChangePercent float64       `json:"change_percent"`
	Current       float64       `json:"current"`  // Second-half average
	Previous      float64       `json:"previous"` // First-half average
	Window        time.Duration `json:"window"`
}

// Days returns the trend window in whole days.
func (t *Trend) Days() int {
	return int(t.Window.Hours() / 24)
}

// MetricSummary aggregates one metric over a window.
type MetricSummary struct {
	Count   int     `json:"count"`
	Current float64 `json:"current"` // Most recent value
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Avg     float64 `json:"avg"`
	Trend   *Trend  `json:"trend,omitempty"`
}

// Summary aggregates all metrics recorded in a window.
type Summary struct {
	Window        time.Duration            `json:"window"`
	Start         time.Time                `json:"start"`
	End           time.Time                `json:"end"`
	TotalMetrics  int                      `json:"total_metrics"`
	UniqueMetrics int                      `json:"unique_metrics"`
	Metrics       map[string]MetricSummary `json:"metrics"`
}
