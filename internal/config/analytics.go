package config

import "time"

// AnalyticsConfig configures metric storage and trend analysis.
type AnalyticsConfig struct {
	DatabasePath   string  `yaml:"database_path" json:"database_path"`     // SQLite database location
	TrendWindow    string  `yaml:"trend_window" json:"trend_window"`       // Period examined by trend queries
	TrendThreshold float64 `yaml:"trend_threshold" json:"trend_threshold"` // Percent change considered a real trend
	CoverageTarget float64 `yaml:"coverage_target" json:"coverage_target"` // Target test coverage percent
}

// GetTrendWindow returns the trend window as a duration.
func (c *AnalyticsConfig) GetTrendWindow() time.Duration {
	d, err := time.ParseDuration(c.TrendWindow)
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}

// GetTrendThreshold returns the trend threshold percent, defaulting to 5.
func (c *AnalyticsConfig) GetTrendThreshold() float64 {
	if c.TrendThreshold <= 0 {
		return 5.0
	}
	return c.TrendThreshold
}
