package config

import "time"

// DashboardConfig configures status rendering.
type DashboardConfig struct {
	Theme           string `yaml:"theme" json:"theme"`                       // dark, light
	RefreshInterval string `yaml:"refresh_interval" json:"refresh_interval"` // Watch mode re-render period
}

// GetRefreshInterval returns the watch refresh interval as a duration.
func (c *DashboardConfig) GetRefreshInterval() time.Duration {
	d, err := time.ParseDuration(c.RefreshInterval)
	if err != nil {
		return 2 * time.Second
	}
	return d
}
