package config

import "time"

// VisionConfig configures the vision document.
type VisionConfig struct {
	Path          string `yaml:"path" json:"path"`                     // Vision file, relative to the workspace
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce"` // Settle window for file watching
	AutoSeed      bool   `yaml:"auto_seed" json:"auto_seed"`           // Seed a default vision on init
}

// GetWatchDebounce returns the watch debounce as a duration.
func (c *VisionConfig) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.WatchDebounce)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}
