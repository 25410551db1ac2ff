package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all forge configuration, loaded from .forge/config.yaml.
type Config struct {
	// Core settings
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`

	// Project settings
	Project ProjectConfig `yaml:"project" json:"project"`

	// Vision document settings
	Vision VisionConfig `yaml:"vision" json:"vision"`

	// Agent orchestration settings
	Agents AgentsConfig `yaml:"agents" json:"agents"`

	// Analytics storage settings
	Analytics AnalyticsConfig `yaml:"analytics" json:"analytics"`

	// Dashboard rendering settings
	Dashboard DashboardConfig `yaml:"dashboard" json:"dashboard"`

	// Logging
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ProjectConfig configures the managed project.
type ProjectConfig struct {
	Workspace       string `yaml:"workspace" json:"workspace"`               // Project root directory
	Type            string `yaml:"type" json:"type"`                         // web-app, api-service, cli-tool, library, unknown
	AutoCheckpoint  bool   `yaml:"auto_checkpoint" json:"auto_checkpoint"`   // Checkpoint before phase transitions
	CheckpointLimit int    `yaml:"checkpoint_limit" json:"checkpoint_limit"` // Max checkpoints kept on disk
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "forge",
		Version: "1.0.0",

		Project: ProjectConfig{
			Workspace:       ".",
			Type:            "unknown",
			AutoCheckpoint:  true,
			CheckpointLimit: 20,
		},

		Vision: VisionConfig{
			Path:          ".forge/vision.md",
			WatchDebounce: "500ms",
			AutoSeed:      true,
		},

		Agents: AgentsConfig{
			Orchestration:   true,
			MaxParallel:     3,
			DefaultPriority: "medium",
			LearningEnabled: true,
			InteractionLog:  ".forge/interaction-log.json",
		},

		Analytics: AnalyticsConfig{
			DatabasePath:   ".forge/analytics.db",
			TrendWindow:    "168h",
			TrendThreshold: 5.0,
			CoverageTarget: 80.0,
		},

		Dashboard: DashboardConfig{
			Theme:           "dark",
			RefreshInterval: "2s",
		},

		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
	}
}

// DefaultConfigPath returns the path to .forge/config.yaml under the
// workspace root.
func DefaultConfigPath() string {
	root, err := FindWorkspaceRoot()
	if err != nil {
		return ".forge/config.yaml"
	}
	return ConfigPathIn(root)
}

// ConfigPathIn returns the config path inside an explicit workspace.
func ConfigPathIn(workspace string) string {
	return filepath.Join(workspace, ".forge", "config.yaml")
}

// FindWorkspaceRoot attempts to find the project root by looking for a
// .forge directory, then a .git directory, walking up from the current
// directory. If neither is found, returns the current working directory.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	originalDir := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".forge")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return originalDir, nil
}

// Load loads configuration from a YAML file.
// Returns defaults if the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if ws := os.Getenv("FORGE_WORKSPACE"); ws != "" {
		c.Project.Workspace = ws
	}
	if db := os.Getenv("FORGE_DB"); db != "" {
		c.Analytics.DatabasePath = db
	}
	if theme := os.Getenv("FORGE_THEME"); theme != "" {
		c.Dashboard.Theme = theme
	}
	if debug := os.Getenv("FORGE_DEBUG"); debug == "1" || debug == "true" {
		c.Logging.DebugMode = true
	}
}

// ValidPriorities lists the priority labels accepted for agent defaults.
var ValidPriorities = []string{"low", "medium", "high", "critical"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if missing := c.MissingSections(); len(missing) > 0 {
		return fmt.Errorf("missing required config sections: %v", missing)
	}

	if c.Agents.MaxParallel < 1 {
		return fmt.Errorf("agents.max_parallel must be at least 1, got %d", c.Agents.MaxParallel)
	}

	validPriority := false
	for _, p := range ValidPriorities {
		if c.Agents.DefaultPriority == p {
			validPriority = true
			break
		}
	}
	if !validPriority {
		return fmt.Errorf("invalid agents.default_priority: %s (valid: %v)", c.Agents.DefaultPriority, ValidPriorities)
	}

	if c.Analytics.CoverageTarget < 0 || c.Analytics.CoverageTarget > 100 {
		return fmt.Errorf("analytics.coverage_target must be between 0 and 100, got %.1f", c.Analytics.CoverageTarget)
	}

	return nil
}

// MissingSections returns the names of required sections that are absent
// or empty. Used by `forge config validate`.
func (c *Config) MissingSections() []string {
	var missing []string
	if c.Name == "" {
		missing = append(missing, "name")
	}
	if c.Project.Workspace == "" {
		missing = append(missing, "project")
	}
	if c.Vision.Path == "" {
		missing = append(missing, "vision")
	}
	if c.Agents.MaxParallel == 0 && c.Agents.DefaultPriority == "" {
		missing = append(missing, "agents")
	}
	if c.Analytics.DatabasePath == "" {
		missing = append(missing, "analytics")
	}
	return missing
}
