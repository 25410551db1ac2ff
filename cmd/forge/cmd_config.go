// Package main implements the forge CLI commands.
// This file contains configuration display and validation.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"forge/internal/config"
)

var (
	configJSON    bool
	configSection string
)

// configCmd is the parent command for configuration operations
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate the forge configuration",
	Long: `forge reads .forge/config.yaml, fills in defaults for anything
missing, and applies FORGE_* environment overrides. These commands show
the effective result.

Subcommands:
  show     - Print the effective configuration
  validate - Check the configuration for problems

Examples:
  forge config show
  forge config show --section agents
  forge config validate`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for problems",
	RunE:  runConfigValidate,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	path := config.ConfigPathIn(ws)

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var subject any = cfg
	if configSection != "" {
		subject, err = configSectionValue(cfg, configSection)
		if err != nil {
			return err
		}
	}

	if configJSON {
		return printJSON(subject)
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("# %s\n", path)
	} else {
		fmt.Println("# defaults (no config file found; run 'forge init' to write one)")
	}
	data, err := yaml.Marshal(subject)
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	cfg, err := config.Load(config.ConfigPathIn(ws))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("🔧 Configuration Check")
	fmt.Println(strings.Repeat("─", 50))

	if missing := cfg.MissingSections(); len(missing) > 0 {
		fmt.Printf(" ✗ missing sections: %s\n", strings.Join(missing, ", "))
	} else {
		fmt.Println(" ✓ all required sections present")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf(" ✗ %v\n", err)
		return fmt.Errorf("configuration is invalid")
	}

	fmt.Println(" ✓ agents and analytics settings in range")
	fmt.Printf(" ✓ workspace: %s\n", ws)
	fmt.Println("\n✅ Configuration is valid")
	return nil
}

// configSectionValue picks one top-level section by name.
func configSectionValue(cfg *config.Config, section string) (any, error) {
	switch strings.ToLower(section) {
	case "project":
		return cfg.Project, nil
	case "vision":
		return cfg.Vision, nil
	case "agents":
		return cfg.Agents, nil
	case "analytics":
		return cfg.Analytics, nil
	case "dashboard":
		return cfg.Dashboard, nil
	case "logging":
		return cfg.Logging, nil
	default:
		return nil, fmt.Errorf("unknown config section %q (valid: project, vision, agents, analytics, dashboard, logging)", section)
	}
}

func init() {
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "Print as JSON instead of YAML")
	configShowCmd.Flags().StringVar(&configSection, "section", "", "Show a single section")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}
