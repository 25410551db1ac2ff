// Package main implements the forge CLI commands.
// This file contains service integration detection and listing.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"forge/internal/project"
	"forge/internal/state"
)

var integrationsConfigure bool

// integrationsCmd is the parent command for service integrations
var integrationsCmd = &cobra.Command{
	Use:   "integrations",
	Short: "Detect and track service integrations",
	Long: `Inspects the workspace and project state for services worth wiring up
(github, postgres, redis, filesystem) and tracks which ones are
configured.

Subcommands:
  detect - Scan for recommended integrations
  list   - Show configured and recommended integrations

Examples:
  forge integrations detect
  forge integrations detect --configure
  forge integrations list`,
	RunE: runIntegrationsList,
}

var integrationsDetectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Scan for recommended integrations",
	Long: `Scans the workspace and records the recommendations in the project
state. With --configure the recommendations are marked configured
right away.`,
	RunE: runIntegrationsDetect,
}

var integrationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show configured and recommended integrations",
	RunE:  runIntegrationsList,
}

func runIntegrationsDetect(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	manager := state.NewManager(ws)

	var st *state.State
	if manager.Exists() {
		loaded, err := manager.Load()
		if err != nil {
			return fmt.Errorf("failed to load state: %w", err)
		}
		st = loaded
	}

	recs := project.RecommendIntegrations(ws, st)

	fmt.Printf("🔌 Recommended Integrations (%d)\n", len(recs))
	fmt.Println(strings.Repeat("─", 50))
	for _, r := range recs {
		fmt.Printf(" %-12s [%s]  %s\n", r.Name, r.Priority, r.Reason)
	}

	if st == nil {
		fmt.Println("\nRun 'forge init' to record recommendations in the project state.")
		return nil
	}

	st.Servers.Recommended = project.Names(recs)
	if integrationsConfigure {
		for _, name := range st.Servers.Recommended {
			if !containsString(st.Servers.Configured, name) {
				st.Servers.Configured = append(st.Servers.Configured, name)
			}
		}
	}

	if err := manager.Save(st); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	if integrationsConfigure {
		fmt.Printf("\n✅ Configured %d integration(s)\n", len(st.Servers.Configured))
	} else {
		fmt.Println("\nRecorded. Mark them active with 'forge integrations detect --configure'.")
	}
	return nil
}

func runIntegrationsList(cmd *cobra.Command, args []string) error {
	manager := state.NewManager(resolveWorkspace())
	if !manager.Exists() {
		fmt.Println("No project state found. Run 'forge init' first.")
		return nil
	}

	st, err := manager.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	fmt.Println("🔌 Integrations")
	fmt.Println(strings.Repeat("─", 50))

	if len(st.Servers.Configured) == 0 && len(st.Servers.Recommended) == 0 {
		fmt.Println(" None recorded. Run 'forge integrations detect' to scan.")
		return nil
	}

	for _, name := range st.Servers.Configured {
		fmt.Printf(" ✓ %s\n", name)
	}
	for _, name := range st.Servers.Recommended {
		if containsString(st.Servers.Configured, name) {
			continue
		}
		fmt.Printf(" ○ %s (recommended)\n", name)
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func init() {
	integrationsDetectCmd.Flags().BoolVar(&integrationsConfigure, "configure", false, "Mark the recommendations as configured")

	integrationsCmd.AddCommand(integrationsDetectCmd)
	integrationsCmd.AddCommand(integrationsListCmd)
}
