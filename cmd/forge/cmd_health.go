// Package main implements the forge CLI commands.
// This file contains the project health analysis command.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"forge/internal/config"
	"forge/internal/project"
	"forge/internal/state"
)

var (
	healthDetail bool
	healthOutput string
)

// healthCategories fixes the console section order.
var healthCategories = []string{"testing", "documentation", "security", "infrastructure"}

// healthCmd analyzes workspace health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Analyze project health",
	Long: `Scores the project 0-100 by scanning the workspace and recorded state
for gaps in testing, documentation, security, and infrastructure.

Examples:
  forge health
  forge health --detail
  forge health --output health-report.md`,
	RunE: runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()

	cfg, err := config.Load(config.ConfigPathIn(ws))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var st *state.State
	manager := state.NewManager(ws)
	if manager.Exists() {
		st, _ = manager.Load()
	}

	analyzer := project.NewAnalyzer(ws, st)
	analyzer.CoverageTarget = cfg.Analytics.CoverageTarget
	report := analyzer.Analyze()

	if healthOutput != "" {
		if err := os.WriteFile(healthOutput, []byte(report.Markdown()), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("✅ Health report written to %s\n", healthOutput)
		return nil
	}

	fmt.Println("🏥 Project Health")
	fmt.Println(strings.Repeat("─", 50))
	fmt.Printf("   Score:  %d/100  %s\n", report.Score, project.StatusLabel(report.Score))
	fmt.Printf("   Gaps:   %d\n", report.TotalGaps())

	if report.TotalGaps() == 0 {
		fmt.Println("\nNo gaps detected. Keep it up.")
		return nil
	}

	for _, category := range healthCategories {
		gaps := report.Gaps[category]
		if len(gaps) == 0 {
			continue
		}
		fmt.Printf("\n   %s (%d)\n", strings.Title(category), len(gaps))
		for _, g := range gaps {
			fmt.Printf("   • [%s] %s\n", strings.ToUpper(g.Severity), g.Issue)
			if healthDetail {
				fmt.Printf("     → %s\n", g.Recommendation)
			}
		}
	}

	if !healthDetail {
		fmt.Println("\nUse --detail for recommendations, --output <file> for a markdown report.")
	}
	return nil
}

func init() {
	healthCmd.Flags().BoolVar(&healthDetail, "detail", false, "Show the recommendation for each gap")
	healthCmd.Flags().StringVarP(&healthOutput, "output", "o", "", "Write a markdown report to this path")
}
