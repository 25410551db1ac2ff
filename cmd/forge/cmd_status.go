// Package main implements the forge CLI commands.
// This file contains the status dashboard, including live watch mode.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"forge/internal/analytics"
	"forge/internal/config"
	"forge/internal/dashboard"
	"forge/internal/state"
	"forge/internal/vision"
)

var (
	statusWatch bool
	statusJSON  bool
)

// statusCmd renders the project dashboard
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project status dashboard",
	Long: `Renders the project dashboard: development phase, strategic goals,
metric trends, and recent activity.

Examples:
  forge status
  forge status --watch   # live view, re-renders when vision.md changes
  forge status --json    # machine-readable snapshot`,
	RunE: runStatus,
}

// statusSnapshot is the --json payload.
type statusSnapshot struct {
	State  *state.State       `json:"state,omitempty"`
	Vision *vision.Vision     `json:"vision,omitempty"`
	Trends []*analytics.Trend `json:"trends,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()

	cfg, err := config.Load(config.ConfigPathIn(ws))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if statusJSON {
		st, v, trends := loadStatus(ws)
		return printJSON(statusSnapshot{State: st, Vision: v, Trends: trends})
	}

	styles := dashboard.NewStyles(dashboard.ThemeFromName(cfg.Dashboard.Theme))
	renderer := dashboard.NewRenderer(styles)

	if !statusWatch {
		st, v, trends := loadStatus(ws)
		fmt.Println(renderer.Render(st, v, trends))
		return nil
	}

	return watchStatus(ws, cfg, styles)
}

// loadStatus gathers everything the dashboard renders. Each part is
// optional: a missing state file yields nil state, a missing vision
// document nil vision, and trends appear only once the analytics
// database has enough points.
func loadStatus(ws string) (*state.State, *vision.Vision, []*analytics.Trend) {
	var st *state.State
	manager := state.NewManager(ws)
	if manager.Exists() {
		if loaded, err := manager.Load(); err == nil {
			st = loaded
		}
	}

	var v *vision.Vision
	if loaded, err := vision.NewManager(ws).Load(); err == nil {
		v = loaded
	}

	var trends []*analytics.Trend
	if _, err := os.Stat(filepath.Join(ws, ".forge", "analytics.db")); err == nil {
		if store, err := analytics.NewStore(filepath.Join(ws, ".forge")); err == nil {
			defer store.Close()
			for _, fn := range []func() (*analytics.Trend, error){
				store.CoverageTrend, store.VelocityTrend, store.QualityTrend,
			} {
				if t, err := fn(); err == nil && t != nil {
					trends = append(trends, t)
				}
			}
		}
	}

	return st, v, trends
}

// watchStatus runs the live dashboard until the user quits. The vision
// watcher feeds reloads; the model re-reads everything on each refresh.
func watchStatus(ws string, cfg *config.Config, styles dashboard.Styles) error {
	renderer := dashboard.NewRenderer(styles)
	refresh := func(width int) (string, error) {
		renderer.Width = width
		st, v, trends := loadStatus(ws)
		return renderer.Render(st, v, trends), nil
	}

	watcher, err := vision.NewWatcher(vision.NewManager(ws))
	if err != nil {
		return fmt.Errorf("failed to create vision watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start vision watcher: %w", err)
	}
	defer watcher.Stop()

	model := dashboard.NewModel(dashboard.ModelOptions{
		Refresh:  refresh,
		Reloads:  watcher.Snapshots(),
		Interval: cfg.Dashboard.GetRefreshInterval(),
		Styles:   styles,
	})

	if _, err := tea.NewProgram(model).Run(); err != nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}
	return nil
}

func init() {
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Re-render live as the vision document changes")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print a machine-readable snapshot")
}
