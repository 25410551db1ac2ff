// Package main implements the forge CLI commands.
// This file contains the vision document commands: viewing, goal
// management, focus and metrics, and export. Every mutation is a full
// load, modify, save round trip through the converter, so the document
// on disk always has the canonical shape.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"forge/internal/config"
	"forge/internal/dashboard"
	"forge/internal/vision"
)

var (
	visionShowPretty bool
	visionShowJSON   bool

	goalDescription string
	goalPriority    string
	goalDeadline    string

	exportOutput string
)

// visionCmd is the parent command for vision document operations
var visionCmd = &cobra.Command{
	Use:   "vision",
	Short: "Manage the strategic vision document",
	Long: `The vision document (.forge/vision.md) holds the project's mission,
principles, strategic goals, current focus, and success metrics. It is
plain markdown: edit it by hand or through these commands.

Subcommands:
  show          - Print the document (raw, pretty, or JSON)
  goals         - List open strategic goals
  add-goal      - Add a strategic goal
  complete-goal - Complete a goal and retire it from the document
  set-focus     - Update the current focus
  set-metric    - Set a success metric
  export        - Export as markdown or JSON

Examples:
  forge vision show --pretty
  forge vision add-goal "Public beta" --priority critical --deadline 2026-06-30
  forge vision set-metric test_coverage 85%`,
	RunE: runVisionShow,
}

var visionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the vision document",
	RunE:  runVisionShow,
}

var visionGoalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "List open strategic goals",
	RunE:  runVisionGoals,
}

var visionAddGoalCmd = &cobra.Command{
	Use:   "add-goal <title>",
	Short: "Add a strategic goal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVisionAddGoal,
}

var visionCompleteGoalCmd = &cobra.Command{
	Use:   "complete-goal <id-or-title>",
	Short: "Complete a strategic goal and retire it from the document",
	Long: `Completes a goal. The vision format tracks no per-goal status, so the
strategic-goals section lists open goals only and completing one removes
its entry from the document.

Goals are matched by ID first, then by case-insensitive title, then by
unique title prefix. Goal IDs are regenerated on every parse, so titles
are the stable way to refer to a goal across invocations.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVisionCompleteGoal,
}

var visionSetFocusCmd = &cobra.Command{
	Use:   "set-focus <text>",
	Short: "Update the current focus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVisionSetFocus,
}

var visionSetMetricCmd = &cobra.Command{
	Use:   "set-metric <name> <value>",
	Short: "Set a success metric",
	Long: `Sets a success metric on the vision document. Values that parse as
numbers are stored as numbers; anything else is kept verbatim.

Examples:
  forge vision set-metric test_coverage 85%
  forge vision set-metric active_users 10`,
	Args: cobra.ExactArgs(2),
	RunE: runVisionSetMetric,
}

var visionExportCmd = &cobra.Command{
	Use:   "export [md|json]",
	Short: "Export the vision as markdown or JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVisionExport,
}

func runVisionShow(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	manager := vision.NewManager(ws)

	if visionShowJSON {
		v, err := manager.LoadOrDefault()
		if err != nil {
			return fmt.Errorf("failed to load vision: %w", err)
		}
		return printJSON(v)
	}

	data, err := os.ReadFile(manager.Path())
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No vision document found. Run 'forge init' first.")
			return nil
		}
		return fmt.Errorf("failed to read vision document: %w", err)
	}

	if visionShowPretty {
		theme := dashboard.ThemeFromName(loadTheme(ws))
		fmt.Println(dashboard.RenderMarkdown(string(data), theme))
		return nil
	}

	fmt.Print(string(data))
	return nil
}

func runVisionGoals(cmd *cobra.Command, args []string) error {
	v, err := vision.NewManager(resolveWorkspace()).LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load vision: %w", err)
	}

	if len(v.Goals) == 0 {
		fmt.Println("No strategic goals defined. Add one with 'forge vision add-goal'.")
		return nil
	}

	fmt.Printf("🎯 Strategic Goals (%d open)\n", len(v.Goals))
	fmt.Println(strings.Repeat("─", 50))
	for i, g := range v.Goals {
		line := fmt.Sprintf(" %d. %s (%s)", i+1, g.Title, g.Priority)
		if g.Deadline != nil {
			line += " · due " + g.Deadline.Format("2006-01-02")
		}
		fmt.Println(line)
		if g.Description != "" {
			fmt.Printf("    %s\n", g.Description)
		}
	}
	fmt.Println(strings.Repeat("─", 50))
	if v.CurrentFocus != "" {
		fmt.Printf("Focus: %s\n", v.CurrentFocus)
	}
	return nil
}

func runVisionAddGoal(cmd *cobra.Command, args []string) error {
	title := joinArgs(args)
	if title == "" {
		return fmt.Errorf("goal title must not be empty")
	}

	var deadline *time.Time
	if goalDeadline != "" {
		t, err := time.Parse("2006-01-02", goalDeadline)
		if err != nil {
			return fmt.Errorf("invalid deadline %q, expected YYYY-MM-DD", goalDeadline)
		}
		deadline = &t
	}

	manager := vision.NewManager(resolveWorkspace())
	v, err := manager.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load vision: %w", err)
	}

	goal := vision.StrategicGoal{
		Title:       title,
		Description: goalDescription,
		Priority:    vision.ParsePriority(goalPriority),
		Deadline:    deadline,
		Status:      vision.GoalNotStarted,
		Progress:    0,
		Metrics:     []string{},
	}
	v.Goals = append(v.Goals, goal)

	if err := manager.Save(v); err != nil {
		return fmt.Errorf("failed to save vision: %w", err)
	}

	fmt.Printf("✅ Added goal %q (%s)\n", title, goal.Priority)
	return nil
}

func runVisionCompleteGoal(cmd *cobra.Command, args []string) error {
	selector := joinArgs(args)

	manager := vision.NewManager(resolveWorkspace())
	v, err := manager.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load vision: %w", err)
	}

	idx, err := findGoal(v.Goals, selector)
	if err != nil {
		return err
	}

	title := v.Goals[idx].Title
	v.Goals = append(v.Goals[:idx], v.Goals[idx+1:]...)

	if err := manager.Save(v); err != nil {
		return fmt.Errorf("failed to save vision: %w", err)
	}

	fmt.Printf("✅ Completed goal %q (%d open)\n", title, len(v.Goals))
	return nil
}

func runVisionSetFocus(cmd *cobra.Command, args []string) error {
	focus := joinArgs(args)

	manager := vision.NewManager(resolveWorkspace())
	v, err := manager.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load vision: %w", err)
	}

	v.CurrentFocus = focus
	if err := manager.Save(v); err != nil {
		return fmt.Errorf("failed to save vision: %w", err)
	}

	fmt.Printf("✅ Current focus: %s\n", focus)
	return nil
}

func runVisionSetMetric(cmd *cobra.Command, args []string) error {
	name, raw := args[0], args[1]

	manager := vision.NewManager(resolveWorkspace())
	v, err := manager.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load vision: %w", err)
	}

	if v.SuccessMetrics == nil {
		v.SuccessMetrics = map[string]any{}
	}
	// Same coercion the parser applies: full-string numbers become
	// float64, everything else stays text.
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		v.SuccessMetrics[name] = f
	} else {
		v.SuccessMetrics[name] = raw
	}

	if err := manager.Save(v); err != nil {
		return fmt.Errorf("failed to save vision: %w", err)
	}

	fmt.Printf("✅ Metric %s = %v\n", name, v.SuccessMetrics[name])
	return nil
}

func runVisionExport(cmd *cobra.Command, args []string) error {
	format := "md"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	v, err := vision.NewManager(resolveWorkspace()).LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load vision: %w", err)
	}

	var out string
	switch format {
	case "md", "markdown":
		out = vision.Serialize(v)
	case "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode vision: %w", err)
		}
		out = string(data) + "\n"
	default:
		return fmt.Errorf("unknown export format %q (valid: md, json)", format)
	}

	if exportOutput != "" {
		if err := os.WriteFile(exportOutput, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("✅ Exported vision to %s\n", exportOutput)
		return nil
	}

	fmt.Print(out)
	return nil
}

// findGoal resolves a goal selector: exact ID, then case-insensitive
// title, then unique title prefix.
func findGoal(goals []vision.StrategicGoal, selector string) (int, error) {
	for i, g := range goals {
		if g.ID == selector {
			return i, nil
		}
	}

	lowered := strings.ToLower(selector)
	for i, g := range goals {
		if strings.ToLower(g.Title) == lowered {
			return i, nil
		}
	}

	matches := []int{}
	for i, g := range goals {
		if strings.HasPrefix(strings.ToLower(g.Title), lowered) {
			matches = append(matches, i)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return 0, fmt.Errorf("no goal matches %q; run 'forge vision goals' to list them", selector)
	default:
		titles := make([]string, len(matches))
		for i, idx := range matches {
			titles[i] = goals[idx].Title
		}
		return 0, fmt.Errorf("selector %q is ambiguous: %s", selector, strings.Join(titles, ", "))
	}
}

// loadTheme reads the configured dashboard theme, empty on any failure
// so detection takes over.
func loadTheme(ws string) string {
	cfg, err := config.Load(config.ConfigPathIn(ws))
	if err != nil {
		return ""
	}
	return cfg.Dashboard.Theme
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	visionShowCmd.Flags().BoolVar(&visionShowPretty, "pretty", false, "Render the markdown with terminal styling")
	visionShowCmd.Flags().BoolVar(&visionShowJSON, "json", false, "Print the parsed vision as JSON")

	visionAddGoalCmd.Flags().StringVar(&goalDescription, "description", "", "Goal description")
	visionAddGoalCmd.Flags().StringVar(&goalPriority, "priority", "medium", "Priority (low, medium, high, critical)")
	visionAddGoalCmd.Flags().StringVar(&goalDeadline, "deadline", "", "Deadline as YYYY-MM-DD")

	visionExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to a file instead of stdout")

	visionCmd.AddCommand(visionShowCmd)
	visionCmd.AddCommand(visionGoalsCmd)
	visionCmd.AddCommand(visionAddGoalCmd)
	visionCmd.AddCommand(visionCompleteGoalCmd)
	visionCmd.AddCommand(visionSetFocusCmd)
	visionCmd.AddCommand(visionSetMetricCmd)
	visionCmd.AddCommand(visionExportCmd)
}
