// Package main implements the forge CLI commands.
// This file contains the specialist agent commands: routing suggestions,
// task planning and execution, and the execution history.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"forge/internal/agent"
	"forge/internal/config"
	"forge/internal/state"
)

var (
	agentKind     string
	agentPriority string

	tasksStatus string
	tasksLimit  int
)

// agentCmd is the parent command for agent operations
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Route development tasks to specialist agents",
	Long: `forge ships a roster of specialist agents (lead-architect,
backend-master, cli-artisan, platform-builder, integration-specialist,
qa-sentinel). Tasks route to the best match by keyword; feature tasks
decompose into a design, implementation, and testing chain.

Subcommands:
  suggest - Name the agent best suited for a task
  create  - Plan a task without executing it
  run     - Execute a task through its assigned agents
  tasks   - Show the task execution history

Examples:
  forge agent suggest "add a REST endpoint for billing"
  forge agent run "user authentication" --priority high
  forge agent tasks --status completed`,
}

var agentSuggestCmd = &cobra.Command{
	Use:   "suggest <description>",
	Short: "Name the agent best suited for a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAgentSuggest,
}

var agentCreateCmd = &cobra.Command{
	Use:   "create <description>",
	Short: "Plan a task without executing it",
	Long: `Creates a task, routes it, and prints the execution plan. Feature
tasks show their design/implement/test decomposition. Nothing runs and
nothing is recorded; use 'forge agent run' for that.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAgentCreate,
}

var agentRunCmd = &cobra.Command{
	Use:   "run <description>",
	Short: "Execute a task through its assigned agents",
	Long: `Creates a task, decomposes feature work into a dependency chain, and
executes it with bounded parallelism. Outcomes land in the project state
history and, when learning is enabled, in the interaction log.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAgentRun,
}

var agentTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show the task execution history",
	Long: `Lists past task executions from the interaction log, newest first.
Live tasks only exist for the duration of a 'forge agent run'; this is
the record they leave behind.`,
	RunE: runAgentTasks,
}

func runAgentSuggest(cmd *cobra.Command, args []string) error {
	description := joinArgs(args)

	cfg, err := config.Load(config.ConfigPathIn(resolveWorkspace()))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	o := agent.NewOrchestrator(resolveWorkspace(), cfg.Agents)
	suggested := o.Recommend(description)
	info := o.Agents()[suggested]

	fmt.Printf("🤖 %s (%s)\n", info.Name, suggested)
	fmt.Printf("   Expertise: %s\n", strings.Join(info.Expertise, ", "))
	fmt.Printf("   Skills:    %s\n", info.SkillFile)
	return nil
}

func runAgentCreate(cmd *cobra.Command, args []string) error {
	description := joinArgs(args)

	cfg, err := config.Load(config.ConfigPathIn(resolveWorkspace()))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	o := agent.NewOrchestrator(resolveWorkspace(), cfg.Agents)
	t := o.CreateTask(description, agent.Kind(agentKind), agentPriority, nil)
	subtasks := o.Decompose(t)

	fmt.Printf("📋 Task %s: %s\n", t.ID, t.Description)
	fmt.Printf("   Kind:     %s\n", t.Kind)
	fmt.Printf("   Priority: %s\n", t.Priority)
	fmt.Printf("   Agent:    %s\n", t.Assigned)
	if len(subtasks) > 0 {
		fmt.Println("\n   Plan:")
		for i, sub := range subtasks {
			arrow := "   "
			if len(sub.Dependencies) > 0 {
				arrow = "then"
			}
			fmt.Printf("   %d. %-4s %-22s %s\n", i+1, arrow, sub.Assigned, sub.Description)
		}
	}
	fmt.Println("\nRun it with: forge agent run " + fmt.Sprintf("%q", description))
	return nil
}

func runAgentRun(cmd *cobra.Command, args []string) error {
	description := joinArgs(args)
	ws := resolveWorkspace()

	cfg, err := config.Load(config.ConfigPathIn(ws))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	o := agent.NewOrchestrator(ws, cfg.Agents)
	t := o.CreateTask(description, agent.Kind(agentKind), agentPriority, nil)

	tasks := o.Decompose(t)
	if len(tasks) == 0 {
		tasks = []*agent.Task{t}
	}

	fmt.Printf("🚀 Executing %d task(s) for: %s\n\n", len(tasks), description)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results := o.ExecuteParallel(ctx, tasks)

	manager := state.NewManager(ws)
	var st *state.State
	if manager.Exists() {
		st, _ = manager.Load()
	}

	failed := 0
	for i, res := range results {
		task := tasks[i]
		glyph := "✓"
		if res.Status == agent.StatusFailed {
			glyph = "✗"
			failed++
		}
		fmt.Printf(" %s %-22s %s\n", glyph, task.Assigned, task.Description)
		if res.Error != "" {
			fmt.Printf("   error: %s\n", res.Error)
		}
		if st != nil {
			at := task.CompletedAt
			if at.IsZero() {
				at = time.Now()
			}
			st.RecordAgentRun(string(task.Assigned), task.Description, res.Status == agent.StatusCompleted, at)
		}
	}

	if st != nil {
		if err := manager.Save(st); err != nil {
			fmt.Printf("⚠️ Warning: failed to record history: %v\n", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tasks failed", failed, len(results))
	}
	fmt.Printf("\n✅ All %d task(s) completed\n", len(results))
	return nil
}

func runAgentTasks(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()

	cfg, err := config.Load(config.ConfigPathIn(ws))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	records, err := readInteractionLog(ws, cfg.Agents.InteractionLog)
	if err != nil {
		return err
	}

	if tasksStatus != "" {
		filtered := records[:0]
		for _, r := range records {
			if string(r.Status) == tasksStatus {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	if len(records) == 0 {
		fmt.Println("No recorded task executions. Run 'forge agent run <description>' first.")
		return nil
	}

	// Newest first.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if tasksLimit > 0 && len(records) > tasksLimit {
		records = records[:tasksLimit]
	}

	fmt.Printf("📋 Task History (%d)\n", len(records))
	fmt.Println(strings.Repeat("─", 50))
	for _, r := range records {
		glyph := "✓"
		if !r.Success {
			glyph = "✗"
		}
		fmt.Printf(" %s %s  %-22s %s\n", glyph, r.Timestamp.Format("2006-01-02 15:04"), r.Agent, r.Description)
	}
	return nil
}

// readInteractionLog loads the learning log, an empty list when none
// exists yet.
func readInteractionLog(ws, path string) ([]agent.InteractionRecord, error) {
	if path == "" {
		path = filepath.Join(".forge", "interaction-log.json")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(ws, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read interaction log: %w", err)
	}

	var records []agent.InteractionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse interaction log: %w", err)
	}
	return records, nil
}

func init() {
	agentCreateCmd.Flags().StringVar(&agentKind, "kind", "", "Task kind (feature, bugfix, refactor, design, testing)")
	agentCreateCmd.Flags().StringVar(&agentPriority, "priority", "", "Task priority (low, medium, high, critical)")
	agentRunCmd.Flags().StringVar(&agentKind, "kind", "", "Task kind (feature, bugfix, refactor, design, testing)")
	agentRunCmd.Flags().StringVar(&agentPriority, "priority", "", "Task priority (low, medium, high, critical)")

	agentTasksCmd.Flags().StringVar(&tasksStatus, "status", "", "Filter by status (completed, failed)")
	agentTasksCmd.Flags().IntVar(&tasksLimit, "limit", 20, "Maximum entries to show (0 for all)")

	agentCmd.AddCommand(agentSuggestCmd)
	agentCmd.AddCommand(agentCreateCmd)
	agentCmd.AddCommand(agentRunCmd)
	agentCmd.AddCommand(agentTasksCmd)
}
