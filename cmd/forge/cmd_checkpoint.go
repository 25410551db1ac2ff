// Package main implements the forge CLI commands.
// This file contains state checkpointing and restore.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"forge/internal/config"
	"forge/internal/state"
)

// checkpointCmd snapshots the project state
var checkpointCmd = &cobra.Command{
	Use:   "checkpoint [description]",
	Short: "Snapshot the project state",
	Long: `Saves the current state document under .forge/checkpoints/ and records
it in the checkpoint list. Old checkpoints are pruned past the
configured limit.

Examples:
  forge checkpoint "before the auth refactor"
  forge checkpoint list`,
	RunE: runCheckpoint,
}

var checkpointListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved checkpoints",
	RunE:  runCheckpointList,
}

// restoreCmd rolls the project state back to a checkpoint
var restoreCmd = &cobra.Command{
	Use:   "restore [checkpoint-id]",
	Short: "Restore the project state from a checkpoint",
	Long: `Replaces the live state document with a checkpoint snapshot. Without
an ID the most recent checkpoint is restored. The checkpoint history
itself survives the restore, so rolling forward again stays possible.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRestore,
}

// checkpointManager builds a state manager with the configured
// checkpoint limit applied.
func checkpointManager() (*state.Manager, error) {
	ws := resolveWorkspace()
	manager := state.NewManager(ws)

	cfg, err := config.Load(config.ConfigPathIn(ws))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	manager.CheckpointLimit = cfg.Project.CheckpointLimit
	return manager, nil
}

func runCheckpoint(cmd *cobra.Command, args []string) error {
	description := joinArgs(args)
	if description == "" {
		description = "manual checkpoint"
	}

	manager, err := checkpointManager()
	if err != nil {
		return err
	}
	if !manager.Exists() {
		return fmt.Errorf("no project state to checkpoint; run 'forge init' first")
	}

	cp, err := manager.Checkpoint(description)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}

	fmt.Printf("✅ Checkpoint %s: %s\n", cp.ID, cp.Description)
	if cp.GitCommit != "" {
		fmt.Printf("   Git commit: %s\n", cp.GitCommit)
	}
	return nil
}

func runCheckpointList(cmd *cobra.Command, args []string) error {
	manager, err := checkpointManager()
	if err != nil {
		return err
	}

	st, err := manager.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	if len(st.Checkpoints) == 0 {
		fmt.Println("No checkpoints yet. Create one with 'forge checkpoint <description>'.")
		return nil
	}

	fmt.Printf("💾 Checkpoints (%d)\n", len(st.Checkpoints))
	fmt.Println(strings.Repeat("─", 50))
	for _, cp := range st.Checkpoints {
		line := fmt.Sprintf(" %s  %s  %s", cp.ID, cp.Timestamp.Format("2006-01-02 15:04"), cp.Description)
		if cp.GitCommit != "" {
			line += "  (" + cp.GitCommit + ")"
		}
		fmt.Println(line)
	}
	fmt.Println("\nRestore with: forge restore <checkpoint-id>")
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	id := ""
	if len(args) > 0 {
		id = args[0]
	}

	manager, err := checkpointManager()
	if err != nil {
		return err
	}

	cp, err := manager.Restore(id)
	if err != nil {
		return fmt.Errorf("failed to restore: %w", err)
	}

	fmt.Printf("✅ Restored checkpoint %s: %s (from %s)\n", cp.ID, cp.Description, cp.Timestamp.Format("2006-01-02 15:04"))
	return nil
}

func init() {
	checkpointCmd.AddCommand(checkpointListCmd)
}
