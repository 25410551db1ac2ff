package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"forge/internal/config"
	"forge/internal/logging"
	"forge/internal/version"
)

var (
	// Global flags
	verbose   bool
	workspace string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "forge - strategic project companion (v" + version.Current + ")",
	Long: `forge keeps a project's strategic vision, development state, and
quality metrics next to the code, in a .forge/ directory.

The vision lives in a human-editable markdown document that forge parses
into structured goals and serializes back without losing meaning. State,
checkpoints, agent task routing, and an analytics database build on top.

Run 'forge init' once in a project, then 'forge status' to see where
things stand.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		// Category log files only appear in debug mode; in production this
		// just records the workspace for later lookups.
		if err := logging.Initialize(resolveWorkspace()); err != nil {
			logger.Warn("logging init failed", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show the status dashboard
		return runStatus(cmd, args)
	},
}

// resolveWorkspace returns the workspace directory: the --workspace flag
// when set, otherwise the nearest ancestor with a .forge or .git
// directory, otherwise the current directory.
func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	ws, err := config.FindWorkspaceRoot()
	if err != nil {
		ws, _ = os.Getwd()
	}
	return ws
}

// joinArgs collapses positional args into a single description string.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: nearest project root)")

	// Add commands to root
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(visionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(checkpointCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(integrationsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd prints the forge release version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the forge version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("forge v" + version.Current)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
