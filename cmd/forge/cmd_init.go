// Package main implements the forge CLI commands.
// This file contains workspace initialization and the upgrade check.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"forge/internal/agent"
	"forge/internal/config"
	"forge/internal/project"
	"forge/internal/state"
	"forge/internal/version"
	"forge/internal/vision"
)

var (
	initForce bool
	initType  string
)

// initCmd initializes forge in the current workspace
var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Initialize forge in the current workspace",
	Long: `Sets up forge for a project.

This command:
  1. Creates the .forge/ directory structure
  2. Detects the project language and type from its manifests
  3. Writes the default configuration to .forge/config.yaml
  4. Seeds the strategic vision document and project state
  5. Installs the specialist agent skill files

Running it again in an initialized project checks whether the recorded
forge version is older than this binary and upgrades the metadata.
The project name defaults to the workspace directory name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit performs initialization. Unlike the other commands it targets
// the directory it is run in, not the nearest ancestor root.
func runInit(cmd *cobra.Command, args []string) error {
	cwd := workspace
	if cwd == "" {
		cwd, _ = os.Getwd()
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		name = filepath.Base(cwd)
	}

	classification := project.Detect(cwd)
	projectType := initType
	if projectType == "" {
		projectType = classification.Type
	}

	manager := state.NewManager(cwd)
	if manager.Exists() && !initForce {
		return upgradeCheck(manager, name)
	}
	if initForce {
		fmt.Println("🔄 Reinitializing workspace (vision document preserved)...")
	}

	// Directory skeleton. Logs and checkpoints appear lazily; agents/ is
	// seeded right away so the skill files have a home.
	if err := os.MkdirAll(filepath.Join(cwd, ".forge", "agents"), 0755); err != nil {
		return fmt.Errorf("failed to create .forge directory: %w", err)
	}

	cfgPath := config.ConfigPathIn(cwd)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Project.Workspace = cwd
	cfg.Project.Type = projectType
	if err := cfg.Save(cfgPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if err := vision.NewManager(cwd).Ensure(); err != nil {
		return fmt.Errorf("failed to seed vision document: %w", err)
	}

	if _, err := manager.Init(name, projectType, version.Current); err != nil {
		return fmt.Errorf("failed to initialize state: %w", err)
	}

	seeded := seedAgentSkills(cwd)

	fmt.Println("✅ forge initialized")
	fmt.Printf("   Project:     %s\n", name)
	fmt.Printf("   Type:        %s\n", projectType)
	if classification.Language != "unknown" {
		fmt.Printf("   Language:    %s\n", classification.Language)
	}
	if len(classification.Dependencies) > 0 {
		fmt.Printf("   Stack:       %s\n", strings.Join(classification.Dependencies, ", "))
	}
	fmt.Printf("   Agents:      %d skill files\n", seeded)
	fmt.Printf("   Vision:      %s\n", filepath.Join(".forge", "vision.md"))
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit .forge/vision.md with your mission and goals")
	fmt.Println("  2. Run 'forge status' to see the dashboard")
	fmt.Println("  3. Run 'forge integrations detect' for service suggestions")

	return nil
}

// upgradeCheck handles 'forge init' on an already-initialized workspace:
// same version is a no-op, an older recorded version upgrades the
// metadata, a newer one refuses to touch it.
func upgradeCheck(manager *state.Manager, name string) error {
	st, err := manager.Load()
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	recorded := st.Project.ForgeVersion
	switch {
	case recorded == version.Current:
		fmt.Println("Project already initialized and up to date.")
		fmt.Println("Use 'forge init --force' to reinitialize the state document.")
		return nil

	case version.LessThan(recorded, version.Current):
		st.Project.ForgeVersion = version.Current
		if st.Project.Name == "" {
			st.Project.Name = name
		}
		if err := manager.Save(st); err != nil {
			return fmt.Errorf("failed to save upgraded state: %w", err)
		}
		if recorded == "" {
			recorded = "unversioned"
		}
		fmt.Printf("✅ Upgraded project metadata: %s → v%s\n", recorded, version.Current)
		return nil

	default:
		return fmt.Errorf("project was initialized with forge v%s, newer than this binary (v%s); upgrade forge instead", recorded, version.Current)
	}
}

// seedAgentSkills writes a starter skill file for every default agent
// that does not have one yet. Returns how many files exist afterwards.
func seedAgentSkills(ws string) int {
	count := 0
	for agentType, info := range agent.DefaultAgents() {
		path := filepath.Join(ws, info.SkillFile)
		count++
		if _, err := os.Stat(path); err == nil {
			continue
		}

		var sb strings.Builder
		sb.WriteString("# " + info.Name + "\n\n")
		sb.WriteString("Specialist agent: `" + string(agentType) + "`\n\n")
		sb.WriteString("## Expertise\n\n")
		for _, e := range info.Expertise {
			sb.WriteString("- " + e + "\n")
		}
		sb.WriteString("\n## Notes\n\n")
		sb.WriteString("Describe project-specific conventions this agent should follow.\n")

		if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
			fmt.Printf("⚠️ Warning: failed to write %s: %v\n", path, err)
			count--
		}
	}
	return count
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Reinitialize even when already set up (preserves the vision document)")
	initCmd.Flags().StringVar(&initType, "type", "", "Override the detected project type (web-app, api-service, cli-tool, library)")
}
