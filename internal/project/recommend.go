package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"forge/internal/logging"
	"forge/internal/state"
)

// Recommendation proposes a service integration for the project.
type Recommendation struct {
	Name     string `json:"name"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// RecommendIntegrations inspects the workspace and recorded state and
// returns integrations worth configuring, highest priority first. The
// state may be nil; state-driven checks are skipped.
func RecommendIntegrations(workspace string, st *state.State) []Recommendation {
	var recs []Recommendation
	seen := map[string]bool{}
	add := func(name, priority, reason string) {
		if seen[name] {
			return
		}
		seen[name] = true
		recs = append(recs, Recommendation{Name: name, Priority: priority, Reason: reason})
	}

	if info, err := os.Stat(filepath.Join(workspace, ".git")); err == nil && info.IsDir() {
		add("github", "high", "Git repository detected")
	}

	arch := ""
	if st != nil {
		arch = strings.ToLower(fmt.Sprintf("%v", st.Architecture))
	}
	deps := detectDependencies(workspace)

	if strings.Contains(arch, "postgres") || hasDep(deps, "postgres") {
		add("postgres", "medium", "PostgreSQL detected in the project stack")
	}
	if strings.Contains(arch, "redis") || hasDep(deps, "redis") {
		add("redis", "medium", "Redis detected in the project stack")
	}

	// Every project benefits from local file access.
	add("filesystem", "low", "Local file access for project tooling")

	logging.Project("recommended %d integrations for %s", len(recs), workspace)
	return recs
}

// Names extracts the integration names, preserving order.
func Names(recs []Recommendation) []string {
	names := make([]string, 0, len(recs))
	for _, r := range recs {
		names = append(names, r.Name)
	}
	return names
}

func hasDep(deps []string, name string) bool {
	for _, d := range deps {
		if d == name {
			return true
		}
	}
	return false
}
