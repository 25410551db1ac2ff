// Package state manages the project state document (.forge/state.json):
// development phase tracking, feature lists, agent activity, quality
// metrics, and checkpoints. Pure mutations live on State; all disk I/O
// goes through Manager.
package state

import (
	"fmt"
	"time"
)

// Phase is a stage in the development ladder.
type Phase string

const (
	PhasePlanning       Phase = "planning"
	PhaseArchitecture   Phase = "architecture"
	PhaseSetup          Phase = "setup"
	PhaseImplementation Phase = "implementation"
	PhaseTesting        Phase = "testing"
	PhaseDocumentation  Phase = "documentation"
	PhaseDeployment     Phase = "deployment"
)

// PhaseLadder is the ordered list of phases every project moves through.
var PhaseLadder = []Phase{
	PhasePlanning,
	PhaseArchitecture,
	PhaseSetup,
	PhaseImplementation,
	PhaseTesting,
	PhaseDocumentation,
	PhaseDeployment,
}

// PhaseIndex returns the position of p in the ladder, or -1 if unknown.
func PhaseIndex(p Phase) int {
	for i, candidate := range PhaseLadder {
		if candidate == p {
			return i
		}
	}
	return -1
}

// ProjectInfo describes the managed project.
type ProjectInfo struct {
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	CreatedAt    time.Time `json:"created_at"`
	LastUpdated  time.Time `json:"last_updated"`
	ForgeVersion string    `json:"forge_version"`
}

// Features tracks feature names by completion stage.
type Features struct {
	Completed  []string `json:"completed"`
	InProgress []string `json:"in_progress"`
	Planned    []string `json:"planned"`
}

// Development tracks phase progress and features.
type Development struct {
	CurrentPhase    Phase    `json:"current_phase"`
	PhasesCompleted []Phase  `json:"phases_completed"`
	PhasesRemaining []Phase  `json:"phases_remaining"`
	Features        Features `json:"features"`
}

// AgentRecord is one entry in the agent run history.
type AgentRecord struct {
	Agent     string    `json:"agent"`
	Task      string    `json:"task"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
}

// Agents tracks agent availability and activity.
type Agents struct {
	Active    []string      `json:"active"`
	Available []string      `json:"available"`
	History   []AgentRecord `json:"history"`
}

// Servers tracks configured and recommended service integrations.
type Servers struct {
	Configured  []string `json:"configured"`
	Recommended []string `json:"recommended"`
}

// TestStats holds counts and coverage for one test tier.
type TestStats struct {
	Total    int     `json:"total"`
	Passing  int     `json:"passing"`
	Coverage float64 `json:"coverage"`
}

// Tests holds the three test tiers.
type Tests struct {
	Unit        TestStats `json:"unit"`
	Integration TestStats `json:"integration"`
	E2E         TestStats `json:"e2e"`
}

// Quality holds quality metrics.
type Quality struct {
	Tests Tests `json:"tests"`
}

// Checkpoint records a saved state snapshot.
type Checkpoint struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	File        string    `json:"file"`
	GitCommit   string    `json:"git_commit,omitempty"`
}

// Session summarizes the most recent working session.
type Session struct {
	StartedAt time.Time `json:"started_at"`
	Summary   string    `json:"summary"`
}

// State is the full project state document.
type State struct {
	Version      string         `json:"version"`
	Project      ProjectInfo    `json:"project"`
	Architecture map[string]any `json:"architecture"`
	Development  Development    `json:"development"`
	Agents       Agents         `json:"agents"`
	Servers      Servers        `json:"servers"`
	Quality      Quality        `json:"quality"`
	Checkpoints  []Checkpoint   `json:"checkpoints"`
	LastSession  *Session       `json:"last_session,omitempty"`
}

// DefaultAvailableAgents lists the agent types every project starts with.
var DefaultAvailableAgents = []string{
	"lead-architect",
	"backend-master",
	"cli-artisan",
	"platform-builder",
	"integration-specialist",
	"qa-sentinel",
}

// DefaultState returns a fresh state document for a new project.
func DefaultState(name, projectType string) *State {
	return &State{
		Version: "1.0",
		Project: ProjectInfo{
			Name: name,
			Type: projectType,
		},
		Architecture: map[string]any{},
		Development: Development{
			CurrentPhase:    PhasePlanning,
			PhasesCompleted: []Phase{},
			PhasesRemaining: append([]Phase{}, PhaseLadder[1:]...),
			Features: Features{
				Completed:  []string{},
				InProgress: []string{},
				Planned:    []string{},
			},
		},
		Agents: Agents{
			Active:    []string{},
			Available: append([]string{}, DefaultAvailableAgents...),
			History:   []AgentRecord{},
		},
		Servers: Servers{
			Configured:  []string{},
			Recommended: []string{},
		},
		Checkpoints: []Checkpoint{},
	}
}

// AdvancePhase moves the project to the next phase in the ladder.
// Returns the new phase, or an error when already at the final phase.
func (s *State) AdvancePhase() (Phase, error) {
	idx := PhaseIndex(s.Development.CurrentPhase)
	if idx < 0 {
		return "", fmt.Errorf("unknown current phase: %s", s.Development.CurrentPhase)
	}
	if idx == len(PhaseLadder)-1 {
		return "", fmt.Errorf("already at final phase: %s", s.Development.CurrentPhase)
	}

	next := PhaseLadder[idx+1]
	s.Development.PhasesCompleted = append(s.Development.PhasesCompleted, s.Development.CurrentPhase)
	s.Development.CurrentPhase = next
	s.Development.PhasesRemaining = append([]Phase{}, PhaseLadder[idx+2:]...)
	return next, nil
}

// Progress returns phase completion as a percentage of the ladder.
func (s *State) Progress() float64 {
	return float64(len(s.Development.PhasesCompleted)) / float64(len(PhaseLadder)) * 100
}

// PlanFeature adds a feature to the planned list if it is not already
// tracked anywhere.
func (s *State) PlanFeature(name string) {
	f := &s.Development.Features
	if contains(f.Planned, name) || contains(f.InProgress, name) || contains(f.Completed, name) {
		return
	}
	f.Planned = append(f.Planned, name)
}

// StartFeature moves a feature to in-progress. Unknown features are
// added directly.
func (s *State) StartFeature(name string) {
	f := &s.Development.Features
	f.Planned = remove(f.Planned, name)
	if !contains(f.InProgress, name) && !contains(f.Completed, name) {
		f.InProgress = append(f.InProgress, name)
	}
}

// CompleteFeature moves a feature to completed from wherever it is.
func (s *State) CompleteFeature(name string) {
	f := &s.Development.Features
	f.Planned = remove(f.Planned, name)
	f.InProgress = remove(f.InProgress, name)
	if !contains(f.Completed, name) {
		f.Completed = append(f.Completed, name)
	}
}

// StartAgent marks an agent as active.
func (s *State) StartAgent(agent string) {
	if !contains(s.Agents.Active, agent) {
		s.Agents.Active = append(s.Agents.Active, agent)
	}
}

// FinishAgent removes an agent from the active list.
func (s *State) FinishAgent(agent string) {
	s.Agents.Active = remove(s.Agents.Active, agent)
}

// RecordAgentRun appends an entry to the agent history.
func (s *State) RecordAgentRun(agent, task string, success bool, at time.Time) {
	s.Agents.History = append(s.Agents.History, AgentRecord{
		Agent:     agent,
		Task:      task,
		Timestamp: at,
		Success:   success,
	})
}

// SetTestStats updates one test tier. Valid kinds are unit, integration
// and e2e.
func (s *State) SetTestStats(kind string, stats TestStats) error {
	switch kind {
	case "unit":
		s.Quality.Tests.Unit = stats
	case "integration":
		s.Quality.Tests.Integration = stats
	case "e2e":
		s.Quality.Tests.E2E = stats
	default:
		return fmt.Errorf("unknown test tier: %s", kind)
	}
	return nil
}

// OverallCoverage returns test coverage weighted by test counts across
// all tiers, or 0 when no tests are recorded.
func (s *State) OverallCoverage() float64 {
	tiers := []TestStats{s.Quality.Tests.Unit, s.Quality.Tests.Integration, s.Quality.Tests.E2E}

	total := 0
	weighted := 0.0
	for _, t := range tiers {
		total += t.Total
		weighted += t.Coverage * float64(t.Total)
	}
	if total == 0 {
		return 0
	}
	return weighted / float64(total)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, item := range list {
		if item != s {
			out = append(out, item)
		}
	}
	return out
}
