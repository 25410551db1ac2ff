// Package agent routes development tasks to specialist agents and executes
// them with bounded parallelism and dependency ordering.
package agent

import (
	"time"
)

// =============================================================================
// AGENT TYPES
// =============================================================================

// Type identifies a specialist agent.
type Type string

const (
	TypeLeadArchitect         Type = "lead-architect"
	TypeBackendMaster         Type = "backend-master"
	TypeCLIArtisan            Type = "cli-artisan"
	TypePlatformBuilder       Type = "platform-builder"
	TypeIntegrationSpecialist Type = "integration-specialist"
	TypeQASentinel            Type = "qa-sentinel"
)

// Info describes an agent's role and capabilities.
type Info struct {
	Name      string   `json:"name"`
	Expertise []string `json:"expertise"`
	SkillFile string   `json:"skill_file"`
}

// DefaultAgents returns the built-in specialist roster.
func DefaultAgents() map[Type]Info {
	return map[Type]Info{
		TypeLeadArchitect: {
			Name:      "Lead Architect",
			Expertise: []string{"architecture", "design", "patterns"},
			SkillFile: ".forge/agents/lead-architect.md",
		},
		TypeBackendMaster: {
			Name:      "Backend Master",
			Expertise: []string{"api", "database", "business-logic"},
			SkillFile: ".forge/agents/backend-master.md",
		},
		TypeCLIArtisan: {
			Name:      "CLI Artisan",
			Expertise: []string{"cli", "commands", "ux"},
			SkillFile: ".forge/agents/cli-artisan.md",
		},
		TypePlatformBuilder: {
			Name:      "Platform Builder",
			Expertise: []string{"infrastructure", "deployment", "cicd"},
			SkillFile: ".forge/agents/platform-builder.md",
		},
		TypeIntegrationSpecialist: {
			Name:      "Integration Specialist",
			Expertise: []string{"apis", "integrations", "webhooks"},
			SkillFile: ".forge/agents/integration-specialist.md",
		},
		TypeQASentinel: {
			Name:      "QA Sentinel",
			Expertise: []string{"testing", "quality", "review"},
			SkillFile: ".forge/agents/qa-sentinel.md",
		},
	}
}

// =============================================================================
// TASK TYPES
// =============================================================================

// Status represents the execution state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Kind categorizes a task.
type Kind string

const (
	KindFeature        Kind = "feature"
	KindBugfix         Kind = "bugfix"
	KindRefactor       Kind = "refactor"
	KindDesign         Kind = "design"
	KindImplementation Kind = "implementation"
	KindTesting        Kind = "testing"
	KindQuery          Kind = "query"
)

// priorityRank orders priorities for listings; unknown values rank lowest.
var priorityRank = map[string]int{
	"critical": 3,
	"high":     2,
	"medium":   1,
	"low":      0,
}

// Result captures the outcome of a task execution.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Task represents a unit of development work routed to an agent.
type Task struct {
	ID          string            `json:"id"`
	Description string            `json:"description"`
	Kind        Kind              `json:"kind"`
	Priority    string            `json:"priority"`
	Assigned    Type              `json:"assigned,omitempty"`
	Status      Status            `json:"status"`
	Metadata    map[string]string `json:"metadata,omitempty"`

	// Structure
	Subtasks     []*Task  `json:"subtasks,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"` // Task IDs that must complete first

	// Communication
	Messages []Message `json:"messages,omitempty"`

	// Execution tracking
	StartedAt   time.Time `json:"started_at,omitempty"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	Result      *Result   `json:"result,omitempty"`
}

// CanStart reports whether every dependency is in the completed set.
func (t *Task) CanStart(completed map[string]struct{}) bool {
	for _, dep := range t.Dependencies {
		if _, ok := completed[dep]; !ok {
			return false
		}
	}
	return true
}

// Duration returns the wall time between start and completion, zero when
// either timestamp is unset.
func (t *Task) Duration() time.Duration {
	if t.StartedAt.IsZero() || t.CompletedAt.IsZero() {
		return 0
	}
	return t.CompletedAt.Sub(t.StartedAt)
}

// =============================================================================
// MESSAGES
// =============================================================================

// MessageKind classifies agent-to-agent messages.
type MessageKind string

const (
	MessageHandoff MessageKind = "handoff" // Hand a task to another agent
	MessageQuery   MessageKind = "query"   // Ask another agent for information
	MessageResult  MessageKind = "result"  // Send a result back
	MessageStatus  MessageKind = "status"  // Status update
	MessageError   MessageKind = "error"   // Error notification
)

// Message is a unit of agent-to-agent communication.
type Message struct {
	ID      string            `json:"id"`
	From    Type              `json:"from"`
	To      Type              `json:"to"`
	Kind    MessageKind       `json:"kind"`
	Content map[string]string `json:"content"`
	Time    time.Time         `json:"time"`
}

// InteractionRecord is one entry in the learning log.
type InteractionRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	TaskID      string    `json:"task_id"`
	Kind        Kind      `json:"kind"`
	Description string    `json:"description"`
	Agent       Type      `json:"agent"`
	Status      Status    `json:"status"`
	Duration    float64   `json:"duration"` // Seconds
	Success     bool      `json:"success"`
}
