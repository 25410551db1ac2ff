// Package vision implements the strategic vision document subsystem.
// A vision is stored as a human-editable markdown file (.forge/vision.md)
// and converted to and from a structured record by a parser/serializer
// pair: Parse extracts a Vision from markdown text, Serialize renders a
// Vision back into the canonical document shape.
//
// The converter is pure and synchronous. File access lives in Manager,
// change notification in Watcher; neither is required to use Parse or
// Serialize directly.
package vision

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// PRIORITY
// =============================================================================

// Priority ranks a strategic goal.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// ParsePriority matches a priority name case-insensitively. Unrecognized
// text yields PriorityMedium; malformed input is never an error.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow
	case "medium":
		return PriorityMedium
	case "high":
		return PriorityHigh
	case "critical":
		return PriorityCritical
	default:
		return PriorityMedium
	}
}

// Label returns the capitalized form used in the markdown document.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	default:
		return "Medium"
	}
}

// =============================================================================
// GOAL STATUS
// =============================================================================

// GoalStatus tracks a goal through its lifecycle.
type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not-started"
	GoalInProgress GoalStatus = "in-progress"
	GoalCompleted  GoalStatus = "completed"
	GoalBlocked    GoalStatus = "blocked"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// DocumentHeader carries the scalar fields of the delimited header block
// at the top of a vision document.
type DocumentHeader struct {
	Version string    `json:"version"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// VisionDocument is the parsed envelope: header fields plus the raw body
// text that follows the header block.
type VisionDocument struct {
	Header DocumentHeader `json:"header"`
	Body   string         `json:"body"`
}

// =============================================================================
// VISION RECORD
// =============================================================================

// StrategicGoal is one entry of the Strategic Goals section.
//
// ID is generated fresh each parse and is not stable across re-parses of
// identical text. Metrics is carried for the application's use only; the
// markdown format has no per-goal metric syntax, so parsing always leaves
// it empty and serialization never emits it.
type StrategicGoal struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Deadline    *time.Time `json:"deadline,omitempty"` // date precision
	Status      GoalStatus `json:"status"`
	Progress    int        `json:"progress"` // 0-100
	Metrics     []string   `json:"metrics"`
}

// Vision is the root record: everything the document expresses, plus
// free-form metadata the application may attach. SuccessMetrics values
// are float64 when the document value parses as a number, string
// otherwise.
type Vision struct {
	Version        string            `json:"version"`
	Created        time.Time         `json:"created"`
	Updated        time.Time         `json:"updated"`
	Mission        string            `json:"mission"`
	Principles     []string          `json:"principles"`
	Goals          []StrategicGoal   `json:"strategic_goals"`
	CurrentFocus   string            `json:"current_focus"`
	SuccessMetrics map[string]any    `json:"success_metrics"`
	Metadata       map[string]string `json:"metadata"`
}

// newGoalID returns a fresh opaque goal identifier.
func newGoalID() string {
	return "goal-" + uuid.NewString()[:8]
}

// DefaultVision returns the seed record written when no vision document
// exists yet.
func DefaultVision() *Vision {
	now := time.Now()
	return &Vision{
		Version: "1.0",
		Created: now,
		Updated: now,
		Mission: "Define the mission for this project.",
		Principles: []string{
			"Ship small, verifiable increments",
			"Keep the codebase understandable",
			"Automate the quality gates",
		},
		Goals: []StrategicGoal{
			{
				ID:          newGoalID(),
				Title:       "Define the vision",
				Description: "Replace this starter goal with the project's real strategic goals.",
				Priority:    PriorityMedium,
				Status:      GoalNotStarted,
				Progress:    0,
				Metrics:     []string{},
			},
		},
		CurrentFocus:   "Initial project setup",
		SuccessMetrics: map[string]any{},
		Metadata:       map[string]string{},
	}
}
