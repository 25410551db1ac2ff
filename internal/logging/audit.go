// Audit logging for forge: structured JSONL events describing agent
// lifecycle, task routing, vision operations, and state transitions.
// One line per event, written to .forge/logs/<date>_audit.log when debug
// mode is enabled.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// AUDIT EVENT TYPES
// =============================================================================

// AuditEventType identifies the kind of audit event
type AuditEventType string

const (
	// Agent lifecycle events
	AuditAgentSpawn    AuditEventType = "agent_spawn"
	AuditAgentExecute  AuditEventType = "agent_execute"
	AuditAgentComplete AuditEventType = "agent_complete"
	AuditAgentError    AuditEventType = "agent_error"

	// Task routing events
	AuditTaskCreate   AuditEventType = "task_create"
	AuditTaskRoute    AuditEventType = "task_route"
	AuditTaskComplete AuditEventType = "task_complete"

	// Vision document events
	AuditVisionParse  AuditEventType = "vision_parse"
	AuditVisionSave   AuditEventType = "vision_save"
	AuditVisionChange AuditEventType = "vision_change"

	// State events
	AuditStateSave         AuditEventType = "state_save"
	AuditPhaseAdvance      AuditEventType = "phase_advance"
	AuditCheckpointCreate  AuditEventType = "checkpoint_create"
	AuditCheckpointRestore AuditEventType = "checkpoint_restore"

	// Performance events
	AuditPerfMetric AuditEventType = "perf_metric"
	AuditPerfSlow   AuditEventType = "perf_slow"

	// Error events
	AuditErrorGeneric  AuditEventType = "error_generic"
	AuditErrorCritical AuditEventType = "error_critical"
)

// =============================================================================
// AUDIT EVENT STRUCTURE
// =============================================================================

// AuditEvent is a structured audit log entry, one JSON line per event
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"`      // Unix milliseconds
	EventType  AuditEventType         `json:"event"`   // Event kind
	Category   string                 `json:"cat"`     // Log category
	TaskID     string                 `json:"task"`    // Task correlation
	Agent      string                 `json:"agent"`   // Agent type if applicable
	Target     string                 `json:"target"`  // Target of operation
	Action     string                 `json:"action"`  // Action being performed
	Success    bool                   `json:"success"` // Operation succeeded
	DurationMs int64                  `json:"dur_ms"`  // Duration in milliseconds
	Error      string                 `json:"error"`   // Error message if failed
	Message    string                 `json:"msg"`     // Human-readable message
	Fields     map[string]interface{} `json:"fields"`  // Additional structured fields
}

// =============================================================================
// AUDIT LOGGER
// =============================================================================

var (
	auditFile   *os.File
	auditMu     sync.Mutex
	auditLogger *AuditLogger
)

// AuditLogger writes structured audit events, optionally scoped to a task
type AuditLogger struct {
	taskID   string
	category Category
	agent    string
}

// InitAudit initializes the audit logging system
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		return nil // Already initialized
	}

	date := time.Now().Format("2006-01-02")
	auditPath := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))

	file, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	auditFile = file

	header := fmt.Sprintf("# Audit log started at %s\n", time.Now().Format(time.RFC3339))
	auditFile.WriteString(header)

	return nil
}

// CloseAudit closes the audit log file
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()

	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// Audit returns the global audit logger
func Audit() *AuditLogger {
	if auditLogger == nil {
		auditLogger = &AuditLogger{}
	}
	return auditLogger
}

// AuditWithTask creates an audit logger scoped to a task
func AuditWithTask(taskID string) *AuditLogger {
	return &AuditLogger{taskID: taskID}
}

// AuditWithContext creates a fully-scoped audit logger
func AuditWithContext(taskID, agent string, category Category) *AuditLogger {
	return &AuditLogger{
		taskID:   taskID,
		agent:    agent,
		category: category,
	}
}

// Log writes an audit event
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsDebugMode() || auditFile == nil {
		return
	}

	// Fill in defaults
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.TaskID == "" && a.taskID != "" {
		event.TaskID = a.taskID
	}
	if event.Agent == "" && a.agent != "" {
		event.Agent = a.agent
	}
	if event.Category == "" && a.category != "" {
		event.Category = string(a.category)
	}
	if event.Fields == nil {
		event.Fields = make(map[string]interface{})
	}

	auditMu.Lock()
	defer auditMu.Unlock()

	data, err := json.Marshal(event)
	if err == nil {
		auditFile.WriteString(string(data) + "\n")
	}
}

// =============================================================================
// CONVENIENCE METHODS FOR COMMON EVENTS
// =============================================================================

// AgentSpawn logs an agent being assigned a task
func (a *AuditLogger) AgentSpawn(agent, taskID string) {
	a.Log(AuditEvent{
		EventType: AuditAgentSpawn,
		Agent:     agent,
		TaskID:    taskID,
		Success:   true,
		Message:   fmt.Sprintf("Agent spawned: %s (task %s)", agent, taskID),
	})
}

// AgentComplete logs an agent finishing a task
func (a *AuditLogger) AgentComplete(agent, taskID string, durationMs int64, success bool, errMsg string) {
	eventType := AuditAgentComplete
	if !success {
		eventType = AuditAgentError
	}
	a.Log(AuditEvent{
		EventType:  eventType,
		Agent:      agent,
		TaskID:     taskID,
		Success:    success,
		DurationMs: durationMs,
		Error:      errMsg,
		Message:    fmt.Sprintf("Agent completed: %s task %s (success=%v, %dms)", agent, taskID, success, durationMs),
	})
}

// TaskRoute logs a task being routed to an agent
func (a *AuditLogger) TaskRoute(taskID, agent string) {
	a.Log(AuditEvent{
		EventType: AuditTaskRoute,
		TaskID:    taskID,
		Agent:     agent,
		Success:   true,
		Message:   fmt.Sprintf("Task routed: %s -> %s", taskID, agent),
	})
}

// VisionSave logs a vision document write
func (a *AuditLogger) VisionSave(path string, goals int, success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType: AuditVisionSave,
		Target:    path,
		Success:   success,
		Error:     errMsg,
		Fields:    map[string]interface{}{"goals": goals},
		Message:   fmt.Sprintf("Vision saved: %s (%d goals, success=%v)", path, goals, success),
	})
}

// VisionChange logs a watcher-detected vision file change
func (a *AuditLogger) VisionChange(path string) {
	a.Log(AuditEvent{
		EventType: AuditVisionChange,
		Target:    path,
		Success:   true,
		Message:   fmt.Sprintf("Vision changed on disk: %s", path),
	})
}

// PhaseAdvance logs a development phase transition
func (a *AuditLogger) PhaseAdvance(from, to string) {
	a.Log(AuditEvent{
		EventType: AuditPhaseAdvance,
		Action:    from,
		Target:    to,
		Success:   true,
		Message:   fmt.Sprintf("Phase advanced: %s -> %s", from, to),
	})
}

// CheckpointCreate logs checkpoint creation
func (a *AuditLogger) CheckpointCreate(id, description string) {
	a.Log(AuditEvent{
		EventType: AuditCheckpointCreate,
		Target:    id,
		Success:   true,
		Fields:    map[string]interface{}{"description": description},
		Message:   fmt.Sprintf("Checkpoint created: %s (%s)", id, description),
	})
}

// CheckpointRestore logs a state restore
func (a *AuditLogger) CheckpointRestore(id string, success bool, errMsg string) {
	a.Log(AuditEvent{
		EventType: AuditCheckpointRestore,
		Target:    id,
		Success:   success,
		Error:     errMsg,
		Message:   fmt.Sprintf("Checkpoint restored: %s (success=%v)", id, success),
	})
}

// PerfMetric logs a performance metric
func (a *AuditLogger) PerfMetric(operation string, durationMs int64, threshold int64) {
	eventType := AuditPerfMetric
	success := true
	if threshold > 0 && durationMs > threshold {
		eventType = AuditPerfSlow
		success = false
	}
	fields := map[string]interface{}{}
	if threshold > 0 {
		fields["threshold_ms"] = threshold
	}
	a.Log(AuditEvent{
		EventType:  eventType,
		Action:     operation,
		DurationMs: durationMs,
		Success:    success,
		Fields:     fields,
		Message:    fmt.Sprintf("Perf: %s took %dms (threshold=%dms)", operation, durationMs, threshold),
	})
}

// Error logs an error event
func (a *AuditLogger) Error(category string, err error, critical bool) {
	eventType := AuditErrorGeneric
	if critical {
		eventType = AuditErrorCritical
	}
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	a.Log(AuditEvent{
		EventType: eventType,
		Category:  category,
		Success:   false,
		Error:     errMsg,
		Message:   fmt.Sprintf("Error in %s: %s (critical=%v)", category, errMsg, critical),
	})
}
