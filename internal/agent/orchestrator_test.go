package agent

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"forge/internal/config"
)

// testOrchestrator returns an orchestrator with deterministic IDs and clock.
func testOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()

	o := NewOrchestrator(t.TempDir(), config.AgentsConfig{
		Orchestration:   true,
		MaxParallel:     3,
		DefaultPriority: "medium",
	})

	n := 0
	o.newID = func() string {
		n++
		return fmt.Sprintf("task-%03d", n)
	}
	o.now = func() time.Time {
		return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	}
	return o
}

func TestAssignKeywordRouting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		description string
		kind        Kind
		want        Type
	}{
		{name: "architecture keyword", description: "Design the plugin architecture", kind: KindFeature, want: TypeLeadArchitect},
		{name: "structure keyword", description: "Rework the module structure", kind: KindQuery, want: TypeLeadArchitect},
		{name: "api keyword", description: "Add a REST api for users", kind: KindFeature, want: TypeBackendMaster},
		{name: "repository keyword", description: "Wire the billing repository layer", kind: KindFeature, want: TypeBackendMaster},
		{name: "cli keyword", description: "Polish the cli help output", kind: KindFeature, want: TypeCLIArtisan},
		{name: "deploy keyword", description: "Ship the deploy pipeline with docker", kind: KindFeature, want: TypePlatformBuilder},
		{name: "webhook keyword", description: "Hook up the billing webhook", kind: KindFeature, want: TypeIntegrationSpecialist},
		{name: "review keyword", description: "Review the error handling", kind: KindFeature, want: TypeQASentinel},
		{name: "feature kind fallback", description: "Ship the magic", kind: KindFeature, want: TypeBackendMaster},
		{name: "bugfix kind fallback", description: "Fix the flaky thing", kind: KindBugfix, want: TypeQASentinel},
		{name: "refactor kind fallback", description: "Untangle the helpers", kind: KindRefactor, want: TypeQASentinel},
		{name: "final fallback", description: "Do the needful", kind: KindQuery, want: TypeLeadArchitect},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			o := testOrchestrator(t)
			task := &Task{Description: tc.description, Kind: tc.kind}
			if got := o.Assign(task); got != tc.want {
				t.Errorf("Assign mismatch: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t)
	task := o.CreateTask("Ship the magic", "", "", nil)

	if task.ID != "task-001" {
		t.Errorf("ID mismatch: got %q, want %q", task.ID, "task-001")
	}
	if task.Kind != KindFeature {
		t.Errorf("Kind mismatch: got %q, want %q", task.Kind, KindFeature)
	}
	if task.Priority != "medium" {
		t.Errorf("Priority mismatch: got %q, want %q", task.Priority, "medium")
	}
	if task.Status != StatusPending {
		t.Errorf("Status mismatch: got %q, want %q", task.Status, StatusPending)
	}
	if task.Assigned != TypeBackendMaster {
		t.Errorf("Assigned mismatch: got %q, want %q", task.Assigned, TypeBackendMaster)
	}

	stored, ok := o.Task("task-001")
	if !ok {
		t.Fatal("created task not registered")
	}
	if stored != task {
		t.Error("registered task is not the returned task")
	}
}

func TestCreateTaskExplicitFields(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t)
	task := o.CreateTask("Fix the flaky thing", KindBugfix, "high", map[string]string{"source": "cli"})

	if task.Kind != KindBugfix {
		t.Errorf("Kind mismatch: got %q, want %q", task.Kind, KindBugfix)
	}
	if task.Priority != "high" {
		t.Errorf("Priority mismatch: got %q, want %q", task.Priority, "high")
	}
	if task.Assigned != TypeQASentinel {
		t.Errorf("Assigned mismatch: got %q, want %q", task.Assigned, TypeQASentinel)
	}
	if task.Metadata["source"] != "cli" {
		t.Errorf("Metadata mismatch: got %q, want %q", task.Metadata["source"], "cli")
	}
}

func TestDecomposeFeature(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t)
	parent := o.CreateTask("Ship user accounts", KindFeature, "high", nil)

	subtasks := o.Decompose(parent)
	if len(subtasks) != 3 {
		t.Fatalf("expected 3 subtasks, got %d", len(subtasks))
	}

	wantIDs := []string{"task-001-arch", "task-001-impl", "task-001-test"}
	wantKinds := []Kind{KindDesign, KindImplementation, KindTesting}
	wantAgents := []Type{TypeLeadArchitect, TypeBackendMaster, TypeQASentinel}

	for i, sub := range subtasks {
		if sub.ID != wantIDs[i] {
			t.Errorf("subtask %d ID mismatch: got %q, want %q", i, sub.ID, wantIDs[i])
		}
		if sub.Kind != wantKinds[i] {
			t.Errorf("subtask %d Kind mismatch: got %q, want %q", i, sub.Kind, wantKinds[i])
		}
		if sub.Assigned != wantAgents[i] {
			t.Errorf("subtask %d Assigned mismatch: got %q, want %q", i, sub.Assigned, wantAgents[i])
		}
		if sub.Priority != "high" {
			t.Errorf("subtask %d Priority mismatch: got %q, want high", i, sub.Priority)
		}
		if sub.Metadata["parent_task"] != "task-001" {
			t.Errorf("subtask %d parent mismatch: got %q", i, sub.Metadata["parent_task"])
		}
		if _, ok := o.Task(sub.ID); !ok {
			t.Errorf("subtask %s not registered", sub.ID)
		}
	}

	if len(subtasks[0].Dependencies) != 0 {
		t.Errorf("design subtask should have no dependencies, got %v", subtasks[0].Dependencies)
	}
	if got := subtasks[1].Dependencies; len(got) != 1 || got[0] != "task-001-arch" {
		t.Errorf("implementation dependencies mismatch: got %v", got)
	}
	if got := subtasks[2].Dependencies; len(got) != 1 || got[0] != "task-001-impl" {
		t.Errorf("testing dependencies mismatch: got %v", got)
	}

	if len(parent.Subtasks) != 3 {
		t.Errorf("parent Subtasks mismatch: got %d, want 3", len(parent.Subtasks))
	}
}

func TestDecomposeNonFeature(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t)
	task := o.CreateTask("Fix the flaky thing", KindBugfix, "", nil)

	if subtasks := o.Decompose(task); subtasks != nil {
		t.Errorf("expected no subtasks for bugfix, got %d", len(subtasks))
	}
	if got := len(o.ListTasks("")); got != 1 {
		t.Errorf("task count changed: got %d, want 1", got)
	}
}

func TestListTasksPriorityOrder(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t)
	o.CreateTask("low one", KindQuery, "low", nil)
	o.CreateTask("critical one", KindQuery, "critical", nil)
	o.CreateTask("medium one", KindQuery, "medium", nil)
	o.CreateTask("medium two", KindQuery, "medium", nil)
	o.CreateTask("high one", KindQuery, "high", nil)

	tasks := o.ListTasks("")
	got := make([]string, len(tasks))
	for i, task := range tasks {
		got[i] = task.Description
	}

	want := []string{"critical one", "high one", "medium one", "medium two", "low one"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}

func TestListTasksStatusFilter(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t)
	first := o.CreateTask("first", KindQuery, "", nil)
	o.CreateTask("second", KindQuery, "", nil)

	if _, err := o.UpdateStatus(first.ID, StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	completed := o.ListTasks(StatusCompleted)
	if len(completed) != 1 || completed[0].ID != first.ID {
		t.Errorf("completed filter mismatch: got %v", completed)
	}
	if pending := o.ListTasks(StatusPending); len(pending) != 1 {
		t.Errorf("pending filter mismatch: got %d tasks", len(pending))
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t)
	task := o.CreateTask("first", KindQuery, "", nil)

	updated, err := o.UpdateStatus(task.ID, StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Errorf("Status mismatch: got %q, want %q", updated.Status, StatusInProgress)
	}

	if _, err := o.UpdateStatus("no-such-task", StatusCompleted); err == nil {
		t.Error("expected error for unknown task")
	}
}

func TestUpdateStatusUnblocksDependents(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t)
	blocker := o.CreateTask("first", KindQuery, "", nil)
	dependent := o.CreateTask("second", KindQuery, "", nil)
	dependent.Dependencies = []string{blocker.ID}

	o.mu.Lock()
	ready := dependent.CanStart(o.completed)
	o.mu.Unlock()
	if ready {
		t.Fatal("dependent should be blocked before completion")
	}

	if _, err := o.UpdateStatus(blocker.ID, StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	o.mu.Lock()
	ready = dependent.CanStart(o.completed)
	o.mu.Unlock()
	if !ready {
		t.Error("dependent should start after blocker completes")
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t)
	if got := o.Recommend("what database should back the ledger"); got != TypeBackendMaster {
		t.Errorf("Recommend mismatch: got %q, want %q", got, TypeBackendMaster)
	}
	if got := o.Recommend("how do we harden the release"); got != TypeLeadArchitect {
		t.Errorf("Recommend fallback mismatch: got %q, want %q", got, TypeLeadArchitect)
	}
}

func TestSkillFile(t *testing.T) {
	t.Parallel()

	o := testOrchestrator(t)
	want := filepath.Join(o.workspace, ".forge", "agents", "qa-sentinel.md")
	if got := o.SkillFile(TypeQASentinel); got != want {
		t.Errorf("SkillFile mismatch: got %q, want %q", got, want)
	}
	if got := o.SkillFile(Type("ghost")); got != "" {
		t.Errorf("expected empty path for unknown agent, got %q", got)
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	if got := Suggest("tighten the billing webhook retries"); got != "Integration Specialist" {
		t.Errorf("Suggest mismatch: got %q, want %q", got, "Integration Specialist")
	}
}
