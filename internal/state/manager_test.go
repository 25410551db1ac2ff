package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var stateClock = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func testStateManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(t.TempDir())
	m.now = func() time.Time { return stateClock }
	return m
}

func TestManager_LoadDefaultWhenMissing(t *testing.T) {
	t.Parallel()

	m := testStateManager(t)

	if m.Exists() {
		t.Error("Exists should be false before init")
	}

	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Development.CurrentPhase != PhasePlanning {
		t.Errorf("CurrentPhase mismatch: got %q, want %q", s.Development.CurrentPhase, PhasePlanning)
	}

	// Load must not create the file
	if m.Exists() {
		t.Error("Load should not create the state file")
	}
}

func TestManager_InitSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	m := testStateManager(t)

	s, err := m.Init("demo", "api-service", "1.0.0")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !m.Exists() {
		t.Error("Exists should be true after init")
	}
	if !s.Project.CreatedAt.Equal(stateClock) {
		t.Errorf("CreatedAt not stamped: got %v", s.Project.CreatedAt)
	}

	s.PlanFeature("auth")
	s.AdvancePhase()
	if err := m.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Project.Name != "demo" || got.Project.Type != "api-service" {
		t.Errorf("Project mismatch: got %+v", got.Project)
	}
	if got.Project.ForgeVersion != "1.0.0" {
		t.Errorf("ForgeVersion mismatch: got %q", got.Project.ForgeVersion)
	}
	if got.Development.CurrentPhase != PhaseArchitecture {
		t.Errorf("CurrentPhase mismatch: got %q, want %q", got.Development.CurrentPhase, PhaseArchitecture)
	}
	if len(got.Development.Features.Planned) != 1 || got.Development.Features.Planned[0] != "auth" {
		t.Errorf("Planned features mismatch: got %v", got.Development.Features.Planned)
	}

	if _, err := os.Stat(m.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temp file left behind after save")
	}
}

func TestManager_SaveKeepsCreatedAt(t *testing.T) {
	t.Parallel()

	m := testStateManager(t)

	s, err := m.Init("demo", "cli-tool", "1.0.0")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	later := stateClock.Add(24 * time.Hour)
	m.now = func() time.Time { return later }

	if err := m.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !s.Project.CreatedAt.Equal(stateClock) {
		t.Errorf("CreatedAt changed: got %v, want %v", s.Project.CreatedAt, stateClock)
	}
	if !s.Project.LastUpdated.Equal(later) {
		t.Errorf("LastUpdated not advanced: got %v, want %v", s.Project.LastUpdated, later)
	}
}

func TestManager_CheckpointSequence(t *testing.T) {
	t.Parallel()

	m := testStateManager(t)
	if _, err := m.Init("demo", "cli-tool", "1.0.0"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cp1, err := m.Checkpoint("first")
	if err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}
	cp2, err := m.Checkpoint("second")
	if err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}

	if cp1.ID != "cp-001" || cp2.ID != "cp-002" {
		t.Errorf("Checkpoint IDs mismatch: got %q, %q", cp1.ID, cp2.ID)
	}
	if cp1.Description != "first" {
		t.Errorf("Description mismatch: got %q", cp1.Description)
	}

	for _, cp := range []*Checkpoint{cp1, cp2} {
		if _, err := os.Stat(cp.File); err != nil {
			t.Errorf("Checkpoint file missing for %s: %v", cp.ID, err)
		}
	}

	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Checkpoints) != 2 {
		t.Errorf("Checkpoint list mismatch: got %d, want 2", len(s.Checkpoints))
	}
}

func TestManager_CheckpointSnapshotExcludesItself(t *testing.T) {
	t.Parallel()

	m := testStateManager(t)
	if _, err := m.Init("demo", "cli-tool", "1.0.0"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cp, err := m.Checkpoint("baseline")
	if err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}

	data, err := os.ReadFile(cp.File)
	if err != nil {
		t.Fatalf("Reading snapshot failed: %v", err)
	}

	var snap State
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("Parsing snapshot failed: %v", err)
	}
	if len(snap.Checkpoints) != 0 {
		t.Errorf("Snapshot should predate its own checkpoint entry, got %d entries", len(snap.Checkpoints))
	}
}

func TestManager_Restore(t *testing.T) {
	t.Parallel()

	m := testStateManager(t)
	s, err := m.Init("demo", "cli-tool", "1.0.0")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if _, err := m.Checkpoint("at planning"); err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}

	s, err = m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s.AdvancePhase()
	if err := m.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := m.Checkpoint("at architecture"); err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}

	s, _ = m.Load()
	s.AdvancePhase() // Now at setup
	if err := m.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Empty id restores the latest checkpoint
	cp, err := m.Restore("")
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if cp.ID != "cp-002" {
		t.Errorf("Restored checkpoint mismatch: got %q, want cp-002", cp.ID)
	}

	got, _ := m.Load()
	if got.Development.CurrentPhase != PhaseArchitecture {
		t.Errorf("Phase after restore mismatch: got %q, want %q", got.Development.CurrentPhase, PhaseArchitecture)
	}
	if len(got.Checkpoints) != 2 {
		t.Errorf("Checkpoint history lost on restore: got %d entries", len(got.Checkpoints))
	}

	// Restoring a specific id rewinds further
	if _, err := m.Restore("cp-001"); err != nil {
		t.Fatalf("Restore cp-001 failed: %v", err)
	}
	got, _ = m.Load()
	if got.Development.CurrentPhase != PhasePlanning {
		t.Errorf("Phase after restore mismatch: got %q, want %q", got.Development.CurrentPhase, PhasePlanning)
	}

	if _, err := m.Restore("cp-999"); err == nil {
		t.Error("Expected error for unknown checkpoint id")
	}
}

func TestManager_RestoreWithoutCheckpoints(t *testing.T) {
	t.Parallel()

	m := testStateManager(t)
	if _, err := m.Init("demo", "cli-tool", "1.0.0"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	if _, err := m.Restore(""); err == nil {
		t.Error("Expected error restoring with no checkpoints")
	}
}

func TestManager_CheckpointPrune(t *testing.T) {
	t.Parallel()

	m := testStateManager(t)
	m.CheckpointLimit = 2
	if _, err := m.Init("demo", "cli-tool", "1.0.0"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	var first *Checkpoint
	for i, desc := range []string{"one", "two", "three"} {
		cp, err := m.Checkpoint(desc)
		if err != nil {
			t.Fatalf("Checkpoint %d failed: %v", i, err)
		}
		if i == 0 {
			first = cp
		}
	}

	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Checkpoints) != 2 {
		t.Fatalf("Prune failed: got %d checkpoints, want 2", len(s.Checkpoints))
	}
	if s.Checkpoints[0].ID != "cp-002" || s.Checkpoints[1].ID != "cp-003" {
		t.Errorf("Kept checkpoints mismatch: got %q, %q", s.Checkpoints[0].ID, s.Checkpoints[1].ID)
	}

	if _, err := os.Stat(first.File); !os.IsNotExist(err) {
		t.Error("Pruned checkpoint file should be deleted")
	}

	// IDs never go backwards after pruning
	cp4, err := m.Checkpoint("four")
	if err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}
	if cp4.ID != "cp-004" {
		t.Errorf("Next ID mismatch: got %q, want cp-004", cp4.ID)
	}
}

func TestNextCheckpointID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		existing []Checkpoint
		want     string
	}{
		{"empty", nil, "cp-001"},
		{"sequential", []Checkpoint{{ID: "cp-001"}, {ID: "cp-002"}}, "cp-003"},
		{"gap after prune", []Checkpoint{{ID: "cp-007"}, {ID: "cp-009"}}, "cp-010"},
		{"malformed ignored", []Checkpoint{{ID: "snapshot-a"}, {ID: "cp-003"}}, "cp-004"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := nextCheckpointID(tc.existing); got != tc.want {
				t.Errorf("nextCheckpointID mismatch: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestManager_CheckpointDirLayout(t *testing.T) {
	t.Parallel()

	ws := t.TempDir()
	m := NewManager(ws)
	m.now = func() time.Time { return stateClock }

	if _, err := m.Init("demo", "cli-tool", "1.0.0"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	cp, err := m.Checkpoint("layout")
	if err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}

	want := filepath.Join(ws, ".forge", "checkpoints", "cp-001.json")
	if cp.File != want {
		t.Errorf("Checkpoint file mismatch: got %q, want %q", cp.File, want)
	}
}
