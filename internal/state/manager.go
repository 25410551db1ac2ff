package state

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"forge/internal/logging"
)

// Manager owns the state document on disk.
type Manager struct {
	workspace string
	path      string
	checkDir  string

	// CheckpointLimit bounds how many checkpoints are kept on disk.
	// Zero means unlimited.
	CheckpointLimit int

	mu  sync.Mutex
	now func() time.Time
}

// NewManager returns a Manager for the workspace's state document at
// .forge/state.json.
func NewManager(workspace string) *Manager {
	return &Manager{
		workspace: workspace,
		path:      filepath.Join(workspace, ".forge", "state.json"),
		checkDir:  filepath.Join(workspace, ".forge", "checkpoints"),
		now:       time.Now,
	}
}

// Path returns the state file location.
func (m *Manager) Path() string {
	return m.path
}

// Exists reports whether a state document has been initialized.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Load reads the state document, returning a fresh default when none
// exists yet.
func (m *Manager) Load() (*State, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultState("", "unknown"), nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	return &s, nil
}

// Save writes the state document atomically, stamping LastUpdated and
// backfilling CreatedAt when zero.
func (m *Manager) Save(s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(s)
}

func (m *Manager) saveLocked(s *State) error {
	now := m.now()
	s.Project.LastUpdated = now
	if s.Project.CreatedAt.IsZero() {
		s.Project.CreatedAt = now
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	logging.State("Saved state to %s (phase %s)", m.path, s.Development.CurrentPhase)
	return nil
}

// Init creates and saves a fresh state document for the project.
func (m *Manager) Init(name, projectType, forgeVersion string) (*State, error) {
	s := DefaultState(name, projectType)
	s.Project.ForgeVersion = forgeVersion
	if err := m.Save(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Checkpoint snapshots the current state document under
// .forge/checkpoints/ and records it in the checkpoint list.
func (m *Manager) Checkpoint(description string) (*Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.Load()
	if err != nil {
		return nil, err
	}

	id := nextCheckpointID(s.Checkpoints)
	file := filepath.Join(m.checkDir, id+".json")

	// Snapshot the document as it stands, before recording the new
	// checkpoint inside it.
	snapshot, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(m.checkDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}
	if err := os.WriteFile(file, snapshot, 0644); err != nil {
		return nil, fmt.Errorf("failed to write checkpoint: %w", err)
	}

	cp := Checkpoint{
		ID:          id,
		Timestamp:   m.now(),
		Description: description,
		File:        file,
		GitCommit:   gitHead(m.workspace),
	}
	s.Checkpoints = append(s.Checkpoints, cp)
	m.pruneLocked(s)

	if err := m.saveLocked(s); err != nil {
		return nil, err
	}

	logging.State("Checkpoint %s created (%s)", id, description)
	logging.Audit().CheckpointCreate(id, description)
	return &cp, nil
}

// Restore replaces the live state with a checkpoint snapshot. An empty
// id restores the most recent checkpoint. The checkpoint history is
// preserved across the restore so later snapshots stay reachable.
func (m *Manager) Restore(id string) (*Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.Load()
	if err != nil {
		return nil, err
	}
	if len(s.Checkpoints) == 0 {
		return nil, fmt.Errorf("no checkpoints available")
	}

	var cp *Checkpoint
	if id == "" {
		cp = &s.Checkpoints[len(s.Checkpoints)-1]
	} else {
		for i := range s.Checkpoints {
			if s.Checkpoints[i].ID == id {
				cp = &s.Checkpoints[i]
				break
			}
		}
		if cp == nil {
			return nil, fmt.Errorf("checkpoint not found: %s", id)
		}
	}

	data, err := os.ReadFile(cp.File)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", cp.ID, err)
	}

	var restored State
	if err := json.Unmarshal(data, &restored); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", cp.ID, err)
	}
	restored.Checkpoints = s.Checkpoints

	result := *cp
	if err := m.saveLocked(&restored); err != nil {
		return nil, err
	}

	logging.State("Restored checkpoint %s", result.ID)
	logging.Audit().CheckpointRestore(result.ID, true, "")
	return &result, nil
}

// nextCheckpointID returns the next sequential cp-NNN identifier.
// Scanning for the max survives pruned gaps in the sequence.
func nextCheckpointID(existing []Checkpoint) string {
	max := 0
	for _, cp := range existing {
		var n int
		if _, err := fmt.Sscanf(cp.ID, "cp-%d", &n); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("cp-%03d", max+1)
}

// pruneLocked drops the oldest checkpoints beyond CheckpointLimit.
func (m *Manager) pruneLocked(s *State) {
	if m.CheckpointLimit <= 0 {
		return
	}
	for len(s.Checkpoints) > m.CheckpointLimit {
		old := s.Checkpoints[0]
		s.Checkpoints = s.Checkpoints[1:]
		if err := os.Remove(old.File); err != nil && !os.IsNotExist(err) {
			logging.Get(logging.CategoryState).Warn("failed to remove pruned checkpoint %s: %v", old.ID, err)
		}
	}
}

// gitHead returns the current commit hash, or empty when the workspace
// is not a git repository.
func gitHead(workspace string) string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = workspace
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
