package vision

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"forge/internal/logging"
)

// Manager owns the vision document on disk. Reads go through the parser
// and writes through the serializer, so the file is always in canonical
// form after a save.
type Manager struct {
	path   string
	parser *Parser
	mu     sync.Mutex
	now    func() time.Time
}

// NewManager returns a Manager for the standard vision location inside
// the workspace (.forge/vision.md).
func NewManager(workspace string) *Manager {
	return NewManagerAt(filepath.Join(workspace, ".forge", "vision.md"))
}

// NewManagerAt returns a Manager for an explicit vision file path.
func NewManagerAt(path string) *Manager {
	return &Manager{
		path:   path,
		parser: NewParser(),
		now:    time.Now,
	}
}

// Path returns the vision file location.
func (m *Manager) Path() string {
	return m.path
}

// Load reads and parses the vision document. Read errors are returned
// untouched so callers can use os.IsNotExist on them.
func (m *Manager) Load() (*Vision, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}
	v := m.parser.Parse(string(data))
	logging.VisionDebug("Loaded vision from %s (%d goals)", m.path, len(v.Goals))
	return v, nil
}

// LoadOrDefault reads the vision document, falling back to the default
// vision when the file does not exist yet.
func (m *Manager) LoadOrDefault() (*Vision, error) {
	v, err := m.Load()
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultVision(), nil
		}
		return nil, err
	}
	return v, nil
}

// Save serializes v and writes it atomically via a temp file and rename.
// The Updated timestamp is stamped on every save and Created is
// backfilled when zero.
func (m *Manager) Save(v *Vision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	v.Updated = now
	if v.Created.IsZero() {
		v.Created = now
	}

	text := Serialize(v)

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create vision directory: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write vision file: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("failed to replace vision file: %w", err)
	}

	logging.Vision("Saved vision to %s (%d goals)", m.path, len(v.Goals))
	logging.Audit().VisionSave(m.path, len(v.Goals), true, "")
	return nil
}

// Ensure seeds the default vision when no document exists yet.
func (m *Manager) Ensure() error {
	if _, err := os.Stat(m.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	logging.Vision("Seeding default vision at %s", m.path)
	return m.Save(DefaultVision())
}
