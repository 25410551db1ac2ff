package dashboard

import (
	"errors"
	"strings"
	"testing"
	"time"

	"forge/internal/vision"

	tea "github.com/charmbracelet/bubbletea"
)

func newWatchModel() Model {
	return NewModel(ModelOptions{
		Refresh: func(width int) (string, error) {
			return "status body", nil
		},
		Interval: 50 * time.Millisecond,
		Styles:   NewStyles(DarkTheme()),
	})
}

func TestNewModelDefaults(t *testing.T) {
	t.Parallel()
	m := NewModel(ModelOptions{})

	if m.interval != 2*time.Second {
		t.Errorf("expected 2s default interval, got %v", m.interval)
	}
	if m.width != defaultWidth {
		t.Errorf("expected default width %d, got %d", defaultWidth, m.width)
	}
}

func TestInitSchedulesWork(t *testing.T) {
	t.Parallel()
	m := newWatchModel()

	if m.Init() == nil {
		t.Fatal("expected Init to return a command batch")
	}
}

func TestUpdate_WindowSize(t *testing.T) {
	t.Parallel()
	m := newWatchModel()

	newModel, cmd := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	result := newModel.(Model)

	if result.width != 120 {
		t.Errorf("expected width 120, got %d", result.width)
	}
	if cmd == nil {
		t.Error("expected a refresh command after resize")
	}
}

func TestUpdate_QuitKeys(t *testing.T) {
	t.Parallel()

	keys := []tea.KeyMsg{
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
	}

	for _, key := range keys {
		key := key
		t.Run(key.String(), func(t *testing.T) {
			t.Parallel()
			m := newWatchModel()

			newModel, cmd := m.Update(key)
			result := newModel.(Model)

			if !result.quitting {
				t.Error("expected quitting to be set")
			}
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Errorf("expected tea.QuitMsg, got %T", cmd())
			}
		})
	}
}

func TestUpdate_ManualRefreshKey(t *testing.T) {
	t.Parallel()
	m := newWatchModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd == nil {
		t.Fatal("expected refresh command for `r`")
	}

	msg, ok := cmd().(refreshedMsg)
	if !ok {
		t.Fatalf("expected refreshedMsg, got %T", msg)
	}
	if msg.view != "status body" {
		t.Errorf("expected refreshed view, got %q", msg.view)
	}
}

func TestUpdate_Refreshed(t *testing.T) {
	t.Parallel()
	m := newWatchModel()

	at := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	newModel, _ := m.Update(refreshedMsg{view: "rendered view", at: at})
	result := newModel.(Model)

	if result.view != "rendered view" {
		t.Errorf("expected view to be stored, got %q", result.view)
	}
	if result.refreshes != 1 {
		t.Errorf("expected 1 refresh, got %d", result.refreshes)
	}
	if !result.refreshedAt.Equal(at) {
		t.Errorf("expected refreshedAt %v, got %v", at, result.refreshedAt)
	}
}

func TestUpdate_RefreshedError(t *testing.T) {
	t.Parallel()
	m := newWatchModel()

	newModel, _ := m.Update(refreshedMsg{err: errors.New("state unreadable"), at: time.Now()})
	result := newModel.(Model)

	view := result.View()
	if !strings.Contains(view, "Error:") || !strings.Contains(view, "state unreadable") {
		t.Errorf("expected error in view, got %q", view)
	}
}

func TestUpdate_TickReschedules(t *testing.T) {
	t.Parallel()
	m := newWatchModel()

	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected refresh plus next tick")
	}
}

func TestUpdate_ReloadTriggersRefresh(t *testing.T) {
	t.Parallel()
	m := newWatchModel()

	_, cmd := m.Update(reloadedMsg{vision: &vision.Vision{Version: "1.0"}})
	if cmd == nil {
		t.Fatal("expected refresh after vision reload")
	}
}

func TestWaitForReload(t *testing.T) {
	t.Parallel()

	ch := make(chan *vision.Vision, 1)
	ch <- &vision.Vision{Version: "1.0"}

	m := NewModel(ModelOptions{Reloads: ch})
	cmd := m.waitForReload()
	if cmd == nil {
		t.Fatal("expected reload listener command")
	}

	msg, ok := cmd().(reloadedMsg)
	if !ok {
		t.Fatalf("expected reloadedMsg, got %T", msg)
	}
	if msg.vision == nil {
		t.Error("expected snapshot to be carried")
	}
}

func TestWaitForReload_ClosedChannel(t *testing.T) {
	t.Parallel()

	ch := make(chan *vision.Vision)
	close(ch)

	m := NewModel(ModelOptions{Reloads: ch})
	if msg := m.waitForReload()(); msg != nil {
		t.Errorf("expected nil message on closed channel, got %T", msg)
	}
}

func TestWaitForReload_NoChannel(t *testing.T) {
	t.Parallel()

	m := NewModel(ModelOptions{})
	if m.waitForReload() != nil {
		t.Error("expected nil command without reload channel")
	}
}

func TestUpdate_SpinnerTick(t *testing.T) {
	t.Parallel()
	m := newWatchModel()

	// Tick is a method value, so calling it is always safe.
	spinMsg := m.spinner.Tick()
	newModel, cmd := m.Update(spinMsg)
	_ = newModel
	_ = cmd
}

func TestView(t *testing.T) {
	t.Parallel()
	m := newWatchModel()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("panic in View(): %v", r)
		}
	}()

	view := m.View()
	if !strings.Contains(view, "watching") {
		t.Error("expected watch indicator in view")
	}
	if !strings.Contains(view, "Loading status") {
		t.Error("expected loading placeholder before first refresh")
	}
	if !strings.Contains(view, "q: quit") {
		t.Error("expected footer hint in view")
	}
}

func TestView_AfterRefresh(t *testing.T) {
	t.Parallel()
	m := newWatchModel()

	newModel, _ := m.Update(refreshedMsg{view: "the status body", at: time.Now()})
	view := newModel.(Model).View()

	if !strings.Contains(view, "the status body") {
		t.Error("expected refreshed body in view")
	}
	if !strings.Contains(view, "updated") {
		t.Error("expected updated timestamp in view")
	}
	if strings.Contains(view, "Loading status") {
		t.Error("loading placeholder should be gone after refresh")
	}
}

func TestView_Quitting(t *testing.T) {
	t.Parallel()
	m := newWatchModel()

	newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if view := newModel.(Model).View(); view != "" {
		t.Errorf("expected empty view when quitting, got %q", view)
	}
}
