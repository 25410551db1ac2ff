package dashboard

import (
	"fmt"
	"time"

	"forge/internal/logging"
	"forge/internal/vision"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RefreshFunc produces a freshly rendered status view for the given
// terminal width.
type RefreshFunc func(width int) (string, error)

// Watch loop messages.
type (
	tickMsg      time.Time
	reloadedMsg  struct{ vision *vision.Vision }
	refreshedMsg struct {
		view string
		err  error
		at   time.Time
	}
)

// Model is the bubbletea model behind `forge status --watch`. It owns
// no data loading: the refresh callback re-renders on a timer, on
// resize, and whenever the vision watcher delivers a snapshot.
type Model struct {
	refresh  RefreshFunc
	reloads  <-chan *vision.Vision
	interval time.Duration
	styles   Styles

	spinner     spinner.Model
	width       int
	view        string
	err         error
	refreshedAt time.Time
	refreshes   int
	quitting    bool
}

// ModelOptions configures the watch model.
type ModelOptions struct {
	Refresh  RefreshFunc
	Reloads  <-chan *vision.Vision // May be nil; the timer alone drives refreshes
	Interval time.Duration         // Zero means the 2s default
	Styles   Styles
}

// NewModel builds a watch model from options.
func NewModel(opts ModelOptions) Model {
	if opts.Interval <= 0 {
		opts.Interval = 2 * time.Second
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	return Model{
		refresh:  opts.Refresh,
		reloads:  opts.Reloads,
		interval: opts.Interval,
		styles:   opts.Styles,
		spinner:  sp,
		width:    defaultWidth,
	}
}

// Init starts the spinner, the refresh timer, and the reload listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshCmd(), m.tickCmd(), m.waitForReload())
}

// Update handles watch loop messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, m.refreshCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), m.tickCmd())

	case reloadedMsg:
		// The snapshot itself is discarded: the refresh callback
		// re-reads everything so state and trends stay current too.
		logging.Dashboard("vision reload triggered watch refresh")
		return m, tea.Batch(m.refreshCmd(), m.waitForReload())

	case refreshedMsg:
		m.view = msg.view
		m.err = msg.err
		m.refreshedAt = msg.at
		m.refreshes++
	}

	return m, nil
}

// View renders the watch chrome around the latest status view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	status := fmt.Sprintf("%s watching", m.spinner.View())
	if !m.refreshedAt.IsZero() {
		status += m.styles.Muted.Render(" · updated " + m.refreshedAt.Format("15:04:05"))
	}

	body := m.view
	if body == "" {
		body = m.styles.Muted.Render("Loading status...")
	}
	if m.err != nil {
		body = m.styles.Error.Render("Error: "+m.err.Error()) + "\n\n" + body
	}

	footer := m.styles.Footer.Render("r: refresh · q: quit")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		status,
		m.styles.RenderDivider(m.width),
		body,
		"",
		footer,
	)
}

// tickCmd schedules the next timed refresh.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd re-renders the status view off the Update loop.
func (m Model) refreshCmd() tea.Cmd {
	refresh := m.refresh
	if refresh == nil {
		return nil
	}
	width := m.width
	return func() tea.Msg {
		view, err := refresh(width)
		if err != nil {
			logging.Get(logging.CategoryDashboard).Error("watch refresh failed: %v", err)
		}
		return refreshedMsg{view: view, err: err, at: time.Now()}
	}
}

// waitForReload blocks on the watcher channel until the next snapshot.
// A closed channel ends the subscription quietly.
func (m Model) waitForReload() tea.Cmd {
	reloads := m.reloads
	if reloads == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-reloads
		if !ok {
			return nil
		}
		return reloadedMsg{vision: v}
	}
}
