// Package dashboard renders the project status view: a lipgloss-styled
// summary of project state, strategic goals, and metric trends, plus a
// small bubbletea model for live watch mode. Rendering is pure; all
// loading stays with the callers.
package dashboard

import (
	"fmt"
	"strings"

	"forge/internal/analytics"
	"forge/internal/logging"
	"forge/internal/state"
	"forge/internal/vision"

	"github.com/charmbracelet/lipgloss"
)

const (
	defaultWidth  = 72
	phaseBarWidth = 30
	goalBarWidth  = 20
)

// trendGlyph maps trend directions to their display markers.
var trendGlyph = map[analytics.Direction]string{
	analytics.TrendUp:     "📈",
	analytics.TrendDown:   "📉",
	analytics.TrendStable: "➡️",
}

// Renderer draws the status view. Zero Width falls back to a sensible
// terminal default.
type Renderer struct {
	Styles Styles
	Width  int
}

// NewRenderer returns a Renderer using the given styles.
func NewRenderer(styles Styles) *Renderer {
	return &Renderer{Styles: styles}
}

func (r *Renderer) width() int {
	if r.Width > 0 {
		return r.Width
	}
	return defaultWidth
}

// Render composes the full status view from whatever sources exist.
// Nil sources drop their sections rather than erroring; a missing state
// document renders as a hint to run init.
func (r *Renderer) Render(st *state.State, v *vision.Vision, trends []*analytics.Trend) string {
	sections := []string{r.renderHeader(st)}

	if st != nil {
		sections = append(sections, r.renderPhases(st))
	}
	if v != nil {
		sections = append(sections, r.renderGoals(v))
		if focus := r.renderFocus(v); focus != "" {
			sections = append(sections, focus)
		}
	}
	if section := r.renderTrends(trends); section != "" {
		sections = append(sections, section)
	}
	if st != nil {
		sections = append(sections, r.renderActivity(st))
	}

	logging.Dashboard("rendered status view (%d sections)", len(sections))
	return strings.Join(sections, "\n\n")
}

// renderHeader draws the project header box spanning the view width.
func (r *Renderer) renderHeader(st *state.State) string {
	card := r.Styles.Card.Width(r.width())
	if st == nil {
		return card.Render(
			r.Styles.Muted.Render("No project state found. Run `forge init` first."))
	}

	name := st.Project.Name
	if name == "" {
		name = "unnamed project"
	}
	title := r.Styles.Header.Render(" " + name + " ")

	badge := "forge"
	if st.Project.ForgeVersion != "" {
		badge = "forge v" + st.Project.ForgeVersion
	}
	version := r.Styles.Badge.Render(badge)

	headerLine := lipgloss.JoinHorizontal(lipgloss.Center, title, " ", version)

	details := make([]string, 0, 3)
	if st.Project.Type != "" {
		details = append(details, st.Project.Type)
	}
	details = append(details, fmt.Sprintf("phase: %s", st.Development.CurrentPhase))
	if !st.Project.LastUpdated.IsZero() {
		details = append(details, "updated "+st.Project.LastUpdated.Format("2006-01-02 15:04"))
	}
	detailLine := r.Styles.Muted.Render(strings.Join(details, " · "))

	return card.Render(lipgloss.JoinVertical(lipgloss.Left, headerLine, detailLine))
}

// renderPhases draws the development ladder with completion markers.
func (r *Renderer) renderPhases(st *state.State) string {
	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render("Development"))
	sb.WriteString("\n")

	for _, phase := range state.PhaseLadder {
		var icon, label string
		switch {
		case phaseCompleted(st, phase):
			icon = r.Styles.Success.Render("✓")
			label = string(phase)
		case phase == st.Development.CurrentPhase:
			icon = r.Styles.Info.Render("●")
			label = r.Styles.Bold.Render(string(phase))
		default:
			icon = r.Styles.Muted.Render("○")
			label = r.Styles.Muted.Render(string(phase))
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", icon, label))
	}

	progress := st.Progress()
	sb.WriteString(fmt.Sprintf("\n%s %.0f%%", r.progressBar(progress/100, phaseBarWidth), progress))

	return sb.String()
}

// renderGoals draws the strategic goal list with priority badges and
// progress bars.
func (r *Renderer) renderGoals(v *vision.Vision) string {
	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render("Strategic Goals"))
	sb.WriteString("\n")

	if len(v.Goals) == 0 {
		sb.WriteString(r.Styles.Muted.Render("No goals defined."))
		return sb.String()
	}

	for i, g := range v.Goals {
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			r.goalIcon(g.Status),
			r.priorityBadge(g.Priority),
			r.Styles.Bold.Render(g.Title)))

		detail := fmt.Sprintf("  %s %d%%", r.progressBar(float64(g.Progress)/100, goalBarWidth), g.Progress)
		if g.Deadline != nil {
			detail += r.Styles.Muted.Render(" · due " + g.Deadline.Format("2006-01-02"))
		}
		sb.WriteString(detail)
		if i < len(v.Goals)-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// renderFocus draws the current focus line, or nothing when unset.
func (r *Renderer) renderFocus(v *vision.Vision) string {
	if strings.TrimSpace(v.CurrentFocus) == "" {
		return ""
	}
	return r.Styles.Bold.Render("Focus: ") + r.Styles.Body.Render(v.CurrentFocus)
}

// renderTrends draws one line per metric trend, or nothing when no
// trends exist.
func (r *Renderer) renderTrends(trends []*analytics.Trend) string {
	lines := make([]string, 0, len(trends))
	for _, t := range trends {
		if t == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s: %.1f (%+.1f%% over %dd)",
			trendGlyph[t.Direction],
			r.Styles.Bold.Render(metricLabel(t.Metric)),
			t.Current,
			t.ChangePercent,
			t.Days()))
	}
	if len(lines) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render("Metric Trends"))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(lines, "\n"))
	return sb.String()
}

// renderActivity draws feature counts, active agents, and test totals.
func (r *Renderer) renderActivity(st *state.State) string {
	var sb strings.Builder
	sb.WriteString(r.Styles.Title.Render("Activity"))
	sb.WriteString("\n")

	f := st.Development.Features
	sb.WriteString(fmt.Sprintf("Features: %s done · %s in progress · %s planned",
		r.Styles.Success.Render(fmt.Sprintf("%d", len(f.Completed))),
		r.Styles.Info.Render(fmt.Sprintf("%d", len(f.InProgress))),
		r.Styles.Muted.Render(fmt.Sprintf("%d", len(f.Planned)))))

	if len(st.Agents.Active) > 0 {
		sb.WriteString("\nActive agents: " + strings.Join(st.Agents.Active, ", "))
	}

	tests := st.Quality.Tests
	total := tests.Unit.Total + tests.Integration.Total + tests.E2E.Total
	if total > 0 {
		passing := tests.Unit.Passing + tests.Integration.Passing + tests.E2E.Passing
		sb.WriteString(fmt.Sprintf("\nTests: %d/%d passing · %.1f%% coverage",
			passing, total, st.OverallCoverage()))
	}

	if st.LastSession != nil && st.LastSession.Summary != "" {
		sb.WriteString("\n" + r.Styles.Muted.Render("Last session: "+st.LastSession.Summary))
	}

	return sb.String()
}

// progressBar creates a text-based progress bar
func (r *Renderer) progressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(progress * float64(width))
	empty := width - filled

	bar := r.Styles.ProgressBar.Render(strings.Repeat("█", filled)) +
		r.Styles.Muted.Render(strings.Repeat("░", empty))
	return "[" + bar + "]"
}

// goalIcon maps a goal status to its marker.
func (r *Renderer) goalIcon(status vision.GoalStatus) string {
	switch status {
	case vision.GoalCompleted:
		return r.Styles.Success.Render("✓")
	case vision.GoalInProgress:
		return r.Styles.Info.Render("●")
	case vision.GoalBlocked:
		return r.Styles.Error.Render("⊗")
	default:
		return r.Styles.Muted.Render("○")
	}
}

// priorityBadge renders a colored badge for a goal priority.
func (r *Renderer) priorityBadge(p vision.Priority) string {
	style := r.Styles.Badge
	switch p {
	case vision.PriorityCritical:
		style = style.Background(Destructive)
	case vision.PriorityHigh:
		style = style.Background(Warning)
	case vision.PriorityLow:
		style = style.Background(r.Styles.Theme.Muted)
	}
	return style.Render(strings.ToUpper(string(p)))
}

// phaseCompleted reports whether the phase is in the completed list.
func phaseCompleted(st *state.State, phase state.Phase) bool {
	for _, p := range st.Development.PhasesCompleted {
		if p == phase {
			return true
		}
	}
	return false
}

// metricLabel turns a snake_case metric name into a display label.
func metricLabel(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
