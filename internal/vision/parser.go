package vision

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Parser converts markdown vision documents into Vision records.
//
// Parsing is maximally tolerant: malformed sections, unmatched priority
// words, and unparseable values all degrade to documented defaults, never
// to an error. Both hooks below exist so tests can substitute
// deterministic implementations.
type Parser struct {
	// GenerateID supplies fresh opaque goal identifiers. Nil selects the
	// default random generator.
	GenerateID func() string

	// Clock supplies the default header timestamps. Nil selects time.Now.
	Clock func() time.Time
}

// NewParser returns a Parser with the default ID generator and clock.
func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) id() string {
	if p.GenerateID != nil {
		return p.GenerateID()
	}
	return newGoalID()
}

func (p *Parser) timeNow() time.Time {
	if p.Clock != nil {
		return p.Clock()
	}
	return time.Now()
}

// Parse extracts a Vision from raw document text. Missing sections leave
// their fields empty; a missing header block leaves defaulted header
// fields. Parse never fails.
func (p *Parser) Parse(text string) *Vision {
	doc := splitDocument(text, p.timeNow())
	sections := splitSections(doc.Body)

	return &Vision{
		Version:        doc.Header.Version,
		Created:        doc.Header.Created,
		Updated:        doc.Header.Updated,
		Mission:        strings.TrimSpace(sections["mission"]),
		Principles:     extractBullets(sections["principles"]),
		Goals:          p.extractGoals(sections["strategic goals"]),
		CurrentFocus:   strings.TrimSpace(sections["current focus"]),
		SuccessMetrics: extractMetrics(sections["success metrics"]),
		Metadata:       map[string]string{},
	}
}

// =============================================================================
// SECTION SEGMENTATION
// =============================================================================

// sectionMarker opens a named section of the document body.
const sectionMarker = "## "

// splitSections walks the body and groups lines under the most recent
// section heading, keyed by the lowercased heading text. Lines before the
// first heading belong to no section and are dropped. Section content is
// trimmed of leading and trailing blank lines.
func splitSections(body string) map[string]string {
	sections := make(map[string]string)
	var name string
	var lines []string

	flush := func() {
		if name != "" {
			sections[name] = trimBlankEdges(lines)
		}
		lines = nil
	}

	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, sectionMarker) {
			flush()
			name = strings.ToLower(strings.TrimSpace(line[len(sectionMarker):]))
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return sections
}

func trimBlankEdges(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// =============================================================================
// FIELD EXTRACTORS
// =============================================================================

// bulletNumRe matches a numbered list marker and captures the remainder.
var bulletNumRe = regexp.MustCompile(`^\d+\.\s+(.*)$`)

// bulletText strips a leading "- ", "* ", or "<digits>. " marker from a
// trimmed line. The second return is false when the line carries no
// recognized marker.
func bulletText(trimmed string) (string, bool) {
	switch {
	case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
		return trimmed[2:], true
	}
	if m := bulletNumRe.FindStringSubmatch(trimmed); m != nil {
		return m[1], true
	}
	return "", false
}

// extractBullets collects one item per bulleted line. Lines without a
// bullet marker and markers with empty remainders are skipped.
func extractBullets(text string) []string {
	items := []string{}
	for _, line := range strings.Split(text, "\n") {
		rest, ok := bulletText(strings.TrimSpace(line))
		if !ok {
			continue
		}
		if rest = strings.TrimSpace(rest); rest != "" {
			items = append(items, rest)
		}
	}
	return items
}

// extractMetrics collects "key: value" pairs from bulleted lines. A value
// whose full trimmed text parses as a number is stored as float64,
// anything else as the original string, so "85%" stays a string while
// "10" becomes the number 10.
func extractMetrics(text string) map[string]any {
	metrics := map[string]any{}
	for _, line := range strings.Split(text, "\n") {
		rest, ok := bulletText(strings.TrimSpace(line))
		if !ok {
			continue
		}
		key, value, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			metrics[key] = n
		} else {
			metrics[key] = value
		}
	}
	return metrics
}

// =============================================================================
// STRATEGIC GOAL SUB-PARSER
// =============================================================================

var (
	// goalStartRe recognizes a goal-start line: a numbered item whose
	// first bracketed token is the goal title, with arbitrary trailing
	// text on the same line.
	goalStartRe = regexp.MustCompile(`^(\d+)\.\s+\[([^\]]*)\](.*)$`)

	goalPriorityRe = regexp.MustCompile(`(?i)priority:\s*(\w+)`)
	goalDeadlineRe = regexp.MustCompile(`(?i)deadline:\s*([^,]+)`)
)

// extractGoals runs a two-state line machine over the strategic goals
// section: outside any goal, only a goal-start line changes state; inside
// a goal, further non-blank lines accumulate into the description and the
// next goal-start finalizes the open goal. Goals are emitted in source
// order.
func (p *Parser) extractGoals(text string) []StrategicGoal {
	goals := []StrategicGoal{}
	var current *StrategicGoal

	flush := func() {
		if current != nil && goalComplete(current) {
			goals = append(goals, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if m := goalStartRe.FindStringSubmatch(trimmed); m != nil {
			flush()
			g := StrategicGoal{
				ID:       p.id(),
				Title:    m[2],
				Priority: PriorityMedium,
				Status:   GoalNotStarted,
				Progress: 0,
				Metrics:  []string{},
			}
			applyGoalAttributes(&g, m[3])
			current = &g
			continue
		}

		if current == nil || trimmed == "" {
			continue
		}
		if current.Description == "" {
			current.Description = trimmed
		} else {
			current.Description += " " + trimmed
		}
	}
	flush()
	return goals
}

// applyGoalAttributes scans the trailing text of a goal-start line for
// the two optional attributes, which may appear in either order. An
// unrecognized priority word leaves the medium default; an unparseable
// deadline leaves none.
func applyGoalAttributes(g *StrategicGoal, trailing string) {
	if m := goalPriorityRe.FindStringSubmatch(trailing); m != nil {
		g.Priority = ParsePriority(m[1])
	}
	if m := goalDeadlineRe.FindStringSubmatch(trailing); m != nil {
		if t, ok := parseHeaderTime(strings.TrimSpace(m[1])); ok {
			g.Deadline = &t
		}
	}
}

// goalComplete reports whether an accumulated goal has every field
// populated. Goal-start initialization assigns every field, so this is a
// defensive check rather than a meaningful filter.
func goalComplete(g *StrategicGoal) bool {
	return g.ID != "" && g.Metrics != nil
}
