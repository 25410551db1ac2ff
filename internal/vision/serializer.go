package vision

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Serialize renders a Vision back into the canonical document shape:
// header block, title line, then the five sections in fixed order so
// that repeated saves of an unchanged record produce identical text.
// Metric keys are emitted sorted for the same reason. Per-goal Metrics
// have no markdown form and are never emitted.
func Serialize(v *Vision) string {
	var sb strings.Builder

	sb.WriteString(headerDelimiter + "\n")
	sb.WriteString(fmt.Sprintf("version: %s\n", v.Version))
	sb.WriteString(fmt.Sprintf("created: %s\n", v.Created.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("updated: %s\n", v.Updated.Format(time.RFC3339)))
	sb.WriteString(headerDelimiter + "\n\n")

	sb.WriteString("# Strategic Vision\n\n")

	sb.WriteString("## Mission\n")
	sb.WriteString(v.Mission + "\n\n")

	sb.WriteString("## Principles\n")
	for _, p := range v.Principles {
		sb.WriteString(fmt.Sprintf("- %s\n", p))
	}
	sb.WriteString("\n")

	sb.WriteString("## Strategic Goals\n")
	for i, g := range v.Goals {
		sb.WriteString(fmt.Sprintf("%d. [%s] - Priority: %s", i+1, g.Title, g.Priority.Label()))
		if g.Deadline != nil {
			sb.WriteString(fmt.Sprintf(", Deadline: %s", g.Deadline.Format("2006-01-02")))
		}
		sb.WriteString("\n")
		if g.Description != "" {
			sb.WriteString("   " + g.Description + "\n")
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Current Focus\n")
	sb.WriteString(v.CurrentFocus + "\n\n")

	sb.WriteString("## Success Metrics\n")
	keys := make([]string, 0, len(v.SuccessMetrics))
	for k := range v.SuccessMetrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", k, metricValue(v.SuccessMetrics[k])))
	}
	sb.WriteString("\n")

	return sb.String()
}

// metricValue renders a metric in its natural form: numbers without
// added formatting, strings verbatim.
func metricValue(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		return strconv.Itoa(n)
	case string:
		return n
	default:
		return fmt.Sprintf("%v", n)
	}
}
