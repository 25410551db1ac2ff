package project

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"forge/internal/logging"
	"forge/internal/state"
)

// Gap severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// defaultCoverageTarget is the coverage percent the analyzer expects
// when no target is configured.
const defaultCoverageTarget = 80.0

// severityPenalty is how many points each gap costs the health score.
var severityPenalty = map[string]int{
	SeverityHigh:   15,
	SeverityMedium: 8,
	SeverityLow:    3,
}

// categoryOrder fixes the report section order.
var categoryOrder = []struct{ key, title string }{
	{"testing", "Testing"},
	{"documentation", "Documentation"},
	{"security", "Security"},
	{"infrastructure", "Infrastructure"},
}

// skipDirs are directories the source scans never descend into.
var skipDirs = map[string]bool{
	".git":         true,
	".forge":       true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
	"__pycache__":  true,
}

// sourceExtensions are the file types the secret scan reads.
var sourceExtensions = map[string]bool{
	".go":   true,
	".py":   true,
	".js":   true,
	".ts":   true,
	".rb":   true,
	".java": true,
	".cs":   true,
	".rs":   true,
}

// secretPattern flags credential-looking assignments with a quoted
// literal of at least 8 characters.
var secretPattern = regexp.MustCompile(`(?i)(api_?key|secret|password|token)\s*[:=]\s*["'][^"']{8,}["']`)

// Gap is a single improvement opportunity found during analysis.
type Gap struct {
	Issue          string `json:"issue"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// Report is the outcome of a health analysis.
type Report struct {
	Score       int              `json:"score"`
	GeneratedAt time.Time        `json:"generated_at"`
	Gaps        map[string][]Gap `json:"gaps"`
}

// TotalGaps counts gaps across all categories.
func (r *Report) TotalGaps() int {
	total := 0
	for _, list := range r.Gaps {
		total += len(list)
	}
	return total
}

// Analyzer inspects the workspace and recorded state for gaps in
// testing, documentation, security and infrastructure.
type Analyzer struct {
	workspace string
	state     *state.State

	// CoverageTarget is the coverage percent below which a testing gap
	// is reported. Zero or negative falls back to 80.
	CoverageTarget float64

	now func() time.Time
}

// NewAnalyzer creates an analyzer for a workspace. The state may be nil
// when no state document exists yet; state-driven checks are skipped.
func NewAnalyzer(workspace string, st *state.State) *Analyzer {
	return &Analyzer{
		workspace: workspace,
		state:     st,
		now:       time.Now,
	}
}

// Analyze runs every category check and scores the result.
func (a *Analyzer) Analyze() *Report {
	gaps := map[string][]Gap{}
	a.analyzeTesting(gaps)
	a.analyzeDocumentation(gaps)
	a.analyzeSecurity(gaps)
	a.analyzeInfrastructure(gaps)

	r := &Report{
		Score:       scoreGaps(gaps),
		GeneratedAt: a.now().UTC(),
		Gaps:        gaps,
	}
	logging.Project("health analysis: score %d, %d gaps", r.Score, r.TotalGaps())
	return r
}

func (a *Analyzer) analyzeTesting(gaps map[string][]Gap) {
	target := a.coverageTarget()

	if a.state != nil {
		tests := a.state.Quality.Tests
		total := tests.Unit.Total + tests.Integration.Total + tests.E2E.Total
		coverage := a.state.OverallCoverage()
		if total > 0 && coverage < target {
			severity := SeverityMedium
			if coverage < target/2 {
				severity = SeverityHigh
			}
			gaps["testing"] = append(gaps["testing"], Gap{
				Issue:          fmt.Sprintf("Test coverage at %.1f%% (target %.0f%%)", coverage, target),
				Severity:       severity,
				Recommendation: fmt.Sprintf("Raise test coverage to at least %.0f%%", target),
			})
		}
	}

	if !hasTestFiles(a.workspace) {
		gaps["testing"] = append(gaps["testing"], Gap{
			Issue:          "No test files found",
			Severity:       SeverityHigh,
			Recommendation: "Create a test suite covering the core packages",
		})
	}
}

func (a *Analyzer) analyzeDocumentation(gaps map[string][]Gap) {
	if !anyExists(a.workspace, "README.md", "README.rst", "README") {
		gaps["documentation"] = append(gaps["documentation"], Gap{
			Issue:          "No README found",
			Severity:       SeverityMedium,
			Recommendation: "Write a README.md describing setup and usage",
		})
	}
	if !anyExists(a.workspace, "docs") {
		gaps["documentation"] = append(gaps["documentation"], Gap{
			Issue:          "No docs/ directory",
			Severity:       SeverityLow,
			Recommendation: "Collect design notes and guides under docs/",
		})
	}
}

func (a *Analyzer) analyzeSecurity(gaps map[string][]Gap) {
	count := countSuspectSecrets(a.workspace)
	if count > 0 {
		gaps["security"] = append(gaps["security"], Gap{
			Issue:          fmt.Sprintf("%d potential hardcoded secrets found", count),
			Severity:       SeverityHigh,
			Recommendation: "Move secrets to environment variables or a secret manager",
		})
	}
}

func (a *Analyzer) analyzeInfrastructure(gaps map[string][]Gap) {
	if !anyExists(a.workspace, "Dockerfile", "docker-compose.yml", "compose.yaml") {
		gaps["infrastructure"] = append(gaps["infrastructure"], Gap{
			Issue:          "No container configuration",
			Severity:       SeverityMedium,
			Recommendation: "Add a Dockerfile so builds are reproducible",
		})
	}
	if !anyExists(a.workspace,
		filepath.Join(".github", "workflows"),
		".gitlab-ci.yml",
		"Jenkinsfile",
		filepath.Join(".circleci", "config.yml"),
	) {
		gaps["infrastructure"] = append(gaps["infrastructure"], Gap{
			Issue:          "No CI pipeline configuration",
			Severity:       SeverityMedium,
			Recommendation: "Add a CI workflow that runs the test suite on every push",
		})
	}
}

func (a *Analyzer) coverageTarget() float64 {
	if a.CoverageTarget > 0 {
		return a.CoverageTarget
	}
	return defaultCoverageTarget
}

// scoreGaps starts at 100 and subtracts a penalty per gap, clamped at 0.
func scoreGaps(gaps map[string][]Gap) int {
	score := 100
	for _, list := range gaps {
		for _, g := range list {
			score -= severityPenalty[g.Severity]
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// hasTestFiles walks the workspace looking for test files in any of the
// common naming conventions. Stops at the first hit.
func hasTestFiles(root string) bool {
	found := false
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if isTestFile(d.Name()) {
			found = true
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

func isTestFile(name string) bool {
	switch {
	case strings.HasSuffix(name, "_test.go"),
		strings.HasSuffix(name, "_test.py"),
		strings.HasPrefix(name, "test_") && strings.HasSuffix(name, ".py"),
		strings.HasSuffix(name, ".test.js"),
		strings.HasSuffix(name, ".test.ts"),
		strings.HasSuffix(name, ".spec.js"),
		strings.HasSuffix(name, ".spec.ts"):
		return true
	}
	return false
}

// countSuspectSecrets counts credential-looking literals across source
// files. Lines that read from the environment are never flagged.
func countSuspectSecrets(root string) int {
	count := 0
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExtensions[filepath.Ext(d.Name())] {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.Contains(line, "getenv") || strings.Contains(line, "os.Getenv") ||
				strings.Contains(line, "process.env") || strings.Contains(line, "environ") {
				continue
			}
			if secretPattern.MatchString(line) {
				count++
			}
		}
		return nil
	})
	return count
}

func anyExists(root string, names ...string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			return true
		}
	}
	return false
}

// Markdown renders the report as a human-readable document.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("# Project Health Report\n\n")
	b.WriteString(fmt.Sprintf("**Generated**: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	b.WriteString("## Executive Summary\n\n")
	b.WriteString(fmt.Sprintf("- **Health Score**: %d/100\n", r.Score))
	b.WriteString(fmt.Sprintf("- **Status**: %s\n", StatusLabel(r.Score)))
	b.WriteString(fmt.Sprintf("- **Total Gaps**: %d\n\n", r.TotalGaps()))

	if r.TotalGaps() == 0 {
		b.WriteString("No gaps detected across any category.\n\n")
	}

	for _, cat := range categoryOrder {
		list := r.Gaps[cat.key]
		if len(list) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("## %s\n\n", cat.title))
		for _, g := range list {
			b.WriteString(fmt.Sprintf("- **[%s]** %s\n", strings.ToUpper(g.Severity), g.Issue))
			b.WriteString(fmt.Sprintf("  - %s\n", g.Recommendation))
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	b.WriteString(fmt.Sprintf("*Generated by Forge Health on %s*\n", r.GeneratedAt.Format("2006-01-02")))
	return b.String()
}

// StatusLabel maps a health score to its display label.
func StatusLabel(score int) string {
	switch {
	case score >= 90:
		return "🟢 Excellent"
	case score >= 70:
		return "🟡 Good"
	case score >= 50:
		return "🟠 Needs Attention"
	default:
		return "🔴 Critical"
	}
}
