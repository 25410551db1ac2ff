package analytics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	end := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seedSeries(t, store, "test_coverage", end, []float64{60, 70, 80, 90})
	seedSeries(t, store, "velocity", end, []float64{3, 5})

	summary, err := store.Summarize(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}

	if summary.TotalMetrics != 6 {
		t.Errorf("total mismatch: got %d, want 6", summary.TotalMetrics)
	}
	if summary.UniqueMetrics != 2 {
		t.Errorf("unique mismatch: got %d, want 2", summary.UniqueMetrics)
	}

	coverage, ok := summary.Metrics["test_coverage"]
	if !ok {
		t.Fatal("missing test_coverage summary")
	}
	if coverage.Count != 4 {
		t.Errorf("count mismatch: got %d, want 4", coverage.Count)
	}
	if coverage.Current != 90 {
		t.Errorf("current mismatch: got %v, want 90", coverage.Current)
	}
	if coverage.Min != 60 || coverage.Max != 90 {
		t.Errorf("min/max mismatch: got %v/%v, want 60/90", coverage.Min, coverage.Max)
	}
	if coverage.Avg != 75 {
		t.Errorf("avg mismatch: got %v, want 75", coverage.Avg)
	}
	if coverage.Trend == nil {
		t.Fatal("expected coverage trend")
	}
	if coverage.Trend.Direction != TrendUp {
		t.Errorf("trend direction mismatch: got %q, want %q", coverage.Trend.Direction, TrendUp)
	}
}

func TestSummarizeEmptyStore(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	clockAt(store, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	summary, err := store.Summarize(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if summary.TotalMetrics != 0 || summary.UniqueMetrics != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}

func TestExportReport(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	end := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seedSeries(t, store, "test_coverage", end, []float64{60, 60, 90, 90})
	seedSeries(t, store, "quality_score", end, []float64{88, 88})

	path := filepath.Join(t.TempDir(), "reports", "analytics.md")
	if err := store.ExportReport(path, 30*24*time.Hour); err != nil {
		t.Fatalf("ExportReport error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	report := string(data)

	for _, want := range []string{
		"# Project Analytics Report",
		"**Period**: 30 days",
		"- **Total Data Points**: 6",
		"- **Unique Metrics**: 2",
		"### Test Coverage",
		"### Quality Score",
		"- **Current Value**: 90.00",
		"**Trend**: 📈 UP (+50.0%)",
		"## Interpretation",
		"*Generated by Forge Analytics on 2026-03-10*",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}

	// Sections come out in sorted metric order
	if strings.Index(report, "### Quality Score") > strings.Index(report, "### Test Coverage") {
		t.Error("metric sections not sorted")
	}
}
