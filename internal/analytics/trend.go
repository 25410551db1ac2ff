package analytics

import (
	"math"
	"time"
)

// Trend compares first-half and second-half averages of a metric over the
// window ending now. Returns nil with no error when fewer than two points
// exist.
func (s *Store) Trend(name string, window time.Duration) (*Trend, error) {
	now := s.now().UTC()
	metrics, err := s.GetMetrics(name, now.Add(-window), now, nil)
	if err != nil {
		return nil, err
	}
	if len(metrics) < 2 {
		return nil, nil
	}

	mid := len(metrics) / 2
	previous := average(metrics[:mid])
	current := average(metrics[mid:])

	var changePercent float64
	if previous != 0 {
		changePercent = (current - previous) / previous * 100
	}

	threshold := s.threshold()

	var direction Direction
	switch {
	case math.Abs(changePercent) < threshold:
		direction = TrendStable
	case changePercent > 0:
		direction = TrendUp
	default:
		direction = TrendDown
	}

	return &Trend{
		Metric:        name,
		Direction:     direction,
		ChangePercent: changePercent,
		Current:       current,
		Previous:      previous,
		Window:        window,
	}, nil
}

// CoverageTrend reports the test coverage trend over its canonical window.
func (s *Store) CoverageTrend() (*Trend, error) {
	return s.Trend("test_coverage", CoverageWindow)
}

// VelocityTrend reports the velocity trend over its canonical window.
func (s *Store) VelocityTrend() (*Trend, error) {
	return s.Trend("velocity", VelocityWindow)
}

// QualityTrend reports the quality score trend over its canonical window.
func (s *Store) QualityTrend() (*Trend, error) {
	return s.Trend("quality_score", QualityWindow)
}

func average(metrics []Metric) float64 {
	if len(metrics) == 0 {
		return 0
	}
	var sum float64
	for _, m := range metrics {
		sum += m.Value
	}
	return sum / float64(len(metrics))
}
