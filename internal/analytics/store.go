package analytics

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"forge/internal/logging"
)

// defaultTrendThreshold is the percent change below which a trend reads
// stable.
const defaultTrendThreshold = 5.0

// Store manages the analytics database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
	now    func() time.Time

	// TrendThreshold overrides the stable band in percent; values <= 0 fall
	// back to the default.
	TrendThreshold float64
}

// NewStore creates or opens the analytics database under forgeDir.
func NewStore(forgeDir string) (*Store, error) {
	dbPath := filepath.Join(forgeDir, "analytics.db")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// initSchema creates the database schema.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		value REAL NOT NULL,
		timestamp DATETIME NOT NULL,
		tags_json TEXT,
		metadata_json TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_metrics_name ON metrics(name);
	CREATE INDEX IF NOT EXISTS idx_metrics_timestamp ON metrics(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// METRIC OPERATIONS
// =============================================================================

// RecordMetric stores a new data point stamped with the current time.
func (s *Store) RecordMetric(name string, value float64, tags map[string]string, metadata map[string]any) (Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metric := Metric{
		Name:      name,
		Value:     value,
		Timestamp: s.now().UTC(),
		Tags:      tags,
		Metadata:  metadata,
	}

	tagsJSON, _ := json.Marshal(metric.Tags)
	metaJSON, _ := json.Marshal(metric.Metadata)

	_, err := s.db.Exec(`
		INSERT INTO metrics (name, value, timestamp, tags_json, metadata_json)
		VALUES (?, ?, ?, ?, ?)
	`, metric.Name, metric.Value, metric.Timestamp, tagsJSON, metaJSON)

	if err != nil {
		return Metric{}, fmt.Errorf("failed to record metric: %w", err)
	}

	logging.Analytics("recorded metric %s=%v", name, value)
	return metric, nil
}

// GetMetrics retrieves metrics ordered by timestamp. Empty name and zero
// times mean no filter; tags must all match.
func (s *Store) GetMetrics(name string, since, until time.Time, tags map[string]string) ([]Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT name, value, timestamp, tags_json, metadata_json FROM metrics`
	var conds []string
	var args []any

	if name != "" {
		conds = append(conds, "name = ?")
		args = append(args, name)
	}
	if !since.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, since.UTC())
	}
	if !until.IsZero() {
		conds = append(conds, "timestamp <= ?")
		args = append(args, until.UTC())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp ASC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	var metrics []Metric
	for rows.Next() {
		var m Metric
		var tagsJSON, metaJSON sql.NullString
		if err := rows.Scan(&m.Name, &m.Value, &m.Timestamp, &tagsJSON, &metaJSON); err != nil {
			continue
		}
		if tagsJSON.Valid {
			json.Unmarshal([]byte(tagsJSON.String), &m.Tags)
		}
		if metaJSON.Valid {
			json.Unmarshal([]byte(metaJSON.String), &m.Metadata)
		}
		if !matchesTags(m.Tags, tags) {
			continue
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

// matchesTags reports whether have carries every key/value in want.
func matchesTags(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

// =============================================================================
// CONVENIENCE RECORDERS
// =============================================================================

// RecordTestCoverage records a coverage percentage.
func (s *Store) RecordTestCoverage(percent float64) error {
	_, err := s.RecordMetric("test_coverage", percent,
		map[string]string{"type": "quality"},
		map[string]any{"unit": "percent"})
	return err
}

// RecordQualityScore records a 0-100 quality score.
func (s *Store) RecordQualityScore(score float64) error {
	_, err := s.RecordMetric("quality_score", score,
		map[string]string{"type": "quality"},
		map[string]any{"scale": "0-100"})
	return err
}

// RecordVelocity records features completed in the current period.
func (s *Store) RecordVelocity(featuresCompleted int) error {
	_, err := s.RecordMetric("velocity", float64(featuresCompleted),
		map[string]string{"type": "productivity"},
		map[string]any{"unit": "features_per_period"})
	return err
}
