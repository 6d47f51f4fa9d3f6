// Package sqlite persists reading history in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/couchcryptid/envwatch-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id              TEXT PRIMARY KEY,
	ts              INTEGER NOT NULL,
	location        TEXT NOT NULL,
	pm25            REAL,
	wind_kph        REAL,
	wind_dir        TEXT,
	noise           REAL,
	risk_score      INTEGER NOT NULL,
	alert_triggered INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_history_ts ON history (ts DESC);
`

// HistoryStore appends scored readings and serves them back newest first.
type HistoryStore struct {
	db *sql.DB
}

// Open creates the database file and its parent directory if needed, enables
// WAL mode and applies the schema.
func Open(ctx context.Context, path string) (*HistoryStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if isMemory(path) {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

// Append persists a reading with its clamped score.
func (s *HistoryStore) Append(ctx context.Context, r domain.Reading, score int) error {
	return s.AppendRecord(ctx, domain.NewHistoryRecord(r, score))
}

// AppendRecord persists a history row as-is. Nil components are stored as NULL.
func (s *HistoryStore) AppendRecord(ctx context.Context, rec domain.HistoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, ts, location, pm25, wind_kph, wind_dir, noise, risk_score, alert_triggered)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Timestamp.UnixNano(),
		rec.Location,
		nullable(rec.PM25),
		nullable(rec.WindKPH),
		rec.WindDir,
		nullable(rec.Noise),
		rec.RiskScore,
		rec.AlertTriggered,
	)
	if err != nil {
		return fmt.Errorf("insert history row: %w", err)
	}
	return nil
}

// Recent returns up to limit rows, newest first. Rows with equal timestamps
// come back in reverse insertion order.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidLimit, limit)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, location, pm25, wind_kph, wind_dir, noise, risk_score, alert_triggered
		 FROM history ORDER BY ts DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := make([]domain.HistoryRecord, 0, limit)
	for rows.Next() {
		var (
			rec               domain.HistoryRecord
			ts                int64
			pm25, wind, noise sql.NullFloat64
			windDir           sql.NullString
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Location, &pm25, &wind, &windDir, &noise, &rec.RiskScore, &rec.AlertTriggered); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.Timestamp = time.Unix(0, ts).UTC()
		rec.PM25 = ptr(pm25)
		rec.WindKPH = ptr(wind)
		rec.Noise = ptr(noise)
		rec.WindDir = windDir.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}

// CheckReadiness pings the database.
func (s *HistoryStore) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("history database unavailable: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
