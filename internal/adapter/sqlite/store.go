// Package sqlite persists the district-week table to a SQLite database so
// the dashboard team can query runs ad hoc without re-parsing CSV artifacts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/couchcryptid/aadhaar-ews-pipeline/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS district_week (
	week              TEXT NOT NULL,
	state             TEXT NOT NULL,
	district          TEXT NOT NULL,
	risk_category     TEXT NOT NULL,
	severity_score    REAL NOT NULL,
	severity_trend    TEXT NOT NULL,
	dominant_signal   TEXT NOT NULL,
	enrol_total       INTEGER NOT NULL,
	demo_total        INTEGER NOT NULL,
	bio_total         INTEGER NOT NULL,
	enrol_age_0_5     INTEGER NOT NULL,
	enrol_age_5_17    INTEGER NOT NULL,
	enrol_age_18_plus INTEGER NOT NULL,
	demo_age_5_17     INTEGER NOT NULL,
	demo_age_18_plus  INTEGER NOT NULL,
	bio_age_5_17      INTEGER NOT NULL,
	bio_age_18_plus   INTEGER NOT NULL,
	anomaly_score     REAL NOT NULL,
	is_anomaly        INTEGER NOT NULL,
	data_quality_flag TEXT NOT NULL,
	data_completeness REAL NOT NULL,
	PRIMARY KEY (week, state, district)
);`

const insertStmt = `
INSERT INTO district_week (
	week, state, district, risk_category, severity_score, severity_trend,
	dominant_signal, enrol_total, demo_total, bio_total,
	enrol_age_0_5, enrol_age_5_17, enrol_age_18_plus,
	demo_age_5_17, demo_age_18_plus, bio_age_5_17, bio_age_18_plus,
	anomaly_score, is_anomaly, data_quality_flag, data_completeness
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Store owns the SQLite connection for the output table.
type Store struct {
	db *sql.DB
}

// Open creates (or opens) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create district_week table: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveTable replaces the stored table with the given rows in one
// transaction: a rerun fully supersedes the previous run's output.
func (s *Store) SaveTable(ctx context.Context, rows []*domain.DistrictWeek) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM district_week`); err != nil {
		return fmt.Errorf("clear district_week: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, dw := range rows {
		_, err := stmt.ExecContext(ctx,
			dw.Week, dw.State, dw.District,
			string(dw.RiskCategory), dw.SeverityScore, string(dw.Trend),
			string(dw.DominantSignal), dw.EnrolTotal, dw.DemoTotal, dw.BioTotal,
			dw.EnrolAge0To5, dw.EnrolAge5To17, dw.EnrolAge18Plus,
			dw.DemoAge5To17, dw.DemoAge18Plus, dw.BioAge5To17, dw.BioAge18Plus,
			dw.AnomalyScore, dw.IsAnomaly, string(dw.QualityFlag), dw.DataCompleteness,
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", dw.Key(), err)
		}
	}
	return tx.Commit()
}

// Count reports the number of stored district-week rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM district_week`).Scan(&n)
	return n, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
