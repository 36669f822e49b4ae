// Package storage keeps an audit history of finished runs in SQLite.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/martinsuchenak/fqdngen/internal/model"
)

// Storage persists runs and their records.
type Storage struct {
	db *sql.DB
}

// Open opens (creating if needed) the run-history database at path.
func Open(path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single connection avoids SQLite write contention.
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			total_rows INTEGER NOT NULL,
			produced INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			ip_address TEXT NOT NULL,
			hostname TEXT NOT NULL,
			domain TEXT NOT NULL,
			full_name TEXT NOT NULL,
			ptr_record TEXT NOT NULL,
			forward_status TEXT NOT NULL,
			forward_existing TEXT NOT NULL DEFAULT '',
			reverse_status TEXT NOT NULL,
			reverse_existing TEXT NOT NULL DEFAULT '',
			reachable INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id)`,
		`CREATE TABLE IF NOT EXISTS failures (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			hostname TEXT NOT NULL DEFAULT '',
			ip_address TEXT NOT NULL DEFAULT '',
			reason TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_failures_run ON failures(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}
	return nil
}

// SaveRun stores a finished run with all its records and failures.
func (s *Storage) SaveRun(run *model.Run) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, started_at, completed_at, duration_seconds, total_rows, produced, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC().Format(time.RFC3339), run.CompletedAt.UTC().Format(time.RFC3339),
		run.DurationSeconds, run.TotalRows, run.Produced, run.Skipped)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for _, rec := range run.Records {
		var reachable any
		if rec.Reachable != nil {
			reachable = *rec.Reachable
		}
		_, err = tx.Exec(`
			INSERT INTO records (id, run_id, ip_address, hostname, domain, full_name, ptr_record,
				forward_status, forward_existing, reverse_status, reverse_existing, reachable)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, newID(), run.ID, rec.IPAddress, rec.Hostname, rec.Domain, rec.FullName, rec.PTRRecord,
			string(rec.Forward.Status), rec.Forward.ExistingValue,
			string(rec.Reverse.Status), rec.Reverse.ExistingValue, reachable)
		if err != nil {
			return fmt.Errorf("inserting record for %s: %w", rec.FullName, err)
		}
	}

	for _, f := range run.Failures {
		_, err = tx.Exec(`
			INSERT INTO failures (run_id, hostname, ip_address, reason)
			VALUES (?, ?, ?, ?)
		`, run.ID, f.Hostname, f.IPAddress, f.Reason)
		if err != nil {
			return fmt.Errorf("inserting failure for %s: %w", f.Hostname, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns run summaries, newest first, without records or failures.
func (s *Storage) ListRuns() ([]model.Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, completed_at, duration_seconds, total_rows, produced, skipped
		FROM runs
		ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun loads one run with its records and failures.
func (s *Storage) GetRun(id string) (*model.Run, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, completed_at, duration_seconds, total_rows, produced, skipped
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	recRows, err := s.db.Query(`
		SELECT ip_address, hostname, domain, full_name, ptr_record,
			forward_status, forward_existing, reverse_status, reverse_existing, reachable
		FROM records WHERE run_id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer recRows.Close()

	for recRows.Next() {
		rec := &model.Record{}
		var fwdStatus, revStatus string
		var reachable sql.NullBool
		err = recRows.Scan(&rec.IPAddress, &rec.Hostname, &rec.Domain, &rec.FullName, &rec.PTRRecord,
			&fwdStatus, &rec.Forward.ExistingValue, &revStatus, &rec.Reverse.ExistingValue, &reachable)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		rec.Forward.Status = model.LookupStatus(fwdStatus)
		rec.Reverse.Status = model.LookupStatus(revStatus)
		if reachable.Valid {
			v := reachable.Bool
			rec.Reachable = &v
		}
		run.Records = append(run.Records, rec)
	}
	if err := recRows.Err(); err != nil {
		return nil, err
	}

	failRows, err := s.db.Query(`
		SELECT hostname, ip_address, reason FROM failures WHERE run_id = ?
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying failures: %w", err)
	}
	defer failRows.Close()

	for failRows.Next() {
		var f model.RowFailure
		if err := failRows.Scan(&f.Hostname, &f.IPAddress, &f.Reason); err != nil {
			return nil, fmt.Errorf("scanning failure: %w", err)
		}
		run.Failures = append(run.Failures, f)
	}

	return run, failRows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, error) {
	run := &model.Run{}
	var startedAt, completedAt string
	err := row.Scan(&run.ID, &startedAt, &completedAt, &run.DurationSeconds,
		&run.TotalRows, &run.Produced, &run.Skipped)
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return nil, fmt.Errorf("parsing started_at: %w", err)
	}
	if run.CompletedAt, err = time.Parse(time.RFC3339, completedAt); err != nil {
		return nil, fmt.Errorf("parsing completed_at: %w", err)
	}
	return run, nil
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
