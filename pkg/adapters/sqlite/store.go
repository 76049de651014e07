// Package sqlite records run snapshots in a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/brownian/pkg/domain"
	_ "modernc.org/sqlite" // SQLite driver
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS snapshots (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT    NOT NULL,
	step        INTEGER NOT NULL,
	sim_time    REAL    NOT NULL,
	recorded_at TEXT    NOT NULL,
	state       TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id, seq);
`

// Store implements ports.StateStore on SQLite.
// Snapshots keep their append order through an autoincrement sequence.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path.
// If path is empty, it defaults to ".brownian/runs.db".
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = filepath.Join(".brownian", "runs.db")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Append inserts the snapshot after every snapshot already recorded for runID.
func (s *Store) Append(ctx context.Context, runID string, snap *domain.Snapshot) error {
	if runID == "" {
		return fmt.Errorf("run ID is required")
	}
	state, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot state: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (run_id, step, sim_time, recorded_at, state) VALUES (?, ?, ?, ?, ?)`,
		runID, snap.Step, snap.Time, snap.Timestamp.UTC().Format(time.RFC3339Nano), string(state),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// Load returns the run's snapshots in append order.
func (s *Store) Load(ctx context.Context, runID string) ([]*domain.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, sim_time, recorded_at, state FROM snapshots WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.Snapshot
	for rows.Next() {
		var (
			snap     = &domain.Snapshot{RunID: runID}
			recorded string
			state    string
		)
		if err := rows.Scan(&snap.Step, &snap.Time, &recorded, &state); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if snap.Timestamp, err = time.Parse(time.RFC3339Nano, recorded); err != nil {
			return nil, fmt.Errorf("run %s step %d: bad timestamp: %w", runID, snap.Step, err)
		}
		if err := json.Unmarshal([]byte(state), &snap.State); err != nil {
			return nil, fmt.Errorf("run %s step %d: bad state: %w", runID, snap.Step, err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}
	if len(snaps) == 0 {
		return nil, domain.ErrRunNotFound
	}
	return snaps, nil
}

// Delete removes every snapshot of a run.
func (s *Store) Delete(ctx context.Context, runID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// List returns the stored run IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT run_id FROM snapshots ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
