// Package history keeps past scan reports in a SQLite database so a run can
// be compared with the previous one for the same username.
package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/tdh8316/socialscan/internal/scan"
)

// ErrNoRuns is returned by Last when the username was never scanned.
var ErrNoRuns = errors.New("no previous runs")

type Store struct {
	db *sql.DB
}

// Run summarises one stored scan.
type Run struct {
	ID         string
	Username   string
	StartedAt  time.Time
	Platforms  int
	FoundCount int
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.Wrap(err, "create history directory")
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, errors.Wrap(err, "open history database")
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create history tables")
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		platforms INTEGER NOT NULL,
		found INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_username ON runs(username, started_at);

	CREATE TABLE IF NOT EXISTS outcomes (
		run_id TEXT NOT NULL REFERENCES runs(id),
		position INTEGER NOT NULL,
		platform TEXT NOT NULL,
		exists_flag INTEGER NOT NULL,
		url TEXT,
		status_code INTEGER,
		error_kind TEXT,
		error TEXT,
		PRIMARY KEY (run_id, position)
	);`)
	return err
}

// Record stores report as a new run and returns its ID.
func (s *Store) Record(ctx context.Context, report *scan.Report, startedAt time.Time) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, username, started_at, platforms, found) VALUES (?, ?, ?, ?, ?)`,
		id, report.Username, startedAt.UnixNano(), len(report.Outcomes), report.FoundCount(),
	); err != nil {
		return "", errors.Wrap(err, "insert run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (run_id, position, platform, exists_flag, url, status_code, error_kind, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "prepare outcome insert")
	}
	defer stmt.Close()

	for i, o := range report.Outcomes {
		if _, err := stmt.ExecContext(ctx, id, i, o.Platform, o.Exists, o.URL, o.StatusCode, string(o.ErrorKind), o.Error); err != nil {
			return "", errors.Wrapf(err, "insert outcome %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit")
	}
	return id, nil
}

// Last returns the most recent run for username.
func (s *Store) Last(ctx context.Context, username string) (Run, error) {
	var (
		r       Run
		started int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, started_at, platforms, found FROM runs
		 WHERE username = ? ORDER BY started_at DESC LIMIT 1`, username,
	).Scan(&r.ID, &r.Username, &started, &r.Platforms, &r.FoundCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, errors.Wrap(err, "query last run")
	}
	r.StartedAt = time.Unix(0, started)
	return r, nil
}

// Outcomes loads the stored outcomes of a run in their original order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]scan.Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT platform, exists_flag, url, status_code, error_kind, error FROM outcomes
		 WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query outcomes")
	}
	defer rows.Close()

	var out []scan.Outcome
	for rows.Next() {
		var (
			o    scan.Outcome
			kind string
		)
		if err := rows.Scan(&o.Platform, &o.Exists, &o.URL, &o.StatusCode, &kind, &o.Error); err != nil {
			return nil, errors.Wrap(err, "scan outcome")
		}
		o.ErrorKind = scan.ErrorKind(kind)
		out = append(out, o)
	}
	return out, rows.Err()
}
