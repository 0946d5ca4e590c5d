// Package runlog records each job run in a local SQLite journal so the status
// command can report recent outcomes. Journal failures never fail a run.
package runlog

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Entry is one recorded run.
type Entry struct {
	ID           string     `json:"id"`
	Job          string     `json:"job"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	RawRows      int        `json:"raw_rows"`
	FilteredRows int        `json:"filtered_rows"`
	Error        string     `json:"error,omitempty"`
}

// Log provides read/write access to the run journal.
type Log struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at the given path.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "runlog: exec %s", pragma)
		}
	}

	l := &Log{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	job           TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'running',
	started_at    DATETIME NOT NULL,
	completed_at  DATETIME,
	raw_rows      INTEGER NOT NULL DEFAULT 0,
	filtered_rows INTEGER NOT NULL DEFAULT 0,
	error         TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_job_started ON runs(job, started_at);
`

func (l *Log) migrate() error {
	_, err := l.db.Exec(migration)
	return eris.Wrap(err, "runlog: migrate")
}

// Close closes the journal database.
func (l *Log) Close() error {
	return l.db.Close()
}

// Start records the beginning of a run and returns its id.
func (l *Log) Start(ctx context.Context, job string) (string, error) {
	id := uuid.New().String()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, job, status, started_at) VALUES (?, ?, 'running', ?)`,
		id, job, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "runlog: start %s", job)
	}
	return id, nil
}

// Complete marks a run as successful with its row counts.
func (l *Log) Complete(ctx context.Context, id string, rawRows, filteredRows int) error {
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = 'complete', completed_at = ?, raw_rows = ?, filtered_rows = ? WHERE id = ?`,
		time.Now().UTC(), rawRows, filteredRows, id,
	)
	return eris.Wrapf(err, "runlog: complete %s", id)
}

// Fail marks a run as failed with its error text.
func (l *Log) Fail(ctx context.Context, id string, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	_, err := l.db.ExecContext(ctx,
		`UPDATE runs SET status = 'failed', completed_at = ?, error = ? WHERE id = ?`,
		time.Now().UTC(), msg, id,
	)
	return eris.Wrapf(err, "runlog: fail %s", id)
}

// Recent returns the most recent runs, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, job, status, started_at, completed_at, raw_rows, filtered_rows, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: query recent")
	}
	defer rows.Close() //nolint:errcheck

	var entries []Entry
	for rows.Next() {
		var e Entry
		var completed sql.NullTime
		if err := rows.Scan(&e.ID, &e.Job, &e.Status, &e.StartedAt, &completed, &e.RawRows, &e.FilteredRows, &e.Error); err != nil {
			return nil, eris.Wrap(err, "runlog: scan entry")
		}
		if completed.Valid {
			e.CompletedAt = &completed.Time
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "runlog: iterate entries")
	}
	return entries, nil
}
