package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"nbreport/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id           TEXT PRIMARY KEY,
	status       TEXT NOT NULL,
	format       TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	error        TEXT NOT NULL DEFAULT '',
	download_url TEXT NOT NULL DEFAULT '',
	artifact     TEXT NOT NULL DEFAULT '',
	created      INTEGER NOT NULL,
	updated      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS jobs_created ON jobs (created);
`

const selectJob = `SELECT id, status, format, title, error, download_url, artifact, created, updated FROM jobs`

// SQLiteStore persists jobs in a database file, so job records survive
// between program runs. Single connection is serialized with mutex.
type SQLiteStore struct {
	mu   sync.Mutex
	conn *sqlite.Conn
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("unable to open job database (%s): %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare job database (%s): %w", path, err)
	}
	return &SQLiteStore{conn: conn}, nil
}

// lock serializes access and makes pending statement interruptible by ctx.
func (s *SQLiteStore) lock(ctx context.Context) func() {
	s.mu.Lock()
	s.conn.SetInterrupt(ctx.Done())
	return func() {
		s.conn.SetInterrupt(nil)
		s.mu.Unlock()
	}
}

func (s *SQLiteStore) Create(ctx context.Context, job *Job) error {
	defer s.lock(ctx)()

	err := sqlitex.Execute(s.conn,
		`INSERT INTO jobs (id, status, format, title, error, download_url, artifact, created, updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			job.ID, job.Status.String(), job.Format.String(), job.Title, job.Error, job.DownloadURL, job.Artifact,
			job.Created.UnixNano(), job.Updated.UnixNano(),
		}})
	if err != nil {
		return fmt.Errorf("unable to create job %s: %w", job.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Job, error) {
	defer s.lock(ctx)()

	var (
		found *Job
		perr  error
	)
	err := sqlitex.Execute(s.conn, selectJob+` WHERE id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found, perr = scanJob(stmt)
				return perr
			},
		})
	if err != nil {
		return nil, fmt.Errorf("unable to read job %s: %w", id, err)
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return found, nil
}

func (s *SQLiteStore) Update(ctx context.Context, job *Job) error {
	defer s.lock(ctx)()

	err := sqlitex.Execute(s.conn,
		`UPDATE jobs SET status = ?, format = ?, title = ?, error = ?, download_url = ?, artifact = ?, updated = ?
		 WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{
			job.Status.String(), job.Format.String(), job.Title, job.Error, job.DownloadURL, job.Artifact,
			job.Updated.UnixNano(), job.ID,
		}})
	if err != nil {
		return fmt.Errorf("unable to update job %s: %w", job.ID, err)
	}
	if s.conn.Changes() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, job.ID)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Job, error) {
	defer s.lock(ctx)()

	var out []*Job
	err := sqlitex.Execute(s.conn, selectJob+` ORDER BY created, id`,
		&sqlitex.ExecOptions{ResultFunc: func(stmt *sqlite.Stmt) error {
			j, err := scanJob(stmt)
			if err != nil {
				return err
			}
			out = append(out, j)
			return nil
		}})
	if err != nil {
		return nil, fmt.Errorf("unable to list jobs: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

func scanJob(stmt *sqlite.Stmt) (*Job, error) {
	status, err := common.ParseJobStatus(stmt.ColumnText(1))
	if err != nil {
		return nil, err
	}
	format, err := common.ParseFormat(stmt.ColumnText(2))
	if err != nil {
		return nil, err
	}
	return &Job{
		ID:          stmt.ColumnText(0),
		Status:      status,
		Format:      format,
		Title:       stmt.ColumnText(3),
		Error:       stmt.ColumnText(4),
		DownloadURL: stmt.ColumnText(5),
		Artifact:    stmt.ColumnText(6),
		Created:     time.Unix(0, stmt.ColumnInt64(7)).UTC(),
		Updated:     time.Unix(0, stmt.ColumnInt64(8)).UTC(),
	}, nil
}
