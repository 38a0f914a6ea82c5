// Package estate persists editor session state -- the open-buffer
// list and each buffer's SavedVersion marker -- to a small SQLite
// database, so a restarted editor can reopen where it left off. It
// never persists buffer text or the undo log itself (an explicit
// Non-goal): only enough metadata to know what was open and whether it
// had unsaved changes.
package estate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eddy-editor/eddy/ederrors"
)

const schema = `
CREATE TABLE IF NOT EXISTS open_buffers (
	path          TEXT PRIMARY KEY,
	saved_version INTEGER NOT NULL,
	dirty         INTEGER NOT NULL,
	last_opened   TEXT NOT NULL
);
`

// OpenBufferRecord is one row of session state for a previously open
// buffer.
type OpenBufferRecord struct {
	Path         string
	SavedVersion int
	Dirty        bool
	LastOpened   time.Time
}

// Store is a handle on the session-state database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path and
// ensures its schema exists. Pass ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, ederrors.Wrap(err, "estate: open database")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, ederrors.Wrap(err, "estate: enable foreign keys")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, ederrors.Wrap(err, "estate: apply schema")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// RecordOpen upserts path's session-state row.
func (s *Store) RecordOpen(ctx context.Context, rec OpenBufferRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO open_buffers (path, saved_version, dirty, last_opened)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			saved_version = excluded.saved_version,
			dirty         = excluded.dirty,
			last_opened   = excluded.last_opened
	`, rec.Path, rec.SavedVersion, boolToInt(rec.Dirty), rec.LastOpened.Format(time.RFC3339))
	if err != nil {
		return ederrors.Wrapf(err, "estate: record open buffer %q", rec.Path)
	}
	return nil
}

// Forget removes path's session-state row, called when a buffer closes
// cleanly (no unsaved changes worth remembering across a restart).
func (s *Store) Forget(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM open_buffers WHERE path = ?`, path)
	if err != nil {
		return ederrors.Wrapf(err, "estate: forget %q", path)
	}
	return nil
}

// OpenBuffers returns every remembered open-buffer row, most recently
// opened first.
func (s *Store) OpenBuffers(ctx context.Context) ([]OpenBufferRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, saved_version, dirty, last_opened
		FROM open_buffers
		ORDER BY last_opened DESC
	`)
	if err != nil {
		return nil, ederrors.Wrap(err, "estate: query open buffers")
	}
	defer rows.Close()

	var out []OpenBufferRecord
	for rows.Next() {
		var rec OpenBufferRecord
		var dirty int
		var lastOpened string
		if err := rows.Scan(&rec.Path, &rec.SavedVersion, &dirty, &lastOpened); err != nil {
			return nil, ederrors.Wrap(err, "estate: scan open buffer row")
		}
		rec.Dirty = dirty != 0
		if t, err := time.Parse(time.RFC3339, lastOpened); err == nil {
			rec.LastOpened = t
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, ederrors.Wrap(err, "estate: iterate open buffer rows")
	}
	return out, nil
}

// DirtyCount reports how many remembered buffers had unsaved changes,
// useful for a "restore N unsaved buffers?" prompt at startup.
func (s *Store) DirtyCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM open_buffers WHERE dirty = 1`).Scan(&n)
	if err != nil {
		return 0, ederrors.Wrap(err, "estate: count dirty buffers")
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r OpenBufferRecord) String() string {
	return fmt.Sprintf("%s (saved_version=%d dirty=%v)", r.Path, r.SavedVersion, r.Dirty)
}
