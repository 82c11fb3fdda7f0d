// Package storage owns the sqlite schema and the single-statement
// persistence operations for users, project codes, and timesheet
// entries. Every mutating call commits immediately; no transaction
// spans more than one call.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a lookup matches no row, or when an
// owner-scoped or status-guarded mutation affects zero rows. The store
// deliberately does not distinguish "no such row" from "not yours" so
// callers cannot probe for foreign ids.
var ErrNotFound = errors.New("row not found or not owned by caller")

// ErrConstraint is returned when a statement violates a UNIQUE, CHECK,
// or enum constraint.
var ErrConstraint = errors.New("constraint violation")

type SQLiteStore struct {
	db *sql.DB
}

func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ensureSchema is safe to run on every start. Foreign keys are declared
// but the enforcement pragma is left off: deleting a referenced user or
// project code orphans its entries instead of failing, matching the
// historical behavior this tracker replaces.
func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('user', 'manager'))
);

CREATE TABLE IF NOT EXISTS project_codes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT UNIQUE NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS timesheets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	project_code_id INTEGER NOT NULL REFERENCES project_codes(id),
	date TEXT NOT NULL,
	hours REAL NOT NULL CHECK(hours >= 0),
	status TEXT NOT NULL CHECK(status IN ('pending', 'approved', 'rejected')),
	comments TEXT
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

func isConstraintErr(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

func wrapConstraint(err error, context string) error {
	if isConstraintErr(err) {
		return fmt.Errorf("%s: %w: %v", context, ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", context, err)
}
