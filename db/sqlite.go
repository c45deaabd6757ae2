package db

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// UniqueConstrain is the extended sqlite code of a UNIQUE or PRIMARY KEY violation
	UniqueConstrain = 1555
)

var (
	ErrNotFound = errors.New("not found")
)

// NewSQLiteDB opens (creating it if needed) the sqlite file at dbPath in WAL mode
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		PRAGMA foreign_keys = ON;
		pragma journal_mode = WAL;
		pragma synchronous = normal;
		pragma journal_size_limit  = 6144000;
	`)
	return db, err
}

// ReturnErrNotFound maps sql.ErrNoRows to ErrNotFound
func ReturnErrNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// IsUniqueConstraintErr reports whether err comes from inserting a row whose key already exists
func IsUniqueConstraintErr(err error) bool {
	sqliteErr, ok := SQLiteErr(err)
	return ok && int(sqliteErr.ExtendedCode) == UniqueConstrain
}
