// Package sqlite implements the pdks stores on modernc.org/sqlite.
// Reads go straight to *sql.DB; every write goes through db.Worker.
package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"golang.org/x/xerrors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func formatTS(t time.Time) string {
	return t.Format(types.TimestampLayout)
}

func formatDate(t time.Time) string {
	return t.Format(types.DateLayout)
}

func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTS(*t)
}

func parseNullTS(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := types.ParseTimestamp(ns.String)
	if err != nil {
		return nil, xerrors.Errorf("parse %q: %w", ns.String, err)
	}
	return &t, nil
}

func nowMs() int64 {
	return time.Now().UTC().UnixMilli()
}
