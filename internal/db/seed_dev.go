package db

import (
	"context"
	"database/sql"
	"time"

	"golang.org/x/xerrors"
)

// DevPersonnelID is the terminal user id of the seeded dev employee.
const DevPersonnelID = 1

// SeedDev inserts a starter employee so a fresh dev database renders
// something for terminal user 1. Existing rows are left as they are.
func SeedDev(ctx context.Context, db *sql.DB) error {
	now := time.Now().UTC()

	if _, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO personnel(
  user_id, first_name, last_name, hire_date, active, created_at_ms
) VALUES (?, 'Dev', 'Employee', ?, 1, ?);
`, DevPersonnelID, now.Format("2006-01-02"), now.UnixMilli()); err != nil {
		return xerrors.Errorf("seed personnel %d: %w", DevPersonnelID, err)
	}

	return nil
}
