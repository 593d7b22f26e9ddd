package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"golang.org/x/xerrors"

	dbpkg "github.com/BrandonDHaskell/pdks-sync/internal/db"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

type RawPunchStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewRawPunchStore(db *sql.DB, writer *dbpkg.Worker) *RawPunchStore {
	return &RawPunchStore{db: db, writer: writer}
}

func (s *RawPunchStore) PunchExists(ctx context.Context, userID int64, ts time.Time) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
SELECT 1 FROM raw_punches WHERE user_id = ? AND punched_at = ? LIMIT 1;
`, userID, formatTS(ts)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, xerrors.Errorf("PunchExists query: %w", err)
	}
	return true, nil
}

// InsertPunch appends p. A UNIQUE(user_id, punched_at) violation comes
// back as store.ErrDuplicatePunch.
func (s *RawPunchStore) InsertPunch(ctx context.Context, p types.Punch) error {
	var name any
	if n := strings.TrimSpace(p.Name); n != "" {
		name = n
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
INSERT INTO raw_punches(
  user_id, display_name, punched_at, device_uid, status_code, verify_method, created_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?);
`, p.UserID, name, formatTS(p.Timestamp), nullableInt(p.DeviceUID), nullableInt(p.StatusCode),
			nullableInt(p.VerifyMethod), nowMs())
		if isUniqueViolation(err) {
			return store.ErrDuplicatePunch
		}
		if err != nil {
			return xerrors.Errorf("InsertPunch: %w", err)
		}
		return nil
	})
}

// ListPunchesAfter compares on the stored text; the fixed-width layout
// sorts the same way as the instants it encodes.
func (s *RawPunchStore) ListPunchesAfter(ctx context.Context, after *time.Time) ([]types.RawPunchRow, error) {
	query := `SELECT user_id, punched_at FROM raw_punches ORDER BY punched_at ASC, id ASC;`
	var args []any
	if after != nil {
		query = `SELECT user_id, punched_at FROM raw_punches WHERE punched_at > ? ORDER BY punched_at ASC, id ASC;`
		args = append(args, formatTS(*after))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, xerrors.Errorf("ListPunchesAfter query: %w", err)
	}
	defer rows.Close()

	var out []types.RawPunchRow
	for rows.Next() {
		var r types.RawPunchRow
		if err := rows.Scan(&r.UserID, &r.Timestamp); err != nil {
			return nil, xerrors.Errorf("ListPunchesAfter scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Errorf("ListPunchesAfter rows: %w", err)
	}
	return out, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

var _ store.RawPunchStore = (*RawPunchStore)(nil)
