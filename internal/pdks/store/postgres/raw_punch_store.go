package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/xerrors"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

type RawPunchStore struct {
	q Querier
}

func NewRawPunchStore(q Querier) *RawPunchStore {
	return &RawPunchStore{q: q}
}

func (s *RawPunchStore) PunchExists(ctx context.Context, userID int64, ts time.Time) (bool, error) {
	var one int
	err := s.q.QueryRow(ctx,
		`SELECT 1 FROM raw_punches WHERE user_id = $1 AND punched_at = $2 LIMIT 1`,
		userID, types.WallClock(ts),
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, xerrors.Errorf("PunchExists query: %w", err)
	}
	return true, nil
}

func (s *RawPunchStore) InsertPunch(ctx context.Context, p types.Punch) error {
	var name *string
	if p.Name != "" {
		name = &p.Name
	}
	_, err := s.q.Exec(ctx, `
		INSERT INTO raw_punches (user_id, display_name, punched_at, device_uid, status_code, verify_method)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.UserID, name, types.WallClock(p.Timestamp), p.DeviceUID, p.StatusCode, p.VerifyMethod,
	)
	if isUniqueViolation(err) {
		return store.ErrDuplicatePunch
	}
	if err != nil {
		return xerrors.Errorf("InsertPunch: %w", err)
	}
	return nil
}

func (s *RawPunchStore) ListPunchesAfter(ctx context.Context, after *time.Time) ([]types.RawPunchRow, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if after == nil {
		rows, err = s.q.Query(ctx,
			`SELECT user_id, punched_at FROM raw_punches ORDER BY punched_at ASC, id ASC`)
	} else {
		rows, err = s.q.Query(ctx,
			`SELECT user_id, punched_at FROM raw_punches WHERE punched_at > $1 ORDER BY punched_at ASC, id ASC`,
			types.WallClock(*after))
	}
	if err != nil {
		return nil, xerrors.Errorf("ListPunchesAfter query: %w", err)
	}
	defer rows.Close()

	var out []types.RawPunchRow
	for rows.Next() {
		var (
			uid int64
			at  time.Time
		)
		if err := rows.Scan(&uid, &at); err != nil {
			return nil, xerrors.Errorf("ListPunchesAfter scan: %w", err)
		}
		out = append(out, types.RawPunchRow{UserID: uid, Timestamp: at.Format(types.TimestampLayout)})
	}
	if err := rows.Err(); err != nil {
		return nil, xerrors.Errorf("ListPunchesAfter rows: %w", err)
	}
	return out, nil
}

var _ store.RawPunchStore = (*RawPunchStore)(nil)
