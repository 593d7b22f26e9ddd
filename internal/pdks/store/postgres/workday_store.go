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

type WorkdayStore struct {
	q Querier
}

func NewWorkdayStore(q Querier) *WorkdayStore {
	return &WorkdayStore{q: q}
}

func (s *WorkdayStore) FindWorkday(ctx context.Context, userID int64, workday time.Time) (store.WorkdayLookup, error) {
	var rec types.WorkdayRecord
	err := s.q.QueryRow(ctx, `
		SELECT id, user_id, workday_date, entry_time, exit_time, admin_locked
		FROM workday_records
		WHERE user_id = $1 AND workday_date = $2`,
		userID, workday,
	).Scan(&rec.ID, &rec.UserID, &rec.WorkdayDate, &rec.EntryTime, &rec.ExitTime, &rec.AdminLocked)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.WorkdayLookup{}, nil
	}
	if err != nil {
		return store.WorkdayLookup{}, xerrors.Errorf("FindWorkday query: %w", err)
	}
	return store.WorkdayLookup{Found: true, Record: rec}, nil
}

func (s *WorkdayStore) InsertWorkday(ctx context.Context, rec types.WorkdayRecord) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO workday_records (user_id, workday_date, entry_time, exit_time, admin_locked)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.UserID, rec.WorkdayDate, rec.EntryTime, rec.ExitTime, rec.AdminLocked,
	)
	if isUniqueViolation(err) {
		return store.ErrDuplicateWorkday
	}
	if err != nil {
		return xerrors.Errorf("InsertWorkday: %w", err)
	}
	return nil
}

func (s *WorkdayStore) UpdateWorkdayTimes(ctx context.Context, id int64, entry time.Time, exit *time.Time) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE workday_records
		SET entry_time = $2, exit_time = $3, admin_locked = false, updated_at = now()
		WHERE id = $1 AND admin_locked = false`,
		id, entry, exit,
	)
	if err != nil {
		return false, xerrors.Errorf("UpdateWorkdayTimes: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *WorkdayStore) LatestEntryTime(ctx context.Context) (time.Time, bool, error) {
	var latest time.Time
	err := s.q.QueryRow(ctx,
		`SELECT entry_time FROM workday_records ORDER BY entry_time DESC LIMIT 1`,
	).Scan(&latest)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, xerrors.Errorf("LatestEntryTime query: %w", err)
	}
	return latest, true, nil
}

// UpsertWorkday is a single conditional statement. The DO UPDATE branch
// is filtered on admin_locked, so a locked row yields no RETURNING row.
// xmax = 0 marks a freshly inserted tuple.
func (s *WorkdayStore) UpsertWorkday(ctx context.Context, rec types.WorkdayRecord) (store.UpsertOutcome, error) {
	var inserted bool
	err := s.q.QueryRow(ctx, `
		INSERT INTO workday_records (user_id, workday_date, entry_time, exit_time, admin_locked)
		VALUES ($1, $2, $3, $4, false)
		ON CONFLICT (user_id, workday_date) DO UPDATE
		SET entry_time   = EXCLUDED.entry_time,
		    exit_time    = EXCLUDED.exit_time,
		    admin_locked = false,
		    updated_at   = now()
		WHERE workday_records.admin_locked = false
		RETURNING (xmax = 0)`,
		rec.UserID, rec.WorkdayDate, rec.EntryTime, rec.ExitTime,
	).Scan(&inserted)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.OutcomeSkippedLocked, nil
	}
	if err != nil {
		return store.OutcomeFailed, xerrors.Errorf("UpsertWorkday: %w", err)
	}
	if inserted {
		return store.OutcomeInserted, nil
	}
	return store.OutcomeUpdated, nil
}

var _ store.ConditionalWorkdayStore = (*WorkdayStore)(nil)
