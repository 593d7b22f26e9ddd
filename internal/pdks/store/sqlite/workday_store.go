package sqlite

import (
	"context"
	"database/sql"
	"time"

	"golang.org/x/xerrors"

	dbpkg "github.com/BrandonDHaskell/pdks-sync/internal/db"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

type WorkdayStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewWorkdayStore(db *sql.DB, writer *dbpkg.Worker) *WorkdayStore {
	return &WorkdayStore{db: db, writer: writer}
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findWorkday(ctx context.Context, q rowQuerier, userID int64, workday time.Time) (store.WorkdayLookup, error) {
	var (
		id     int64
		entry  string
		exit   sql.NullString
		locked int
	)
	err := q.QueryRowContext(ctx, `
SELECT id, entry_time, exit_time, admin_locked
FROM workday_records
WHERE user_id = ? AND workday_date = ?;
`, userID, formatDate(workday)).Scan(&id, &entry, &exit, &locked)
	if err == sql.ErrNoRows {
		return store.WorkdayLookup{}, nil
	}
	if err != nil {
		return store.WorkdayLookup{}, xerrors.Errorf("FindWorkday query: %w", err)
	}

	entryTime, err := types.ParseTimestamp(entry)
	if err != nil {
		return store.WorkdayLookup{}, xerrors.Errorf("FindWorkday entry_time %q: %w", entry, err)
	}
	exitTime, err := parseNullTS(exit)
	if err != nil {
		return store.WorkdayLookup{}, xerrors.Errorf("FindWorkday exit_time: %w", err)
	}

	return store.WorkdayLookup{
		Found: true,
		Record: types.WorkdayRecord{
			ID:          id,
			UserID:      userID,
			WorkdayDate: workday,
			EntryTime:   entryTime,
			ExitTime:    exitTime,
			AdminLocked: locked == 1,
		},
	}, nil
}

func (s *WorkdayStore) FindWorkday(ctx context.Context, userID int64, workday time.Time) (store.WorkdayLookup, error) {
	return findWorkday(ctx, s.db, userID, workday)
}

func insertWorkday(ctx context.Context, tx *sql.Tx, rec types.WorkdayRecord) error {
	ms := nowMs()
	var locked int
	if rec.AdminLocked {
		locked = 1
	}
	_, err := tx.ExecContext(ctx, `
INSERT INTO workday_records(
  user_id, workday_date, entry_time, exit_time, admin_locked, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?);
`, rec.UserID, formatDate(rec.WorkdayDate), formatTS(rec.EntryTime), nullableTS(rec.ExitTime), locked, ms, ms)
	if isUniqueViolation(err) {
		return store.ErrDuplicateWorkday
	}
	if err != nil {
		return xerrors.Errorf("InsertWorkday: %w", err)
	}
	return nil
}

func (s *WorkdayStore) InsertWorkday(ctx context.Context, rec types.WorkdayRecord) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return insertWorkday(ctx, tx, rec)
	})
}

func updateWorkdayTimes(ctx context.Context, tx *sql.Tx, id int64, entry time.Time, exit *time.Time) (bool, error) {
	res, err := tx.ExecContext(ctx, `
UPDATE workday_records
SET entry_time    = ?,
    exit_time     = ?,
    admin_locked  = 0,
    updated_at_ms = ?
WHERE id = ? AND admin_locked = 0;
`, formatTS(entry), nullableTS(exit), nowMs(), id)
	if err != nil {
		return false, xerrors.Errorf("UpdateWorkdayTimes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, xerrors.Errorf("UpdateWorkdayTimes rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *WorkdayStore) UpdateWorkdayTimes(ctx context.Context, id int64, entry time.Time, exit *time.Time) (bool, error) {
	var changed bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		changed, err = updateWorkdayTimes(ctx, tx, id, entry, exit)
		return err
	})
	return changed, err
}

func (s *WorkdayStore) LatestEntryTime(ctx context.Context) (time.Time, bool, error) {
	var entry string
	err := s.db.QueryRowContext(ctx, `
SELECT entry_time FROM workday_records ORDER BY entry_time DESC LIMIT 1;
`).Scan(&entry)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, xerrors.Errorf("LatestEntryTime query: %w", err)
	}
	t, err := types.ParseTimestamp(entry)
	if err != nil {
		return time.Time{}, false, xerrors.Errorf("LatestEntryTime parse %q: %w", entry, err)
	}
	return t, true, nil
}

// UpsertWorkday looks up, then inserts, updates or skips inside one
// writer transaction, so no other write can slip between the read and
// the decision.
func (s *WorkdayStore) UpsertWorkday(ctx context.Context, rec types.WorkdayRecord) (store.UpsertOutcome, error) {
	outcome := store.OutcomeFailed
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		found, err := findWorkday(ctx, tx, rec.UserID, rec.WorkdayDate)
		if err != nil {
			return err
		}
		if !found.Found {
			rec.AdminLocked = false
			if err := insertWorkday(ctx, tx, rec); err != nil {
				return err
			}
			outcome = store.OutcomeInserted
			return nil
		}
		if found.Record.AdminLocked {
			outcome = store.OutcomeSkippedLocked
			return nil
		}
		changed, err := updateWorkdayTimes(ctx, tx, found.Record.ID, rec.EntryTime, rec.ExitTime)
		if err != nil {
			return err
		}
		if !changed {
			outcome = store.OutcomeSkippedLocked
			return nil
		}
		outcome = store.OutcomeUpdated
		return nil
	})
	if err != nil {
		return store.OutcomeFailed, err
	}
	return outcome, nil
}

var _ store.ConditionalWorkdayStore = (*WorkdayStore)(nil)
