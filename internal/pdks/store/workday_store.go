package store

import (
	"context"
	"time"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

// WorkdayLookup is the result of FindWorkday. Record is only meaningful
// when Found is true.
type WorkdayLookup struct {
	Found  bool
	Record types.WorkdayRecord
}

// WorkdayStore holds the canonical per-workday records.
type WorkdayStore interface {
	FindWorkday(ctx context.Context, userID int64, workday time.Time) (WorkdayLookup, error)
	InsertWorkday(ctx context.Context, rec types.WorkdayRecord) error
	// UpdateWorkdayTimes sets entry and exit on the record with id, only
	// while it is unlocked. It reports whether a row was changed.
	UpdateWorkdayTimes(ctx context.Context, id int64, entry time.Time, exit *time.Time) (bool, error)
	// LatestEntryTime returns the greatest entry_time across all records.
	LatestEntryTime(ctx context.Context) (time.Time, bool, error)
}

// UpsertOutcome is what a conditional upsert did with a candidate.
type UpsertOutcome string

const (
	OutcomeInserted      UpsertOutcome = "inserted"
	OutcomeUpdated       UpsertOutcome = "updated"
	OutcomeSkippedLocked UpsertOutcome = "skipped_locked"
	OutcomeFailed        UpsertOutcome = "failed"
)

// ConditionalWorkdayStore is implemented by backends that can apply the
// insert-or-update-unless-locked decision atomically.
type ConditionalWorkdayStore interface {
	WorkdayStore
	UpsertWorkday(ctx context.Context, rec types.WorkdayRecord) (UpsertOutcome, error)
}
