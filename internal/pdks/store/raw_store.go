package store

import (
	"context"
	"time"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

// RawPunchStore is the append-only raw punch log.
type RawPunchStore interface {
	PunchExists(ctx context.Context, userID int64, ts time.Time) (bool, error)
	InsertPunch(ctx context.Context, p types.Punch) error
	// ListPunchesAfter returns rows with timestamp strictly after *after,
	// or every row when after is nil, ordered by timestamp ascending.
	ListPunchesAfter(ctx context.Context, after *time.Time) ([]types.RawPunchRow, error)
}
