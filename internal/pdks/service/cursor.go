package service

import (
	"context"
	"time"

	"golang.org/x/xerrors"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

// Cursor selects raw rows the canonical store has not caught up with.
//
// The high-water mark is the greatest entry_time over all canonical
// records. A raw row stored later but stamped at or before that mark is
// never picked up again.
type Cursor struct {
	raw      store.RawPunchStore
	workdays store.WorkdayStore
}

func NewCursor(raw store.RawPunchStore, workdays store.WorkdayStore) *Cursor {
	return &Cursor{raw: raw, workdays: workdays}
}

// NewRawEvents returns raw rows strictly after the high-water mark in
// ascending order, or every row when no canonical record exists.
func (c *Cursor) NewRawEvents(ctx context.Context) ([]types.RawPunchRow, error) {
	latest, ok, err := c.workdays.LatestEntryTime(ctx)
	if err != nil {
		return nil, xerrors.Errorf("read high-water mark: %w", err)
	}
	var after *time.Time
	if ok {
		after = &latest
	}
	rows, err := c.raw.ListPunchesAfter(ctx, after)
	if err != nil {
		return nil, xerrors.Errorf("list raw punches: %w", err)
	}
	return rows, nil
}

// CompleteBuckets returns rows plus every stored row that falls in the
// same (user, workday) bucket as one of them. Without it a bucket first
// reconciled from its earliest punch would be recomputed from its tail
// alone on the next pass.
func (c *Cursor) CompleteBuckets(ctx context.Context, rows []types.RawPunchRow, dayStartHour int) ([]types.RawPunchRow, error) {
	var (
		keys     = make(map[BucketKey]struct{})
		have     = make(map[types.RawPunchRow]struct{}, len(rows))
		earliest time.Time
	)
	for _, r := range rows {
		have[r] = struct{}{}
		t, err := types.ParseTimestamp(r.Timestamp)
		if err != nil {
			continue
		}
		k := BucketKey{UserID: r.UserID, Workday: AssignWorkday(t, dayStartHour)}
		keys[k] = struct{}{}
		if earliest.IsZero() || k.Workday.Before(earliest) {
			earliest = k.Workday
		}
	}
	if len(keys) == 0 {
		return rows, nil
	}

	// Strictly after one second before the earliest workday starts.
	after := earliest.Add(time.Duration(dayStartHour)*time.Hour - time.Second)
	stored, err := c.raw.ListPunchesAfter(ctx, &after)
	if err != nil {
		return nil, xerrors.Errorf("list bucket punches: %w", err)
	}

	out := append(make([]types.RawPunchRow, 0, len(rows)+len(stored)), rows...)
	for _, r := range stored {
		if _, ok := have[r]; ok {
			continue
		}
		t, err := types.ParseTimestamp(r.Timestamp)
		if err != nil {
			continue
		}
		if _, ok := keys[BucketKey{UserID: r.UserID, Workday: AssignWorkday(t, dayStartHour)}]; ok {
			have[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out, nil
}
