package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store/memory"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

func ts(s string) time.Time {
	t, err := time.Parse(types.TimestampLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRawPunchStore_Dedup(t *testing.T) {
	ctx := context.Background()
	s := memory.NewRawPunchStore()

	p := types.Punch{UserID: 7, Timestamp: ts("2024-01-10 08:00:00")}
	if err := s.InsertPunch(ctx, p); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	// Sub-second noise is truncated to the same key.
	p.Timestamp = p.Timestamp.Add(250 * time.Millisecond)
	if err := s.InsertPunch(ctx, p); !errors.Is(err, store.ErrDuplicatePunch) {
		t.Fatalf("expected ErrDuplicatePunch, got %v", err)
	}

	ok, err := s.PunchExists(ctx, 7, ts("2024-01-10 08:00:00"))
	if err != nil || !ok {
		t.Fatalf("PunchExists = %v, %v; want true", ok, err)
	}
	if n := len(s.Punches()); n != 1 {
		t.Errorf("expected 1 stored punch, got %d", n)
	}
}

func TestRawPunchStore_ListPunchesAfter(t *testing.T) {
	ctx := context.Background()
	s := memory.NewRawPunchStore()
	for _, at := range []string{"2024-01-10 17:00:00", "2024-01-10 08:00:00", "2024-01-11 08:00:00"} {
		if err := s.InsertPunch(ctx, types.Punch{UserID: 1, Timestamp: ts(at)}); err != nil {
			t.Fatalf("insert %s: %v", at, err)
		}
	}

	all, err := s.ListPunchesAfter(ctx, nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 || all[0].Timestamp != "2024-01-10 08:00:00" {
		t.Fatalf("expected 3 ascending rows, got %+v", all)
	}

	after := ts("2024-01-10 17:00:00")
	rows, err := s.ListPunchesAfter(ctx, &after)
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(rows) != 1 || rows[0].Timestamp != "2024-01-11 08:00:00" {
		t.Errorf("expected only the row strictly after the cutoff, got %+v", rows)
	}
}

func TestWorkdayStore_LockedUpdateIsRefused(t *testing.T) {
	ctx := context.Background()
	s := memory.NewWorkdayStore()
	wd := ts("2024-01-10 00:00:00")

	if err := s.InsertWorkday(ctx, types.WorkdayRecord{UserID: 1, WorkdayDate: wd, EntryTime: ts("2024-01-10 08:00:00")}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.InsertWorkday(ctx, types.WorkdayRecord{UserID: 1, WorkdayDate: wd, EntryTime: ts("2024-01-10 09:00:00")}); !errors.Is(err, store.ErrDuplicateWorkday) {
		t.Fatalf("expected ErrDuplicateWorkday, got %v", err)
	}

	got, err := s.FindWorkday(ctx, 1, wd)
	if err != nil || !got.Found {
		t.Fatalf("FindWorkday = %+v, %v", got, err)
	}

	if !s.SetLocked(1, wd, true) {
		t.Fatal("SetLocked: row not found")
	}
	changed, err := s.UpdateWorkdayTimes(ctx, got.Record.ID, ts("2024-01-10 07:00:00"), nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if changed {
		t.Error("expected locked row to be left unchanged")
	}

	latest, ok, err := s.LatestEntryTime(ctx)
	if err != nil || !ok {
		t.Fatalf("LatestEntryTime = %v, %v, %v", latest, ok, err)
	}
	if !latest.Equal(ts("2024-01-10 08:00:00")) {
		t.Errorf("expected 08:00 high-water mark, got %s", latest)
	}
}

func TestWorkdayStore_NotFound(t *testing.T) {
	s := memory.NewWorkdayStore()
	got, err := s.FindWorkday(context.Background(), 9, ts("2024-01-10 00:00:00"))
	if err != nil {
		t.Fatalf("FindWorkday: %v", err)
	}
	if got.Found {
		t.Errorf("expected NotFound, got %+v", got)
	}
	if _, ok, _ := s.LatestEntryTime(context.Background()); ok {
		t.Error("expected no high-water mark on an empty store")
	}
}
