package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	sqlitestore "github.com/BrandonDHaskell/pdks-sync/internal/pdks/store/sqlite"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

func candidate(userID int64, workday, entry string, exit string) types.WorkdayRecord {
	rec := types.WorkdayRecord{
		UserID:      userID,
		WorkdayDate: day(workday),
		EntryTime:   ts(entry),
	}
	if exit != "" {
		e := ts(exit)
		rec.ExitTime = &e
	}
	return rec
}

// ═══════════════════════════════════════════════════════════════════════════
// FindWorkday / InsertWorkday
// ═══════════════════════════════════════════════════════════════════════════

func TestWorkdayStore_FindWorkday_NotFound(t *testing.T) {
	conn := openTestDB(t)
	ws := sqlitestore.NewWorkdayStore(conn, newTestWriter(t, conn))

	got, err := ws.FindWorkday(context.Background(), 7, day("2024-01-10"))
	if err != nil {
		t.Fatalf("FindWorkday: %v", err)
	}
	if got.Found {
		t.Errorf("expected Found=false, got %+v", got)
	}
}

func TestWorkdayStore_InsertThenFind(t *testing.T) {
	conn := openTestDB(t)
	ws := sqlitestore.NewWorkdayStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	rec := candidate(7, "2024-01-10", "2024-01-10 23:58:00", "2024-01-11 00:01:10")
	if err := ws.InsertWorkday(ctx, rec); err != nil {
		t.Fatalf("InsertWorkday: %v", err)
	}

	got, err := ws.FindWorkday(ctx, 7, day("2024-01-10"))
	if err != nil {
		t.Fatalf("FindWorkday: %v", err)
	}
	if !got.Found {
		t.Fatal("expected Found=true")
	}
	if !got.Record.EntryTime.Equal(rec.EntryTime) {
		t.Errorf("expected entry %v, got %v", rec.EntryTime, got.Record.EntryTime)
	}
	if got.Record.ExitTime == nil || !got.Record.ExitTime.Equal(*rec.ExitTime) {
		t.Errorf("expected exit %v, got %v", rec.ExitTime, got.Record.ExitTime)
	}
	if got.Record.AdminLocked {
		t.Error("expected admin_locked=false")
	}

	err = ws.InsertWorkday(ctx, rec)
	if !errors.Is(err, store.ErrDuplicateWorkday) {
		t.Errorf("expected ErrDuplicateWorkday on second insert, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// UpdateWorkdayTimes: optimistic, lock-aware
// ═══════════════════════════════════════════════════════════════════════════

func TestWorkdayStore_UpdateWorkdayTimes_RespectsLock(t *testing.T) {
	conn := openTestDB(t)
	ws := sqlitestore.NewWorkdayStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if err := ws.InsertWorkday(ctx, candidate(7, "2024-02-01", "2024-02-01 08:00:00", "")); err != nil {
		t.Fatalf("InsertWorkday: %v", err)
	}
	found, _ := ws.FindWorkday(ctx, 7, day("2024-02-01"))

	exit := ts("2024-02-01 17:00:00")
	changed, err := ws.UpdateWorkdayTimes(ctx, found.Record.ID, ts("2024-02-01 08:00:00"), &exit)
	if err != nil {
		t.Fatalf("UpdateWorkdayTimes: %v", err)
	}
	if !changed {
		t.Fatal("expected unlocked row to change")
	}

	if _, err := conn.ExecContext(ctx, `UPDATE workday_records SET admin_locked = 1 WHERE id = ?`, found.Record.ID); err != nil {
		t.Fatalf("lock: %v", err)
	}

	later := ts("2024-02-01 19:00:00")
	changed, err = ws.UpdateWorkdayTimes(ctx, found.Record.ID, ts("2024-02-01 07:00:00"), &later)
	if err != nil {
		t.Fatalf("UpdateWorkdayTimes locked: %v", err)
	}
	if changed {
		t.Error("expected locked row to be left alone")
	}

	got, _ := ws.FindWorkday(ctx, 7, day("2024-02-01"))
	if !got.Record.ExitTime.Equal(exit) {
		t.Errorf("expected exit to stay %v, got %v", exit, got.Record.ExitTime)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// UpsertWorkday: single-transaction decision
// ═══════════════════════════════════════════════════════════════════════════

func TestWorkdayStore_UpsertWorkday_Outcomes(t *testing.T) {
	conn := openTestDB(t)
	ws := sqlitestore.NewWorkdayStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	first := candidate(7, "2024-01-10", "2024-01-10 08:00:00", "")
	out, err := ws.UpsertWorkday(ctx, first)
	if err != nil {
		t.Fatalf("UpsertWorkday insert: %v", err)
	}
	if out != store.OutcomeInserted {
		t.Errorf("expected inserted, got %s", out)
	}

	second := candidate(7, "2024-01-10", "2024-01-10 08:00:00", "2024-01-10 17:30:00")
	out, err = ws.UpsertWorkday(ctx, second)
	if err != nil {
		t.Fatalf("UpsertWorkday update: %v", err)
	}
	if out != store.OutcomeUpdated {
		t.Errorf("expected updated, got %s", out)
	}

	if _, err := conn.ExecContext(ctx,
		`UPDATE workday_records SET admin_locked = 1 WHERE user_id = 7 AND workday_date = '2024-01-10'`); err != nil {
		t.Fatalf("lock: %v", err)
	}

	third := candidate(7, "2024-01-10", "2024-01-10 06:00:00", "2024-01-10 20:00:00")
	out, err = ws.UpsertWorkday(ctx, third)
	if err != nil {
		t.Fatalf("UpsertWorkday locked: %v", err)
	}
	if out != store.OutcomeSkippedLocked {
		t.Errorf("expected skipped_locked, got %s", out)
	}

	got, _ := ws.FindWorkday(ctx, 7, day("2024-01-10"))
	if !got.Record.AdminLocked {
		t.Error("expected lock to survive")
	}
	if !got.Record.EntryTime.Equal(second.EntryTime) || !got.Record.ExitTime.Equal(*second.ExitTime) {
		t.Errorf("expected locked row to keep the second pass values, got %+v", got.Record)
	}

	var count int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM workday_records`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one row per user/workday, got %d", count)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// LatestEntryTime: high-water mark
// ═══════════════════════════════════════════════════════════════════════════

func TestWorkdayStore_LatestEntryTime(t *testing.T) {
	conn := openTestDB(t)
	ws := sqlitestore.NewWorkdayStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	_, ok, err := ws.LatestEntryTime(ctx)
	if err != nil {
		t.Fatalf("LatestEntryTime empty: %v", err)
	}
	if ok {
		t.Fatal("expected no high-water mark on an empty table")
	}

	for _, rec := range []types.WorkdayRecord{
		candidate(1, "2024-01-10", "2024-01-10 08:00:00", ""),
		candidate(2, "2024-01-11", "2024-01-11 23:10:00", ""),
		candidate(1, "2024-01-11", "2024-01-11 07:45:00", ""),
	} {
		if err := ws.InsertWorkday(ctx, rec); err != nil {
			t.Fatalf("InsertWorkday: %v", err)
		}
	}

	latest, ok, err := ws.LatestEntryTime(ctx)
	if err != nil {
		t.Fatalf("LatestEntryTime: %v", err)
	}
	if !ok || !latest.Equal(ts("2024-01-11 23:10:00")) {
		t.Errorf("expected 2024-01-11 23:10:00, got %v (ok=%v)", latest, ok)
	}
}
