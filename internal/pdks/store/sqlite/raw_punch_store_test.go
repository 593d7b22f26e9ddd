package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	sqlitestore "github.com/BrandonDHaskell/pdks-sync/internal/pdks/store/sqlite"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

// ═══════════════════════════════════════════════════════════════════════════
// InsertPunch
// ═══════════════════════════════════════════════════════════════════════════

func TestRawPunchStore_InsertPunch_ColumnsCorrect(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	rs := sqlitestore.NewRawPunchStore(conn, w)

	uid, status := 12, 1
	err := rs.InsertPunch(context.Background(), types.Punch{
		UserID:     7,
		Name:       "Ayse Yilmaz",
		Timestamp:  ts("2024-01-10 08:01:02"),
		DeviceUID:  &uid,
		StatusCode: &status,
	})
	if err != nil {
		t.Fatalf("InsertPunch: %v", err)
	}

	var (
		name      sql.NullString
		punchedAt string
		deviceUID sql.NullInt64
		verify    sql.NullInt64
	)
	err = conn.QueryRowContext(context.Background(), `
SELECT display_name, punched_at, device_uid, verify_method
FROM raw_punches WHERE user_id = ?`, 7).Scan(&name, &punchedAt, &deviceUID, &verify)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if name.String != "Ayse Yilmaz" {
		t.Errorf("expected display_name=Ayse Yilmaz, got %q", name.String)
	}
	if punchedAt != "2024-01-10 08:01:02" {
		t.Errorf("expected punched_at=2024-01-10 08:01:02, got %q", punchedAt)
	}
	if !deviceUID.Valid || deviceUID.Int64 != 12 {
		t.Errorf("expected device_uid=12, got %v", deviceUID)
	}
	if verify.Valid {
		t.Errorf("expected verify_method NULL, got %v", verify)
	}
}

func TestRawPunchStore_InsertPunch_DuplicateIsSentinel(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	rs := sqlitestore.NewRawPunchStore(conn, w)
	ctx := context.Background()

	p := types.Punch{UserID: 7, Timestamp: ts("2024-01-10 08:00:00")}
	if err := rs.InsertPunch(ctx, p); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err := rs.InsertPunch(ctx, p)
	if !errors.Is(err, store.ErrDuplicatePunch) {
		t.Fatalf("expected ErrDuplicatePunch, got %v", err)
	}

	var count int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_punches`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 stored row, got %d", count)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// PunchExists
// ═══════════════════════════════════════════════════════════════════════════

func TestRawPunchStore_PunchExists(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	rs := sqlitestore.NewRawPunchStore(conn, w)
	ctx := context.Background()

	at := ts("2024-01-10 08:00:00")
	exists, err := rs.PunchExists(ctx, 7, at)
	if err != nil {
		t.Fatalf("PunchExists: %v", err)
	}
	if exists {
		t.Fatal("expected no punch before insert")
	}

	if err := rs.InsertPunch(ctx, types.Punch{UserID: 7, Timestamp: at}); err != nil {
		t.Fatalf("InsertPunch: %v", err)
	}

	exists, err = rs.PunchExists(ctx, 7, at)
	if err != nil {
		t.Fatalf("PunchExists: %v", err)
	}
	if !exists {
		t.Error("expected punch after insert")
	}

	// Same timestamp, other user.
	exists, _ = rs.PunchExists(ctx, 8, at)
	if exists {
		t.Error("expected user 8 to have no punch")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// ListPunchesAfter
// ═══════════════════════════════════════════════════════════════════════════

func TestRawPunchStore_ListPunchesAfter(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	rs := sqlitestore.NewRawPunchStore(conn, w)
	ctx := context.Background()

	for _, p := range []types.Punch{
		{UserID: 1, Timestamp: ts("2024-01-10 17:00:00")},
		{UserID: 2, Timestamp: ts("2024-01-10 08:00:00")},
		{UserID: 1, Timestamp: ts("2024-01-10 09:00:00")},
	} {
		if err := rs.InsertPunch(ctx, p); err != nil {
			t.Fatalf("InsertPunch: %v", err)
		}
	}

	all, err := rs.ListPunchesAfter(ctx, nil)
	if err != nil {
		t.Fatalf("ListPunchesAfter(nil): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}
	if all[0].Timestamp != "2024-01-10 08:00:00" || all[2].Timestamp != "2024-01-10 17:00:00" {
		t.Errorf("expected ascending order, got %+v", all)
	}

	// Strictly greater: the 09:00 row itself is excluded.
	cutoff := ts("2024-01-10 09:00:00")
	after, err := rs.ListPunchesAfter(ctx, &cutoff)
	if err != nil {
		t.Fatalf("ListPunchesAfter(cutoff): %v", err)
	}
	if len(after) != 1 || after[0].Timestamp != "2024-01-10 17:00:00" {
		t.Errorf("expected only the 17:00 row, got %+v", after)
	}
}
