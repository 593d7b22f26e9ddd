package service_test

import (
	"testing"
	"time"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/slogtest"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

func testLogger(t *testing.T) slog.Logger {
	t.Helper()
	return slogtest.Make(t, &slogtest.Options{IgnoreErrors: true}).Leveled(slog.LevelDebug)
}

func ts(s string) time.Time {
	t, err := time.Parse(types.TimestampLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func day(s string) time.Time {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func punch(userID int64, at string) types.Punch {
	return types.Punch{UserID: userID, Timestamp: ts(at)}
}

func rows(userID int64, at ...string) []types.RawPunchRow {
	out := make([]types.RawPunchRow, 0, len(at))
	for _, a := range at {
		out = append(out, types.RawPunchRow{UserID: userID, Timestamp: a})
	}
	return out
}

func ptr[T any](v T) *T { return &v }
