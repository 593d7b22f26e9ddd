package service

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"cdr.dev/slog/v3"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

// PersonnelEnsurer creates personnel rows for terminal users the
// directory has never seen. Existing rows, active or not, are left alone.
type PersonnelEnsurer struct {
	store  store.PersonnelStore
	logger slog.Logger
	now    func() time.Time
}

func NewPersonnelEnsurer(st store.PersonnelStore, logger slog.Logger, now func() time.Time) *PersonnelEnsurer {
	if now == nil {
		now = time.Now
	}
	return &PersonnelEnsurer{store: st, logger: logger, now: now}
}

// Ensure returns the number of rows it created. The hire date of a new
// row is the calendar date of the user's earliest punch in punches, or
// today when there is none.
func (e *PersonnelEnsurer) Ensure(ctx context.Context, users map[int64]string, punches []types.Punch) int {
	earliest := make(map[int64]time.Time, len(users))
	for _, p := range punches {
		if t, ok := earliest[p.UserID]; !ok || p.Timestamp.Before(t) {
			earliest[p.UserID] = p.Timestamp
		}
	}

	today := e.now()
	created := 0
	for _, userID := range slices.Sorted(maps.Keys(users)) {
		name := users[userID]
		exists, err := e.store.PersonnelExists(ctx, userID)
		if err != nil {
			e.logger.Error(ctx, "personnel lookup failed", slog.F("user_id", userID), slog.Error(err))
			continue
		}
		if exists {
			continue
		}

		hire := today
		if t, ok := earliest[userID]; ok {
			hire = t
		}
		first, last := SplitName(name)
		p := types.Personnel{
			UserID:    userID,
			FirstName: first,
			LastName:  last,
			HireDate:  time.Date(hire.Year(), hire.Month(), hire.Day(), 0, 0, 0, 0, time.UTC),
			Active:    true,
		}
		if err := e.store.InsertPersonnel(ctx, p); err != nil {
			e.logger.Error(ctx, "personnel insert failed", slog.F("user_id", userID), slog.Error(err))
			continue
		}
		created++
		e.logger.Info(ctx, "personnel created",
			slog.F("user_id", userID),
			slog.F("first_name", first),
			slog.F("last_name", last),
			slog.F("hire_date", p.HireDate.Format(types.DateLayout)),
		)
	}
	return created
}

// SplitName splits a terminal display name on its first space.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	first, last, _ = strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
