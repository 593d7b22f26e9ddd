package service

import (
	"context"
	"errors"

	"cdr.dev/slog/v3"
	"golang.org/x/xerrors"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/types"
)

// ReconcileSummary counts upsert outcomes for one pass.
type ReconcileSummary struct {
	Inserted      int `json:"inserted"`
	Updated       int `json:"updated"`
	SkippedLocked int `json:"skipped_locked"`
	Failed        int `json:"failed"`
	ParseErrors   int `json:"parse_errors"`
}

func (s *ReconcileSummary) add(o store.UpsertOutcome) {
	switch o {
	case store.OutcomeInserted:
		s.Inserted++
	case store.OutcomeUpdated:
		s.Updated++
	case store.OutcomeSkippedLocked:
		s.SkippedLocked++
	default:
		s.Failed++
	}
}

// Reconciler folds raw rows into canonical workday records.
type Reconciler struct {
	workdays store.WorkdayStore
	opts     Options
	logger   slog.Logger
	metrics  *Metrics
}

func NewReconciler(workdays store.WorkdayStore, opts Options, logger slog.Logger, m *Metrics) *Reconciler {
	return &Reconciler{
		workdays: workdays,
		opts:     opts.withDefaults(),
		logger:   logger,
		metrics:  m,
	}
}

// Reconcile groups rows into buckets, debounces and pairs each one and
// writes the candidate. A failure on one bucket does not stop the rest.
func (r *Reconciler) Reconcile(ctx context.Context, rows []types.RawPunchRow) ReconcileSummary {
	var sum ReconcileSummary

	buckets, bad := GroupBuckets(rows, r.opts.DayStartHour)
	for _, b := range bad {
		r.logger.Warn(ctx, "skipping raw punch with unparseable timestamp",
			slog.F("user_id", b.Row.UserID), slog.F("timestamp", b.Row.Timestamp), slog.Error(b.Err))
	}
	sum.ParseErrors = len(bad)
	r.metrics.observeParseErrors(len(bad))

	for _, b := range buckets {
		filtered := Debounce(b.Punches, r.opts.MinInterval)
		if dropped := len(b.Punches) - len(filtered); dropped > 0 {
			r.logger.Debug(ctx, "debounced punches",
				slog.F("user_id", b.Key.UserID),
				slog.F("workday", b.Key.Workday.Format(types.DateLayout)),
				slog.F("dropped", dropped),
			)
		}

		rec := Pair(b.Key, filtered)
		outcome, err := r.upsert(ctx, rec)
		sum.add(outcome)
		r.metrics.observeUpsert(outcome)
		r.logOutcome(ctx, rec, outcome, err)
	}

	r.logger.Info(ctx, "reconcile finished",
		slog.F("inserted", sum.Inserted),
		slog.F("updated", sum.Updated),
		slog.F("skipped_locked", sum.SkippedLocked),
		slog.F("failed", sum.Failed),
		slog.F("parse_errors", sum.ParseErrors),
	)
	return sum
}

func (r *Reconciler) logOutcome(ctx context.Context, rec types.WorkdayRecord, outcome store.UpsertOutcome, err error) {
	fields := []slog.Field{
		slog.F("user_id", rec.UserID),
		slog.F("workday", rec.Date()),
		slog.F("outcome", string(outcome)),
		slog.F("entry", rec.EntryTime.Format(types.TimestampLayout)),
	}
	if rec.ExitTime != nil {
		fields = append(fields, slog.F("exit", rec.ExitTime.Format(types.TimestampLayout)))
	}

	switch outcome {
	case store.OutcomeFailed:
		r.logger.Error(ctx, "workday upsert failed", append(fields, slog.Error(err))...)
	case store.OutcomeSkippedLocked:
		r.logger.Info(ctx, "workday locked by admin, left unchanged", fields...)
	default:
		r.logger.Debug(ctx, "workday written", fields...)
	}
}

// upsert applies one candidate. Backends with a conditional upsert do it
// in one step; the rest go through find, then insert or a guarded update.
func (r *Reconciler) upsert(ctx context.Context, rec types.WorkdayRecord) (store.UpsertOutcome, error) {
	rec.AdminLocked = false
	if cs, ok := r.workdays.(store.ConditionalWorkdayStore); ok {
		outcome, err := cs.UpsertWorkday(ctx, rec)
		if err != nil {
			return store.OutcomeFailed, err
		}
		return outcome, nil
	}

	// A lost insert race re-reads once and resolves through the update.
	for attempt := 0; attempt < 2; attempt++ {
		lookup, err := r.workdays.FindWorkday(ctx, rec.UserID, rec.WorkdayDate)
		if err != nil {
			return store.OutcomeFailed, xerrors.Errorf("find workday: %w", err)
		}

		if !lookup.Found {
			err := r.workdays.InsertWorkday(ctx, rec)
			if err == nil {
				return store.OutcomeInserted, nil
			}
			if errors.Is(err, store.ErrDuplicateWorkday) && attempt == 0 {
				continue
			}
			return store.OutcomeFailed, xerrors.Errorf("insert workday: %w", err)
		}

		if lookup.Record.AdminLocked {
			return store.OutcomeSkippedLocked, nil
		}
		changed, err := r.workdays.UpdateWorkdayTimes(ctx, lookup.Record.ID, rec.EntryTime, rec.ExitTime)
		if err != nil {
			return store.OutcomeFailed, xerrors.Errorf("update workday: %w", err)
		}
		if !changed {
			// Locked between the read and the write.
			return store.OutcomeSkippedLocked, nil
		}
		return store.OutcomeUpdated, nil
	}
	return store.OutcomeFailed, xerrors.Errorf("workday %d/%s: insert conflict persisted", rec.UserID, rec.Date())
}
