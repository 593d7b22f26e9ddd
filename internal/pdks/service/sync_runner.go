package service

import (
	"context"
	"fmt"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
	"golang.org/x/xerrors"

	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/device"
	"github.com/BrandonDHaskell/pdks-sync/internal/pdks/store"
)

// PassResult is the outcome of one RunPass. Err is set only for
// pass-level failures: an unreachable terminal or an unreadable cursor.
type PassResult struct {
	StartedAt      time.Time        `json:"started_at"`
	FinishedAt     time.Time        `json:"finished_at"`
	Ingest         IngestSummary    `json:"ingest"`
	Reconcile      ReconcileSummary `json:"reconcile"`
	PersonnelAdded int              `json:"personnel_added"`
	DeviceCleared  bool             `json:"device_cleared"`
	Err            error            `json:"-"`
}

// OK reports whether the pass finished without a pass-level error.
func (r PassResult) OK() bool { return r.Err == nil }

// RunnerDeps are the collaborators of a Runner.
type RunnerDeps struct {
	Dialer    device.Dialer
	Raw       store.RawPunchStore
	Workdays  store.WorkdayStore
	Personnel store.PersonnelStore // required only with AutoCreatePersonnel
	Logger    slog.Logger
	Metrics   *Metrics
	Clock     quartz.Clock
}

// Runner executes one complete sync pass at a time.
type Runner struct {
	dialer     device.Dialer
	opts       Options
	ingest     *IngestService
	cursor     *Cursor
	reconciler *Reconciler
	personnel  *PersonnelEnsurer
	logger     slog.Logger
	metrics    *Metrics
	clock      quartz.Clock
}

func NewRunner(deps RunnerDeps, opts Options) *Runner {
	opts = opts.withDefaults()
	clock := deps.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	r := &Runner{
		dialer:     deps.Dialer,
		opts:       opts,
		ingest:     NewIngestService(deps.Raw, deps.Logger.Named("ingest"), deps.Metrics),
		cursor:     NewCursor(deps.Raw, deps.Workdays),
		reconciler: NewReconciler(deps.Workdays, opts, deps.Logger.Named("reconcile"), deps.Metrics),
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		clock:      clock,
	}
	if opts.AutoCreatePersonnel && deps.Personnel != nil {
		r.personnel = NewPersonnelEnsurer(deps.Personnel, deps.Logger.Named("personnel"), func() time.Time { return clock.Now() })
	}
	return r
}

// RunPass reads the terminal, stores new punches and reconciles them.
// It always returns; failures are reported in the result.
func (r *Runner) RunPass(ctx context.Context) (res PassResult) {
	res.StartedAt = r.clock.Now().UTC()
	defer func() {
		if p := recover(); p != nil {
			res.Err = xerrors.Errorf("sync pass panicked: %v", p)
			r.logger.Critical(ctx, "sync pass panicked", slog.F("panic", fmt.Sprint(p)))
		}
		res.FinishedAt = r.clock.Now().UTC()
		r.metrics.observePass(res)
	}()

	if err := r.collect(ctx, &res); err != nil {
		res.Err = err
		r.logger.Error(ctx, "sync pass aborted", slog.Error(err))
		return res
	}

	rows, err := r.cursor.NewRawEvents(ctx)
	if err == nil && len(rows) > 0 {
		rows, err = r.cursor.CompleteBuckets(ctx, rows, r.opts.DayStartHour)
	}
	if err != nil {
		res.Err = err
		r.logger.Error(ctx, "sync pass aborted before reconcile", slog.Error(err))
		return res
	}
	res.Reconcile = r.reconciler.Reconcile(ctx, rows)

	r.logger.Info(ctx, "sync pass finished",
		slog.F("raw_rows", len(rows)),
		slog.F("punches_inserted", res.Ingest.Inserted),
		slog.F("workdays_inserted", res.Reconcile.Inserted),
		slog.F("workdays_updated", res.Reconcile.Updated),
		slog.F("workdays_locked", res.Reconcile.SkippedLocked),
	)
	return res
}

// collect covers the terminal half of a pass: read, ensure personnel,
// ingest and optionally clear. The session is closed before returning.
func (r *Runner) collect(ctx context.Context, res *PassResult) error {
	dev, err := r.dialer.Dial(ctx)
	if err != nil {
		return xerrors.Errorf("dial terminal: %w", err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			r.logger.Warn(ctx, "close terminal session", slog.Error(err))
		}
	}()

	users, err := dev.Users(ctx)
	if err != nil {
		return xerrors.Errorf("list terminal users: %w", err)
	}
	punches, err := dev.Attendance(ctx)
	if err != nil {
		return xerrors.Errorf("read terminal attendance: %w", err)
	}
	r.logger.Info(ctx, "terminal read",
		slog.F("users", len(users)), slog.F("punches", len(punches)))

	for i := range punches {
		if punches[i].Name == "" {
			punches[i].Name = users[punches[i].UserID]
		}
	}

	if r.personnel != nil {
		res.PersonnelAdded = r.personnel.Ensure(ctx, users, punches)
	}

	res.Ingest = r.ingest.Ingest(ctx, punches)

	if r.opts.ClearDeviceData {
		r.clear(ctx, dev, res)
	}
	return nil
}

// clear erases the terminal log. It is skipped when any punch of this
// batch failed to store, since those would be lost.
func (r *Runner) clear(ctx context.Context, dev device.Device, res *PassResult) {
	if res.Ingest.Failed > 0 {
		r.logger.Warn(ctx, "leaving terminal log in place, some punches were not stored",
			slog.F("failed", res.Ingest.Failed))
		return
	}
	if err := dev.ClearAttendance(ctx); err != nil {
		r.logger.Warn(ctx, "clear terminal log failed, continuing", slog.Error(err))
		return
	}
	res.DeviceCleared = true
	r.logger.Info(ctx, "terminal log cleared")
}

