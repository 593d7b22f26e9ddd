package service

import (
	"context"
	"sync"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
)

const DefaultSyncInterval = 5 * time.Minute

// Passer runs one sync pass. *Runner implements it.
type Passer interface {
	RunPass(ctx context.Context) PassResult
}

// Observer is told about every finished pass, in order.
type Observer func(PassResult)

// SchedulerConfig holds the parameters for NewScheduler.
type SchedulerConfig struct {
	// Interval between the start of one pass and the next tick.
	// Defaults to 5 minutes.
	Interval time.Duration

	Clock     quartz.Clock
	Observers []Observer
}

// Scheduler runs a pass on startup and then on every tick. Passes run
// on the loop goroutine, so they never overlap; a tick that arrives
// while a pass is still running is coalesced by the ticker.
type Scheduler struct {
	passer    Passer
	interval  time.Duration
	clock     quartz.Clock
	observers []Observer
	logger    slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler creates a scheduler but does not start it.
func NewScheduler(p Passer, cfg SchedulerConfig, logger slog.Logger) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Scheduler{
		passer:    p,
		interval:  interval,
		clock:     clock,
		observers: cfg.Observers,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start begins the background loop. The loop exits when ctx is
// cancelled or Stop is called. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)

	s.logger.Info(ctx, "sync scheduler started", slog.F("interval", s.interval.String()))
}

// Stop signals the loop to exit and waits for the pass in flight, if
// any, to finish. It is safe to call more than once, or before Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started, cancel := s.started, s.cancel
	s.mu.Unlock()
	if !started {
		return
	}
	cancel()
	<-s.done
}

// Done is closed once the loop has exited.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	s.runOnce(ctx)

	ticker := s.clock.NewTicker(s.interval, "scheduler")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(context.Background(), "sync scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res := s.passer.RunPass(ctx)
	for _, obs := range s.observers {
		obs(res)
	}
}
