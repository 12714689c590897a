// Package scheduler runs the retention sweep as a periodic in-process job.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	retentionUseCase "github.com/innwise/fieldvault/internal/retention/usecase"
)

// DefaultInterval is the default time between sweeps.
const DefaultInterval = 12 * time.Hour

// Scheduler drives the retention sweeper on a fixed interval. The first
// sweep runs immediately on start; later sweeps follow the ticker.
type Scheduler struct {
	sweeper  retentionUseCase.SweeperUseCase
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// sweepMu serializes the ticker loop against SweepNow callers.
	sweepMu sync.Mutex
}

// NewScheduler creates a scheduler over the sweeper. A non-positive interval
// falls back to the default; a nil logger falls back to slog.Default.
func NewScheduler(sweeper retentionUseCase.SweeperUseCase, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the sweep loop. Returns immediately; the loop runs in a
// background goroutine. Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.run(ctx)
}

// Stop signals the loop to stop and waits for it to finish. Stopping a
// stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	stopCh := s.stopCh
	doneCh := s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SweepNow runs one sweep outside the schedule. Skipped when a sweep is
// already in flight.
func (s *Scheduler) SweepNow(ctx context.Context) {
	s.sweep(ctx)
}

// run is the main loop.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("retention scheduler started", slog.Duration("interval", s.interval))

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("retention scheduler stopping due to context cancellation")
			return
		case <-s.stopCh:
			s.logger.Info("retention scheduler stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one pass. The TryLock keeps a slow sweep from being doubled by
// a SweepNow call; the skipped run is picked up by the next tick.
func (s *Scheduler) sweep(ctx context.Context) {
	if !s.sweepMu.TryLock() {
		s.logger.Warn("retention sweep already in flight, skipping")
		return
	}
	defer s.sweepMu.Unlock()

	start := time.Now()
	result, err := s.sweeper.Sweep(ctx, false)
	if err != nil {
		s.logger.Error("retention sweep failed", slog.Any("error", err))
		return
	}

	s.logger.Info("retention sweep completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int64("audit_entries_deleted", result.AuditEntriesDeleted),
		slog.Int("archived", result.Archived),
		slog.Int("deleted", result.Deleted),
		slog.Int("anonymized", result.Anonymized),
		slog.Int("finalized", result.Finalized),
		slog.Int("failures", result.Failures),
	)
}
