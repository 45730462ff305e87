package tracker

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically expires GenerationRequests still pending or
// processing past a deadline (measured from requested_at), covering the worker-crashed-mid-claim
// scenario: no RecordSuccess/RecordFailure ever arrives for the abandoned
// message, so without a sweeper the request never reaches a terminal state.
// Mirrors internal/worker.RedisReclaimer's ticker/stop shape.
type Sweeper struct {
	tracker   *Tracker
	interval  time.Duration
	olderThan time.Duration
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewSweeper builds a Sweeper that runs every interval, expiring pending or
// processing requests whose requested_at is older than olderThan.
func NewSweeper(t *Tracker, interval, olderThan time.Duration) *Sweeper {
	return &Sweeper{
		tracker:   t,
		interval:  interval,
		olderThan: olderThan,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run starts the sweep loop. Blocks until Stop() is called or ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	defer close(s.stoppedCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "request sweeper started",
		"interval", s.interval,
		"older_than", s.olderThan)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			slog.InfoContext(ctx, "request sweeper stopping")
			return
		case <-ticker.C:
			if err := s.sweepOnce(ctx); err != nil {
				slog.ErrorContext(ctx, "sweep cycle error", "error", err)
			}
		}
	}
}

// Stop signals the sweeper to stop gracefully.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	<-s.stoppedCh
}

func (s *Sweeper) sweepOnce(ctx context.Context) error {
	n, err := s.tracker.ExpireStale(ctx, s.olderThan)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.InfoContext(ctx, "expired stale generation requests", "count", n)
	}
	return nil
}
