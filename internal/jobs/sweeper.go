package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/betoojeda/tienda-facil/internal/pkg/logger"
	"github.com/betoojeda/tienda-facil/internal/services"
)

// Sweeper periodically downgrades lapsed subscriptions and purges dead
// sessions. Each tick runs both tasks once; a failed task is retried on the
// next tick.
type Sweeper struct {
	log         *logger.Logger
	maintenance services.MaintenanceService
	interval    time.Duration
	now         func() time.Time
}

func NewSweeper(baseLog *logger.Logger, maintenance services.MaintenanceService, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		log:         baseLog.With("component", "ExpirySweeper"),
		maintenance: maintenance,
		interval:    interval,
		now:         time.Now,
	}
}

// Start runs one sweep immediately, then one per interval until ctx ends.
// The returned channel closes when the loop has exited.
func (s *Sweeper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.safeSweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.safeSweep(ctx)
			}
		}
	}()
	return done
}

func (s *Sweeper) safeSweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Sweep panic", "panic", fmt.Sprint(r))
		}
	}()
	if _, err := s.Sweep(ctx); err != nil {
		s.log.Warn("Sweep failed", "error", err)
	}
}

type SweepResult struct {
	Downgraded     int
	PurgedSessions int64
}

// Sweep runs both tasks once. The session purge still runs when the
// downgrade fails; the first error is returned.
func (s *Sweeper) Sweep(ctx context.Context) (SweepResult, error) {
	now := s.now()
	var res SweepResult
	var firstErr error

	n, err := s.maintenance.DowngradeExpired(ctx, now)
	if err != nil {
		firstErr = fmt.Errorf("downgrade expired stores: %w", err)
	}
	res.Downgraded = n

	purged, err := s.maintenance.PurgeExpiredSessions(ctx, now)
	if err != nil && firstErr == nil {
		firstErr = fmt.Errorf("purge sessions: %w", err)
	}
	res.PurgedSessions = purged

	if res.Downgraded > 0 || res.PurgedSessions > 0 {
		s.log.Info("Sweep done", "downgraded", res.Downgraded, "purged_sessions", res.PurgedSessions)
	}
	return res, firstErr
}
