// Package sweeper periodically reclaims expired seat holds. Correctness
// never depends on the sweep having run: expiry is checked at the moment of
// use everywhere else. The sweep exists so released events reach seat-map
// viewers promptly and so index entries for lost releases don't accumulate.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/osmanyildiz/cinema-booking-system/internal/domain"
)

type Sweeper struct {
	lockStore domain.SeatLockStore
	logger    *slog.Logger
	interval  time.Duration
}

func New(lockStore domain.SeatLockStore, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		lockStore: lockStore,
		logger:    logger,
		interval:  interval,
	}
}

// Run sweeps on the configured cadence until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("hold sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("hold sweeper stopped")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	swept, err := s.lockStore.Sweep(ctx)
	if err != nil {
		s.logger.Error("hold sweep failed", "error", err)
		return
	}

	if swept > 0 {
		s.logger.Info("reclaimed expired seat holds", "count", swept)
	}
}
