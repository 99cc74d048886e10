package service

import (
	"context"

	"fleetbook/internal/bookings/repository"
	"fleetbook/pkg/clock"
	"fleetbook/pkg/logger"
	"fleetbook/pkg/scheduler"
)

// Sweeper cancels pending bookings whose start date has passed without a
// confirmation. It runs as a daily scheduled task and acts as the system
// actor: it bypasses the per-user permission rules and goes straight through
// the conditional bulk update.
type Sweeper struct {
	repo repository.BookingRepository
	clk  clock.Clock
	log  *logger.Logger
}

func NewSweeper(repo repository.BookingRepository, clk clock.Clock, log *logger.Logger) *Sweeper {
	return &Sweeper{
		repo: repo,
		clk:  clk,
		log:  log,
	}
}

// Sweep cancels every pending booking with start_date before a single cutoff
// taken once at the start of the run. One clock read per sweep keeps the run
// idempotent: a second sweep at the same instant finds nothing left to cancel.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.clk.Now()

	cancelled, err := s.repo.BulkCancelExpiredPending(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if cancelled > 0 {
		s.log.Info("Expired pending bookings cancelled",
			"count", cancelled,
			"cutoff", cutoff,
		)
	}
	return cancelled, nil
}

// Task adapts Sweep to the daily scheduler.
func (s *Sweeper) Task() scheduler.Task {
	return func(ctx context.Context) error {
		_, err := s.Sweep(ctx)
		return err
	}
}
