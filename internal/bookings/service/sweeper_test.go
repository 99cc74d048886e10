package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"fleetbook/pkg/clock"
	"fleetbook/pkg/logger"
)

func testLog() *logger.Logger {
	return logger.New(logger.Config{
		Level:  logger.ERROR,
		Format: logger.TEXT,
		Output: io.Discard,
	})
}

func TestSweepUsesSingleCutoff(t *testing.T) {
	now := time.Date(2026, 8, 28, 21, 0, 0, 0, time.UTC)

	var cutoffs []time.Time
	repo := &mockBookingRepo{
		bulkCancelExpiredPendingFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			cutoffs = append(cutoffs, cutoff)
			return 3, nil
		},
	}
	sweeper := NewSweeper(repo, clock.Fixed{T: now}, testLog())

	cancelled, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if cancelled != 3 {
		t.Errorf("cancelled = %d, want 3", cancelled)
	}
	if len(cutoffs) != 1 || !cutoffs[0].Equal(now) {
		t.Errorf("cutoffs = %v, want one read of the frozen clock", cutoffs)
	}
}

// Running the sweep twice at the same instant must be a no-op the second
// time: the first pass already cancelled everything before the cutoff.
func TestSweepIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 28, 21, 0, 0, 0, time.UTC)

	remaining := int64(5)
	repo := &mockBookingRepo{
		bulkCancelExpiredPendingFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			n := remaining
			remaining = 0
			return n, nil
		},
	}
	sweeper := NewSweeper(repo, clock.Fixed{T: now}, testLog())

	first, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("first Sweep: %v", err)
	}
	second, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}

	if first != 5 {
		t.Errorf("first sweep = %d, want 5", first)
	}
	if second != 0 {
		t.Errorf("second sweep = %d, want 0", second)
	}
}

func TestSweepPropagatesError(t *testing.T) {
	repoErr := errors.New("primary stepped down")
	repo := &mockBookingRepo{
		bulkCancelExpiredPendingFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			return 0, repoErr
		},
	}
	sweeper := NewSweeper(repo, clock.Fixed{T: time.Now()}, testLog())

	if _, err := sweeper.Sweep(context.Background()); !errors.Is(err, repoErr) {
		t.Fatalf("err = %v, want %v", err, repoErr)
	}

	task := sweeper.Task()
	if err := task(context.Background()); !errors.Is(err, repoErr) {
		t.Fatalf("task err = %v, want %v", err, repoErr)
	}
}
