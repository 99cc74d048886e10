package scheduler

import (
	"testing"
	"time"
)

func TestNextRun_SameDay(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

	next, err := NextRun(now, "21:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2025, 7, 1, 21, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextRun = %v, want %v", next, want)
	}
}

func TestNextRun_RollsToNextDay(t *testing.T) {
	now := time.Date(2025, 7, 1, 22, 15, 0, 0, time.UTC)

	next, err := NextRun(now, "21:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2025, 7, 2, 21, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextRun = %v, want %v", next, want)
	}
}

func TestNextRun_ExactlyAtScheduleIsNextDay(t *testing.T) {
	now := time.Date(2025, 7, 1, 21, 0, 0, 0, time.UTC)

	next, err := NextRun(now, "21:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Firing instants strictly after now; a run at exactly 21:00 already happened.
	want := time.Date(2025, 7, 2, 21, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextRun = %v, want %v", next, want)
	}
}

func TestNextRun_InvalidFormat(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

	for _, at := range []string{"2100", "25:00", "21:75", "ab:cd", ""} {
		if _, err := NextRun(now, at); err == nil {
			t.Errorf("NextRun(%q) expected error, got nil", at)
		}
	}
}
