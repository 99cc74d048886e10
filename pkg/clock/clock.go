// Package clock abstracts wall-clock time so expiry and lifecycle decisions
// can be tested with deterministic timestamps.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns the real wall clock, in UTC.
func System() Clock {
	return systemClock{}
}

// Fixed returns a clock frozen at t. Test helper.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
