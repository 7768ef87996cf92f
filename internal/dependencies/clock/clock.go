package clock

import "time"

// Clock is the time source for session timestamps, token expiry and the
// ledger's daily cap. Tests swap in mocks.MockClock.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// RealClock reads the system clock
type RealClock struct{}

// New returns the system clock
func New() *RealClock {
	return &RealClock{}
}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}
