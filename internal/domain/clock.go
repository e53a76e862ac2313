package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests and fixture generators inject a
// fake for deterministic generated-at stamps.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for artifact stamping. Pass nil to reset to
// real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the injectable clock.
func Now() time.Time {
	return clock.Now()
}
