package hosttimer

import "time"

// Handle identifies one armed host timer. The zero Handle is "empty" and is
// never returned for a live timer.
type Handle uint64

// Host is the timer facility controllers are built on.
//
// Cancel operations must be safe to call with the zero Handle, with a handle
// whose timer already fired, and with a handle that was already canceled.
// Once a cancel call returns, the timer's callback must not start.
type Host interface {
	// Now returns the host's current wall-clock time.
	Now() time.Time

	// ScheduleOnce runs fn once after delay. Negative delays behave as zero.
	ScheduleOnce(delay time.Duration, fn func()) Handle

	// CancelOnce cancels a timer armed by ScheduleOnce.
	CancelOnce(h Handle)

	// ScheduleRepeating runs fn every interval until canceled.
	ScheduleRepeating(interval time.Duration, fn func()) Handle

	// CancelRepeating cancels a timer armed by ScheduleRepeating.
	CancelRepeating(h Handle)
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the local system clock.
type SystemClock struct{}

// Now implements Clock using time.Now.
func (SystemClock) Now() time.Time { return time.Now() }
