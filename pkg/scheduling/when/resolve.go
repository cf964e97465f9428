package when

import (
	"math"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// ResolveAt converts d into a delay in milliseconds from now.
//
// The result is negative when d names an instant in the past; callers treat a
// non-positive delay as "as soon as possible". A time-of-day that is not
// strictly after now moves to the same wall-clock time on the next calendar
// day, so the delay across a DST change is not a multiple of 24h.
func ResolveAt(now time.Time, d Descriptor) int64 {
	if d.Ms != 0 {
		return d.Ms
	}

	target := now
	if tod := d.TimeOfDay; tod != nil {
		y, m, day := now.Date()
		target = time.Date(y, m, day, tod.Hour, tod.Minute, tod.Second, 0, now.Location())
		if !target.After(now) {
			target = target.AddDate(0, 0, 1)
		}
	} else if !d.Date.IsZero() {
		target = d.Date
	}

	return target.Sub(now).Milliseconds()
}

// Resolve converts d into a delay in milliseconds from time.Now().
func Resolve(d Descriptor) int64 {
	return ResolveAt(time.Now(), d)
}

// Resolver resolves descriptors against its own clock.
type Resolver struct {
	// Clock supplies now. Nil means the system clock.
	Clock Clock
}

func (r Resolver) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock.Now()
}

// Delay returns the delay for d in milliseconds.
func (r Resolver) Delay(d Descriptor) int64 {
	return ResolveAt(r.now(), d)
}

// Duration returns the delay for d as a time.Duration. Delays beyond the
// range of time.Duration saturate instead of wrapping.
func (r Resolver) Duration(d Descriptor) time.Duration {
	return msToDuration(r.Delay(d))
}

const maxMs = math.MaxInt64 / int64(time.Millisecond)

func msToDuration(ms int64) time.Duration {
	switch {
	case ms > maxMs:
		return math.MaxInt64
	case ms < -maxMs:
		return math.MinInt64
	default:
		return time.Duration(ms) * time.Millisecond
	}
}
