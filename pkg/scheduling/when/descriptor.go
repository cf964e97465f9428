package when

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time within a day. Minute and Second default to 0.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// String formats the time as HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Descriptor describes a future point in time. At most one form is used,
// checked in this order:
//
//  1. Ms, an explicit offset in milliseconds, when non-zero
//  2. TimeOfDay, the next occurrence of that wall-clock time
//  3. Date, an absolute instant, when non-zero
//
// A Descriptor with none of them set means "now". Ms == 0 is treated as unset,
// so Descriptor{Ms: 0, Date: d} resolves against d.
type Descriptor struct {
	Ms        int64
	Date      time.Time
	TimeOfDay *TimeOfDay
}

// After returns a descriptor for an offset from now, truncated to milliseconds.
func After(d time.Duration) Descriptor {
	return Descriptor{Ms: d.Milliseconds()}
}

// AfterMs returns a descriptor for an offset in milliseconds.
func AfterMs(ms int64) Descriptor {
	return Descriptor{Ms: ms}
}

// At returns a descriptor for an absolute instant.
func At(t time.Time) Descriptor {
	return Descriptor{Date: t}
}

// Daily returns a descriptor for the next occurrence of hour:minute:second.
func Daily(hour, minute, second int) Descriptor {
	return Descriptor{TimeOfDay: &TimeOfDay{Hour: hour, Minute: minute, Second: second}}
}

// IsZero reports whether no form is set.
func (d Descriptor) IsZero() bool {
	return d.Ms == 0 && d.TimeOfDay == nil && d.Date.IsZero()
}

// String describes the form that will be used for resolution.
func (d Descriptor) String() string {
	switch {
	case d.Ms != 0:
		return fmt.Sprintf("in %dms", d.Ms)
	case d.TimeOfDay != nil:
		return "daily at " + d.TimeOfDay.String()
	case !d.Date.IsZero():
		return "at " + d.Date.Format(time.RFC3339)
	default:
		return "now"
	}
}
