package when

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	tferrors "github.com/vnykmshr/timeflow/pkg/common/errors"
	"github.com/vnykmshr/timeflow/pkg/common/validation"
)

var nextParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Parse reads a textual descriptor. Accepted forms, tried in order:
//
//	"1500ms", "5s", "2h30m"       Go duration, becomes Ms
//	"@every 90s"                  constant delay (whole seconds), becomes Ms
//	"14:30", "14:30:15"           time of day, becomes TimeOfDay
//	"2025-01-02T15:04:05Z"        RFC 3339, becomes Date
//	"@daily", "0 30 9 * * 1-5"    cron expression, becomes Date
//
// A cron expression is evaluated once: Date is its next occurrence after now,
// in now's location. Durations shorter than a millisecond become Ms == 0, which
// resolves to "now".
func Parse(s string, now time.Time) (Descriptor, error) {
	s = strings.TrimSpace(s)
	if err := validation.ValidateNotEmpty("when", "descriptor", s); err != nil {
		return Descriptor{}, err
	}

	if strings.HasPrefix(s, "@every ") {
		sched, err := cron.ParseStandard(s)
		if err != nil {
			return Descriptor{}, invalid(s, err.Error())
		}
		every, ok := sched.(cron.ConstantDelaySchedule)
		if !ok {
			return Descriptor{}, invalid(s, "not a constant delay")
		}
		return After(every.Delay), nil
	}

	if d, err := time.ParseDuration(s); err == nil {
		return After(d), nil
	}

	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Daily(t.Hour(), t.Minute(), t.Second()), nil
		}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return At(t), nil
	}

	sched, err := nextParser.Parse(s)
	if err != nil {
		return Descriptor{}, invalid(s, "unrecognized format")
	}
	next := sched.Next(now)
	if next.IsZero() {
		return Descriptor{}, invalid(s, "expression never matches")
	}
	return At(next), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string, now time.Time) Descriptor {
	d, err := Parse(s, now)
	if err != nil {
		panic(err)
	}
	return d
}

func invalid(s, reason string) error {
	return tferrors.NewValidationError("when", "descriptor", s, reason).
		WithHint("use a duration, HH:MM[:SS], an RFC 3339 time or a cron expression")
}
