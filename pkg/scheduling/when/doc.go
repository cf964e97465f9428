/*
Package when converts a flexible "when" description into a delay.

A Descriptor has three forms, used in priority order: an explicit offset in
milliseconds (Ms, when non-zero), a daily wall-clock time (TimeOfDay) and an
absolute instant (Date). An empty Descriptor means "now".

	when.ResolveAt(now, when.AfterMs(5000))    // 5000
	when.ResolveAt(now, when.Daily(9, 0, 0))   // ms until the next 09:00:00
	when.ResolveAt(now, when.At(deadline))     // may be negative

Time-of-day targets that are not strictly in the future roll to the next
calendar day. The roll is a date increment, so across a DST change the delay is
23h or 25h away from the same time today rather than exactly 24h.

Descriptors can also be read from text with Parse, which accepts Go durations,
HH:MM[:SS], RFC 3339 timestamps and cron expressions (evaluated once to their
next occurrence).
*/
package when
