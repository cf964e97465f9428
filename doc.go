/*
Package timeflow provides deferred execution for Go programs: start a one-shot
or repeating timer-driven callback and get back a handle that stops it now, or
schedules a stop for later that can itself be called off.

Scheduling (pkg/scheduling):
  - when: flexible "when" descriptors (offset, daily time of day, absolute instant)
  - deferred: timeout and interval controllers with deferred stops
  - hosttimer: the timer host contract, runtime host and Redis-backed clock
  - workerpool: serial callback dispatch for the runtime host

Supporting packages:
  - logx: zerolog-backed structured logging
  - metrics: Prometheus instrumentation
  - common/errors, common/validation: shared errors and config validation

Example usage:

	import (
		"github.com/vnykmshr/timeflow/pkg/scheduling/deferred"
		"github.com/vnykmshr/timeflow/pkg/scheduling/when"
	)

	start := when.Daily(9, 0, 0)
	iv := deferred.StartInterval(report, time.Hour, &start)

	// Give up for the day at 17:00; call Cancel(false) to keep going.
	stop := iv.StopAt(when.Daily(17, 0, 0))

See the examples/ directory for runnable programs.
*/
package timeflow
