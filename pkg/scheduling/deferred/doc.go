/*
Package deferred starts timer-driven callbacks that can be stopped now or at a
later time.

StartTimeout runs a callback once; StartInterval runs one repeatedly, either
right away or from a resolved start time. Both return a controller whose Stop
cancels every timer the controller has armed and whose StopAt schedules that
stop for later:

	t := deferred.StartTimeout(flush, when.After(5*time.Second))
	ds := t.StopAt(when.After(2 * time.Second))
	ds.Cancel(false) // the timeout still fires at 5s

	iv := deferred.StartInterval(poll, 2*time.Second, &start)
	defer iv.Stop()

Controllers run on a hosttimer.Host. The default is the process-wide runtime
host, which runs fired callbacks one at a time; tests pass a simulated host
with WithHost. The immediate first run of an Interval is the exception: it
happens on the caller's goroutine, and the interval's timer is only armed once
it returns. Callbacks are never invoked while controller state is locked, so a
callback may stop its own controller.

A host that refuses a timer, such as a closed runtime host, leaves a Timeout
cancelled and an Interval stopped, and logs a warning.

Deferred stops are independent timers. Nothing prevents several from being
pending on the same controller; the first to fire stops it and the rest become
no-ops.
*/
package deferred
