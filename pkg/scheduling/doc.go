/*
Package scheduling groups the timer and execution primitives of timeflow.

  - when: turns "in 5s", "daily at 09:00" or "at this instant" into a delay
  - hosttimer: the Host timer contract and a runtime implementation backed by Go timers
  - workerpool: worker pool used by the runtime host as its serial callback dispatcher
  - deferred: one-shot and repeating controllers with immediate and deferred stops

Typical use:

	t := deferred.StartTimeout(func() {
		// runs once in 30s
	}, when.After(30*time.Second))

	// Stop at midnight unless something decides otherwise first.
	stop := t.StopAt(when.Daily(0, 0, 0))
	...
	stop.Cancel(false)

Controllers default to the process-wide runtime host from hosttimer.Default.
Pass deferred.WithHost to run on another host, such as a simulated one in tests.
*/
package scheduling
