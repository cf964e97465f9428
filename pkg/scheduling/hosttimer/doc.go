/*
Package hosttimer defines the timer facility that deferred controllers run on,
and provides the runtime implementation backed by Go timers.

The Host contract is small: arm a one-shot or repeating callback and get a
Handle back, cancel a Handle, and read the current time. Cancels are always safe:
the zero Handle, a Handle whose timer already fired and a Handle that was already
canceled are all no-ops.

Runtime:

	host, err := hosttimer.NewRuntime(hosttimer.Config{
		Name:    "jobs",
		Logger:  logx.NewConsole("info"),
		Metrics: metrics.Config{Enabled: true},
	})
	if err != nil {
		return err
	}
	defer func() { <-host.Close() }()

	h := host.ScheduleOnce(5*time.Second, func() { fmt.Println("fired") })
	host.CancelOnce(h)

Every fired callback goes through a single-worker pool, so fired callbacks run
one at a time in firing order. Code the caller runs on its own goroutine is not
covered by this. A callback that panics is recovered, logged with its stack
and counted; other timers are unaffected. The runtime re-checks a timer on the
dispatcher right before running it, so a cancel that has returned always wins,
even when the timer had already fired and was waiting in the queue.

Non-positive repeating intervals are raised to Config.MinInterval. After Close
the runtime refuses new timers: it returns the zero Handle and logs a warning.

Clocks:

Runtime reads time from a Clock. SystemClock is the default. RedisClock reads
the Redis server TIME so that a fleet of processes resolves time-of-day targets
against one clock; it falls back to a local clock when Redis cannot answer:

	clock, err := hosttimer.NewRedisClock(hosttimer.RedisClockConfig{Client: rdb})
	host, err := hosttimer.NewRuntime(hosttimer.Config{Clock: clock})

Default returns a lazily created process-wide Runtime used by controllers that
are not given a host explicitly.
*/
package hosttimer
