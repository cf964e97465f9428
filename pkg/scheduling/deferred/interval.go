package deferred

import (
	"time"

	"github.com/vnykmshr/timeflow/pkg/logx"
	"github.com/vnykmshr/timeflow/pkg/metrics"
	"github.com/vnykmshr/timeflow/pkg/scheduling/when"
)

// IntervalState is the lifecycle state of an Interval.
type IntervalState int

const (
	// IntervalPendingStart means the first run is waiting for its start time.
	IntervalPendingStart IntervalState = iota
	// IntervalRunning means the repeating timer is armed.
	IntervalRunning
	// IntervalStopped means no further runs will happen.
	IntervalStopped
)

func (s IntervalState) String() string {
	switch s {
	case IntervalPendingStart:
		return "pending_start"
	case IntervalRunning:
		return "running"
	case IntervalStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Interval runs a callback at a fixed cadence, optionally from a later start.
type Interval struct {
	*controller
	callback func()
	interval time.Duration
	state    IntervalState
}

// StartInterval runs callback every interval.
//
// With a nil start, or one that resolves to zero or less, the callback runs
// once on the caller's goroutine before StartInterval returns, and the
// repeating timer is armed after that call completes. Otherwise the first run
// happens on the host when start resolves, followed by a tick every interval
// from that moment. Runs of one Interval never overlap.
func StartInterval(callback func(), interval time.Duration, start *when.Descriptor, opts ...Option) *Interval {
	if callback == nil {
		panic("deferred: nil callback")
	}

	i := &Interval{
		controller: newController(metrics.ControllerInterval, opts),
		callback:   callback,
		interval:   interval,
	}

	var delay time.Duration
	if start != nil {
		delay = i.delay(*start)
	}

	if delay <= 0 {
		i.mu.Lock()
		i.state = IntervalRunning
		i.mu.Unlock()

		i.log.Debug("interval started", logx.Duration("interval", interval))
		i.runFirst()
		return i
	}

	i.mu.Lock()
	i.state = IntervalPendingStart
	i.timers.armStart(delay, i.onStart)
	if i.timers.start == 0 {
		i.refused("start")
		i.mu.Unlock()
		return i
	}
	i.mu.Unlock()

	i.log.Debug("interval pending start", logx.Duration("interval", interval), logx.Duration("delay", delay))
	return i
}

// runFirst makes the synchronous first run. A panic leaves the interval
// stopped, since the caller never receives a handle to stop it with.
func (i *Interval) runFirst() {
	returned := false
	defer func() {
		if !returned {
			i.mu.Lock()
			i.state = IntervalStopped
			i.mu.Unlock()
		}
	}()

	i.callback()
	returned = true

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state == IntervalRunning {
		i.armRepeat()
	}
}

// armRepeat must be called with i.mu held.
func (i *Interval) armRepeat() {
	i.timers.armRepeat(i.interval, i.tick)
	if i.timers.repeat == 0 {
		i.refused("repeat")
	}
}

// refused must be called with i.mu held.
func (i *Interval) refused(timer string) {
	i.state = IntervalStopped
	i.log.Warn("host refused timer, interval stopped", logx.String("timer", timer))
}

// onStart runs on the host, which serializes it with the ticks it arms.
func (i *Interval) onStart() {
	i.mu.Lock()
	if i.state != IntervalPendingStart {
		i.mu.Unlock()
		return
	}
	i.timers.start = 0
	i.state = IntervalRunning
	i.armRepeat()
	i.mu.Unlock()

	i.log.Debug("interval started", logx.Duration("interval", i.interval))
	i.callback()
}

func (i *Interval) tick() {
	i.mu.Lock()
	running := i.state == IntervalRunning
	i.mu.Unlock()

	if running {
		i.callback()
	}
}

// Stop cancels the pending start or the repeating timer, whichever is armed.
// Stopping an already stopped interval does nothing.
func (i *Interval) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state == IntervalStopped {
		return
	}
	i.timers.cancelAll()
	i.state = IntervalStopped

	if i.metrics != nil {
		i.metrics.ImmediateStops.WithLabelValues(i.kind, i.name).Inc()
	}
	i.log.Debug("interval stopped")
}

// StopAt schedules Stop for when at resolves and returns a handle that can
// abort it.
func (i *Interval) StopAt(at when.Descriptor) *DeferredStop {
	return i.stopAt(at, i.Stop)
}

// State returns the current lifecycle state.
func (i *Interval) State() IntervalState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}
