package deferred

import (
	"github.com/vnykmshr/timeflow/pkg/logx"
	"github.com/vnykmshr/timeflow/pkg/metrics"
	"github.com/vnykmshr/timeflow/pkg/scheduling/when"
)

// TimeoutState is the lifecycle state of a Timeout.
type TimeoutState int

const (
	// TimeoutArmed means the callback is still scheduled.
	TimeoutArmed TimeoutState = iota
	// TimeoutFired means the callback ran.
	TimeoutFired
	// TimeoutCancelled means the timeout was stopped before it fired.
	TimeoutCancelled
)

func (s TimeoutState) String() string {
	switch s {
	case TimeoutArmed:
		return "armed"
	case TimeoutFired:
		return "fired"
	case TimeoutCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Timeout runs a callback once at a resolved point in time.
type Timeout struct {
	*controller
	callback func()
	state    TimeoutState
}

// StartTimeout arms callback to run once when at resolves. A delay that
// resolves to zero or less fires on the host's next turn. If the host refuses
// the timer, as a closed runtime host does, the timeout starts out cancelled.
func StartTimeout(callback func(), at when.Descriptor, opts ...Option) *Timeout {
	if callback == nil {
		panic("deferred: nil callback")
	}

	t := &Timeout{
		controller: newController(metrics.ControllerTimeout, opts),
		callback:   callback,
	}
	delay := t.delay(at)

	t.mu.Lock()
	t.timers.armStart(delay, t.fire)
	if t.timers.start == 0 {
		t.state = TimeoutCancelled
		t.mu.Unlock()
		t.log.Warn("host refused timer, timeout cancelled")
		return t
	}
	t.mu.Unlock()

	t.log.Debug("timeout started", logx.Duration("delay", delay))
	return t
}

func (t *Timeout) fire() {
	t.mu.Lock()
	if t.state != TimeoutArmed {
		t.mu.Unlock()
		return
	}
	t.state = TimeoutFired
	t.timers.start = 0
	t.mu.Unlock()

	t.log.Debug("timeout fired")
	t.callback()
}

// Stop cancels the timeout if it has not fired yet. Stopping a fired or
// already stopped timeout does nothing.
func (t *Timeout) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != TimeoutArmed {
		return
	}
	t.timers.cancelAll()
	t.state = TimeoutCancelled

	if t.metrics != nil {
		t.metrics.ImmediateStops.WithLabelValues(t.kind, t.name).Inc()
	}
	t.log.Debug("timeout stopped")
}

// StopAt schedules Stop for when at resolves and returns a handle that can
// abort it. Several deferred stops may be pending at once.
func (t *Timeout) StopAt(at when.Descriptor) *DeferredStop {
	return t.stopAt(at, t.Stop)
}

// State returns the current lifecycle state.
func (t *Timeout) State() TimeoutState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
