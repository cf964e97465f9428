package deferred

import (
	"sync"
	"time"

	"github.com/vnykmshr/timeflow/pkg/logx"
	"github.com/vnykmshr/timeflow/pkg/metrics"
	"github.com/vnykmshr/timeflow/pkg/scheduling/hosttimer"
	"github.com/vnykmshr/timeflow/pkg/scheduling/when"
)

// timerSet holds the host timers owned by one controller. A zero handle is
// an empty slot. Callers hold controller.mu.
type timerSet struct {
	host   hosttimer.Host
	start  hosttimer.Handle
	repeat hosttimer.Handle
}

func (s *timerSet) armStart(delay time.Duration, fn func()) {
	s.start = s.host.ScheduleOnce(delay, fn)
}

func (s *timerSet) armRepeat(interval time.Duration, fn func()) {
	s.repeat = s.host.ScheduleRepeating(interval, fn)
}

// cancelAll cancels whichever timers are armed and reports whether any were.
func (s *timerSet) cancelAll() bool {
	armed := s.start != 0 || s.repeat != 0
	s.host.CancelOnce(s.start)
	s.host.CancelRepeating(s.repeat)
	s.start, s.repeat = 0, 0
	return armed
}

// controller is the state shared by Timeout and Interval. The user callback is
// never invoked while mu is held.
type controller struct {
	kind     string
	name     string
	host     hosttimer.Host
	resolver when.Resolver
	log      logx.Logger
	metrics  *metrics.Registry

	mu     sync.Mutex
	timers timerSet
}

func newController(kind string, opts []Option) *controller {
	o := buildOptions(opts)
	c := &controller{
		kind:     kind,
		name:     o.name,
		host:     o.host,
		resolver: when.Resolver{Clock: o.host},
		log:      o.log.With(logx.String("controller", kind), logx.String("name", o.name)),
		metrics:  o.metrics,
		timers:   timerSet{host: o.host},
	}
	if c.metrics != nil {
		c.metrics.ControllersStarted.WithLabelValues(kind, c.name).Inc()
	}
	return c
}

func (c *controller) delay(at when.Descriptor) time.Duration {
	return c.resolver.Duration(at)
}

// stopAt arms an independent host timer that calls stop after at resolves.
func (c *controller) stopAt(at when.Descriptor, stop func()) *DeferredStop {
	delay := c.delay(at)
	d := &DeferredStop{ctrl: c, stop: stop}

	d.mu.Lock()
	d.handle = c.host.ScheduleOnce(delay, d.fire)
	if d.handle == 0 {
		d.done = true
		d.mu.Unlock()
		c.log.Warn("host refused deferred stop timer")
		return d
	}
	d.mu.Unlock()

	if c.metrics != nil {
		c.metrics.DeferredStopsArmed.WithLabelValues(c.kind, c.name).Inc()
	}
	c.log.Debug("deferred stop scheduled", logx.Duration("delay", delay), logx.String("when", at.String()))
	return d
}

// DeferredStop is a stop scheduled for later. It may be aborted with Cancel
// until it fires.
type DeferredStop struct {
	ctrl *controller
	stop func()

	mu     sync.Mutex
	handle hosttimer.Handle
	done   bool
}

func (d *DeferredStop) fire() {
	d.mu.Lock()
	if d.done {
		d.mu.Unlock()
		return
	}
	d.done = true
	d.handle = 0
	d.mu.Unlock()

	c := d.ctrl
	if c.metrics != nil {
		c.metrics.DeferredStopsFired.WithLabelValues(c.kind, c.name).Inc()
	}
	c.log.Debug("deferred stop fired")
	d.stop()
}

// Cancel aborts the deferred stop. With stopRunning the controller is also
// stopped right away; without it the controller keeps running as if the
// deferred stop had never been scheduled. Calling Cancel again, or after the
// deferred stop fired, has no further effect beyond the optional stop, which
// is itself idempotent.
func (d *DeferredStop) Cancel(stopRunning bool) {
	d.mu.Lock()
	h := d.handle
	pending := !d.done
	d.done = true
	d.handle = 0
	d.mu.Unlock()

	c := d.ctrl
	c.host.CancelOnce(h)
	if pending {
		if c.metrics != nil {
			c.metrics.DeferredStopsAborted.WithLabelValues(c.kind, c.name).Inc()
		}
		c.log.Debug("deferred stop canceled", logx.Bool("stop_running", stopRunning))
	}

	if stopRunning {
		d.stop()
	}
}

// Pending reports whether the deferred stop is still waiting to fire.
func (d *DeferredStop) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.done
}
