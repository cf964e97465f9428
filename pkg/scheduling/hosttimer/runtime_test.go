package hosttimer_test

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vnykmshr/timeflow/internal/testutil"
	tferrors "github.com/vnykmshr/timeflow/pkg/common/errors"
	"github.com/vnykmshr/timeflow/pkg/metrics"
	"github.com/vnykmshr/timeflow/pkg/scheduling/hosttimer"
)

func newRuntime(t *testing.T, cfg hosttimer.Config) *hosttimer.Runtime {
	t.Helper()
	rt, err := hosttimer.NewRuntime(cfg)
	testutil.AssertNoError(t, err)
	t.Cleanup(func() {
		select {
		case <-rt.Close():
		case <-time.After(testutil.TestTimeout):
			t.Error("runtime host did not close")
		}
	})
	return rt
}

func TestRuntime_ScheduleOnce(t *testing.T) {
	rt := newRuntime(t, hosttimer.Config{})

	var fired int32
	start := time.Now()
	h := rt.ScheduleOnce(20*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	testutil.AssertNotEqual(t, h, hosttimer.Handle(0))
	testutil.AssertEqual(t, rt.Active(), 1)

	testutil.WaitForInt32(t, &fired, 1, time.Second)
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("fired after %v, want >= 20ms", elapsed)
	}
	testutil.AssertEventually(t, func() bool { return rt.Active() == 0 })

	// Canceling a fired timer is a no-op.
	rt.CancelOnce(h)
	time.Sleep(20 * time.Millisecond)
	testutil.AssertEqual(t, atomic.LoadInt32(&fired), int32(1))
}

func TestRuntime_NegativeDelayFires(t *testing.T) {
	rt := newRuntime(t, hosttimer.Config{})

	var fired int32
	rt.ScheduleOnce(-time.Hour, func() { atomic.AddInt32(&fired, 1) })
	testutil.WaitForInt32(t, &fired, 1, time.Second)
}

func TestRuntime_CancelOnce(t *testing.T) {
	rt := newRuntime(t, hosttimer.Config{})
	tracker := testutil.NewCallbackTracker()

	h := rt.ScheduleOnce(30*time.Millisecond, tracker.Func())
	rt.CancelOnce(h)
	rt.CancelOnce(h)
	rt.CancelOnce(0)

	time.Sleep(60 * time.Millisecond)
	tracker.AssertNotCalled(t)
	testutil.AssertEqual(t, rt.Active(), 0)
}

func TestRuntime_ScheduleRepeating(t *testing.T) {
	rt := newRuntime(t, hosttimer.Config{})

	var ticks int32
	h := rt.ScheduleRepeating(5*time.Millisecond, func() { atomic.AddInt32(&ticks, 1) })
	testutil.AssertEventually(t, func() bool { return atomic.LoadInt32(&ticks) >= 3 })

	rt.CancelRepeating(h)
	rt.CancelRepeating(h)
	stopped := atomic.LoadInt32(&ticks)
	time.Sleep(30 * time.Millisecond)
	testutil.AssertEqual(t, atomic.LoadInt32(&ticks), stopped)
	testutil.AssertEqual(t, rt.Active(), 0)
}

func TestRuntime_MinIntervalClamp(t *testing.T) {
	rt := newRuntime(t, hosttimer.Config{MinInterval: 20 * time.Millisecond})

	var ticks int32
	h := rt.ScheduleRepeating(0, func() { atomic.AddInt32(&ticks, 1) })
	time.Sleep(50 * time.Millisecond)
	rt.CancelRepeating(h)

	if n := atomic.LoadInt32(&ticks); n > 3 {
		t.Errorf("got %d ticks in 50ms with a 20ms floor", n)
	}
}

func TestRuntime_CallbacksAreSerialized(t *testing.T) {
	rt := newRuntime(t, hosttimer.Config{})

	var running, overlap, done int32
	for i := 0; i < 10; i++ {
		rt.ScheduleOnce(0, func() {
			if atomic.AddInt32(&running, 1) > 1 {
				atomic.StoreInt32(&overlap, 1)
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&running, -1)
			atomic.AddInt32(&done, 1)
		})
	}

	testutil.WaitForInt32(t, &done, 10, time.Second)
	testutil.AssertEqual(t, atomic.LoadInt32(&overlap), int32(0))
}

func TestRuntime_CancelWinsOverQueuedCallback(t *testing.T) {
	rt := newRuntime(t, hosttimer.Config{})

	running := make(chan struct{})
	release := make(chan struct{})
	rt.ScheduleOnce(0, func() {
		close(running)
		<-release
	})
	<-running

	tracker := testutil.NewCallbackTracker()
	h := rt.ScheduleOnce(0, tracker.Func())
	time.Sleep(10 * time.Millisecond) // fired and queued behind the blocker
	rt.CancelOnce(h)
	close(release)

	time.Sleep(20 * time.Millisecond)
	tracker.AssertNotCalled(t)
}

func TestRuntime_PanicIsRecovered(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt := newRuntime(t, hosttimer.Config{
		Name:    "panicky",
		Metrics: metrics.Config{Enabled: true, Registry: reg},
	})

	rt.ScheduleOnce(0, func() { panic("boom") })

	var after int32
	rt.ScheduleOnce(5*time.Millisecond, func() { atomic.AddInt32(&after, 1) })
	testutil.WaitForInt32(t, &after, 1, time.Second)

	expected := `
# HELP timeflow_hosttimer_callback_panics_total Total number of timer callbacks that panicked
# TYPE timeflow_hosttimer_callback_panics_total counter
timeflow_hosttimer_callback_panics_total{host="panicky"} 1
`
	testutil.AssertEventually(t, func() bool {
		return promtest.GatherAndCompare(reg, strings.NewReader(expected), "timeflow_hosttimer_callback_panics_total") == nil
	})
	testutil.AssertEqual(t, rt.Active(), 0)
}

func TestRuntime_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt := newRuntime(t, hosttimer.Config{
		Name:    "counted",
		Metrics: metrics.Config{Enabled: true, Registry: reg},
	})

	var fired int32
	rt.ScheduleOnce(0, func() { atomic.AddInt32(&fired, 1) })
	canceled := rt.ScheduleOnce(time.Hour, func() {})
	rt.CancelOnce(canceled)
	rt.ScheduleRepeating(time.Hour, func() {})
	testutil.WaitForInt32(t, &fired, 1, time.Second)

	expected := `
# HELP timeflow_hosttimer_timers_armed_total Total number of host timers armed
# TYPE timeflow_hosttimer_timers_armed_total counter
timeflow_hosttimer_timers_armed_total{host="counted",kind="once"} 2
timeflow_hosttimer_timers_armed_total{host="counted",kind="repeating"} 1
# HELP timeflow_hosttimer_timers_canceled_total Total number of live host timers canceled
# TYPE timeflow_hosttimer_timers_canceled_total counter
timeflow_hosttimer_timers_canceled_total{host="counted",kind="once"} 1
# HELP timeflow_hosttimer_timers_active Number of host timers currently armed
# TYPE timeflow_hosttimer_timers_active gauge
timeflow_hosttimer_timers_active{host="counted",kind="once"} 0
timeflow_hosttimer_timers_active{host="counted",kind="repeating"} 1
`
	testutil.AssertEventually(t, func() bool {
		return promtest.GatherAndCompare(reg, strings.NewReader(expected),
			"timeflow_hosttimer_timers_armed_total",
			"timeflow_hosttimer_timers_canceled_total",
			"timeflow_hosttimer_timers_active",
		) == nil
	})
}

func TestRuntime_Close(t *testing.T) {
	rt, err := hosttimer.NewRuntime(hosttimer.Config{})
	testutil.AssertNoError(t, err)

	tracker := testutil.NewCallbackTracker()
	rt.ScheduleOnce(200*time.Millisecond, tracker.Func())
	rt.ScheduleRepeating(200*time.Millisecond, tracker.Func())

	done := rt.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not finish")
	}
	testutil.AssertEqual(t, rt.Active(), 0)

	// Close is idempotent and the host refuses new timers.
	<-rt.Close()
	testutil.AssertEqual(t, rt.ScheduleOnce(0, tracker.Func()), hosttimer.Handle(0))
	testutil.AssertEqual(t, rt.ScheduleRepeating(time.Millisecond, tracker.Func()), hosttimer.Handle(0))

	time.Sleep(250 * time.Millisecond)
	tracker.AssertNotCalled(t)
}

func TestRuntime_ClockAndLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	testutil.AssertNoError(t, err)

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rt := newRuntime(t, hosttimer.Config{
		Clock:    hosttimer.ClockFunc(func() time.Time { return fixed }),
		Location: tokyo,
	})

	now := rt.Now()
	testutil.AssertEqual(t, now.Location(), tokyo)
	testutil.AssertEqual(t, now.Hour(), 21)
	if !now.Equal(fixed) {
		t.Errorf("Now() = %v, want %v", now, fixed)
	}
}

func TestNewRuntime_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  hosttimer.Config
	}{
		{"negative queue", hosttimer.Config{QueueSize: -1}},
		{"negative min interval", hosttimer.Config{MinInterval: -time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := hosttimer.NewRuntime(tt.cfg)
			testutil.AssertError(t, err)
			if rt != nil {
				t.Fatal("expected nil runtime on error")
			}
			if !tferrors.IsValidationError(err) {
				t.Errorf("expected ValidationError, got %T", err)
			}
			if !errors.Is(err, tferrors.ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration in chain: %v", err)
			}
		})
	}
}
