package hosttimer

import (
	"context"
	"errors"
	"sync"
	"time"

	tferrors "github.com/vnykmshr/timeflow/pkg/common/errors"
	"github.com/vnykmshr/timeflow/pkg/common/validation"
	"github.com/vnykmshr/timeflow/pkg/logx"
	"github.com/vnykmshr/timeflow/pkg/metrics"
	"github.com/vnykmshr/timeflow/pkg/scheduling/workerpool"
)

// Config holds runtime host configuration.
type Config struct {
	// Name labels metrics and log lines (default: "default").
	Name string

	// QueueSize is the number of fired callbacks that may wait for the
	// dispatcher (default: 256).
	QueueSize int

	// MinInterval is the floor applied to repeating intervals (default: 1ms).
	MinInterval time.Duration

	// Clock supplies Now (default: SystemClock).
	Clock Clock

	// Location, when set, is applied to every Now result. Time-of-day
	// descriptors are resolved in this location.
	Location *time.Location

	// Logger receives arm/cancel debug lines and callback panics.
	Logger logx.Logger

	// Metrics controls Prometheus instrumentation. Disabled by default.
	Metrics metrics.Config
}

type timerEntry struct {
	kind   string
	fn     func()
	ctx    context.Context
	cancel context.CancelFunc

	timer *time.Timer   // once
	stop  chan struct{} // repeating
}

// Runtime is a Host backed by Go timers. Fired callbacks are dispatched through
// a single-worker pool, so callbacks never run concurrently with each other.
type Runtime struct {
	name        string
	clock       Clock
	location    *time.Location
	minInterval time.Duration
	log         logx.Logger
	metrics     *metrics.Registry
	pool        workerpool.Pool

	mu     sync.Mutex
	next   Handle
	timers map[Handle]*timerEntry
	closed bool
	done   chan struct{}

	tickers sync.WaitGroup
}

var _ Host = (*Runtime)(nil)

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// Default returns the process-wide runtime host, creating it on first use.
func Default() *Runtime {
	defaultOnce.Do(func() {
		rt, err := NewRuntime(Config{})
		if err != nil {
			panic(err)
		}
		defaultRuntime = rt
	})
	return defaultRuntime
}

// NewRuntime creates a runtime host with the given configuration.
func NewRuntime(cfg Config) (*Runtime, error) {
	if err := validation.ValidateNonNegative("hosttimer", "queue_size", cfg.QueueSize); err != nil {
		return nil, err
	}
	if err := validation.ValidateNonNegativeDuration("hosttimer", "min_interval", cfg.MinInterval); err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		name = "default"
	}

	queueSize := cfg.QueueSize
	if queueSize == 0 {
		queueSize = 256
	}

	minInterval := cfg.MinInterval
	if minInterval == 0 {
		minInterval = time.Millisecond
	}

	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	r := &Runtime{
		name:        name,
		clock:       clock,
		location:    cfg.Location,
		minInterval: minInterval,
		log:         cfg.Logger.With(logx.String("host", name)),
		metrics:     cfg.Metrics.Build(),
		timers:      make(map[Handle]*timerEntry),
		done:        make(chan struct{}),
	}

	r.pool = workerpool.NewWithConfig(workerpool.Config{
		WorkerCount:    1,
		QueueSize:      queueSize,
		OnTaskComplete: r.onCallbackComplete,
	})

	return r, nil
}

// Now implements Host.
func (r *Runtime) Now() time.Time {
	now := r.clock.Now()
	if r.location != nil {
		now = now.In(r.location)
	}
	return now
}

// ScheduleOnce implements Host.
func (r *Runtime) ScheduleOnce(delay time.Duration, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, h, ok := r.register(metrics.KindOnce, fn)
	if !ok {
		return 0
	}
	e.timer = time.AfterFunc(delay, func() { r.dispatch(h, e) })

	r.log.Debug("timer armed", logx.Uint64("handle", uint64(h)), logx.Duration("delay", delay))
	return h
}

// ScheduleRepeating implements Host.
func (r *Runtime) ScheduleRepeating(interval time.Duration, fn func()) Handle {
	if interval < r.minInterval {
		interval = r.minInterval
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, h, ok := r.register(metrics.KindRepeating, fn)
	if !ok {
		return 0
	}
	e.stop = make(chan struct{})

	ticker := time.NewTicker(interval)
	r.tickers.Add(1)
	go func() {
		defer r.tickers.Done()
		defer ticker.Stop()
		for {
			select {
			case <-e.stop:
				return
			case <-ticker.C:
				r.dispatch(h, e)
			}
		}
	}()

	r.log.Debug("repeating timer armed", logx.Uint64("handle", uint64(h)), logx.Duration("interval", interval))
	return h
}

// CancelOnce implements Host.
func (r *Runtime) CancelOnce(h Handle) { r.cancel(h) }

// CancelRepeating implements Host.
func (r *Runtime) CancelRepeating(h Handle) { r.cancel(h) }

// Active returns the number of armed timers.
func (r *Runtime) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Close cancels every armed timer and stops the dispatcher once the callbacks
// already queued have run. Timers armed after Close get the zero Handle.
func (r *Runtime) Close() <-chan struct{} {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return r.done
	}
	r.closed = true
	entries := r.timers
	r.timers = make(map[Handle]*timerEntry)
	r.mu.Unlock()

	for _, e := range entries {
		r.release(e)
	}

	go func() {
		r.tickers.Wait()
		<-r.pool.Shutdown()
		close(r.done)
	}()

	r.log.Debug("host closed", logx.Int("canceled", len(entries)))
	return r.done
}

// register must be called with r.mu held.
func (r *Runtime) register(kind string, fn func()) (*timerEntry, Handle, bool) {
	if r.closed {
		r.log.Warn("timer not armed", logx.String("kind", kind), logx.Err(tferrors.ErrClosed))
		return nil, 0, false
	}

	r.next++
	h := r.next
	ctx, cancel := context.WithCancel(context.Background())
	e := &timerEntry{kind: kind, fn: fn, ctx: ctx, cancel: cancel}
	r.timers[h] = e

	if r.metrics != nil {
		r.metrics.TimersArmed.WithLabelValues(r.name, kind).Inc()
		r.metrics.TimersActive.WithLabelValues(r.name, kind).Inc()
	}
	return e, h, true
}

func (r *Runtime) cancel(h Handle) {
	if h == 0 {
		return
	}

	r.mu.Lock()
	e, ok := r.timers[h]
	if ok {
		delete(r.timers, h)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	r.release(e)
	if r.metrics != nil {
		r.metrics.TimersCanceled.WithLabelValues(r.name, e.kind).Inc()
	}
	r.log.Debug("timer canceled", logx.Uint64("handle", uint64(h)), logx.String("kind", e.kind))
}

// release stops the Go timer behind an entry that is no longer in r.timers.
func (r *Runtime) release(e *timerEntry) {
	e.cancel()
	if e.timer != nil {
		e.timer.Stop()
	}
	if e.stop != nil {
		close(e.stop)
	}
	if r.metrics != nil {
		r.metrics.TimersActive.WithLabelValues(r.name, e.kind).Dec()
	}
}

// dispatch hands a fired timer to the dispatcher. The entry's context is
// canceled when the timer is, which unblocks a full queue.
func (r *Runtime) dispatch(h Handle, e *timerEntry) {
	if e.ctx.Err() != nil {
		return
	}
	err := r.pool.SubmitWithContext(e.ctx, workerpool.TaskFunc(func(context.Context) error {
		r.run(h)
		return nil
	}))
	if err != nil && !errors.Is(err, context.Canceled) {
		r.log.Warn("timer callback dropped", logx.Uint64("handle", uint64(h)), logx.Err(err))
	}
}

// run executes on the dispatcher. Liveness is re-checked here so a cancel that
// returned before this point always wins.
func (r *Runtime) run(h Handle) {
	r.mu.Lock()
	e, ok := r.timers[h]
	if ok && e.kind == metrics.KindOnce {
		delete(r.timers, h)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	if r.metrics != nil {
		r.metrics.TimersFired.WithLabelValues(r.name, e.kind).Inc()
		if e.kind == metrics.KindOnce {
			r.metrics.TimersActive.WithLabelValues(r.name, e.kind).Dec()
		}
		start := time.Now()
		defer func() {
			r.metrics.CallbackDuration.WithLabelValues(r.name).Observe(time.Since(start).Seconds())
		}()
	}

	if e.kind == metrics.KindOnce {
		e.cancel()
	}
	e.fn()
}

func (r *Runtime) onCallbackComplete(_ int, result workerpool.Result) {
	if !result.Panicked {
		return
	}
	if r.metrics != nil {
		r.metrics.CallbackPanics.WithLabelValues(r.name).Inc()
	}
	r.log.Error("timer callback panicked", logx.Err(result.Error), logx.Stack(string(result.Stack)))
}
