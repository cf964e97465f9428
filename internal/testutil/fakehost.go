package testutil

import (
	"container/heap"
	"sync"
	"time"

	"github.com/vnykmshr/timeflow/pkg/scheduling/hosttimer"
)

// FakeHost is a hosttimer.Host driven by a simulated clock. Timers only fire
// from Advance, synchronously on the calling goroutine, in deadline order and
// then in the order they were armed.
type FakeHost struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	queue   fakeQueue
	entries map[hosttimer.Handle]*fakeTimer
}

type fakeTimer struct {
	handle   hosttimer.Handle
	deadline time.Time
	order    uint64
	interval time.Duration
	fn       func()
	index    int
}

var _ hosttimer.Host = (*FakeHost)(nil)

// NewFakeHost returns a FakeHost whose clock starts at start.
// A zero start uses a fixed instant so tests stay deterministic.
func NewFakeHost(start time.Time) *FakeHost {
	if start.IsZero() {
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &FakeHost{
		now:     start,
		entries: make(map[hosttimer.Handle]*fakeTimer),
	}
}

// Now returns the simulated time.
func (f *FakeHost) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t without firing anything.
func (f *FakeHost) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// ScheduleOnce implements hosttimer.Host.
func (f *FakeHost) ScheduleOnce(delay time.Duration, fn func()) hosttimer.Handle {
	if delay < 0 {
		delay = 0
	}
	return f.arm(delay, 0, fn)
}

// ScheduleRepeating implements hosttimer.Host. Non-positive intervals are
// raised to one millisecond.
func (f *FakeHost) ScheduleRepeating(interval time.Duration, fn func()) hosttimer.Handle {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return f.arm(interval, interval, fn)
}

// CancelOnce implements hosttimer.Host.
func (f *FakeHost) CancelOnce(h hosttimer.Handle) { f.cancel(h) }

// CancelRepeating implements hosttimer.Host.
func (f *FakeHost) CancelRepeating(h hosttimer.Handle) { f.cancel(h) }

func (f *FakeHost) arm(delay, interval time.Duration, fn func()) hosttimer.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t := &fakeTimer{
		handle:   hosttimer.Handle(f.seq),
		deadline: f.now.Add(delay),
		order:    f.seq,
		interval: interval,
		fn:       fn,
	}
	f.entries[t.handle] = t
	heap.Push(&f.queue, t)
	return t.handle
}

func (f *FakeHost) cancel(h hosttimer.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.entries[h]
	if !ok {
		return
	}
	delete(f.entries, h)
	heap.Remove(&f.queue, t.index)
}

// Advance moves the clock forward by d, firing every timer whose deadline
// falls within the window. Callback panics propagate to the caller.
func (f *FakeHost) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		fn, ok := f.next(target)
		if !ok {
			break
		}
		fn()
	}

	f.mu.Lock()
	if target.After(f.now) {
		f.now = target
	}
	f.mu.Unlock()
}

// next pops the earliest timer due at or before target and reschedules it
// when it repeats.
func (f *FakeHost) next(target time.Time) (func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 || f.queue[0].deadline.After(target) {
		return nil, false
	}
	t := heap.Pop(&f.queue).(*fakeTimer)
	f.now = t.deadline
	if t.interval > 0 {
		f.seq++
		t.deadline = t.deadline.Add(t.interval)
		t.order = f.seq
		heap.Push(&f.queue, t)
	} else {
		delete(f.entries, t.handle)
	}
	return t.fn, true
}

// Pending returns the number of armed timers.
func (f *FakeHost) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

type fakeQueue []*fakeTimer

func (q fakeQueue) Len() int { return len(q) }

func (q fakeQueue) Less(i, j int) bool {
	if q[i].deadline.Equal(q[j].deadline) {
		return q[i].order < q[j].order
	}
	return q[i].deadline.Before(q[j].deadline)
}

func (q fakeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *fakeQueue) Push(x any) {
	t := x.(*fakeTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *fakeQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
