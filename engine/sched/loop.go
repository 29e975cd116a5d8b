// Package sched runs timers and posted callbacks on a single logical thread.
//
// Everything the engine schedules (render ticks, simulation steps, load
// completions) executes from RunPending, so engine state needs no locks.
// Post is the only entry point that may be called from other goroutines.
package sched

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// maxCatchUp bounds how many overdue runs a periodic task gets per
// RunPending before it is rescheduled from now.
const maxCatchUp = 10

type Loop struct {
	clock Clock

	mu     sync.Mutex
	posted []func()
	wake   chan struct{}

	tasks taskHeap
	seq   uint64
	pass  uint64
}

// Task is a handle to scheduled work. Stop cancels it.
type Task struct {
	fn       func()
	delay    time.Duration
	interval time.Duration // zero for one-shot tasks
	next     time.Time
	seq      uint64
	stopped  bool
	armed    bool

	pass  uint64
	burst int
}

func New(clock Clock) *Loop {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Loop{clock: clock, wake: make(chan struct{}, 1)}
}

func (l *Loop) Now() time.Time { return l.clock.Now() }

// Post queues fn to run on the loop thread during the next RunPending.
// Safe for concurrent use.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Wake fires whenever Post adds work.
func (l *Loop) Wake() <-chan struct{} { return l.wake }

// Every runs fn every interval, first at now+interval.
func (l *Loop) Every(interval time.Duration, fn func()) *Task {
	if interval <= 0 {
		panic("sched: non-positive interval for Every")
	}
	return l.schedule(interval, interval, fn)
}

// After runs fn once, d from now.
func (l *Loop) After(d time.Duration, fn func()) *Task {
	if d < 0 {
		d = 0
	}
	return l.schedule(d, 0, fn)
}

func (l *Loop) schedule(delay, interval time.Duration, fn func()) *Task {
	t := &Task{fn: fn, delay: delay, interval: interval}
	l.Arm(t)
	return t
}

// Hold returns a task like Every (interval > 0) or After (interval == 0)
// that does not run until Arm is called. Its first run is delay after
// arming.
func (l *Loop) Hold(delay, interval time.Duration, fn func()) *Task {
	if interval < 0 {
		panic("sched: negative interval for Hold")
	}
	return &Task{fn: fn, delay: max(delay, 0), interval: interval}
}

// Arm schedules a held task. Arming a stopped or already armed task does
// nothing.
func (l *Loop) Arm(t *Task) {
	if t == nil || t.stopped || t.armed {
		return
	}
	l.seq++
	t.armed = true
	t.seq = l.seq
	t.next = l.clock.Now().Add(t.delay)
	heap.Push(&l.tasks, t)
}

// Stop cancels the task. A run already in progress completes; no further
// run starts. Stopping twice is a no-op.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.stopped = true
}

// Active reports whether the task can still run. A held task that has not
// been armed is active.
func (t *Task) Active() bool { return t != nil && !t.stopped }

// Armed reports whether the task has been scheduled on its loop.
func (t *Task) Armed() bool { return t != nil && t.armed }

// Interval is zero for one-shot tasks.
func (t *Task) Interval() time.Duration { return t.interval }

// RunPending runs posted callbacks, then every task due at the current
// time in deadline order. It returns the number of callbacks and task runs
// executed.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()

	n := 0
	for _, fn := range posted {
		fn()
		n++
	}

	now := l.clock.Now()
	l.pass++
	for l.tasks.Len() > 0 {
		t := l.tasks[0]
		if t.stopped {
			heap.Pop(&l.tasks)
			continue
		}
		if t.next.After(now) {
			break
		}
		heap.Pop(&l.tasks)

		if t.pass != l.pass {
			t.pass = l.pass
			t.burst = 0
		}
		t.burst++
		t.fn()
		n++

		if t.interval == 0 {
			t.stopped = true
			continue
		}
		if t.stopped {
			continue
		}
		t.next = t.next.Add(t.interval)
		if t.burst >= maxCatchUp && !t.next.After(now) {
			t.next = now.Add(t.interval)
		}
		heap.Push(&l.tasks, t)
	}
	return n
}

// Next returns the deadline of the earliest live task.
func (l *Loop) Next() (time.Time, bool) {
	for l.tasks.Len() > 0 {
		t := l.tasks[0]
		if !t.stopped {
			return t.next, true
		}
		heap.Pop(&l.tasks)
	}
	return time.Time{}, false
}

// Len returns the number of live tasks.
func (l *Loop) Len() int {
	n := 0
	for _, t := range l.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Run drives the loop with real timers until ctx is done. Hosts that own
// their own event pump call RunPending instead.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()

		var timer *time.Timer
		var fire <-chan time.Time
		if next, ok := l.Next(); ok {
			d := next.Sub(l.clock.Now())
			if d < 0 {
				d = 0
			}
			timer = time.NewTimer(d)
			fire = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-l.wake:
		case <-fire:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].next.Equal(h[j].next) {
		return h[i].seq < h[j].seq
	}
	return h[i].next.Before(h[j].next)
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) { *h = append(*h, x.(*Task)) }

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
