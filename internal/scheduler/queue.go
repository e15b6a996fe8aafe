// Package scheduler provides the deferred-callback primitive the simulation
// uses instead of wall-clock timers. A Queue owns a virtual clock that only
// moves when Advance is called, so every callback runs on the goroutine that
// drives the simulation.
package scheduler

import (
	"container/heap"
	"time"
)

// Handle identifies a scheduled callback. The zero Handle is never issued.
type Handle uint64

// Scheduler is the timer capability consumed by effects, modules and targets.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Handle
	Every(interval time.Duration, fn func()) Handle
	Cancel(h Handle) bool
	Now() time.Time
}

type timer struct {
	handle   Handle
	deadline time.Time
	seq      uint64
	interval time.Duration
	fn       func()
	index    int
}

// Queue is a single-threaded timer queue. It is not safe for concurrent use.
type Queue struct {
	now     time.Time
	nextID  Handle
	seq     uint64
	pending timerHeap
	byID    map[Handle]*timer
	fired   uint64
}

// NewQueue creates a queue whose virtual clock starts at start.
func NewQueue(start time.Time) *Queue {
	return &Queue{now: start, byID: make(map[Handle]*timer)}
}

// Now returns the virtual time. Inside a callback it equals the callback's deadline.
func (q *Queue) Now() time.Time {
	if q == nil {
		return time.Time{}
	}
	return q.now
}

// Schedule runs fn once after delay. Non-positive delays fire on the next Advance.
func (q *Queue) Schedule(delay time.Duration, fn func()) Handle {
	return q.add(delay, 0, fn)
}

// Every runs fn every interval until the handle is cancelled.
func (q *Queue) Every(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		return 0
	}
	return q.add(interval, interval, fn)
}

func (q *Queue) add(delay, interval time.Duration, fn func()) Handle {
	if q == nil || fn == nil {
		return 0
	}
	if delay < 0 {
		delay = 0
	}
	q.nextID++
	q.seq++
	t := &timer{handle: q.nextID, deadline: q.now.Add(delay), seq: q.seq, interval: interval, fn: fn}
	heap.Push(&q.pending, t)
	q.byID[t.handle] = t
	return t.handle
}

// Cancel removes a pending callback. It reports false for unknown, fired or
// already cancelled handles.
func (q *Queue) Cancel(h Handle) bool {
	if q == nil {
		return false
	}
	t, ok := q.byID[h]
	if !ok {
		return false
	}
	delete(q.byID, h)
	if t.index >= 0 {
		heap.Remove(&q.pending, t.index)
	}
	return true
}

// Pending reports how many callbacks are waiting.
func (q *Queue) Pending() int {
	if q == nil {
		return 0
	}
	return len(q.byID)
}

// Fired reports how many callbacks have executed since construction.
func (q *Queue) Fired() uint64 {
	if q == nil {
		return 0
	}
	return q.fired
}

// Advance moves the clock forward by dt and runs every callback whose deadline
// has been reached, in deadline order with ties broken by scheduling order.
// Callbacks may schedule or cancel other callbacks, including ones due within
// the same window. It returns the number of callbacks executed.
func (q *Queue) Advance(dt time.Duration) int {
	if q == nil {
		return 0
	}
	if dt < 0 {
		dt = 0
	}
	target := q.now.Add(dt)
	ran := 0
	for len(q.pending) > 0 {
		next := q.pending[0]
		if next.deadline.After(target) {
			break
		}
		heap.Pop(&q.pending)
		//1.- Expose the deadline as the current time while the callback runs.
		if next.deadline.After(q.now) {
			q.now = next.deadline
		}
		//2.- Re-arm repeating timers before running so the callback can cancel them.
		if next.interval > 0 {
			q.seq++
			next.seq = q.seq
			next.deadline = next.deadline.Add(next.interval)
			heap.Push(&q.pending, next)
		} else {
			delete(q.byID, next.handle)
		}
		next.fn()
		ran++
		q.fired++
	}
	q.now = target
	return ran
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline.Equal(h[j].deadline) {
		return h[i].seq < h[j].seq
	}
	return h[i].deadline.Before(h[j].deadline)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
