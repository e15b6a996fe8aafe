package httpapi

import (
	"sync"
	"time"
)

// SlidingWindowLimiter admits at most limit events in any window-long span.
// Accepted timestamps live in a fixed ring so Allow never allocates.
type SlidingWindowLimiter struct {
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	ring  []time.Time
	head  int
	count int
}

// NewSlidingWindowLimiter constructs a limiter. A non-positive window or limit
// disables limiting.
func NewSlidingWindowLimiter(window time.Duration, limit int, timeSource func() time.Time) *SlidingWindowLimiter {
	if timeSource == nil {
		timeSource = time.Now
	}
	l := &SlidingWindowLimiter{window: window, now: timeSource}
	if window > 0 && limit > 0 {
		l.ring = make([]time.Time, limit)
	}
	return l
}

// Allow reports whether the caller may proceed and records the attempt if so.
func (l *SlidingWindowLimiter) Allow() bool {
	if l == nil || len(l.ring) == 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.expireLocked(now)
	if l.count == len(l.ring) {
		return false
	}
	l.ring[(l.head+l.count)%len(l.ring)] = now
	l.count++
	return true
}

// RetryAfter reports how long until the oldest admitted event leaves the window.
func (l *SlidingWindowLimiter) RetryAfter() time.Duration {
	if l == nil || len(l.ring) == 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.expireLocked(now)
	if l.count < len(l.ring) {
		return 0
	}
	return l.ring[l.head].Add(l.window).Sub(now)
}

func (l *SlidingWindowLimiter) expireLocked(now time.Time) {
	cutoff := now.Add(-l.window)
	for l.count > 0 && !l.ring[l.head].After(cutoff) {
		l.head = (l.head + 1) % len(l.ring)
		l.count--
	}
}
