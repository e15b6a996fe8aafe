// Package registry tracks transient entities (shells, projectiles, particle
// bursts, blood drops) and guarantees each one is disposed exactly once, by
// lifetime expiry, capacity eviction, early disposal or shutdown.
package registry

import (
	"container/list"
	"time"

	"shootingrange/rangesim/internal/invariant"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/scheduler"
)

// Handle is the stable identity of a registered entity. The zero Handle is never issued.
type Handle uint64

// Reason explains why an entity was disposed.
type Reason int

const (
	ReasonExpired Reason = iota + 1
	ReasonEvicted
	ReasonEarly
	ReasonShutdown
)

func (r Reason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonEvicted:
		return "evicted"
	case ReasonEarly:
		return "early"
	case ReasonShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// DisposeFunc releases everything an entity owns.
type DisposeFunc[T any] func(entity T, reason Reason)

// Options configure a registry.
type Options struct {
	// Name labels log entries and metrics.
	Name string
	// MaxLive caps live entities; zero or negative disables the cap.
	MaxLive int
	Logger  *logging.Logger
}

// Stats counts lifecycle transitions since construction.
type Stats struct {
	Live     int
	Spawned  uint64
	Expired  uint64
	Evicted  uint64
	Early    uint64
	Shutdown uint64
}

type entry[T any] struct {
	handle  Handle
	entity  T
	spawned time.Time
	timer   scheduler.Handle
	order   *list.Element
}

// Registry is a single-threaded container; it must only be used from the
// goroutine that drives its scheduler.
type Registry[T any] struct {
	name    string
	max     int
	sched   scheduler.Scheduler
	dispose DisposeFunc[T]
	log     *logging.Logger

	next    Handle
	entries map[Handle]*entry[T]
	order   *list.List
	stats   Stats
}

// New creates a registry whose timers run on sched.
func New[T any](sched scheduler.Scheduler, opts Options, dispose DisposeFunc[T]) *Registry[T] {
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	return &Registry[T]{
		name:    opts.Name,
		max:     opts.MaxLive,
		sched:   sched,
		dispose: dispose,
		log:     logger.With(logging.String("registry", opts.Name)),
		entries: make(map[Handle]*entry[T]),
		order:   list.New(),
	}
}

// Spawn registers entity for disposal after ttl (ttl <= 0 means no expiry).
// When the registry is at capacity the oldest entities are disposed first.
func (r *Registry[T]) Spawn(entity T, ttl time.Duration) Handle {
	if r == nil {
		return 0
	}
	//1.- Make room before registering so the live count never exceeds the cap.
	for r.max > 0 && r.order.Len() >= r.max {
		oldest := r.order.Front().Value.(Handle)
		r.log.Debug("evicting oldest entity", logging.Uint64("handle", uint64(oldest)), logging.Int("live", r.order.Len()))
		r.remove(oldest, ReasonEvicted)
	}

	//2.- Register in insertion order and arm the lifetime timer.
	r.next++
	h := r.next
	e := &entry[T]{handle: h, entity: entity}
	if r.sched != nil {
		e.spawned = r.sched.Now()
	}
	e.order = r.order.PushBack(h)
	r.entries[h] = e
	r.stats.Spawned++
	if ttl > 0 && r.sched != nil {
		e.timer = r.sched.Schedule(ttl, func() { r.expire(h) })
	}
	return h
}

func (r *Registry[T]) expire(h Handle) {
	//1.- The timer is cancelled on every other path, so a missing entry is a bug.
	if !invariant.Check(r.entries[h] != nil, "expiry fired for disposed entity", logging.String("registry", r.name)) {
		return
	}
	r.entries[h].timer = 0
	r.remove(h, ReasonExpired)
}

// DisposeNow disposes h ahead of schedule and cancels its lifetime timer. It
// reports false when h is not live.
func (r *Registry[T]) DisposeNow(h Handle) bool {
	if r == nil {
		return false
	}
	if _, ok := r.entries[h]; !ok {
		return false
	}
	r.remove(h, ReasonEarly)
	return true
}

// DisposeAll disposes every live entity oldest first.
func (r *Registry[T]) DisposeAll() {
	if r == nil {
		return
	}
	for r.order.Len() > 0 {
		r.remove(r.order.Front().Value.(Handle), ReasonShutdown)
	}
}

// remove unlinks before invoking the dispose callback so the callback may
// re-enter the registry.
func (r *Registry[T]) remove(h Handle, reason Reason) {
	e, ok := r.entries[h]
	if !ok {
		return
	}
	delete(r.entries, h)
	r.order.Remove(e.order)
	if e.timer != 0 {
		r.sched.Cancel(e.timer)
		e.timer = 0
	}
	switch reason {
	case ReasonExpired:
		r.stats.Expired++
	case ReasonEvicted:
		r.stats.Evicted++
	case ReasonEarly:
		r.stats.Early++
	case ReasonShutdown:
		r.stats.Shutdown++
	}
	if r.dispose != nil {
		r.dispose(e.entity, reason)
	}
}

// Get returns the entity registered under h.
func (r *Registry[T]) Get(h Handle) (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	e, ok := r.entries[h]
	if !ok {
		return zero, false
	}
	return e.entity, true
}

// Contains reports whether h is live.
func (r *Registry[T]) Contains(h Handle) bool {
	if r == nil {
		return false
	}
	_, ok := r.entries[h]
	return ok
}

// Age returns how long h has been live.
func (r *Registry[T]) Age(h Handle) (time.Duration, bool) {
	if r == nil || r.sched == nil {
		return 0, false
	}
	e, ok := r.entries[h]
	if !ok {
		return 0, false
	}
	return r.sched.Now().Sub(e.spawned), true
}

// Len reports the live count.
func (r *Registry[T]) Len() int {
	if r == nil {
		return 0
	}
	return r.order.Len()
}

// Handles returns live handles in insertion order.
func (r *Registry[T]) Handles() []Handle {
	if r == nil {
		return nil
	}
	out := make([]Handle, 0, r.order.Len())
	for el := r.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(Handle))
	}
	return out
}

// Stats returns lifecycle counters.
func (r *Registry[T]) Stats() Stats {
	if r == nil {
		return Stats{}
	}
	stats := r.stats
	stats.Live = r.order.Len()
	return stats
}
