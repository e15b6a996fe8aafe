// Package targets owns the range targets: a fixed set of sprites that are
// hit-tested against projectile travel segments, hidden when hit and brought
// back at a new random position after a cooldown.
package targets

import (
	"math/rand"
	"time"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/scheduler"
)

const (
	// DefaultCount is the number of targets on the range.
	DefaultCount = 10
	// DefaultHitRadius is the distance from a target centre that counts as a hit.
	DefaultHitRadius = 1.0
	// DefaultRespawn is the cooldown between a hit and reactivation.
	DefaultRespawn = 3 * time.Second
	// Height is the y coordinate every target floats at.
	Height = 1.8
	// spriteSize is the rendered width and height of a target.
	spriteSize = 2.0
)

// Options configure a Manager.
type Options struct {
	Count     int
	HitRadius float64
	Respawn   time.Duration
	Logger    *logging.Logger
}

// Target is a snapshot of one target.
type Target struct {
	Index    int          `json:"index"`
	Position physics.Vec3 `json:"position"`
	Active   bool         `json:"active"`
	Hits     uint64       `json:"hits"`
}

// HitResult reports the outcome of a segment test. TargetIndex is -1 on a miss.
type HitResult struct {
	Hit         bool
	TargetIndex int
	Position    physics.Vec3
	// Along is the distance from the segment start to the closest approach.
	Along float64
	// Offset is the distance between the closest approach and the target centre.
	Offset float64
}

// Miss is the result of a segment that touched nothing.
var Miss = HitResult{TargetIndex: -1}

type target struct {
	Target
	body  host.BodyHandle
	timer scheduler.Handle
}

// Manager is single-threaded; it must run on the goroutine driving sched.
type Manager struct {
	bodies    host.Bodies
	sched     scheduler.Scheduler
	rng       *rand.Rand
	radius    float64
	respawn   time.Duration
	targets   []*target
	onRespawn []func(Target)
	log       *logging.Logger
}

// NewManager creates Count sprite targets at random positions.
func NewManager(bodies host.Bodies, sched scheduler.Scheduler, rng *rand.Rand, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	if opts.Count < 0 {
		opts.Count = 0
	}
	if !(opts.HitRadius > 0) {
		opts.HitRadius = DefaultHitRadius
	}
	if opts.Respawn <= 0 {
		opts.Respawn = DefaultRespawn
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	m := &Manager{
		bodies:  bodies,
		sched:   sched,
		rng:     rng,
		radius:  opts.HitRadius,
		respawn: opts.Respawn,
		log:     logger.With(logging.String("component", "targets")),
	}
	//1.- Targets are created once and reused for the lifetime of the range.
	for i := 0; i < opts.Count; i++ {
		t := &target{Target: Target{Index: i, Position: m.randomPosition(), Active: true}}
		if bodies != nil {
			t.body = bodies.CreateBody(host.ShapeSprite, host.Dimensions{Width: spriteSize, Height: spriteSize},
				host.BodyOptions{Name: "target"})
			bodies.SetTransform(t.body, host.Pose(t.Position, physics.Identity))
		}
		m.targets = append(m.targets, t)
	}
	return m
}

// randomPosition samples x in [-20, 20), z in [5, 25) at target height.
func (m *Manager) randomPosition() physics.Vec3 {
	x := m.rng.Float64()*40 - 20
	z := m.rng.Float64()*20 + 5
	return physics.V(x, Height, z)
}

// CheckHit tests the travel segment against every active target in storage
// order and deactivates the first one it hits.
func (m *Manager) CheckHit(start, end physics.Vec3) HitResult {
	segment := end.Sub(start)
	length := segment.Length()
	if !(length > 0) {
		return Miss
	}
	dir := segment.Scale(1 / length)
	for _, t := range m.targets {
		if !t.Active {
			continue
		}
		//1.- Project the target onto the ray and reject anything behind the start or past the end.
		along := t.Position.Sub(start).Dot(dir)
		if along < 0 || along > length {
			continue
		}
		closest := start.Add(dir.Scale(along))
		offset := closest.Distance(t.Position)
		if offset >= m.radius {
			continue
		}
		//2.- First match wins; nearer targets later in storage order are not considered.
		result := HitResult{Hit: true, TargetIndex: t.Index, Position: closest, Along: along, Offset: offset}
		m.deactivate(t)
		return result
	}
	return Miss
}

func (m *Manager) deactivate(t *target) {
	t.Active = false
	t.Hits++
	if m.bodies != nil {
		m.bodies.SetVisible(t.body, false)
	}
	if m.sched == nil {
		//1.- Without a clock there is no cooldown; the target moves at once.
		m.reactivate(t)
		return
	}
	t.timer = m.sched.Schedule(m.respawn, func() { m.reactivate(t) })
}

func (m *Manager) reactivate(t *target) {
	t.timer = 0
	t.Position = m.randomPosition()
	t.Active = true
	if m.bodies != nil {
		m.bodies.SetTransform(t.body, host.Pose(t.Position, physics.Identity))
		m.bodies.SetVisible(t.body, true)
	}
	m.log.Debug("target respawned", logging.Int("target", t.Index),
		logging.Float64("x", t.Position.X), logging.Float64("z", t.Position.Z))
	for _, fn := range m.onRespawn {
		fn(t.Target)
	}
}

// OnRespawn registers a listener invoked whenever a target reactivates.
func (m *Manager) OnRespawn(fn func(Target)) {
	if fn != nil {
		m.onRespawn = append(m.onRespawn, fn)
	}
}

// Targets returns a snapshot of every target in storage order.
func (m *Manager) Targets() []Target {
	out := make([]Target, len(m.targets))
	for i, t := range m.targets {
		out[i] = t.Target
	}
	return out
}

// Active reports whether target index is hittable.
func (m *Manager) Active(index int) bool {
	if index < 0 || index >= len(m.targets) {
		return false
	}
	return m.targets[index].Active
}

// InCooldown reports whether target index is waiting to respawn.
func (m *Manager) InCooldown(index int) bool {
	if index < 0 || index >= len(m.targets) {
		return false
	}
	return m.targets[index].timer != 0
}

// ActiveCount returns how many targets are hittable.
func (m *Manager) ActiveCount() int {
	n := 0
	for _, t := range m.targets {
		if t.Active {
			n++
		}
	}
	return n
}

// Len returns the fixed target count.
func (m *Manager) Len() int { return len(m.targets) }

// HitRadius returns the hit sphere radius.
func (m *Manager) HitRadius() float64 { return m.radius }

// Dispose cancels pending respawns and removes the target bodies.
func (m *Manager) Dispose() {
	for _, t := range m.targets {
		if t.timer != 0 && m.sched != nil {
			m.sched.Cancel(t.timer)
			t.timer = 0
		}
		if m.bodies != nil && t.body != 0 {
			m.bodies.DisposeBody(t.body)
			t.body = 0
		}
		t.Active = false
	}
}
