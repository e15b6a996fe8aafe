// Package ballistics advances projectiles along straight lines every tick and
// resolves them against targets, static geometry and their maximum range.
package ballistics

import (
	"math"
	"time"

	"shootingrange/rangesim/internal/effects"
	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/registry"
	"shootingrange/rangesim/internal/scheduler"
	"shootingrange/rangesim/internal/targets"
)

const (
	// RayLength is the minimum look-ahead of the geometry ray each tick.
	RayLength = 2.0
	// DefaultMaxRange retires projectiles that travelled this far.
	DefaultMaxRange = 100.0
	// DefaultMaxLive bounds live projectiles; the oldest is retired first.
	DefaultMaxLive = 512
)

// ExpireReason says why a projectile vanished without hitting anything.
type ExpireReason string

const (
	ExpiredRange    ExpireReason = "range"
	ExpiredLifetime ExpireReason = "lifetime"
	ExpiredEvicted  ExpireReason = "evicted"
)

// Scene is the host surface a projectile needs.
type Scene interface {
	host.Bodies
	host.Raycaster
	host.Particles
	host.Lights
}

// HitTester resolves a travel segment against targets.
type HitTester interface {
	CheckHit(start, end physics.Vec3) targets.HitResult
}

// LightPool lends point lights.
type LightPool interface {
	Acquire() (host.LightHandle, bool)
	Release(h host.LightHandle) bool
}

// ImpactSpawner creates particle bursts.
type ImpactSpawner interface {
	Spawn(position, normal physics.Vec3, color host.Color) registry.Handle
}

// BloodSprayer creates blood drops.
type BloodSprayer interface {
	Spray(position physics.Vec3) int
}

// TrailFader takes over trails of disposed projectiles.
type TrailFader interface {
	Fade(emitter host.EmitterHandle)
}

// Deps are the collaborators of a Simulation. Every one is optional except Scene.
type Deps struct {
	Scene   Scene
	Sched   scheduler.Scheduler
	Targets HitTester
	Lights  LightPool
	Impacts ImpactSpawner
	Blood   BloodSprayer
	Trails  TrailFader
}

// Options tune a Simulation.
type Options struct {
	MaxRange float64
	MaxLive  int
	Logger   *logging.Logger
}

// LaunchSpec describes one projectile.
type LaunchSpec struct {
	Weapon    string
	Origin    physics.Vec3
	Direction physics.Vec3
	Speed     float64
	Damage    float64
	// Lifetime retires the projectile after this long; zero means never.
	Lifetime time.Duration
	// MaxRange overrides the simulation range when positive.
	MaxRange       float64
	Size           float64
	Color          host.Color
	LightIntensity float64
	LightRange     float64
	TrailWidth     float64
	EmitRate       float64
}

// Projectile is the live state of one shot.
type Projectile struct {
	ID        registry.Handle
	Weapon    string
	Position  physics.Vec3
	Direction physics.Vec3
	Speed     float64
	Traveled  float64
	MaxRange  float64
	Damage    float64

	body  host.BodyHandle
	trail host.EmitterHandle
	light host.LightHandle
}

// State is the serialisable view of a projectile.
type State struct {
	ID        uint64       `json:"id" msgpack:"id"`
	Weapon    string       `json:"weapon" msgpack:"weapon"`
	Position  physics.Vec3 `json:"position" msgpack:"position"`
	Direction physics.Vec3 `json:"direction" msgpack:"direction"`
	Traveled  float64      `json:"traveled" msgpack:"traveled"`
}

// Hit is reported when a projectile strikes a target.
type Hit struct {
	Projectile  registry.Handle
	Weapon      string
	TargetIndex int
	Position    physics.Vec3
	Damage      float64
	Traveled    float64
	Offset      float64
}

// Impact is reported when a projectile strikes static geometry.
type Impact struct {
	Projectile registry.Handle
	Weapon     string
	Body       host.BodyHandle
	Point      physics.Vec3
	Normal     physics.Vec3
	Traveled   float64
}

// Expiry is reported when a projectile is retired without striking anything.
type Expiry struct {
	Projectile registry.Handle
	Weapon     string
	Position   physics.Vec3
	Traveled   float64
	Reason     ExpireReason
}

// Stats counts projectile outcomes.
type Stats struct {
	Live     int
	Launched uint64
	Hits     uint64
	Impacts  uint64
	Expired  uint64
}

// Simulation owns every live projectile. It is single-threaded.
type Simulation struct {
	deps     Deps
	maxRange float64
	reg      *registry.Registry[*Projectile]
	onHit    []func(Hit)
	onImpact []func(Impact)
	onExpire []func(Expiry)
	stats    Stats
	log      *logging.Logger
}

// New builds a simulation.
func New(deps Deps, opts Options) *Simulation {
	if !(opts.MaxRange > 0) {
		opts.MaxRange = DefaultMaxRange
	}
	if opts.MaxLive <= 0 {
		opts.MaxLive = DefaultMaxLive
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	s := &Simulation{
		deps:     deps,
		maxRange: opts.MaxRange,
		log:      logger.With(logging.String("component", "ballistics")),
	}
	s.reg = registry.New(deps.Sched, registry.Options{Name: "projectiles", MaxLive: opts.MaxLive, Logger: logger}, s.release)
	return s
}

// OnHit registers a target hit listener.
func (s *Simulation) OnHit(fn func(Hit)) {
	if fn != nil {
		s.onHit = append(s.onHit, fn)
	}
}

// OnImpact registers a geometry impact listener.
func (s *Simulation) OnImpact(fn func(Impact)) {
	if fn != nil {
		s.onImpact = append(s.onImpact, fn)
	}
}

// OnExpire registers a listener for projectiles retired without a hit.
func (s *Simulation) OnExpire(fn func(Expiry)) {
	if fn != nil {
		s.onExpire = append(s.onExpire, fn)
	}
}

// Launch creates a projectile and returns its handle.
func (s *Simulation) Launch(spec LaunchSpec) registry.Handle {
	direction := spec.Direction.Normalize()
	if direction.IsZero() {
		direction = physics.Forward
	}
	maxRange := spec.MaxRange
	if !(maxRange > 0) {
		maxRange = s.maxRange
	}
	size := spec.Size
	if !(size > 0) {
		size = 0.05
	}
	scene := s.deps.Scene
	p := &Projectile{
		Weapon:    spec.Weapon,
		Position:  spec.Origin,
		Direction: direction,
		Speed:     math.Max(0, spec.Speed),
		MaxRange:  maxRange,
		Damage:    spec.Damage,
	}

	//1.- The body is a small emissive sphere facing along the flight path.
	p.body = scene.CreateBody(host.ShapeSphere, host.Dimensions{Diameter: size},
		host.BodyOptions{Name: "projectile", Color: spec.Color, Emissive: true})
	scene.SetTransform(p.body, host.Pose(spec.Origin, physics.LookRotation(direction)))

	//2.- The trail streams behind the body for as long as it flies.
	width := spec.TrailWidth
	if !(width > 0) {
		width = size / 2
	}
	p.trail = scene.SpawnEmitter(host.EmitterConfig{
		Name:        "trail",
		Attach:      p.body,
		Position:    spec.Origin,
		Direction:   direction.Scale(-1),
		Capacity:    100,
		EmitRate:    spec.EmitRate,
		MinSize:     width * 0.5,
		MaxSize:     width,
		MinLifetime: 0.1,
		MaxLifetime: 0.3,
		Color:       spec.Color,
	})
	scene.StartEmitter(p.trail)

	//3.- A pooled light is a bonus; an exhausted pool only dims the shot.
	if s.deps.Lights != nil && spec.LightIntensity > 0 {
		if light, ok := s.deps.Lights.Acquire(); ok {
			p.light = light
			scene.SetLight(light, host.LightState{
				Position:  spec.Origin,
				Color:     spec.Color,
				Intensity: spec.LightIntensity,
				Range:     spec.LightRange,
				Parent:    p.body,
			})
		}
	}

	p.ID = s.reg.Spawn(p, spec.Lifetime)
	s.stats.Launched++
	return p.ID
}

// release frees everything a projectile owns. Lifetime expiry and eviction
// are reported here; hits, impacts and range exhaustion report before disposing.
func (s *Simulation) release(p *Projectile, reason registry.Reason) {
	switch reason {
	case registry.ReasonExpired:
		s.expire(p, ExpiredLifetime)
	case registry.ReasonEvicted:
		s.expire(p, ExpiredEvicted)
	}
	scene := s.deps.Scene
	if p.light != 0 && s.deps.Lights != nil {
		s.deps.Lights.Release(p.light)
		p.light = 0
	}
	if p.trail != 0 {
		if s.deps.Trails != nil {
			s.deps.Trails.Fade(p.trail)
		} else {
			scene.StopEmitter(p.trail)
			scene.DisposeEmitter(p.trail)
		}
		p.trail = 0
	}
	scene.DisposeBody(p.body)
}

func (s *Simulation) expire(p *Projectile, reason ExpireReason) {
	s.stats.Expired++
	ev := Expiry{Projectile: p.ID, Weapon: p.Weapon, Position: p.Position, Traveled: p.Traveled, Reason: reason}
	for _, fn := range s.onExpire {
		fn(ev)
	}
}

// Step advances every live projectile by dt in registration order.
func (s *Simulation) Step(dt time.Duration) {
	seconds := dt.Seconds()
	if seconds <= 0 {
		return
	}
	//1.- Iterate over a snapshot so disposals during the tick never reorder it.
	for _, h := range s.reg.Handles() {
		p, ok := s.reg.Get(h)
		if !ok {
			continue
		}
		s.advance(p, seconds)
	}
}

func (s *Simulation) advance(p *Projectile, seconds float64) {
	scene := s.deps.Scene
	previous := p.Position
	distance := p.Speed * seconds
	p.Position = previous.Add(p.Direction.Scale(distance))
	p.Traveled += distance
	scene.SetTransform(p.body, host.Pose(p.Position, physics.LookRotation(p.Direction)))

	//1.- Targets first: a shot that reaches a target and a wall in one tick hits the target.
	if s.deps.Targets != nil {
		if result := s.deps.Targets.CheckHit(previous, p.Position); result.Hit {
			point := previous.Add(p.Direction.Scale(result.Along))
			if s.deps.Blood != nil {
				s.deps.Blood.Spray(point)
			}
			s.spawnImpact(point, p.Direction.Scale(-1), effects.BloodSplashColor)
			s.stats.Hits++
			hit := Hit{
				Projectile:  p.ID,
				Weapon:      p.Weapon,
				TargetIndex: result.TargetIndex,
				Position:    result.Position,
				Damage:      p.Damage,
				Traveled:    p.Traveled - distance + result.Along,
				Offset:      result.Offset,
			}
			for _, fn := range s.onHit {
				fn(hit)
			}
			s.reg.DisposeNow(p.ID)
			return
		}
	}

	//2.- Static geometry, ignoring the projectile's own body.
	length := math.Max(RayLength, distance)
	self := p.body
	if hit, ok := scene.CastRay(previous, p.Direction, length, func(b host.BodyHandle) bool { return b != self }); ok {
		normal := hit.Normal
		if normal.IsZero() {
			normal = physics.Up
		}
		s.spawnImpact(hit.Point, normal, effects.SparkColor)
		s.stats.Impacts++
		impact := Impact{
			Projectile: p.ID,
			Weapon:     p.Weapon,
			Body:       hit.Body,
			Point:      hit.Point,
			Normal:     normal,
			Traveled:   p.Traveled - distance + hit.Distance,
		}
		for _, fn := range s.onImpact {
			fn(impact)
		}
		s.reg.DisposeNow(p.ID)
		return
	}

	//3.- Out of range: vanish quietly.
	if p.Traveled > p.MaxRange {
		s.expire(p, ExpiredRange)
		s.reg.DisposeNow(p.ID)
	}
}

func (s *Simulation) spawnImpact(point, normal physics.Vec3, color host.Color) {
	if s.deps.Impacts != nil {
		s.deps.Impacts.Spawn(point, normal, color)
	}
}

// Get returns a live projectile.
func (s *Simulation) Get(h registry.Handle) (*Projectile, bool) { return s.reg.Get(h) }

// Active returns the live projectile count.
func (s *Simulation) Active() int { return s.reg.Len() }

// Snapshot lists live projectiles in registration order.
func (s *Simulation) Snapshot() []State {
	handles := s.reg.Handles()
	out := make([]State, 0, len(handles))
	for _, h := range handles {
		p, ok := s.reg.Get(h)
		if !ok {
			continue
		}
		out = append(out, State{ID: uint64(h), Weapon: p.Weapon, Position: p.Position, Direction: p.Direction, Traveled: p.Traveled})
	}
	return out
}

// Stats returns outcome counters.
func (s *Simulation) Stats() Stats {
	stats := s.stats
	stats.Live = s.reg.Len()
	return stats
}

// Dispose retires every projectile without reporting them.
func (s *Simulation) Dispose() { s.reg.DisposeAll() }

// Contains reports whether h is still flying.
func (s *Simulation) Contains(h registry.Handle) bool { return s.reg.Contains(h) }
