package effects

import (
	"math/rand"
	"time"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/registry"
	"shootingrange/rangesim/internal/scheduler"
)

const (
	// DefaultDropsPerHit is how many drops one hit sprays.
	DefaultDropsPerHit = 15
	// DefaultMaxDrops caps live blood drops.
	DefaultMaxDrops = 100
	// DefaultDropLifetime is how long a drop lingers.
	DefaultDropLifetime = 5 * time.Second
)

var bloodColor = host.Color{R: 0.5, G: 0, B: 0}

// BloodOptions configure the blood effect.
type BloodOptions struct {
	DropsPerHit int
	Max         int
	Lifetime    time.Duration
	// GroundY is where drops come to rest when the host has no physics.
	GroundY float64
	Logger  *logging.Logger
}

type drop struct {
	body     host.BodyHandle
	impostor host.PhysicsHandle
	// fallback integrates the drop when the host has no physics engine.
	fallback *physics.Body
}

// Blood sprays drops at target hits.
type Blood struct {
	scene PhysicalScene
	rng   *rand.Rand
	opts  BloodOptions
	reg   *registry.Registry[*drop]
	// falling tracks drops integrated here rather than by the host.
	falling map[registry.Handle]*drop
	log     *logging.Logger
}

// NewBlood builds the blood effect.
func NewBlood(scene PhysicalScene, sched scheduler.Scheduler, rng *rand.Rand, opts BloodOptions) *Blood {
	if opts.DropsPerHit <= 0 {
		opts.DropsPerHit = DefaultDropsPerHit
	}
	if opts.Max <= 0 {
		opts.Max = DefaultMaxDrops
	}
	if opts.Lifetime <= 0 {
		opts.Lifetime = DefaultDropLifetime
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	b := &Blood{
		scene:   scene,
		rng:     newRand(rng),
		opts:    opts,
		falling: make(map[registry.Handle]*drop),
		log:     logger.With(logging.String("effect", "blood")),
	}
	b.reg = registry.New(sched, registry.Options{Name: "blood", MaxLive: opts.Max, Logger: logger}, b.release)
	return b
}

func (b *Blood) release(d *drop, _ registry.Reason) {
	if d.impostor != 0 {
		b.scene.DisposePhysics(d.impostor)
	}
	b.scene.DisposeBody(d.body)
}

// Spray spawns DropsPerHit drops at position and returns how many were created.
func (b *Blood) Spray(position physics.Vec3) int {
	usePhysics := b.scene.PhysicsEnabled()
	for i := 0; i < b.opts.DropsPerHit; i++ {
		diameter := 0.05 + b.rng.Float64()*0.1
		body := b.scene.CreateBody(host.ShapeSphere, host.Dimensions{Diameter: diameter},
			host.BodyOptions{Name: "blood", Color: bloodColor})
		b.scene.SetTransform(body, host.Pose(position, physics.Identity))
		velocity := physics.V(symmetric(b.rng, 0.25), b.rng.Float64()*0.5, symmetric(b.rng, 0.25))

		d := &drop{body: body}
		if usePhysics {
			d.impostor = b.scene.AttachPhysics(body, host.PhysicsParams{Mass: 0.05, Friction: 0.8, Restitution: 0.1})
			b.scene.ApplyImpulse(d.impostor, velocity, position)
		} else {
			//1.- Fall back to integrating the drop ourselves every tick.
			d.fallback = &physics.Body{Position: position, Velocity: velocity, Mass: 0.05, Friction: 0.8,
				Restitution: 0.1, Radius: diameter / 2}
		}
		h := b.reg.Spawn(d, b.opts.Lifetime)
		if d.fallback != nil {
			b.falling[h] = d
		}
	}
	b.log.Debug("blood sprayed", logging.Int("drops", b.opts.DropsPerHit), logging.Bool("physics", usePhysics))
	return b.opts.DropsPerHit
}

// Update advances drops the host does not simulate.
func (b *Blood) Update(dt time.Duration) {
	step := dt.Seconds()
	for h, d := range b.falling {
		if !b.reg.Contains(h) {
			delete(b.falling, h)
			continue
		}
		d.fallback.Integrate(step, b.opts.GroundY)
		b.scene.SetTransform(d.body, host.Pose(d.fallback.Position, physics.Identity))
	}
}

// Live returns how many drops exist.
func (b *Blood) Live() int { return b.reg.Len() }

// Stats exposes lifecycle counters.
func (b *Blood) Stats() registry.Stats { return b.reg.Stats() }

// Dispose removes every drop.
func (b *Blood) Dispose() {
	b.reg.DisposeAll()
	clear(b.falling)
}
