package effects

import (
	"math"
	"math/rand"
	"time"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/registry"
	"shootingrange/rangesim/internal/scheduler"
)

const (
	// DefaultMaxShells caps live shells; the oldest is evicted first.
	DefaultMaxShells = 30
	// DefaultShellLifetime is how long a shell stays on the ground.
	DefaultShellLifetime = 10 * time.Second
	// DefaultEjectCooldown is the minimum gap between two ejections.
	DefaultEjectCooldown = 100 * time.Millisecond
	// DefaultEjectDelay separates the shot from the shell leaving the weapon.
	DefaultEjectDelay = 50 * time.Millisecond
)

var shellColor = host.Color{R: 0.8, G: 0.6, B: 0.2}

// ShellOptions configure shell ejection.
type ShellOptions struct {
	Max      int
	Lifetime time.Duration
	Cooldown time.Duration
	Delay    time.Duration
	Logger   *logging.Logger
}

type shell struct {
	body     host.BodyHandle
	impostor host.PhysicsHandle
}

// Shells ejects brass from the weapon and keeps the newest Max on the ground.
type Shells struct {
	scene    PhysicalScene
	sched    scheduler.Scheduler
	rng      *rand.Rand
	opts     ShellOptions
	reg      *registry.Registry[*shell]
	pending  map[scheduler.Handle]struct{}
	last     time.Time
	ejected  bool
	warned   bool
	skipped  uint64
	disposed bool
	log      *logging.Logger
}

// NewShells builds the shell effect.
func NewShells(scene PhysicalScene, sched scheduler.Scheduler, rng *rand.Rand, opts ShellOptions) *Shells {
	if opts.Max <= 0 {
		opts.Max = DefaultMaxShells
	}
	if opts.Lifetime <= 0 {
		opts.Lifetime = DefaultShellLifetime
	}
	if opts.Cooldown < 0 {
		opts.Cooldown = 0
	} else if opts.Cooldown == 0 {
		opts.Cooldown = DefaultEjectCooldown
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultEjectDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	s := &Shells{
		scene:   scene,
		sched:   sched,
		rng:     newRand(rng),
		opts:    opts,
		pending: make(map[scheduler.Handle]struct{}),
		log:     logger.With(logging.String("effect", "shells")),
	}
	s.reg = registry.New(sched, registry.Options{Name: "shells", MaxLive: opts.Max, Logger: logger}, s.release)
	return s
}

func (s *Shells) release(sh *shell, _ registry.Reason) {
	if sh.impostor != 0 {
		s.scene.DisposePhysics(sh.impostor)
	}
	s.scene.DisposeBody(sh.body)
}

// Eject schedules a shell to leave position along direction after the
// ejection delay. It reports false when throttled or physics is unavailable.
func (s *Shells) Eject(position, direction physics.Vec3) bool {
	if s == nil || s.disposed {
		return false
	}
	//1.- Without a physics engine shells cannot fly; say so once and degrade.
	if !s.scene.PhysicsEnabled() {
		if !s.warned {
			s.warned = true
			s.log.Warn("physics unavailable, shell ejection disabled")
		}
		return false
	}
	now := s.sched.Now()
	if s.ejected && now.Sub(s.last) < s.opts.Cooldown {
		s.skipped++
		return false
	}
	s.last, s.ejected = now, true

	var h scheduler.Handle
	h = s.sched.Schedule(s.opts.Delay, func() {
		delete(s.pending, h)
		s.spawn(position, direction)
	})
	s.pending[h] = struct{}{}
	return true
}

func (s *Shells) spawn(position, direction physics.Vec3) {
	body := s.scene.CreateBody(host.ShapeCylinder, host.Dimensions{Height: 0.08, Diameter: 0.03},
		host.BodyOptions{Name: "shell", Color: shellColor})
	s.scene.SetTransform(body, host.Pose(position, physics.FromEuler(physics.V(0, 0, math.Pi/2))))
	impostor := s.scene.AttachPhysics(body, host.PhysicsParams{Mass: 0.1, Friction: 0.5, Restitution: 0.3})

	//1.- Kick the shell out along the ejection side with a little scatter.
	dir := direction.Add(jitter(s.rng, 0.1)).Normalize()
	force := 0.5 + s.rng.Float64()*0.3
	s.scene.ApplyImpulse(impostor, dir.Scale(force), position)
	s.scene.SetAngularVelocity(impostor, jitter(s.rng, 4))

	s.reg.Spawn(&shell{body: body, impostor: impostor}, s.opts.Lifetime)
}

// Live returns how many shells exist.
func (s *Shells) Live() int { return s.reg.Len() }

// Pending returns ejections waiting for their delay.
func (s *Shells) Pending() int { return len(s.pending) }

// Skipped returns ejections rejected by the cooldown.
func (s *Shells) Skipped() uint64 { return s.skipped }

// Stats exposes lifecycle counters.
func (s *Shells) Stats() registry.Stats { return s.reg.Stats() }

// Dispose cancels pending ejections and removes every shell.
func (s *Shells) Dispose() {
	if s == nil || s.disposed {
		return
	}
	s.disposed = true
	for h := range s.pending {
		s.sched.Cancel(h)
	}
	clear(s.pending)
	s.reg.DisposeAll()
}
