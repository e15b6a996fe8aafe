package effects

import (
	"time"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/registry"
	"shootingrange/rangesim/internal/scheduler"
)

const (
	// DefaultMaxImpacts caps live particle bursts.
	DefaultMaxImpacts = 64
	// ImpactEmitDuration is how long a burst keeps emitting.
	ImpactEmitDuration = 50 * time.Millisecond
	// ImpactLinger is how long stopped particles stay before disposal.
	ImpactLinger = 500 * time.Millisecond
)

var (
	// SparkColor tints wall impacts.
	SparkColor = host.Color{R: 1, G: 0.8, B: 0.4}
	// BloodSplashColor tints target impacts.
	BloodSplashColor = host.Color{R: 0.6, G: 0, B: 0}
)

// ImpactOptions configure particle bursts.
type ImpactOptions struct {
	Max    int
	Logger *logging.Logger
}

type burst struct {
	emitter host.EmitterHandle
	stop    scheduler.Handle
}

// Impacts spawns short particle bursts where projectiles strike.
type Impacts struct {
	particles host.Particles
	sched     scheduler.Scheduler
	reg       *registry.Registry[*burst]
}

// NewImpacts builds the impact effect.
func NewImpacts(particles host.Particles, sched scheduler.Scheduler, opts ImpactOptions) *Impacts {
	if opts.Max <= 0 {
		opts.Max = DefaultMaxImpacts
	}
	i := &Impacts{particles: particles, sched: sched}
	i.reg = registry.New(sched, registry.Options{Name: "impacts", MaxLive: opts.Max, Logger: opts.Logger}, i.release)
	return i
}

func (i *Impacts) release(b *burst, _ registry.Reason) {
	if b.stop != 0 {
		i.sched.Cancel(b.stop)
	}
	i.particles.DisposeEmitter(b.emitter)
}

// Spawn starts a burst at position spraying along normal (up when unknown).
func (i *Impacts) Spawn(position, normal physics.Vec3, color host.Color) registry.Handle {
	normal = normal.Normalize()
	if normal.IsZero() {
		normal = physics.Up
	}
	emitter := i.particles.SpawnEmitter(host.EmitterConfig{
		Name:        "impact",
		Position:    position,
		Direction:   normal,
		Capacity:    50,
		EmitRate:    200,
		MinSize:     0.05,
		MaxSize:     0.15,
		MinLifetime: 0.2,
		MaxLifetime: 0.5,
		Color:       color,
		ColorDead:   host.Color{},
		Burst:       20,
	})
	i.particles.StartEmitter(emitter)

	//1.- Emit briefly, then let the particles fade before the emitter goes away.
	b := &burst{emitter: emitter}
	b.stop = i.sched.Schedule(ImpactEmitDuration, func() {
		b.stop = 0
		i.particles.StopEmitter(emitter)
	})
	return i.reg.Spawn(b, ImpactEmitDuration+ImpactLinger)
}

// Live returns how many bursts exist.
func (i *Impacts) Live() int { return i.reg.Len() }

// Stats exposes lifecycle counters.
func (i *Impacts) Stats() registry.Stats { return i.reg.Stats() }

// Dispose removes every burst.
func (i *Impacts) Dispose() { i.reg.DisposeAll() }
