package effects

import (
	"time"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/registry"
	"shootingrange/rangesim/internal/scheduler"
)

const (
	// DefaultTrailFade is how long a stopped trail lingers.
	DefaultTrailFade = 500 * time.Millisecond
	// DefaultMaxTrails caps fading trails.
	DefaultMaxTrails = 256
)

// Trails takes over projectile trails when their projectile is gone so the
// last particles can fade out.
type Trails struct {
	particles host.Particles
	fade      time.Duration
	reg       *registry.Registry[host.EmitterHandle]
}

// NewTrails builds the trail fader.
func NewTrails(particles host.Particles, sched scheduler.Scheduler, fade time.Duration, logger *logging.Logger) *Trails {
	if fade <= 0 {
		fade = DefaultTrailFade
	}
	t := &Trails{particles: particles, fade: fade}
	t.reg = registry.New(sched, registry.Options{Name: "trails", MaxLive: DefaultMaxTrails, Logger: logger},
		func(emitter host.EmitterHandle, _ registry.Reason) { particles.DisposeEmitter(emitter) })
	return t
}

// Fade stops emitter now and disposes it once the fade elapses.
func (t *Trails) Fade(emitter host.EmitterHandle) {
	if emitter == 0 {
		return
	}
	t.particles.StopEmitter(emitter)
	t.reg.Spawn(emitter, t.fade)
}

// Live returns how many trails are fading.
func (t *Trails) Live() int { return t.reg.Len() }

// Dispose removes every fading trail.
func (t *Trails) Dispose() { t.reg.DisposeAll() }
