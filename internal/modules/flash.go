package modules

import (
	"shootingrange/rangesim/internal/combat"
	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/lights"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/scheduler"
	"shootingrange/rangesim/internal/weapon"
)

// FlashScene is the host surface the muzzle flash draws with.
type FlashScene interface {
	host.Bodies
	host.Animator
	host.Lights
}

// LightLender lends pooled lights.
type LightLender interface {
	Acquire() (host.LightHandle, bool)
	Release(h host.LightHandle) bool
	Profile() lights.Profile
}

var flashColor = host.Color{R: 1, G: 0.7, B: 0.3}

// MuzzleFlash lights the muzzle and pops a flash disc for every shot.
type MuzzleFlash struct {
	weapon.Lifecycle
	scene   FlashScene
	pool    LightLender
	sched   scheduler.Scheduler
	profile combat.FlashProfile

	disc    host.BodyHandle
	light   host.LightHandle
	timer   scheduler.Handle
	flashes uint64
	dark    uint64
	log     *logging.Logger
}

// NewMuzzleFlash builds a flash module.
func NewMuzzleFlash(scene FlashScene, pool LightLender, sched scheduler.Scheduler, profile combat.FlashProfile, logger *logging.Logger) *MuzzleFlash {
	if logger == nil {
		logger = logging.L()
	}
	return &MuzzleFlash{
		scene:   scene,
		pool:    pool,
		sched:   sched,
		profile: profile,
		log:     logger.With(logging.String("module", "muzzle_flash")),
	}
}

func (m *MuzzleFlash) Name() string { return string(combat.ModuleMuzzleFlash) }

// Apply binds the module and creates the hidden flash disc.
func (m *MuzzleFlash) Apply(w *weapon.Weapon) error {
	if err := m.Bind(m.Name(), w); err != nil {
		return err
	}
	if m.scene == nil || m.sched == nil {
		m.log.Warn("scene unavailable, muzzle flash disabled", logging.String("weapon", w.Name()))
		return nil
	}
	m.disc = m.scene.CreateBody(host.ShapeDisc, host.Dimensions{Diameter: m.profile.FlashSize},
		host.BodyOptions{Name: "muzzle_flash", Color: flashColor, Emissive: true})
	m.scene.SetVisible(m.disc, false)
	return nil
}

// OnFire lights the muzzle and shows the disc until the longer of the light
// and flash durations has passed.
func (m *MuzzleFlash) OnFire(ev weapon.FireEvent) {
	if !m.Firing(m.Name()) || m.disc == 0 {
		return
	}
	//1.- A flash still on screen is cut short so its light goes back first.
	if m.timer != 0 {
		m.sched.Cancel(m.timer)
		m.end()
	}
	m.flashes++

	if m.pool != nil {
		if light, ok := m.pool.Acquire(); ok {
			m.light = light
			profile := m.pool.Profile()
			m.scene.SetLight(light, host.LightState{
				Position:  ev.Position,
				Color:     profile.Color,
				Intensity: profile.Intensity,
				Range:     profile.Range,
			})
		} else {
			m.dark++
		}
	}

	//2.- The disc sits just ahead of the muzzle and swells then shrinks.
	ticks := ticksFor(m.profile.FlashDuration)
	position := ev.Position.Add(ev.Direction.Scale(m.profile.Offset))
	m.scene.SetTransform(m.disc, host.Transform{
		Position: position,
		Rotation: physics.LookRotation(ev.Direction),
		Scale:    physics.V(0.5, 0.5, 0.5),
	})
	m.scene.SetVisible(m.disc, true)
	peak := min(5, ticks)
	m.scene.Animate(m.disc, host.Animation{
		Name: "flash_scale",
		Tracks: []host.Track{{Property: host.PropertyScale, Keys: []host.Keyframe{
			{Frame: 0, Value: physics.V(0.5, 0.5, 0.5)},
			{Frame: peak, Value: physics.V(1.5, 1.5, 1.5)},
			{Frame: ticks, Value: physics.V(0.2, 0.2, 0.2)},
		}}},
		DurationTicks: ticks,
		Easing:        host.Easing{Mode: host.EaseInOut, Power: 3},
	}, nil)

	m.timer = m.sched.Schedule(max(m.profile.LightDuration, m.profile.FlashDuration), func() {
		m.timer = 0
		m.end()
	})
}

func (m *MuzzleFlash) end() {
	if m.light != 0 {
		m.pool.Release(m.light)
		m.light = 0
	}
	m.scene.SetVisible(m.disc, false)
}

// Active reports whether a flash is showing.
func (m *MuzzleFlash) Active() bool { return m.timer != 0 }

// Flashes counts shots that produced a flash.
func (m *MuzzleFlash) Flashes() uint64 { return m.flashes }

// Dark counts flashes that found the light pool empty.
func (m *MuzzleFlash) Dark() uint64 { return m.dark }

// Dispose cancels the pending flash, returns its light and removes the disc.
func (m *MuzzleFlash) Dispose() {
	if !m.Retire() || m.disc == 0 {
		return
	}
	if m.timer != 0 {
		m.sched.Cancel(m.timer)
		m.timer = 0
	}
	m.end()
	m.scene.DisposeBody(m.disc)
	m.disc = 0
}
