// Package modules holds the weapon behaviours attached from the catalog:
// recoil, enhanced recoil, muzzle flash, shell ejection and projectiles.
package modules

import (
	"math"
	"time"

	"shootingrange/rangesim/internal/combat"
	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/weapon"
)

// ticksFor converts a duration into 60Hz animation frames, at least one.
func ticksFor(d time.Duration) int {
	ticks := int(math.Ceil(d.Seconds() * 60))
	if ticks < 1 {
		return 1
	}
	return ticks
}

// Recoil kicks the weapon root back and up, then eases it home. Shots fired
// while the kick is still playing are ignored rather than stacked.
type Recoil struct {
	weapon.Lifecycle
	animator  host.Animator
	profile   combat.RecoilProfile
	animating bool
	dropped   uint64
	cycles    uint64
	log       *logging.Logger
}

// NewRecoil builds a recoil module. A nil animator turns it into a no-op.
func NewRecoil(animator host.Animator, profile combat.RecoilProfile, logger *logging.Logger) *Recoil {
	if logger == nil {
		logger = logging.L()
	}
	return &Recoil{animator: animator, profile: profile, log: logger.With(logging.String("module", "recoil"))}
}

func (r *Recoil) Name() string { return string(combat.ModuleRecoil) }

// Apply binds the module to w.
func (r *Recoil) Apply(w *weapon.Weapon) error {
	if err := r.Bind(r.Name(), w); err != nil {
		return err
	}
	if r.animator == nil {
		r.log.Warn("animator unavailable, recoil disabled", logging.String("weapon", w.Name()))
	}
	return nil
}

// OnFire starts a recoil cycle unless one is already playing.
func (r *Recoil) OnFire(weapon.FireEvent) {
	if !r.Firing(r.Name()) || r.animator == nil {
		return
	}
	if r.animating {
		r.dropped++
		return
	}
	w := r.Weapon()
	root := w.Root()
	if root == 0 {
		return
	}
	r.animating = true

	//1.- Kick from the rest pose: back along z, up along y, muzzle tipped up,
	// all scaled by the weapon's recoil amount.
	scale := recoilScale(w)
	rest := w.RestPose().Position
	kicked := rest.Add(physics.V(0, r.profile.Upward*scale, -r.profile.Backward*scale))
	tilt := physics.V(r.profile.Rotation*scale, 0, 0)
	easing := host.Easing{Mode: host.EaseOut, Power: r.profile.EasingPower}
	kick := recoilAnimation("recoil", rest, kicked, physics.Vec3{}, tilt, ticksFor(r.profile.Duration), easing)
	r.animator.Animate(root, kick, func() {
		//2.- Return to rest over the (longer) return duration.
		back := recoilAnimation("recoil_return", kicked, rest, tilt, physics.Vec3{}, ticksFor(r.profile.Return), easing)
		r.animator.Animate(root, back, func() {
			r.animating = false
			r.cycles++
		})
	})
}

func recoilScale(w *weapon.Weapon) float64 {
	amount := w.RecoilAmount()
	if !(amount > 0) {
		return 1
	}
	return amount / weapon.DefaultRecoilAmount
}

func recoilAnimation(name string, fromPos, toPos, fromRot, toRot physics.Vec3, ticks int, easing host.Easing) host.Animation {
	return host.Animation{
		Name: name,
		Tracks: []host.Track{
			{Property: host.PropertyPosition, Keys: []host.Keyframe{{Frame: 0, Value: fromPos}, {Frame: ticks, Value: toPos}}},
			{Property: host.PropertyRotation, Keys: []host.Keyframe{{Frame: 0, Value: fromRot}, {Frame: ticks, Value: toRot}}},
		},
		DurationTicks: ticks,
		Easing:        easing,
	}
}

// Animating reports whether a recoil cycle is playing.
func (r *Recoil) Animating() bool { return r.animating }

// Dropped counts shots ignored during a cycle.
func (r *Recoil) Dropped() uint64 { return r.dropped }

// Cycles counts completed kick-and-return cycles.
func (r *Recoil) Cycles() uint64 { return r.cycles }

// Dispose retires the module. A cycle in flight finishes on the host.
func (r *Recoil) Dispose() { r.Retire() }

// EnhancedRecoil multiplies the weapon's recoil amount once, on apply.
type EnhancedRecoil struct {
	weapon.Lifecycle
	multiplier float64
}

// NewEnhancedRecoil builds the module; non-positive multipliers default to 1.5.
func NewEnhancedRecoil(multiplier float64) *EnhancedRecoil {
	if !(multiplier > 0) {
		multiplier = 1.5
	}
	return &EnhancedRecoil{multiplier: multiplier}
}

func (e *EnhancedRecoil) Name() string { return string(combat.ModuleEnhancedRecoil) }

// Apply scales the weapon recoil.
func (e *EnhancedRecoil) Apply(w *weapon.Weapon) error {
	if err := e.Bind(e.Name(), w); err != nil {
		return err
	}
	w.ScaleRecoil(e.multiplier)
	return nil
}

// OnFire does nothing; the module only changes the weapon's parameters.
func (e *EnhancedRecoil) OnFire(weapon.FireEvent) {}

// Multiplier returns the recoil factor.
func (e *EnhancedRecoil) Multiplier() float64 { return e.multiplier }
