package modules

import (
	"math/rand"

	"shootingrange/rangesim/internal/ballistics"
	"shootingrange/rangesim/internal/combat"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/registry"
	"shootingrange/rangesim/internal/weapon"
)

// Launcher puts projectiles into flight.
type Launcher interface {
	Launch(spec ballistics.LaunchSpec) registry.Handle
}

// Projectile launches the weapon's pellets for every shot.
type Projectile struct {
	weapon.Lifecycle
	launcher Launcher
	profile  combat.ProjectileProfile
	rng      *rand.Rand
	launched uint64
}

// NewProjectile builds the module. rng scatters extra pellets.
func NewProjectile(launcher Launcher, profile combat.ProjectileProfile, rng *rand.Rand) *Projectile {
	return &Projectile{launcher: launcher, profile: profile, rng: rng}
}

func (p *Projectile) Name() string { return string(combat.ModuleProjectile) }

// Apply binds the module.
func (p *Projectile) Apply(w *weapon.Weapon) error {
	return p.Bind(p.Name(), w)
}

// OnFire launches Pellets projectiles. The first follows the aimed direction;
// the others are scattered by the weapon spread.
func (p *Projectile) OnFire(ev weapon.FireEvent) {
	if !p.Firing(p.Name()) || p.launcher == nil {
		return
	}
	w := p.Weapon()
	pellets := max(1, w.Pellets())
	for i := 0; i < pellets; i++ {
		direction := ev.Direction
		if i > 0 && p.rng != nil {
			direction = Scatter(p.rng, direction, w.Spread())
		}
		p.launcher.Launch(ballistics.LaunchSpec{
			Weapon:         ev.Weapon,
			Origin:         ev.Position,
			Direction:      direction,
			Speed:          p.profile.Speed,
			Damage:         w.Damage(),
			Lifetime:       p.profile.Lifetime,
			MaxRange:       p.profile.MaxRange,
			Size:           p.profile.Size,
			Color:          p.profile.Color,
			LightIntensity: p.profile.LightIntensity,
			LightRange:     p.profile.LightRange,
			TrailWidth:     p.profile.TrailWidth,
			EmitRate:       p.profile.EmitRate,
		})
		p.launched++
	}
}

// Launched counts projectiles put into flight.
func (p *Projectile) Launched() uint64 { return p.launched }

// Scatter perturbs direction by U(-spread/2, spread/2) on each axis and renormalises.
func Scatter(rng *rand.Rand, direction physics.Vec3, spread float64) physics.Vec3 {
	if !(spread > 0) {
		return direction.Normalize()
	}
	offset := physics.V(rng.Float64()-0.5, rng.Float64()-0.5, rng.Float64()-0.5).Scale(spread)
	scattered := direction.Add(offset).Normalize()
	if scattered.IsZero() {
		return direction.Normalize()
	}
	return scattered
}
