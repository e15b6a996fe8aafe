package combat

import (
	"fmt"
	"math"

	"shootingrange/rangesim/internal/logging"
)

// HitContext captures how a projectile struck a target.
type HitContext struct {
	// DistanceMeters is how far the projectile travelled before the hit.
	DistanceMeters float64
	// OffsetMeters is the miss distance between the closest approach and the target centre.
	OffsetMeters float64
	// HitRadius is the target's hit radius used to grade precision.
	HitRadius float64
}

// HitResult is the resolved outcome of a target hit.
type HitResult struct {
	Damage    float64
	Factor    float64
	Precision float64
}

// ResolveHit applies distance falloff to the weapon damage and grades
// precision. Points are awarded separately by ScoreForHit.
func ResolveHit(loadout Loadout, ctx HitContext) HitResult {
	//1.- Full damage up to the falloff start, then a linear ramp down to MinFactor.
	factor := falloffFactor(loadout.Falloff, ctx.DistanceMeters)

	//2.- Precision is 1 at the centre and 0 at the rim of the hit sphere.
	precision := 0.0
	if ctx.HitRadius > 0 {
		precision = 1 - math.Min(1, math.Max(0, ctx.OffsetMeters/ctx.HitRadius))
	}

	return HitResult{
		Damage:    loadout.Descriptor.Damage * factor,
		Factor:    factor,
		Precision: precision,
	}
}

func falloffFactor(f Falloff, distance float64) float64 {
	if !(f.EndMeters > f.StartMeters) || !(distance > f.StartMeters) {
		return 1
	}
	floor := math.Min(1, math.Max(0, f.MinFactor))
	if distance >= f.EndMeters {
		return floor
	}
	t := (distance - f.StartMeters) / (f.EndMeters - f.StartMeters)
	return 1 - t*(1-floor)
}

// LoggingFields describes the hit for structured logs.
func (r HitResult) LoggingFields() []logging.Field {
	return []logging.Field{
		logging.String("damage", formatDamageValue(r.Damage)),
		logging.Float64("falloff", r.Factor),
		logging.Float64("precision", r.Precision),
	}
}

func formatDamageValue(amount float64) string {
	//1.- Clamp floating point noise to zero for readability.
	if math.Abs(amount) < 1e-6 {
		amount = 0
	}
	return fmt.Sprintf("%.2f", amount)
}

// ScoreForHit returns the points a target hit with the named weapon awards.
// Unknown weapons and zero-damage hits score nothing.
func (c *Catalog) ScoreForHit(weaponName string, damage float64) int {
	if _, ok := c.file.Weapons[weaponName]; !ok || !(damage > 0) {
		return 0
	}
	return c.Scoring().PointsPerHit
}
