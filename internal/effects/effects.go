// Package effects spawns the short-lived entities that make firing visible:
// ejected shells, blood drops, impact sparks and fading projectile trails.
// Every entity lives in a registry so it is disposed exactly once.
package effects

import (
	"math/rand"
	"time"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/physics"
)

// PhysicalScene is the host surface for effects that own rigid bodies.
type PhysicalScene interface {
	host.Bodies
	host.Physics
}

func newRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// symmetric samples U(-half, half).
func symmetric(rng *rand.Rand, half float64) float64 {
	return (rng.Float64()*2 - 1) * half
}

func jitter(rng *rand.Rand, half float64) physics.Vec3 {
	return physics.V(symmetric(rng, half), symmetric(rng, half), symmetric(rng, half))
}
