package events

import (
	"shootingrange/rangesim/internal/physics"
)

// Payload is a typed range event body.
type Payload interface {
	Kind() Kind
	Fields() map[string]any
}

// Vector3 is a world-space vector as carried on the wire.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FromVec converts a simulation vector.
func FromVec(v physics.Vec3) Vector3 { return Vector3{X: v.X, Y: v.Y, Z: v.Z} }

func (v Vector3) value() map[string]any {
	//1.- Vectors travel as nested objects so structpb and JSON agree.
	return map[string]any{"x": v.X, "y": v.Y, "z": v.Z}
}

// Fire reports one weapon discharge.
type Fire struct {
	Weapon    string
	Shot      uint64
	Position  Vector3
	Direction Vector3
}

func (Fire) Kind() Kind { return KindFire }

func (f Fire) Fields() map[string]any {
	return map[string]any{
		"weapon":    f.Weapon,
		"shot":      f.Shot,
		"position":  f.Position.value(),
		"direction": f.Direction.value(),
	}
}

// TargetHit reports a projectile striking a target and the points it earned.
type TargetHit struct {
	Weapon      string
	TargetIndex int
	Position    Vector3
	Damage      float64
	Distance    float64
	Precision   float64
	Points      int
	Score       int
}

func (TargetHit) Kind() Kind { return KindTargetHit }

func (h TargetHit) Fields() map[string]any {
	return map[string]any{
		"weapon":    h.Weapon,
		"target":    h.TargetIndex,
		"position":  h.Position.value(),
		"damage":    h.Damage,
		"distance":  h.Distance,
		"precision": h.Precision,
		"points":    h.Points,
		"score":     h.Score,
	}
}

// Impact reports a projectile stopped by range geometry.
type Impact struct {
	Weapon   string
	Point    Vector3
	Normal   Vector3
	Traveled float64
}

func (Impact) Kind() Kind { return KindImpact }

func (i Impact) Fields() map[string]any {
	return map[string]any{
		"weapon":   i.Weapon,
		"point":    i.Point.value(),
		"normal":   i.Normal.value(),
		"traveled": i.Traveled,
	}
}

// ProjectileExpired reports a projectile retired without hitting anything.
type ProjectileExpired struct {
	Weapon   string
	Position Vector3
	Traveled float64
	Reason   string
}

func (ProjectileExpired) Kind() Kind { return KindProjectileExpired }

func (e ProjectileExpired) Fields() map[string]any {
	return map[string]any{
		"weapon":   e.Weapon,
		"position": e.Position.value(),
		"traveled": e.Traveled,
		"reason":   e.Reason,
	}
}

// TargetRespawned reports a target returning after its cooldown.
type TargetRespawned struct {
	TargetIndex int
	Position    Vector3
}

func (TargetRespawned) Kind() Kind { return KindTargetRespawned }

func (r TargetRespawned) Fields() map[string]any {
	return map[string]any{"target": r.TargetIndex, "position": r.Position.value()}
}

// WeaponSwitched reports a change of the selected weapon.
type WeaponSwitched struct {
	Previous string
	Current  string
}

func (WeaponSwitched) Kind() Kind { return KindWeaponSwitched }

func (w WeaponSwitched) Fields() map[string]any {
	return map[string]any{"previous": w.Previous, "current": w.Current}
}
