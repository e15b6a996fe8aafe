package modules

import (
	"shootingrange/rangesim/internal/combat"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/weapon"
)

// ShellEjector throws a spent casing.
type ShellEjector interface {
	Eject(position, direction physics.Vec3) bool
}

// ShellEjection hands each shot's casing to the shell effect, thrown out of
// the weapon's left or right side.
type ShellEjection struct {
	weapon.Lifecycle
	shells ShellEjector
	side   float64
	thrown uint64
}

// NewShellEjection builds the module; side is "left" or "right" (default).
func NewShellEjection(shells ShellEjector, side string) *ShellEjection {
	sign := 1.0
	if side == "left" {
		sign = -1
	}
	return &ShellEjection{shells: shells, side: sign}
}

func (s *ShellEjection) Name() string { return string(combat.ModuleShellEjection) }

// Apply binds the module.
func (s *ShellEjection) Apply(w *weapon.Weapon) error {
	return s.Bind(s.Name(), w)
}

// OnFire ejects a casing from the muzzle out of the configured side.
func (s *ShellEjection) OnFire(ev weapon.FireEvent) {
	if !s.Firing(s.Name()) || s.shells == nil {
		return
	}
	direction := ev.Rotation.Rotate(physics.Right.Scale(s.side))
	if s.shells.Eject(ev.Position, direction) {
		s.thrown++
	}
}

// Thrown counts accepted ejections.
func (s *ShellEjection) Thrown() uint64 { return s.thrown }
