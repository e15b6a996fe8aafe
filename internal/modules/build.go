package modules

import (
	"fmt"
	"math/rand"

	"shootingrange/rangesim/internal/combat"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/scheduler"
	"shootingrange/rangesim/internal/weapon"
)

// Deps are the collaborators catalog modules are wired to.
type Deps struct {
	Scene    FlashScene
	Lights   LightLender
	Sched    scheduler.Scheduler
	Shells   ShellEjector
	Launcher Launcher
	Rand     *rand.Rand
	Logger   *logging.Logger
}

// Build instantiates the module a catalog entry describes.
func Build(spec combat.ModuleSpec, deps Deps) (weapon.Module, error) {
	switch spec.Kind {
	case combat.ModuleRecoil:
		return NewRecoil(deps.Scene, spec.Recoil, deps.Logger), nil
	case combat.ModuleEnhancedRecoil:
		return NewEnhancedRecoil(spec.Multiplier), nil
	case combat.ModuleMuzzleFlash:
		return NewMuzzleFlash(deps.Scene, deps.Lights, deps.Sched, spec.Flash, deps.Logger), nil
	case combat.ModuleShellEjection:
		return NewShellEjection(deps.Shells, spec.Side), nil
	case combat.ModuleProjectile:
		return NewProjectile(deps.Launcher, spec.Projectile, deps.Rand), nil
	default:
		return nil, fmt.Errorf("unknown module kind %q", spec.Kind)
	}
}

// Equip builds and attaches every module of a loadout in catalog order.
func Equip(w *weapon.Weapon, specs []combat.ModuleSpec, deps Deps) ([]weapon.Module, error) {
	attached := make([]weapon.Module, 0, len(specs))
	for _, spec := range specs {
		module, err := Build(spec, deps)
		if err != nil {
			return attached, err
		}
		if err := w.Attach(module); err != nil {
			return attached, err
		}
		attached = append(attached, module)
	}
	return attached, nil
}
