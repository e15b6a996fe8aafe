package weapon

import (
	"errors"
	"time"

	"shootingrange/rangesim/internal/invariant"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/physics"
)

var (
	// ErrAlreadyApplied is returned when a module is applied a second time.
	ErrAlreadyApplied = errors.New("module already applied")
	// ErrModuleDisposed is returned when applying a module that was disposed.
	ErrModuleDisposed = errors.New("module disposed")
	// ErrNilWeapon is returned when applying a module to nothing.
	ErrNilWeapon = errors.New("nil weapon")
)

// FireEvent is one discharge of a weapon.
type FireEvent struct {
	Weapon string
	Shot   uint64
	// Position is the muzzle in world space.
	Position physics.Vec3
	// Direction is the unit aim direction.
	Direction physics.Vec3
	// Rotation is the weapon's world rotation, used for side-relative effects.
	Rotation physics.Quat
	At       time.Time
}

// Module is a weapon behaviour. Apply is called exactly once before any
// OnFire; OnFire runs synchronously for every discharge in attachment order.
type Module interface {
	Name() string
	Apply(w *Weapon) error
	OnFire(ev FireEvent)
}

// Updater is implemented by modules with per-tick work.
type Updater interface {
	Update(dt time.Duration)
}

// Disposer is implemented by modules that own host resources.
type Disposer interface {
	Dispose()
}

// State is a module's lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateApplied
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateApplied:
		return "applied"
	case StateDisposed:
		return "disposed"
	default:
		return "uninitialized"
	}
}

// Lifecycle is embedded by modules to enforce
// uninitialized -> applied -> (firing)* -> disposed.
type Lifecycle struct {
	state  State
	weapon *Weapon
}

// Bind moves the module to applied and remembers its weapon.
func (l *Lifecycle) Bind(module string, w *Weapon) error {
	var err error
	switch {
	case l.state == StateApplied:
		err = ErrAlreadyApplied
	case l.state == StateDisposed:
		err = ErrModuleDisposed
	case w == nil:
		err = ErrNilWeapon
	}
	if !invariant.Check(err == nil, "module bind rejected", logging.String("module", module), logging.String("state", l.state.String())) {
		return err
	}
	l.state = StateApplied
	l.weapon = w
	return nil
}

// Firing reports whether the module may react to a fire event. Firing before
// Apply or after Dispose is an invariant violation.
func (l *Lifecycle) Firing(module string) bool {
	return invariant.Check(l.state == StateApplied, "module fired outside applied state",
		logging.String("module", module), logging.String("state", l.state.String()))
}

// Retire moves the module to disposed. It reports false when already disposed.
func (l *Lifecycle) Retire() bool {
	if l.state == StateDisposed {
		return false
	}
	l.state = StateDisposed
	return true
}

// State returns the lifecycle position.
func (l *Lifecycle) State() State { return l.state }

// Weapon returns the bound weapon, nil before Apply.
func (l *Lifecycle) Weapon() *Weapon { return l.weapon }
