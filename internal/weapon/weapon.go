// Package weapon implements configuration-driven weapons that broadcast fire
// events to an ordered list of independently configured modules.
package weapon

import (
	"errors"
	"fmt"
	"time"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/invariant"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/physics"
)

// ErrWeaponDisposed is returned when attaching to a disposed weapon.
var ErrWeaponDisposed = errors.New("weapon disposed")

// DefaultRecoilAmount is the recoil amount recoil profiles are authored for.
// Weapons with a larger amount kick proportionally harder.
const DefaultRecoilAmount = 0.1

// DefaultMountOffset places the weapon root relative to the camera.
var DefaultMountOffset = physics.V(0.3, -0.3, 1)

// Muzzle is the discharge point in weapon-local space.
type Muzzle struct {
	Offset      physics.Vec3
	Orientation physics.Quat
}

// Descriptor holds everything that distinguishes one weapon from another.
type Descriptor struct {
	Name         string
	FireRate     time.Duration
	Damage       float64
	Spread       float64
	Automatic    bool
	RecoilAmount float64
	Pellets      int
	Muzzle       Muzzle
	MountOffset  physics.Vec3
	BodySize     host.Dimensions
}

// Validate reports every problem with the descriptor.
func (d Descriptor) Validate() error {
	var problems []error
	if d.Name == "" {
		problems = append(problems, errors.New("name is required"))
	}
	if d.FireRate <= 0 {
		problems = append(problems, fmt.Errorf("fire rate must be positive, got %v", d.FireRate))
	}
	if d.Damage < 0 {
		problems = append(problems, fmt.Errorf("damage must be non-negative, got %v", d.Damage))
	}
	if d.Spread < 0 {
		problems = append(problems, fmt.Errorf("spread must be non-negative, got %v", d.Spread))
	}
	if d.Pellets < 0 {
		problems = append(problems, fmt.Errorf("pellets must be non-negative, got %d", d.Pellets))
	}
	return errors.Join(problems...)
}

// Mount supplies the world pose the weapon hangs from, usually the camera.
type Mount interface {
	WorldPose() (physics.Vec3, physics.Quat)
	Body() host.BodyHandle
}

// Weapon is one registered firearm.
type Weapon struct {
	desc     Descriptor
	bodies   host.Bodies
	mount    Mount
	root     host.BodyHandle
	modules  []Module
	visible  bool
	disposed bool
	shots    uint64
	now      func() time.Time
	log      *logging.Logger
}

// Option customises a weapon.
type Option func(*Weapon)

// WithClock stamps fire events with a custom clock.
func WithClock(now func() time.Time) Option {
	return func(w *Weapon) {
		if now != nil {
			w.now = now
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(w *Weapon) {
		if logger != nil {
			w.log = logger
		}
	}
}

// New validates desc and creates the weapon root body, hidden until the
// manager selects it.
func New(desc Descriptor, bodies host.Bodies, mount Mount, opts ...Option) (*Weapon, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("weapon %q: %w", desc.Name, err)
	}
	if desc.Pellets == 0 {
		desc.Pellets = 1
	}
	if desc.RecoilAmount == 0 {
		desc.RecoilAmount = DefaultRecoilAmount
	}
	if desc.MountOffset.IsZero() {
		desc.MountOffset = DefaultMountOffset
	}
	if desc.Muzzle.Orientation == (physics.Quat{}) {
		desc.Muzzle.Orientation = physics.Identity
	}
	w := &Weapon{desc: desc, bodies: bodies, mount: mount, now: time.Now, log: logging.L()}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.log.With(logging.String("weapon", desc.Name))
	if bodies != nil {
		var parent host.BodyHandle
		if mount != nil {
			parent = mount.Body()
		}
		w.root = bodies.CreateBody(host.ShapeBox, desc.BodySize, host.BodyOptions{Name: desc.Name, Parent: parent})
		bodies.SetTransform(w.root, w.RestPose())
		bodies.SetVisible(w.root, false)
	}
	return w, nil
}

// Attach applies module to the weapon and appends it to the dispatch order.
func (w *Weapon) Attach(module Module) error {
	if w == nil || module == nil {
		return ErrNilWeapon
	}
	if !invariant.Check(!w.disposed, "attach to disposed weapon", logging.String("module", module.Name())) {
		return ErrWeaponDisposed
	}
	if err := module.Apply(w); err != nil {
		return fmt.Errorf("apply %s to %s: %w", module.Name(), w.desc.Name, err)
	}
	w.modules = append(w.modules, module)
	w.log.Debug("module attached", logging.String("module", module.Name()), logging.Int("position", len(w.modules)))
	return nil
}

// Fire discharges once toward direction and dispatches the event to every
// module in attachment order. It reports false for disposed weapons.
func (w *Weapon) Fire(direction physics.Vec3) (FireEvent, bool) {
	if w == nil {
		return FireEvent{}, false
	}
	if !invariant.Check(!w.disposed, "fire on disposed weapon", logging.String("weapon", w.desc.Name)) {
		return FireEvent{}, false
	}
	//1.- Resolve the muzzle and aim in world space.
	position, rotation := w.MuzzleWorldPose()
	direction = direction.Normalize()
	if direction.IsZero() {
		direction = rotation.Rotate(physics.Forward)
	}
	w.shots++
	ev := FireEvent{
		Weapon:    w.desc.Name,
		Shot:      w.shots,
		Position:  position,
		Direction: direction,
		Rotation:  rotation,
		At:        w.now(),
	}
	//2.- Modules see the same event and never learn about each other.
	for _, module := range w.modules {
		module.OnFire(ev)
	}
	return ev, true
}

// Update forwards the tick to modules that need it.
func (w *Weapon) Update(dt time.Duration) {
	if w == nil || w.disposed {
		return
	}
	for _, module := range w.modules {
		if u, ok := module.(Updater); ok {
			u.Update(dt)
		}
	}
}

// Dispose releases module resources and the root body. Later calls are no-ops.
func (w *Weapon) Dispose() {
	if w == nil || w.disposed {
		return
	}
	w.disposed = true
	for _, module := range w.modules {
		if d, ok := module.(Disposer); ok {
			d.Dispose()
		}
	}
	if w.bodies != nil && w.root != 0 {
		w.bodies.DisposeBody(w.root)
	}
}

// MuzzleWorldPose transforms the weapon-local muzzle by the root body's
// current pose and then by the mount pose. Hosts that cannot report the root
// transform fall back to the rest pose.
func (w *Weapon) MuzzleWorldPose() (physics.Vec3, physics.Quat) {
	mountPos, mountRot := physics.Vec3{}, physics.Identity
	if w.mount != nil {
		mountPos, mountRot = w.mount.WorldPose()
	}
	root := w.RestPose()
	if reader, ok := w.bodies.(host.TransformReader); ok && w.root != 0 {
		if live, ok := reader.Transform(w.root); ok {
			root = live
		}
	}
	local := root.Position.Add(root.Rotation.Rotate(w.desc.Muzzle.Offset))
	return mountPos.Add(mountRot.Rotate(local)), mountRot.Mul(root.Rotation).Mul(w.desc.Muzzle.Orientation)
}

// RestPose is the root transform relative to the mount.
func (w *Weapon) RestPose() host.Transform {
	return host.Pose(w.desc.MountOffset, physics.Identity)
}

// SetVisible shows or hides the weapon body.
func (w *Weapon) SetVisible(visible bool) {
	if w == nil || w.disposed {
		return
	}
	w.visible = visible
	if w.bodies != nil && w.root != 0 {
		w.bodies.SetVisible(w.root, visible)
	}
}

// ScaleRecoil multiplies the recoil amount.
func (w *Weapon) ScaleRecoil(factor float64) {
	if w == nil || !(factor > 0) {
		return
	}
	w.desc.RecoilAmount *= factor
}

func (w *Weapon) Name() string { return w.desc.Name }
func (w *Weapon) Descriptor() Descriptor { return w.desc }
func (w *Weapon) FireRate() time.Duration { return w.desc.FireRate }
func (w *Weapon) Automatic() bool { return w.desc.Automatic }
func (w *Weapon) Spread() float64 { return w.desc.Spread }
func (w *Weapon) Damage() float64 { return w.desc.Damage }
func (w *Weapon) Pellets() int { return w.desc.Pellets }
func (w *Weapon) RecoilAmount() float64 { return w.desc.RecoilAmount }
func (w *Weapon) Root() host.BodyHandle { return w.root }
func (w *Weapon) Visible() bool { return w.visible }
func (w *Weapon) Disposed() bool { return w.disposed }
func (w *Weapon) Shots() uint64 { return w.shots }
func (w *Weapon) Modules() []Module { return append([]Module(nil), w.modules...) }
