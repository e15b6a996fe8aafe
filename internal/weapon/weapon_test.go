package weapon

import (
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/host/headless"
	"shootingrange/rangesim/internal/host/mocks"
	"shootingrange/rangesim/internal/physics"
)

type recordingModule struct {
	Lifecycle
	name    string
	log     *[]string
	applied int
	events  []FireEvent
}

func (r *recordingModule) Name() string { return r.name }

func (r *recordingModule) Apply(w *Weapon) error {
	if err := r.Bind(r.name, w); err != nil {
		return err
	}
	r.applied++
	return nil
}

func (r *recordingModule) OnFire(ev FireEvent) {
	if !r.Firing(r.name) {
		return
	}
	r.events = append(r.events, ev)
	*r.log = append(*r.log, r.name)
}

type fixedMount struct {
	position physics.Vec3
	rotation physics.Quat
}

func (m fixedMount) WorldPose() (physics.Vec3, physics.Quat) { return m.position, m.rotation }
func (m fixedMount) Body() host.BodyHandle { return 0 }

func rifle() Descriptor {
	return Descriptor{
		Name:      "assaultRifle",
		FireRate:  100 * time.Millisecond,
		Damage:    15,
		Spread:    0.03,
		Automatic: true,
		Muzzle:    Muzzle{Offset: physics.V(0, 0, 0.9)},
	}
}

func TestFireDispatchesInAttachmentOrder(t *testing.T) {
	w, err := New(rifle(), nil, fixedMount{rotation: physics.Identity})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	var order []string
	first := &recordingModule{name: "recoil", log: &order}
	second := &recordingModule{name: "flash", log: &order}
	if err := w.Attach(first); err != nil {
		t.Fatalf("attach first: %v", err)
	}
	if err := w.Attach(second); err != nil {
		t.Fatalf("attach second: %v", err)
	}

	ev, ok := w.Fire(physics.V(0, 0, 2))
	if !ok {
		t.Fatalf("expected fire to succeed")
	}
	if len(order) != 2 || order[0] != "recoil" || order[1] != "flash" {
		t.Fatalf("unexpected dispatch order %v", order)
	}
	//1.- Every module receives the same event with a normalised direction.
	if first.events[0] != second.events[0] || ev.Direction != physics.V(0, 0, 1) || ev.Shot != 1 {
		t.Fatalf("modules saw different events: %+v vs %+v", first.events[0], second.events[0])
	}
}

func TestApplyRunsExactlyOnce(t *testing.T) {
	w, _ := New(rifle(), nil, nil)
	other, _ := New(rifle(), nil, nil)
	var order []string
	module := &recordingModule{name: "recoil", log: &order}

	if err := w.Attach(module); err != nil {
		t.Fatalf("attach: %v", err)
	}
	err := other.Attach(module)
	if !errors.Is(err, ErrAlreadyApplied) {
		t.Fatalf("expected ErrAlreadyApplied, got %v", err)
	}
	if module.applied != 1 || module.Weapon() != w {
		t.Fatalf("module rebound: applied=%d", module.applied)
	}
	if len(other.Modules()) != 0 {
		t.Fatalf("rejected module must not be attached")
	}
}

func TestFireBeforeApplyIsIgnored(t *testing.T) {
	var order []string
	module := &recordingModule{name: "loose", log: &order}
	module.OnFire(FireEvent{})
	if len(module.events) != 0 {
		t.Fatalf("unapplied module reacted to a fire event")
	}
}

func TestFireOnDisposedWeaponIsNoop(t *testing.T) {
	w, _ := New(rifle(), nil, nil)
	var order []string
	module := &recordingModule{name: "flash", log: &order}
	_ = w.Attach(module)

	w.Dispose()
	w.Dispose()
	if _, ok := w.Fire(physics.Forward); ok {
		t.Fatalf("disposed weapon must not fire")
	}
	if len(order) != 0 {
		t.Fatalf("modules reacted after dispose: %v", order)
	}
	if err := w.Attach(&recordingModule{name: "late", log: &order}); !errors.Is(err, ErrWeaponDisposed) {
		t.Fatalf("expected ErrWeaponDisposed, got %v", err)
	}
}

func TestMuzzleWorldPoseFollowsMount(t *testing.T) {
	mount := fixedMount{position: physics.V(0, 1.8, 0), rotation: physics.YawPitch(math.Pi/2, 0)}
	w, _ := New(rifle(), nil, mount)

	position, _ := w.MuzzleWorldPose()
	//1.- Local (0.3,-0.3,1.9) yawed a quarter turn maps z onto x and x onto -z.
	want := physics.V(1.9, 1.5, -0.3)
	if !position.ApproxEqual(want, 1e-9) {
		t.Fatalf("expected muzzle at %+v, got %+v", want, position)
	}

	ev, _ := w.Fire(physics.Vec3{})
	if !ev.Direction.ApproxEqual(physics.V(1, 0, 0), 1e-9) {
		t.Fatalf("zero aim should fall back to the weapon forward, got %+v", ev.Direction)
	}
}

func TestMuzzleWorldPoseFollowsAnimatedRoot(t *testing.T) {
	scene := headless.New()
	mount := fixedMount{position: physics.V(0, 1.8, 0), rotation: physics.Identity}
	w, err := New(rifle(), scene, mount)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rest, _ := w.MuzzleWorldPose()
	if want := physics.V(0.3, 1.5, 1.9); !rest.ApproxEqual(want, 1e-9) {
		t.Fatalf("expected rest muzzle at %+v, got %+v", want, rest)
	}

	//1.- Push the root back and up the way a recoil kick does.
	kicked := w.RestPose()
	kicked.Position = kicked.Position.Add(physics.V(0, 0.02, -0.1))
	scene.SetTransform(w.Root(), kicked)
	position, _ := w.MuzzleWorldPose()
	if want := rest.Add(physics.V(0, 0.02, -0.1)); !position.ApproxEqual(want, 1e-9) {
		t.Fatalf("expected kicked muzzle at %+v, got %+v", want, position)
	}

	//2.- A tilted root tips the muzzle and the fallback aim with it.
	kicked.Rotation = physics.YawPitch(math.Pi/2, 0)
	scene.SetTransform(w.Root(), kicked)
	ev, _ := w.Fire(physics.Vec3{})
	if !ev.Direction.ApproxEqual(physics.V(1, 0, 0), 1e-9) {
		t.Fatalf("expected the muzzle to follow the root rotation, got %+v", ev.Direction)
	}
}

func TestDescriptorValidation(t *testing.T) {
	_, err := New(Descriptor{Spread: -1}, nil, nil)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	w, err := New(rifle(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Pellets() != 1 || w.Descriptor().MountOffset != DefaultMountOffset {
		t.Fatalf("defaults not applied: %+v", w.Descriptor())
	}
}

func TestNewCreatesHiddenRootBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	bodies := mocks.NewMockBodies(ctrl)

	bodies.EXPECT().CreateBody(host.ShapeBox, gomock.Any(), gomock.Any()).Return(host.BodyHandle(4))
	bodies.EXPECT().SetTransform(host.BodyHandle(4), host.Pose(DefaultMountOffset, physics.Identity))
	bodies.EXPECT().SetVisible(host.BodyHandle(4), false)
	bodies.EXPECT().DisposeBody(host.BodyHandle(4))

	w, err := New(rifle(), bodies, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if w.Root() != 4 {
		t.Fatalf("unexpected root %d", w.Root())
	}
	w.Dispose()
}
