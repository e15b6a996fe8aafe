package weapon

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/host/mocks"
	"shootingrange/rangesim/internal/logging"
)

func shotgun() Descriptor {
	return Descriptor{Name: "shotgun", FireRate: 800 * time.Millisecond, Damage: 50, Spread: 0.1}
}

func TestManagerFirstRegisteredIsCurrent(t *testing.T) {
	m := NewManager(logging.NewTestLogger())
	rifleWeapon, _ := New(rifle(), nil, nil)
	shotgunWeapon, _ := New(shotgun(), nil, nil)

	if err := m.Register("assaultRifle", rifleWeapon); err != nil {
		t.Fatalf("register rifle: %v", err)
	}
	if err := m.Register("shotgun", shotgunWeapon); err != nil {
		t.Fatalf("register shotgun: %v", err)
	}
	if m.Current() != rifleWeapon || !rifleWeapon.Visible() || shotgunWeapon.Visible() {
		t.Fatalf("expected the rifle to be current and the only visible weapon")
	}
	if err := m.Register("shotgun", shotgunWeapon); !errors.Is(err, ErrDuplicateWeapon) {
		t.Fatalf("expected duplicate registration error, got %v", err)
	}
	if names := m.Names(); len(names) != 2 || names[0] != "assaultRifle" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestManagerSwitchTogglesVisibility(t *testing.T) {
	ctrl := gomock.NewController(t)
	bodies := mocks.NewMockBodies(ctrl)
	bodies.EXPECT().CreateBody(gomock.Any(), gomock.Any(), gomock.Any()).Return(host.BodyHandle(1))
	bodies.EXPECT().CreateBody(gomock.Any(), gomock.Any(), gomock.Any()).Return(host.BodyHandle(2))
	bodies.EXPECT().SetTransform(gomock.Any(), gomock.Any()).AnyTimes()

	//1.- Construction hides both, registration shows the rifle only.
	bodies.EXPECT().SetVisible(host.BodyHandle(1), false)
	bodies.EXPECT().SetVisible(host.BodyHandle(2), false).Times(2)
	bodies.EXPECT().SetVisible(host.BodyHandle(1), true)

	m := NewManager(logging.NewTestLogger())
	a, _ := New(rifle(), bodies, nil)
	b, _ := New(shotgun(), bodies, nil)
	_ = m.Register("assaultRifle", a)
	_ = m.Register("shotgun", b)

	//2.- Switching hides the old weapon and shows the new one exactly once.
	gomock.InOrder(
		bodies.EXPECT().SetVisible(host.BodyHandle(1), false),
		bodies.EXPECT().SetVisible(host.BodyHandle(2), true),
	)
	var switches [][2]string
	m.OnSwitch(func(previous, current string) { switches = append(switches, [2]string{previous, current}) })

	if !m.Switch("shotgun") {
		t.Fatalf("switch failed")
	}
	//3.- Re-selecting the active weapon touches nothing.
	if !m.Switch("shotgun") {
		t.Fatalf("switch to active weapon must report true")
	}
	if m.Switch("railgun") {
		t.Fatalf("unknown weapon must report false")
	}
	if m.CurrentName() != "shotgun" || len(switches) != 1 || switches[0] != [2]string{"assaultRifle", "shotgun"} {
		t.Fatalf("unexpected switch state current=%s switches=%v", m.CurrentName(), switches)
	}
}

func TestManagerAddModule(t *testing.T) {
	m := NewManager(logging.NewTestLogger())
	w, _ := New(rifle(), nil, nil)
	_ = m.Register("assaultRifle", w)
	var order []string

	if err := m.AddModule("assaultRifle", &recordingModule{name: "recoil", log: &order}); err != nil {
		t.Fatalf("add module: %v", err)
	}
	if err := m.AddModule("missing", &recordingModule{name: "recoil", log: &order}); !errors.Is(err, ErrUnknownWeapon) {
		t.Fatalf("expected ErrUnknownWeapon, got %v", err)
	}
	if len(w.Modules()) != 1 {
		t.Fatalf("expected one module attached")
	}
}
