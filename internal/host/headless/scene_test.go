package headless

import (
	"math"
	"testing"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/physics"
)

func TestCastRayHitsBackWall(t *testing.T) {
	s, r := NewRange()

	hit, ok := s.CastRay(physics.V(0, 2, 0), physics.Forward, 100, nil)
	if !ok {
		t.Fatalf("expected ray to hit the back wall")
	}
	if hit.Body != r.Walls[0] {
		t.Fatalf("expected back wall %d, got %d", r.Walls[0], hit.Body)
	}
	//1.- The wall is 0.5 thick and centred on z = 25, so its front face is at 24.75.
	if math.Abs(hit.Distance-24.75) > 1e-9 || hit.Normal != physics.V(0, 0, -1) {
		t.Fatalf("unexpected hit %+v", hit)
	}
	if _, ok := s.CastRay(physics.V(0, 2, 0), physics.Forward, 10, nil); ok {
		t.Fatalf("expected short ray to miss")
	}
}

func TestCastRayGroundNormalAndFilter(t *testing.T) {
	s, r := NewRange()

	hit, ok := s.CastRay(physics.V(3, 1, 3), physics.V(0, -1, 0), 2, nil)
	if !ok || hit.Body != r.Ground || hit.Normal != physics.Up {
		t.Fatalf("expected ground hit with up normal, got %+v ok=%v", hit, ok)
	}
	if math.Abs(hit.Point.Y) > 1e-9 {
		t.Fatalf("expected hit on the ground surface, got %+v", hit.Point)
	}
	skipGround := func(b host.BodyHandle) bool { return b != r.Ground }
	if _, ok := s.CastRay(physics.V(3, 1, 3), physics.V(0, -1, 0), 2, skipGround); ok {
		t.Fatalf("expected filter to exclude the ground")
	}
}

func TestCastRayIgnoresHiddenAndNonCollidable(t *testing.T) {
	s := New()
	box := s.CreateBody(host.ShapeBox, host.Dimensions{Width: 1, Height: 1, Depth: 1}, host.BodyOptions{Collidable: true})
	s.SetTransform(box, host.Pose(physics.V(0, 0, 5), physics.Identity))
	ghost := s.CreateBody(host.ShapeBox, host.Dimensions{Width: 1, Height: 1, Depth: 1}, host.BodyOptions{})
	s.SetTransform(ghost, host.Pose(physics.V(0, 0, 2), physics.Identity))

	hit, ok := s.CastRay(physics.Vec3{}, physics.Forward, 10, nil)
	if !ok || hit.Body != box {
		t.Fatalf("expected collidable box, got %+v", hit)
	}
	s.SetVisible(box, false)
	if _, ok := s.CastRay(physics.Vec3{}, physics.Forward, 10, nil); ok {
		t.Fatalf("expected hidden box to be skipped")
	}
}

func TestCastRaySphere(t *testing.T) {
	s := New()
	ball := s.CreateBody(host.ShapeSphere, host.Dimensions{Diameter: 2}, host.BodyOptions{Collidable: true})
	s.SetTransform(ball, host.Pose(physics.V(0, 0, 10), physics.Identity))

	hit, ok := s.CastRay(physics.Vec3{}, physics.Forward, 20, nil)
	if !ok || math.Abs(hit.Distance-9) > 1e-9 || !hit.Normal.ApproxEqual(physics.V(0, 0, -1), 1e-9) {
		t.Fatalf("unexpected sphere hit %+v ok=%v", hit, ok)
	}
}

func TestPhysicsBodyFallsToGround(t *testing.T) {
	s := New()
	shell := s.CreateBody(host.ShapeCylinder, host.Dimensions{Height: 0.08, Diameter: 0.03}, host.BodyOptions{})
	s.SetTransform(shell, host.Pose(physics.V(0, 2, 0), physics.Identity))
	imp := s.AttachPhysics(shell, host.PhysicsParams{Mass: 0.1, Friction: 0.5, Restitution: 0.3})
	if imp == 0 {
		t.Fatalf("expected impostor handle")
	}
	s.ApplyImpulse(imp, physics.V(0.05, 0, 0), physics.Vec3{})

	for i := 0; i < 600; i++ {
		s.Step(1.0 / 60)
	}
	state, _ := s.Body(shell)
	if math.Abs(state.Transform.Position.Y-0.015) > 1e-6 {
		t.Fatalf("expected shell to rest on the ground, got y=%v", state.Transform.Position.Y)
	}
	if state.Transform.Position.X <= 0 {
		t.Fatalf("expected impulse to move the shell along +x, got %+v", state.Transform.Position)
	}

	s.DisposeBody(shell)
	if c := s.Counts(); c.Bodies != 0 || c.Impostors != 0 {
		t.Fatalf("expected body and impostor to be gone, got %+v", c)
	}
}

func TestAttachPhysicsWithoutEngine(t *testing.T) {
	s := New(WithoutPhysics())
	body := s.CreateBody(host.ShapeSphere, host.Dimensions{Diameter: 0.1}, host.BodyOptions{})
	if s.PhysicsEnabled() || s.AttachPhysics(body, host.PhysicsParams{Mass: 1}) != 0 {
		t.Fatalf("expected physics to be unavailable")
	}
}

func TestAnimationEasesAndCompletes(t *testing.T) {
	s := New()
	body := s.CreateBody(host.ShapeBox, host.Dimensions{Width: 1, Height: 1, Depth: 1}, host.BodyOptions{})
	completed := 0
	anim := host.Animation{
		Tracks: []host.Track{{
			Property: host.PropertyPosition,
			Keys:     []host.Keyframe{{Frame: 0, Value: physics.Vec3{}}, {Frame: 4, Value: physics.V(0, 0, -1)}},
		}},
		DurationTicks: 4,
		Easing:        host.Easing{Mode: host.EaseOut, Power: 2},
	}
	s.Animate(body, anim, func() { completed++ })

	//1.- Ease-out covers 1-(1-0.25)^2 = 43.75% of the distance after the first tick.
	s.Step(1.0 / 60)
	state, _ := s.Body(body)
	if math.Abs(state.Transform.Position.Z+0.4375) > 1e-9 {
		t.Fatalf("unexpected eased position %+v", state.Transform.Position)
	}
	for i := 0; i < 3; i++ {
		s.Step(1.0 / 60)
	}
	state, _ = s.Body(body)
	if completed != 1 || state.Transform.Position.Z != -1 {
		t.Fatalf("expected completion at the final key, completed=%d pos=%+v", completed, state.Transform.Position)
	}
	if s.Counts().Animations != 0 {
		t.Fatalf("expected animation to be retired")
	}
}

func TestAnimationDoneMayChainAnother(t *testing.T) {
	s := New()
	body := s.CreateBody(host.ShapeBox, host.Dimensions{}, host.BodyOptions{})
	chained := false
	s.Animate(body, host.Animation{DurationTicks: 1}, func() {
		s.Animate(body, host.Animation{DurationTicks: 1}, func() { chained = true })
	})
	s.Step(1.0 / 60)
	if s.Counts().Animations != 1 {
		t.Fatalf("expected chained animation to be queued")
	}
	s.Step(1.0 / 60)
	if !chained {
		t.Fatalf("expected chained animation to complete")
	}
}

func TestEmittersAndLights(t *testing.T) {
	s := New()
	e := s.SpawnEmitter(host.EmitterConfig{EmitRate: 60, Burst: 10})
	s.StartEmitter(e)
	s.Step(0.5)
	state, _ := s.Emitter(e)
	if !state.Running || math.Abs(state.Emitted-40) > 1e-9 {
		t.Fatalf("unexpected emitter state %+v", state)
	}
	s.StopEmitter(e)
	s.DisposeEmitter(e)

	l := s.CreateLight("muzzle")
	s.SetLight(l, host.LightState{Intensity: 15, Range: 25})
	if got, _ := s.Light(l); got.Intensity != 15 {
		t.Fatalf("unexpected light %+v", got)
	}
	s.DisposeLight(l)
	if c := s.Counts(); c.Emitters != 0 || c.Lights != 0 {
		t.Fatalf("expected emitter and light to be disposed, got %+v", c)
	}
}
