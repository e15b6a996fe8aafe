package physics

import (
	"math"
	"testing"
)

func TestBodyIntegrateFallsAndSettles(t *testing.T) {
	body := &Body{Position: V(0, 1, 0), Mass: 0.1, Friction: 0.5, Restitution: 0.3, Radius: 0.015}

	//1.- One step of free fall accelerates downwards.
	body.Integrate(1.0/60, 0)
	if body.Velocity.Y >= 0 || body.Position.Y >= 1 {
		t.Fatalf("expected the body to fall, got %+v", body)
	}

	//2.- After a few simulated seconds it rests on the ground plane.
	for i := 0; i < 600; i++ {
		body.Integrate(1.0/60, 0)
	}
	if math.Abs(body.Position.Y-body.Radius) > 1e-6 {
		t.Fatalf("expected body to rest at its radius, got y=%v", body.Position.Y)
	}
	if !body.Asleep {
		t.Fatalf("expected settled body to sleep, velocity=%+v", body.Velocity)
	}
}

func TestBodyApplyImpulseUsesMass(t *testing.T) {
	body := &Body{Mass: 0.5, Asleep: true}
	body.ApplyImpulse(V(1, 0, 0))
	if body.Velocity.X != 2 || body.Asleep {
		t.Fatalf("unexpected velocity after impulse: %+v", body)
	}

	massless := &Body{}
	massless.ApplyImpulse(V(1, 0, 0))
	if !massless.Velocity.IsZero() {
		t.Fatalf("massless bodies must ignore impulses")
	}
}

func TestIntegrateHandlesInvalidInput(t *testing.T) {
	var body *Body
	body.Integrate(1, 0)
	body.ApplyImpulse(V(1, 1, 1))

	still := &Body{Position: V(0, 5, 0), Mass: 1}
	still.Integrate(0, 0)
	if still.Position.Y != 5 {
		t.Fatalf("zero step must not move the body")
	}
}

func TestWrapAngleStaysBounded(t *testing.T) {
	for _, angle := range []float64{0, math.Pi, -math.Pi, 7, -13, 100} {
		got := wrapAngle(angle)
		if got < -math.Pi || got >= math.Pi {
			t.Fatalf("wrapAngle(%v) = %v out of range", angle, got)
		}
		if math.Abs(math.Sin(got)-math.Sin(angle)) > 1e-9 {
			t.Fatalf("wrapAngle(%v) changed the angle to %v", angle, got)
		}
	}
}
