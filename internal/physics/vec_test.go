package physics

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestNormalizeZeroVector(t *testing.T) {
	if got := (Vec3{}).Normalize(); !got.IsZero() {
		t.Fatalf("expected zero vector, got %+v", got)
	}
}

func TestClampMagnitude(t *testing.T) {
	clamped := ClampMagnitude(V(3, 4, 0), 2.5)
	if math.Abs(clamped.Length()-2.5) > 1e-9 {
		t.Fatalf("expected length 2.5, got %v", clamped.Length())
	}
	if got := ClampMagnitude(V(3, 4, 0), 0); got != V(3, 4, 0) {
		t.Fatalf("non-positive limit must disable the clamp, got %+v", got)
	}
}

func TestLookRotationMapsForward(t *testing.T) {
	for _, dir := range []Vec3{V(1, 0, 0), V(0, 0, -1), V(0.3, 0.5, 0.8), V(0, 1, 0)} {
		got := LookRotation(dir).Rotate(Forward)
		if !got.ApproxEqual(dir.Normalize(), 1e-9) {
			t.Fatalf("LookRotation(%+v) rotated forward to %+v", dir, got)
		}
	}
}

func TestYawPitchRotatesForward(t *testing.T) {
	//1.- A quarter turn of yaw points the camera along +X.
	got := YawPitch(math.Pi/2, 0).Rotate(Forward)
	if !got.ApproxEqual(V(1, 0, 0), 1e-9) {
		t.Fatalf("unexpected yawed forward %+v", got)
	}
	//2.- Negative pitch around the right axis raises the aim.
	got = YawPitch(0, -math.Pi/2).Rotate(Forward)
	if !got.ApproxEqual(V(0, 1, 0), 1e-9) {
		t.Fatalf("unexpected pitched forward %+v", got)
	}
}

func TestRotationPreservesLength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		axis := V(rapid.Float64Range(-1, 1).Draw(t, "ax"), rapid.Float64Range(-1, 1).Draw(t, "ay"), rapid.Float64Range(-1, 1).Draw(t, "az"))
		angle := rapid.Float64Range(-10, 10).Draw(t, "angle")
		v := V(rapid.Float64Range(-50, 50).Draw(t, "x"), rapid.Float64Range(-50, 50).Draw(t, "y"), rapid.Float64Range(-50, 50).Draw(t, "z"))

		rotated := AxisAngle(axis, angle).Rotate(v)
		if math.Abs(rotated.Length()-v.Length()) > 1e-6 {
			t.Fatalf("rotation changed length from %v to %v", v.Length(), rotated.Length())
		}
	})
}
