package physics

import "math"

const (
	// Gravity is the downward acceleration applied to free bodies.
	Gravity = -9.81
	// restSpeed is the bounce speed below which a body stops bouncing.
	restSpeed = 0.5
)

// Body is the integration state of a simulated rigid body.
type Body struct {
	Position        Vec3
	Velocity        Vec3
	AngularVelocity Vec3
	Orientation     Vec3
	Mass            float64
	Friction        float64
	Restitution     float64
	// Radius is the distance from the centre to the ground contact point.
	Radius float64
	Asleep bool
}

// ApplyImpulse changes the linear velocity by impulse/mass.
func (b *Body) ApplyImpulse(impulse Vec3) {
	if b == nil || !(b.Mass > 0) {
		return
	}
	b.Velocity = b.Velocity.Add(impulse.Scale(1 / b.Mass))
	b.Asleep = false
}

// Integrate advances the body by step seconds under gravity and resolves
// contact with the ground plane at groundY.
func (b *Body) Integrate(step, groundY float64) {
	//1.- Skip integration when inputs are missing or the body has settled.
	if b == nil || step <= 0 || b.Asleep {
		return
	}
	//2.- Semi-implicit Euler: velocity first, then position.
	b.Velocity.Y += Gravity * step
	b.Position = b.Position.Add(b.Velocity.Scale(step))
	b.Orientation = wrapAngles(b.Orientation.Add(b.AngularVelocity.Scale(step)))

	//3.- Bounce off the ground using restitution and bleed tangential speed with friction.
	floor := groundY + b.Radius
	if b.Position.Y >= floor {
		return
	}
	b.Position.Y = floor
	if b.Velocity.Y < 0 {
		b.Velocity.Y = -b.Velocity.Y * b.Restitution
		if b.Velocity.Y < restSpeed {
			b.Velocity.Y = 0
		}
	}
	damping := math.Max(0, 1-b.Friction)
	b.Velocity.X *= damping
	b.Velocity.Z *= damping
	b.AngularVelocity = b.AngularVelocity.Scale(damping)

	//4.- Put the body to sleep once it barely moves while touching the ground.
	if b.Velocity.LengthSq() < 1e-4 && b.AngularVelocity.LengthSq() < 1e-4 {
		b.Velocity = Vec3{}
		b.AngularVelocity = Vec3{}
		b.Asleep = true
	}
}

// wrapAngles keeps Euler angles inside [-pi, pi).
func wrapAngles(v Vec3) Vec3 {
	return Vec3{X: wrapAngle(v.X), Y: wrapAngle(v.Y), Z: wrapAngle(v.Z)}
}

func wrapAngle(angle float64) float64 {
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}
