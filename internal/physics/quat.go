package physics

import "math"

// Quat is a rotation quaternion. The zero value is not a valid rotation; use Identity.
type Quat struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
	Z float64 `json:"z" msgpack:"z"`
	W float64 `json:"w" msgpack:"w"`
}

// Identity is the no-op rotation.
var Identity = Quat{W: 1}

// AxisAngle builds a rotation of angle radians around axis.
func AxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalize()
	if axis.IsZero() {
		return Identity
	}
	s := math.Sin(angle / 2)
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: math.Cos(angle / 2)}
}

// YawPitch builds the rotation of a camera that turned yaw radians around the
// world up axis and then pitched around its local right axis.
func YawPitch(yaw, pitch float64) Quat {
	return AxisAngle(Up, yaw).Mul(AxisAngle(Right, pitch))
}

// FromEuler converts XYZ Euler angles in radians into a quaternion (applied Y, X, Z).
func FromEuler(e Vec3) Quat {
	return AxisAngle(Up, e.Y).Mul(AxisAngle(Right, e.X)).Mul(AxisAngle(Forward, e.Z))
}

// LookRotation returns the rotation that maps the local forward axis onto dir.
func LookRotation(dir Vec3) Quat {
	dir = dir.Normalize()
	if dir.IsZero() {
		return Identity
	}
	dot := Forward.Dot(dir)
	switch {
	case dot > 1-1e-9:
		return Identity
	case dot < -1+1e-9:
		return AxisAngle(Up, math.Pi)
	}
	axis := Forward.Cross(dir)
	return AxisAngle(axis, math.Acos(dot))
}

// Mul composes q then o (o is applied first when rotating vectors).
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}
