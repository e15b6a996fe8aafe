package headless

import (
	"math"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/physics"
)

// CastRay returns the nearest visible collidable body along the ray. Boxes,
// sprites and cylinders are treated as axis-aligned boxes, spheres exactly.
func (s *Scene) CastRay(origin, direction physics.Vec3, maxLength float64, filter host.RayFilter) (host.RayHit, bool) {
	direction = direction.Normalize()
	if direction.IsZero() || !(maxLength > 0) {
		return host.RayHit{}, false
	}
	var best host.RayHit
	found := false
	for h, b := range s.bodies {
		if !b.Options.Collidable || !b.Visible {
			continue
		}
		if filter != nil && !filter(h) {
			continue
		}
		var (
			dist   float64
			normal physics.Vec3
			ok     bool
		)
		center := s.worldPosition(h)
		if b.Shape == host.ShapeSphere {
			dist, normal, ok = raySphere(origin, direction, center, b.Dimensions.Diameter/2*b.Transform.Scale.X)
		} else {
			dist, normal, ok = rayBox(origin, direction, center, halfExtents(b))
		}
		if !ok || dist > maxLength {
			continue
		}
		//1.- Nearest wins; equal distances fall back to the older body.
		if !found || dist < best.Distance || (dist == best.Distance && h < best.Body) {
			best = host.RayHit{Body: h, Point: origin.Add(direction.Scale(dist)), Normal: normal, Distance: dist}
			found = true
		}
	}
	return best, found
}

func (s *Scene) worldPosition(h host.BodyHandle) physics.Vec3 {
	b, ok := s.bodies[h]
	if !ok {
		return physics.Vec3{}
	}
	pos := b.Transform.Position
	for depth := 0; b.Options.Parent != 0 && depth < 8; depth++ {
		parent, ok := s.bodies[b.Options.Parent]
		if !ok {
			break
		}
		pos = parent.Transform.Position.Add(parent.Transform.Rotation.Rotate(pos))
		b = parent
	}
	return pos
}

func halfExtents(b *BodyState) physics.Vec3 {
	d := b.Dimensions
	sc := b.Transform.Scale
	switch b.Shape {
	case host.ShapeCylinder:
		return physics.V(d.Diameter/2*sc.X, d.Height/2*sc.Y, d.Diameter/2*sc.Z)
	case host.ShapeDisc:
		return physics.V(d.Diameter/2*sc.X, d.Diameter/2*sc.Y, 0)
	default:
		return physics.V(d.Width/2*sc.X, d.Height/2*sc.Y, d.Depth/2*sc.Z)
	}
}

// rayBox is the slab test. Rays starting inside the box do not hit it.
func rayBox(origin, dir, center, half physics.Vec3) (float64, physics.Vec3, bool) {
	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{center.X - half.X, center.Y - half.Y, center.Z - half.Z}
	hi := [3]float64{center.X + half.X, center.Y + half.Y, center.Z + half.Z}

	tNear, tFar := math.Inf(-1), math.Inf(1)
	axis, sign := -1, 0.0
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, physics.Vec3{}, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		faceSign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			faceSign = 1.0
		}
		if t1 > tNear {
			tNear, axis, sign = t1, i, faceSign
		}
		tFar = math.Min(tFar, t2)
		if tNear > tFar {
			return 0, physics.Vec3{}, false
		}
	}
	if tNear < 0 || axis < 0 {
		return 0, physics.Vec3{}, false
	}
	var n [3]float64
	n[axis] = sign
	return tNear, physics.V(n[0], n[1], n[2]), true
}

func raySphere(origin, dir, center physics.Vec3, radius float64) (float64, physics.Vec3, bool) {
	if !(radius > 0) {
		return 0, physics.Vec3{}, false
	}
	oc := origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.LengthSq() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, physics.Vec3{}, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		return 0, physics.Vec3{}, false
	}
	hit := origin.Add(dir.Scale(t))
	return t, hit.Sub(center).Normalize(), true
}
