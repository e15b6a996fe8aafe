package headless

import (
	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/physics"
)

// Range describes the static geometry of the shooting range.
type Range struct {
	Ground host.BodyHandle
	Walls  []host.BodyHandle
}

// BuildRange adds the 50x50 ground and the back, left and right walls as
// collidable boxes. The ground's top face sits at y = 0.
func (s *Scene) BuildRange() Range {
	grey := host.Color{R: 0.4, G: 0.4, B: 0.4}
	ground := s.CreateBody(host.ShapeBox, host.Dimensions{Width: 50, Height: 0.1, Depth: 50},
		host.BodyOptions{Name: "ground", Collidable: true, Color: grey})
	s.SetTransform(ground, host.Pose(physics.V(0, -0.05, 0), physics.Identity))

	wall := host.Color{R: 0.3, G: 0.3, B: 0.35}
	specs := []struct {
		name     string
		position physics.Vec3
		dims     host.Dimensions
	}{
		{"wall_back", physics.V(0, 5, 25), host.Dimensions{Width: 50, Height: 10, Depth: 0.5}},
		{"wall_left", physics.V(-25, 5, 0), host.Dimensions{Width: 0.5, Height: 10, Depth: 50}},
		{"wall_right", physics.V(25, 5, 0), host.Dimensions{Width: 0.5, Height: 10, Depth: 50}},
	}
	r := Range{Ground: ground}
	for _, spec := range specs {
		h := s.CreateBody(host.ShapeBox, spec.dims, host.BodyOptions{Name: spec.name, Collidable: true, Color: wall})
		s.SetTransform(h, host.Pose(spec.position, physics.Identity))
		r.Walls = append(r.Walls, h)
	}
	return r
}

// NewRange builds a scene with the range geometry in place.
func NewRange(opts ...Option) (*Scene, Range) {
	s := New(opts...)
	return s, s.BuildRange()
}
