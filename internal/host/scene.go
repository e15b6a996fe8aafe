// Package host declares the narrow capabilities the weapon runtime consumes
// from the rendering/physics host: bodies, physics, ray casts, timed
// animations, particle emitters and lights.
package host

import (
	"shootingrange/rangesim/internal/physics"
)

//go:generate go tool mockgen -source=scene.go -destination=mocks/mock_scene.go -package=mocks

// BodyHandle identifies a visual body owned by the host. Zero is never issued.
type BodyHandle uint64

// PhysicsHandle identifies a physics impostor attached to a body.
type PhysicsHandle uint64

// EmitterHandle identifies a particle emitter.
type EmitterHandle uint64

// LightHandle identifies a point light.
type LightHandle uint64

// Shape selects the primitive a body is built from.
type Shape string

const (
	ShapeSphere   Shape = "sphere"
	ShapeCylinder Shape = "cylinder"
	ShapeBox      Shape = "box"
	ShapeDisc     Shape = "disc"
	ShapeSprite   Shape = "sprite"
)

// Dimensions sizes a body. Spheres and discs use Diameter, cylinders use
// Height and Diameter, boxes and sprites use Width, Height and Depth.
type Dimensions struct {
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Depth    float64 `json:"depth,omitempty"`
	Diameter float64 `json:"diameter,omitempty"`
}

// BodyOptions tune how the host treats a body.
type BodyOptions struct {
	Name       string
	Collidable bool
	Color      Color
	Emissive   bool
	Parent     BodyHandle
}

// Color is linear RGB.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Transform places a body in world space, or relative to its parent.
type Transform struct {
	Position physics.Vec3
	Rotation physics.Quat
	Scale    physics.Vec3
}

// Pose is a transform with unit scale.
func Pose(position physics.Vec3, rotation physics.Quat) Transform {
	return Transform{Position: position, Rotation: rotation, Scale: physics.V(1, 1, 1)}
}

// Bodies creates and places visual bodies.
type Bodies interface {
	CreateBody(shape Shape, dims Dimensions, opts BodyOptions) BodyHandle
	SetTransform(body BodyHandle, t Transform)
	SetVisible(body BodyHandle, visible bool)
	DisposeBody(body BodyHandle)
}

// TransformReader is implemented by hosts that can report a body's current
// local transform, including any animation applied since SetTransform.
type TransformReader interface {
	Transform(body BodyHandle) (Transform, bool)
}

// PhysicsParams configure an impostor.
type PhysicsParams struct {
	Mass        float64
	Friction    float64
	Restitution float64
}

// Physics attaches rigid-body simulation to bodies. Hosts without a physics
// engine report PhysicsEnabled false and callers must degrade.
type Physics interface {
	PhysicsEnabled() bool
	AttachPhysics(body BodyHandle, params PhysicsParams) PhysicsHandle
	ApplyImpulse(impostor PhysicsHandle, impulse, point physics.Vec3)
	SetAngularVelocity(impostor PhysicsHandle, velocity physics.Vec3)
	DisposePhysics(impostor PhysicsHandle)
}

// RayHit is a ray cast result. Normal is zero when the host cannot resolve it.
type RayHit struct {
	Body     BodyHandle
	Point    physics.Vec3
	Normal   physics.Vec3
	Distance float64
}

// RayFilter accepts bodies the ray may hit.
type RayFilter func(body BodyHandle) bool

// Raycaster picks collidable scene geometry.
type Raycaster interface {
	CastRay(origin, direction physics.Vec3, maxLength float64, filter RayFilter) (RayHit, bool)
}

// Property names the animated body channel.
type Property string

const (
	PropertyPosition Property = "position"
	PropertyRotation Property = "rotation"
	PropertyScale    Property = "scale"
)

// Keyframe sets a channel value at a tick offset. Rotation keys are Euler angles.
type Keyframe struct {
	Frame int
	Value physics.Vec3
}

// Track animates one property.
type Track struct {
	Property Property
	Keys     []Keyframe
}

// Easing selects the interpolation curve.
type Easing struct {
	Mode  EasingMode
	Power float64
}

// EasingMode is the easing direction.
type EasingMode int

const (
	EaseLinear EasingMode = iota
	EaseIn
	EaseOut
	EaseInOut
)

// Animation is a set of tracks played together over DurationTicks.
type Animation struct {
	Name          string
	Tracks        []Track
	DurationTicks int
	Easing        Easing
}

// Animator runs timed animations and invokes done on the simulation goroutine
// when the animation finishes.
type Animator interface {
	Animate(body BodyHandle, anim Animation, done func())
}

// EmitterConfig describes a particle emitter.
type EmitterConfig struct {
	Name        string
	Attach      BodyHandle
	Position    physics.Vec3
	Direction   physics.Vec3
	Capacity    int
	EmitRate    float64
	MinSize     float64
	MaxSize     float64
	MinLifetime float64
	MaxLifetime float64
	Color       Color
	ColorDead   Color
	Burst       int
}

// Particles spawns and controls emitters.
type Particles interface {
	SpawnEmitter(cfg EmitterConfig) EmitterHandle
	StartEmitter(emitter EmitterHandle)
	StopEmitter(emitter EmitterHandle)
	DisposeEmitter(emitter EmitterHandle)
}

// LightState is the full mutable state of a point light. A zero intensity
// with no parent is the neutral state.
type LightState struct {
	Position  physics.Vec3
	Color     Color
	Intensity float64
	Range     float64
	Parent    BodyHandle
}

// Lights creates point lights.
type Lights interface {
	CreateLight(name string) LightHandle
	SetLight(light LightHandle, state LightState)
	DisposeLight(light LightHandle)
}

// Scene bundles every capability.
type Scene interface {
	Bodies
	Physics
	Raycaster
	Animator
	Particles
	Lights
}

// Stepper is implemented by hosts that advance their own animations and
// physics once per simulation tick.
type Stepper interface {
	Step(dtSeconds float64)
}
