// Package headless is an in-memory host scene. It keeps just enough state to
// run the weapon runtime without a renderer: axis-aligned collision volumes,
// gravity-driven impostors, keyframe animations, emitters and lights.
package headless

import (
	"math"
	"sort"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/physics"
)

// TicksPerSecond is the animation frame rate keyframes are authored against.
const TicksPerSecond = 60

// BodyState is a read-only view of one body.
type BodyState struct {
	Handle     host.BodyHandle
	Shape      host.Shape
	Dimensions host.Dimensions
	Options    host.BodyOptions
	Transform  host.Transform
	Visible    bool
}

// EmitterState is a read-only view of one emitter.
type EmitterState struct {
	Handle  host.EmitterHandle
	Config  host.EmitterConfig
	Running bool
	// Emitted approximates how many particles the emitter has produced.
	Emitted float64
}

// Counts summarises live host resources.
type Counts struct {
	Bodies     int
	Impostors  int
	Emitters   int
	Lights     int
	Animations int
}

type impostor struct {
	body  host.BodyHandle
	state physics.Body
}

type animation struct {
	body host.BodyHandle
	anim host.Animation
	tick int
	done func()
}

// Option customises a scene.
type Option func(*Scene)

// WithoutPhysics makes the scene report no physics engine.
func WithoutPhysics() Option {
	return func(s *Scene) { s.physicsEnabled = false }
}

// WithLogger overrides the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Scene) {
		if logger != nil {
			s.log = logger
		}
	}
}

// Scene implements host.Scene and host.Stepper. It is single-threaded.
type Scene struct {
	next           uint64
	physicsEnabled bool
	groundY        float64
	log            *logging.Logger

	bodies     map[host.BodyHandle]*BodyState
	impostors  map[host.PhysicsHandle]*impostor
	emitters   map[host.EmitterHandle]*EmitterState
	lights     map[host.LightHandle]*host.LightState
	animations []*animation
}

var _ host.Scene = (*Scene)(nil)
var _ host.Stepper = (*Scene)(nil)

// New builds an empty scene with physics enabled.
func New(opts ...Option) *Scene {
	s := &Scene{
		physicsEnabled: true,
		log:            logging.L(),
		bodies:         make(map[host.BodyHandle]*BodyState),
		impostors:      make(map[host.PhysicsHandle]*impostor),
		emitters:       make(map[host.EmitterHandle]*EmitterState),
		lights:         make(map[host.LightHandle]*host.LightState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scene) issue() uint64 {
	s.next++
	return s.next
}

// CreateBody registers a body at the origin, visible and unrotated.
func (s *Scene) CreateBody(shape host.Shape, dims host.Dimensions, opts host.BodyOptions) host.BodyHandle {
	h := host.BodyHandle(s.issue())
	s.bodies[h] = &BodyState{
		Handle:     h,
		Shape:      shape,
		Dimensions: dims,
		Options:    opts,
		Transform:  host.Pose(physics.Vec3{}, physics.Identity),
		Visible:    true,
	}
	return h
}

// SetTransform places a body. Bodies driven by an impostor are teleported.
func (s *Scene) SetTransform(body host.BodyHandle, t host.Transform) {
	b, ok := s.bodies[body]
	if !ok {
		return
	}
	if t.Rotation == (physics.Quat{}) {
		t.Rotation = physics.Identity
	}
	if t.Scale.IsZero() {
		t.Scale = physics.V(1, 1, 1)
	}
	b.Transform = t
	for _, imp := range s.impostors {
		if imp.body == body {
			imp.state.Position = t.Position
			imp.state.Asleep = false
		}
	}
}

// Transform returns the current local transform of body.
func (s *Scene) Transform(body host.BodyHandle) (host.Transform, bool) {
	b, ok := s.bodies[body]
	if !ok {
		return host.Transform{}, false
	}
	return b.Transform, true
}

// SetVisible toggles rendering and pickability.
func (s *Scene) SetVisible(body host.BodyHandle, visible bool) {
	if b, ok := s.bodies[body]; ok {
		b.Visible = visible
	}
}

// DisposeBody removes a body along with its animations and impostors.
func (s *Scene) DisposeBody(body host.BodyHandle) {
	if _, ok := s.bodies[body]; !ok {
		return
	}
	delete(s.bodies, body)
	for h, imp := range s.impostors {
		if imp.body == body {
			delete(s.impostors, h)
		}
	}
	kept := s.animations[:0]
	for _, a := range s.animations {
		if a.body != body {
			kept = append(kept, a)
		}
	}
	s.animations = kept
}

// PhysicsEnabled reports whether impostors may be attached.
func (s *Scene) PhysicsEnabled() bool { return s.physicsEnabled }

// AttachPhysics creates a gravity-driven impostor starting at the body position.
func (s *Scene) AttachPhysics(body host.BodyHandle, params host.PhysicsParams) host.PhysicsHandle {
	b, ok := s.bodies[body]
	if !ok || !s.physicsEnabled {
		return 0
	}
	h := host.PhysicsHandle(s.issue())
	s.impostors[h] = &impostor{
		body: body,
		state: physics.Body{
			Position:    b.Transform.Position,
			Mass:        params.Mass,
			Friction:    params.Friction,
			Restitution: params.Restitution,
			Radius:      contactRadius(b.Shape, b.Dimensions),
		},
	}
	return h
}

// ApplyImpulse changes the impostor velocity. The contact point only matters
// for torque, which this scene leaves to SetAngularVelocity.
func (s *Scene) ApplyImpulse(impostor host.PhysicsHandle, impulse, point physics.Vec3) {
	if imp, ok := s.impostors[impostor]; ok {
		imp.state.ApplyImpulse(impulse)
	}
}

// SetAngularVelocity spins the impostor.
func (s *Scene) SetAngularVelocity(impostor host.PhysicsHandle, velocity physics.Vec3) {
	if imp, ok := s.impostors[impostor]; ok {
		imp.state.AngularVelocity = velocity
		imp.state.Asleep = false
	}
}

// DisposePhysics detaches an impostor, leaving the body in place.
func (s *Scene) DisposePhysics(impostor host.PhysicsHandle) {
	delete(s.impostors, impostor)
}

// Animate starts a keyframe animation; done runs from Step on the tick it finishes.
func (s *Scene) Animate(body host.BodyHandle, anim host.Animation, done func()) {
	if _, ok := s.bodies[body]; !ok {
		return
	}
	if anim.DurationTicks < 1 {
		anim.DurationTicks = 1
	}
	s.animations = append(s.animations, &animation{body: body, anim: anim, done: done})
}

// SpawnEmitter registers a stopped emitter.
func (s *Scene) SpawnEmitter(cfg host.EmitterConfig) host.EmitterHandle {
	h := host.EmitterHandle(s.issue())
	s.emitters[h] = &EmitterState{Handle: h, Config: cfg}
	return h
}

// StartEmitter starts emission, releasing any configured burst at once.
func (s *Scene) StartEmitter(emitter host.EmitterHandle) {
	e, ok := s.emitters[emitter]
	if !ok || e.Running {
		return
	}
	e.Running = true
	e.Emitted += float64(e.Config.Burst)
}

// StopEmitter halts emission.
func (s *Scene) StopEmitter(emitter host.EmitterHandle) {
	if e, ok := s.emitters[emitter]; ok {
		e.Running = false
	}
}

// DisposeEmitter removes an emitter.
func (s *Scene) DisposeEmitter(emitter host.EmitterHandle) {
	delete(s.emitters, emitter)
}

// CreateLight registers a light in the neutral state.
func (s *Scene) CreateLight(name string) host.LightHandle {
	h := host.LightHandle(s.issue())
	s.lights[h] = &host.LightState{}
	return h
}

// SetLight replaces the light state.
func (s *Scene) SetLight(light host.LightHandle, state host.LightState) {
	if l, ok := s.lights[light]; ok {
		*l = state
	}
}

// DisposeLight removes a light.
func (s *Scene) DisposeLight(light host.LightHandle) {
	delete(s.lights, light)
}

// Step integrates impostors, advances emitters and plays one animation frame.
func (s *Scene) Step(dtSeconds float64) {
	if dtSeconds <= 0 {
		return
	}
	//1.- Rigid bodies fall, bounce and settle on the ground plane.
	for _, imp := range s.impostors {
		imp.state.Integrate(dtSeconds, s.groundY)
		if b, ok := s.bodies[imp.body]; ok {
			b.Transform.Position = imp.state.Position
			b.Transform.Rotation = physics.FromEuler(imp.state.Orientation)
		}
	}
	for _, e := range s.emitters {
		if e.Running {
			e.Emitted += e.Config.EmitRate * dtSeconds
		}
	}

	//2.- Animations advance one frame per step; completion callbacks run after
	//    the list is rebuilt so they may start new animations.
	var finished []func()
	active := s.animations[:0]
	for _, a := range s.animations {
		a.tick++
		s.applyFrame(a)
		if a.tick >= a.anim.DurationTicks {
			if a.done != nil {
				finished = append(finished, a.done)
			}
			continue
		}
		active = append(active, a)
	}
	for i := len(active); i < len(s.animations); i++ {
		s.animations[i] = nil
	}
	s.animations = active
	for _, done := range finished {
		done()
	}
}

func (s *Scene) applyFrame(a *animation) {
	b, ok := s.bodies[a.body]
	if !ok {
		return
	}
	progress := ease(a.anim.Easing, float64(a.tick)/float64(a.anim.DurationTicks))
	frame := progress * float64(a.anim.DurationTicks)
	for _, track := range a.anim.Tracks {
		value, ok := sample(track.Keys, frame)
		if !ok {
			continue
		}
		switch track.Property {
		case host.PropertyPosition:
			b.Transform.Position = value
		case host.PropertyRotation:
			b.Transform.Rotation = physics.FromEuler(value)
		case host.PropertyScale:
			b.Transform.Scale = value
		}
	}
}

// sample interpolates keys (sorted by frame) at a fractional frame.
func sample(keys []host.Keyframe, frame float64) (physics.Vec3, bool) {
	switch len(keys) {
	case 0:
		return physics.Vec3{}, false
	case 1:
		return keys[0].Value, true
	}
	if frame <= float64(keys[0].Frame) {
		return keys[0].Value, true
	}
	for i := 1; i < len(keys); i++ {
		prev, next := keys[i-1], keys[i]
		if frame > float64(next.Frame) {
			continue
		}
		span := float64(next.Frame - prev.Frame)
		if span <= 0 {
			return next.Value, true
		}
		return prev.Value.Lerp(next.Value, (frame-float64(prev.Frame))/span), true
	}
	return keys[len(keys)-1].Value, true
}

// ease maps linear progress through a power curve.
func ease(e host.Easing, t float64) float64 {
	t = math.Min(1, math.Max(0, t))
	power := e.Power
	if !(power > 0) {
		power = 2
	}
	switch e.Mode {
	case host.EaseIn:
		return math.Pow(t, power)
	case host.EaseOut:
		return 1 - math.Pow(1-t, power)
	case host.EaseInOut:
		if t < 0.5 {
			return math.Pow(2*t, power) / 2
		}
		return 1 - math.Pow(2*(1-t), power)/2
	default:
		return t
	}
}

func contactRadius(shape host.Shape, dims host.Dimensions) float64 {
	switch shape {
	case host.ShapeSphere, host.ShapeDisc:
		return dims.Diameter / 2
	case host.ShapeCylinder:
		return dims.Diameter / 2
	default:
		return dims.Height / 2
	}
}

// Body returns a copy of the body state.
func (s *Scene) Body(h host.BodyHandle) (BodyState, bool) {
	b, ok := s.bodies[h]
	if !ok {
		return BodyState{}, false
	}
	return *b, true
}

// Emitter returns a copy of the emitter state.
func (s *Scene) Emitter(h host.EmitterHandle) (EmitterState, bool) {
	e, ok := s.emitters[h]
	if !ok {
		return EmitterState{}, false
	}
	return *e, true
}

// Light returns a copy of the light state.
func (s *Scene) Light(h host.LightHandle) (host.LightState, bool) {
	l, ok := s.lights[h]
	if !ok {
		return host.LightState{}, false
	}
	return *l, true
}

// Velocity returns the linear velocity of the impostor attached to body.
func (s *Scene) Velocity(body host.BodyHandle) (physics.Vec3, bool) {
	for _, imp := range s.impostors {
		if imp.body == body {
			return imp.state.Velocity, true
		}
	}
	return physics.Vec3{}, false
}

// Counts reports live resources.
func (s *Scene) Counts() Counts {
	return Counts{
		Bodies:     len(s.bodies),
		Impostors:  len(s.impostors),
		Emitters:   len(s.emitters),
		Lights:     len(s.lights),
		Animations: len(s.animations),
	}
}

// BodiesNamed lists live bodies whose name matches, ordered by handle.
func (s *Scene) BodiesNamed(name string) []BodyState {
	var out []BodyState
	for _, b := range s.bodies {
		if b.Options.Name == name {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}
