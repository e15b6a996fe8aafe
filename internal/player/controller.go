// Package player turns trigger, aim and slot intents into weapon discharges
// and keeps the shooter's score and health.
package player

import (
	"math"
	"math/rand"
	"time"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/modules"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/scheduler"
	"shootingrange/rangesim/internal/weapon"
)

const (
	// MaxHealth caps Health.
	MaxHealth = 100.0
	// EyeHeight is the default camera height above the range floor.
	EyeHeight = 1.8

	pitchLimit = math.Pi/2 - 0.01
)

// Camera is the first-person viewpoint weapons are mounted to.
type Camera struct {
	Position physics.Vec3
	Yaw      float64
	Pitch    float64
	body     host.BodyHandle
}

// NewCamera places a camera at position looking down +z.
func NewCamera(position physics.Vec3) *Camera {
	return &Camera{Position: position}
}

// Rotation is the camera's world rotation.
func (c *Camera) Rotation() physics.Quat { return physics.YawPitch(c.Yaw, c.Pitch) }

// Direction is the unit look direction.
func (c *Camera) Direction() physics.Vec3 { return c.Rotation().Rotate(physics.Forward) }

// WorldPose implements weapon.Mount.
func (c *Camera) WorldPose() (physics.Vec3, physics.Quat) { return c.Position, c.Rotation() }

// Body implements weapon.Mount. Cameras in the headless scene have no body.
func (c *Camera) Body() host.BodyHandle { return c.body }

// FireListener observes every accepted discharge.
type FireListener func(ev weapon.FireEvent)

// Options tunes a controller.
type Options struct {
	// Slots maps number keys to weapon names.
	Slots  map[int]string
	Logger *logging.Logger
}

// Controller binds trigger edges to the current weapon. Single-action weapons
// fire once per press; automatic weapons repeat every FireRate until release.
type Controller struct {
	manager *weapon.Manager
	sched   scheduler.Scheduler
	camera  *Camera
	rng     *rand.Rand
	slots   map[int]string

	held      bool
	repeat    scheduler.Handle
	lastShot  map[string]time.Time
	shots     uint64
	throttled uint64

	score  int
	health float64

	onFire []FireListener
	log    *logging.Logger
}

// NewController wires the controller to a weapon manager and the arena clock.
func NewController(manager *weapon.Manager, sched scheduler.Scheduler, camera *Camera, rng *rand.Rand, opts Options) *Controller {
	if camera == nil {
		camera = NewCamera(physics.V(0, EyeHeight, 0))
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	slots := make(map[int]string, len(opts.Slots))
	for slot, name := range opts.Slots {
		slots[slot] = name
	}
	return &Controller{
		manager:  manager,
		sched:    sched,
		camera:   camera,
		rng:      rng,
		slots:    slots,
		lastShot: make(map[string]time.Time),
		health:   MaxHealth,
		log:      logger.With(logging.String("component", "player")),
	}
}

// OnFire registers a discharge listener.
func (c *Controller) OnFire(fn FireListener) {
	if fn != nil {
		c.onFire = append(c.onFire, fn)
	}
}

// Press pulls the trigger. A second press while held is ignored.
func (c *Controller) Press() {
	if c.held {
		return
	}
	c.held = true
	c.fire()
	w := c.manager.Current()
	if w != nil && w.Automatic() && c.sched != nil {
		c.repeat = c.sched.Every(w.FireRate(), func() {
			c.fire()
		})
	}
}

// Release lets go of the trigger and stops any auto-repeat.
func (c *Controller) Release() {
	c.held = false
	c.stopRepeat()
}

func (c *Controller) stopRepeat() {
	if c.repeat != 0 {
		c.sched.Cancel(c.repeat)
		c.repeat = 0
	}
}

// fire discharges the current weapon unless its fire-rate window is still open.
func (c *Controller) fire() bool {
	w := c.manager.Current()
	if w == nil {
		return false
	}
	var now time.Time
	if c.sched != nil {
		now = c.sched.Now()
	}
	if last, ok := c.lastShot[w.Name()]; ok && now.Sub(last) < w.FireRate() {
		c.throttled++
		return false
	}
	direction := c.camera.Direction()
	if c.rng != nil {
		direction = modules.Scatter(c.rng, direction, w.Spread())
	}
	ev, ok := w.Fire(direction)
	if !ok {
		return false
	}
	c.lastShot[w.Name()] = now
	c.shots++
	for _, fn := range c.onFire {
		fn(ev)
	}
	return true
}

// Switch selects a weapon by name. A successful switch to a different weapon
// drops the held trigger.
func (c *Controller) Switch(name string) bool {
	previous := c.manager.CurrentName()
	if !c.manager.Switch(name) {
		return false
	}
	if name != previous {
		c.held = false
		c.stopRepeat()
	}
	return true
}

// SelectSlot switches to the weapon bound to a number key.
func (c *Controller) SelectSlot(slot int) bool {
	name, ok := c.slots[slot]
	if !ok {
		c.log.Debug("no weapon in slot", logging.Int("slot", slot))
		return false
	}
	return c.Switch(name)
}

// Aim points the camera. Pitch is clamped short of straight up or down.
func (c *Controller) Aim(yaw, pitch float64) {
	if math.IsNaN(yaw) || math.IsNaN(pitch) {
		return
	}
	c.camera.Yaw = math.Remainder(yaw, 2*math.Pi)
	c.camera.Pitch = math.Max(-pitchLimit, math.Min(pitchLimit, pitch))
}

// Camera returns the controlled camera.
func (c *Controller) Camera() *Camera { return c.camera }

// Held reports whether the trigger is down.
func (c *Controller) Held() bool { return c.held }

// Shots counts accepted discharges.
func (c *Controller) Shots() uint64 { return c.shots }

// Throttled counts discharges refused by the fire-rate window.
func (c *Controller) Throttled() uint64 { return c.throttled }

// AddScore adds points. Negative awards are ignored.
func (c *Controller) AddScore(points int) {
	if points > 0 {
		c.score += points
	}
}

// Score returns the running score.
func (c *Controller) Score() int { return c.score }

// TakeDamage lowers health, never below zero.
func (c *Controller) TakeDamage(amount float64) {
	if amount > 0 {
		c.health = math.Max(0, c.health-amount)
	}
}

// Heal raises health, never above MaxHealth.
func (c *Controller) Heal(amount float64) {
	if amount > 0 {
		c.health = math.Min(MaxHealth, c.health+amount)
	}
}

// Health returns the current health.
func (c *Controller) Health() float64 { return c.health }

// Dispose stops any pending auto-repeat.
func (c *Controller) Dispose() {
	c.held = false
	c.stopRepeat()
}
