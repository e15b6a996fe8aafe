// Package arena composes the shooting range: one player, a weapon loadout,
// projectiles, targets and effects, all owned by the simulation goroutine.
package arena

import (
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"shootingrange/rangesim/internal/ballistics"
	"shootingrange/rangesim/internal/combat"
	"shootingrange/rangesim/internal/config"
	"shootingrange/rangesim/internal/effects"
	"shootingrange/rangesim/internal/events"
	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/input"
	"shootingrange/rangesim/internal/lights"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/modules"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/player"
	"shootingrange/rangesim/internal/scheduler"
	"shootingrange/rangesim/internal/targets"
	"shootingrange/rangesim/internal/weapon"
)

// FrameRecorder receives periodic snapshots for replay.
type FrameRecorder interface {
	RecordFrame(tick uint64, snapshot any) bool
}

// Option customises an Arena.
type Option func(*Arena)

// WithLogger overrides the arena logger.
func WithLogger(logger *logging.Logger) Option {
	return func(a *Arena) {
		if logger != nil {
			a.log = logger
		}
	}
}

// WithEvents publishes range events to stream.
func WithEvents(stream *events.Stream) Option {
	return func(a *Arena) { a.stream = stream }
}

// WithCatalog replaces the embedded weapon catalog.
func WithCatalog(catalog *combat.Catalog) Option {
	return func(a *Arena) {
		if catalog != nil {
			a.catalog = catalog
		}
	}
}

// WithFrameRecorder hands every interval-th snapshot to recorder.
func WithFrameRecorder(recorder FrameRecorder, interval int) Option {
	return func(a *Arena) {
		a.recorder = recorder
		a.frameInterval = max(interval, 1)
	}
}

// Arena is the composition root. Step, Close and the listeners run on the
// simulation goroutine; Submit and Snapshot are safe from any goroutine.
type Arena struct {
	cfg    *config.Config
	scene  host.Scene
	sched  *scheduler.Queue
	rng    *rand.Rand
	stream *events.Stream

	catalog  *combat.Catalog
	loadouts map[string]combat.Loadout

	pool       *lights.Pool
	targets    *targets.Manager
	blood      *effects.Blood
	impacts    *effects.Impacts
	shells     *effects.Shells
	trails     *effects.Trails
	ballistics *ballistics.Simulation
	weapons    *weapon.Manager
	player     *player.Controller
	recoils    []*modules.Recoil

	recorder      FrameRecorder
	frameInterval int

	inbox    chan input.Intent
	accepted atomic.Uint64
	dropped  atomic.Uint64
	snapshot atomic.Pointer[Snapshot]

	tick   uint64
	closed bool
	log    *logging.Logger
}

// New builds every range component against scene and wires listeners to
// scoring and the event stream. sched is the arena clock.
func New(cfg *config.Config, scene host.Scene, sched *scheduler.Queue, rng *rand.Rand, opts ...Option) (*Arena, error) {
	if cfg == nil {
		return nil, errors.New("arena config required")
	}
	if scene == nil || sched == nil {
		return nil, errors.New("arena scene and scheduler required")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	a := &Arena{
		cfg:           cfg,
		scene:         scene,
		sched:         sched,
		rng:           rng,
		loadouts:      make(map[string]combat.Loadout),
		frameInterval: 1,
		inbox:         make(chan input.Intent, max(cfg.InboxSize, 1)),
		log:           logging.L(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.log = a.log.With(logging.String("component", "arena"))
	if a.catalog == nil {
		catalog, err := combat.Default()
		if err != nil {
			return nil, fmt.Errorf("load weapon catalog: %w", err)
		}
		a.catalog = catalog
	}

	//1.- Shared pools and effects.
	a.pool = lights.NewPool(scene, lights.Options{Max: cfg.LightPoolMax, Logger: a.log})
	a.targets = targets.NewManager(scene, sched, rng, targets.Options{Count: cfg.TargetCount, Respawn: cfg.TargetRespawn, Logger: a.log})
	a.blood = effects.NewBlood(scene, sched, rng, effects.BloodOptions{Max: cfg.MaxBloodDrops, Logger: a.log})
	a.impacts = effects.NewImpacts(scene, sched, effects.ImpactOptions{Logger: a.log})
	a.shells = effects.NewShells(scene, sched, rng, effects.ShellOptions{Max: cfg.MaxShells, Logger: a.log})
	a.trails = effects.NewTrails(scene, sched, 0, a.log)

	//2.- Ballistics resolve against targets first, then geometry.
	a.ballistics = ballistics.New(ballistics.Deps{
		Scene:   scene,
		Sched:   sched,
		Targets: a.targets,
		Lights:  a.pool,
		Impacts: a.impacts,
		Blood:   a.blood,
		Trails:  a.trails,
	}, ballistics.Options{MaxRange: cfg.ProjectileMaxRange, Logger: a.log})

	//3.- Weapons from the catalog, mounted on the player camera.
	camera := player.NewCamera(physics.V(0, player.EyeHeight, 0))
	a.weapons = weapon.NewManager(a.log)
	if err := a.equip(camera); err != nil {
		a.Close()
		return nil, err
	}
	slots := make(map[int]string, len(a.loadouts))
	for name, l := range a.loadouts {
		if l.Slot > 0 {
			slots[l.Slot] = name
		}
	}
	a.player = player.NewController(a.weapons, sched, camera, rng, player.Options{Slots: slots, Logger: a.log})

	a.wire()
	a.log.Info("arena ready",
		logging.Strings("weapons", a.weapons.Names()),
		logging.Int("targets", a.targets.Len()),
		logging.String("catalog", a.catalog.Checksum()),
	)
	return a, nil
}

func (a *Arena) equip(camera *player.Camera) error {
	loadouts, err := a.catalog.Loadouts()
	if err != nil {
		return fmt.Errorf("resolve loadouts: %w", err)
	}
	deps := modules.Deps{
		Scene:    a.scene,
		Lights:   a.pool,
		Sched:    a.sched,
		Shells:   a.shells,
		Launcher: a.ballistics,
		Rand:     a.rng,
		Logger:   a.log,
	}
	for _, l := range loadouts {
		w, err := weapon.New(l.Descriptor, a.scene, camera, weapon.WithLogger(a.log), weapon.WithClock(a.sched.Now))
		if err != nil {
			return err
		}
		attached, err := modules.Equip(w, l.Modules, deps)
		if err != nil {
			return fmt.Errorf("equip %s: %w", l.Descriptor.Name, err)
		}
		for _, m := range attached {
			if recoil, ok := m.(*modules.Recoil); ok {
				a.recoils = append(a.recoils, recoil)
			}
		}
		if err := a.weapons.Register(l.Descriptor.Name, w); err != nil {
			return err
		}
		a.loadouts[l.Descriptor.Name] = l
	}
	return nil
}

// wire connects component listeners to scoring and the event stream.
func (a *Arena) wire() {
	a.player.OnFire(func(ev weapon.FireEvent) {
		a.publish(events.Fire{
			Weapon:    ev.Weapon,
			Shot:      ev.Shot,
			Position:  events.FromVec(ev.Position),
			Direction: events.FromVec(ev.Direction),
		})
	})
	a.ballistics.OnHit(a.onHit)
	a.ballistics.OnImpact(func(im ballistics.Impact) {
		a.publish(events.Impact{Weapon: im.Weapon, Point: events.FromVec(im.Point), Normal: events.FromVec(im.Normal), Traveled: im.Traveled})
	})
	a.ballistics.OnExpire(func(ex ballistics.Expiry) {
		a.publish(events.ProjectileExpired{Weapon: ex.Weapon, Position: events.FromVec(ex.Position), Traveled: ex.Traveled, Reason: string(ex.Reason)})
	})
	a.targets.OnRespawn(func(t targets.Target) {
		a.publish(events.TargetRespawned{TargetIndex: t.Index, Position: events.FromVec(t.Position)})
	})
	a.weapons.OnSwitch(func(previous, current string) {
		a.publish(events.WeaponSwitched{Previous: previous, Current: current})
	})
}

// onHit grades the hit, awards points and reports it.
func (a *Arena) onHit(hit ballistics.Hit) {
	result := combat.ResolveHit(a.loadouts[hit.Weapon], combat.HitContext{
		DistanceMeters: hit.Traveled,
		OffsetMeters:   hit.Offset,
		HitRadius:      a.targets.HitRadius(),
	})
	points := a.catalog.ScoreForHit(hit.Weapon, result.Damage)
	a.player.AddScore(points)
	a.log.Debug("target hit", append(result.LoggingFields(),
		logging.String("weapon", hit.Weapon),
		logging.Int("target", hit.TargetIndex),
		logging.Int("points", points),
	)...)
	a.publish(events.TargetHit{
		Weapon:      hit.Weapon,
		TargetIndex: hit.TargetIndex,
		Position:    events.FromVec(hit.Position),
		Damage:      result.Damage,
		Distance:    hit.Traveled,
		Precision:   result.Precision,
		Points:      points,
		Score:       a.player.Score(),
	})
}

func (a *Arena) publish(payload events.Payload) {
	if a.stream == nil {
		return
	}
	if _, err := a.stream.Publish(a.tick, a.sched.Now(), payload); err != nil {
		a.log.Warn("publish event failed", logging.String("kind", string(payload.Kind())), logging.Error(err))
	}
}

// Submit queues an intent for the next tick. It never blocks; a full inbox
// drops the intent and reports false.
func (a *Arena) Submit(intent input.Intent) bool {
	select {
	case a.inbox <- intent:
		a.accepted.Add(1)
		return true
	default:
		a.dropped.Add(1)
		return false
	}
}

// Step advances the range by one fixed step.
func (a *Arena) Step(dt time.Duration) {
	if a.closed {
		return
	}
	a.tick++

	//1.- Apply queued intents before anything moves.
	a.drain()
	//2.- Timers, host animation and physics, then per-frame updates.
	a.sched.Advance(dt)
	if stepper, ok := a.scene.(host.Stepper); ok {
		stepper.Step(dt.Seconds())
	}
	a.weapons.Update(dt)
	a.blood.Update(dt)
	//3.- Projectiles move last so they see this tick's targets and geometry.
	a.ballistics.Step(dt)

	snap := a.capture()
	a.snapshot.Store(snap)
	if a.recorder != nil && a.tick%uint64(a.frameInterval) == 0 {
		a.recorder.RecordFrame(a.tick, snap)
	}
}

func (a *Arena) drain() {
	for {
		select {
		case intent := <-a.inbox:
			a.apply(intent)
		default:
			return
		}
	}
}

func (a *Arena) apply(intent input.Intent) {
	switch intent.Type {
	case input.KindPress:
		a.player.Press()
	case input.KindRelease:
		a.player.Release()
	case input.KindSwitch:
		a.player.Switch(intent.Weapon)
	case input.KindAim:
		a.player.Aim(intent.Yaw, intent.Pitch)
	case input.KindSlot:
		a.player.SelectSlot(intent.Slot)
	default:
		a.log.Debug("unknown intent ignored", logging.String("type", string(intent.Type)), logging.String("client_id", intent.ClientID))
	}
}

// Snapshot returns the state published after the latest tick, nil before the first.
func (a *Arena) Snapshot() *Snapshot {
	return a.snapshot.Load()
}

// Ready reports whether at least one tick has completed.
func (a *Arena) Ready() bool {
	return a.snapshot.Load() != nil
}

// InboxStats reports accepted and dropped intents.
func (a *Arena) InboxStats() (accepted, dropped uint64) {
	return a.accepted.Load(), a.dropped.Load()
}

// Player exposes the controller to callers on the simulation goroutine.
func (a *Arena) Player() *player.Controller { return a.player }

// Targets exposes the target manager to callers on the simulation goroutine.
func (a *Arena) Targets() *targets.Manager { return a.targets }

// Ballistics exposes the projectile simulation to callers on the simulation goroutine.
func (a *Arena) Ballistics() *ballistics.Simulation { return a.ballistics }

// Close disposes every component. It is idempotent.
func (a *Arena) Close() {
	if a == nil || a.closed {
		return
	}
	a.closed = true
	if a.player != nil {
		a.player.Dispose()
	}
	a.weapons.Dispose()
	a.ballistics.Dispose()
	a.trails.Dispose()
	a.impacts.Dispose()
	a.shells.Dispose()
	a.blood.Dispose()
	a.targets.Dispose()
	a.pool.Close()
	a.log.Info("arena closed", logging.Uint64("ticks", a.tick), logging.Int("score", a.scoreOrZero()))
}

func (a *Arena) scoreOrZero() int {
	if a.player == nil {
		return 0
	}
	return a.player.Score()
}
