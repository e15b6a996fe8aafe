package effects

import (
	"math/rand"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"shootingrange/rangesim/internal/host"
	"shootingrange/rangesim/internal/host/headless"
	"shootingrange/rangesim/internal/host/mocks"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/physics"
	"shootingrange/rangesim/internal/scheduler"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestShellEjectionHonoursDelayAndCooldown(t *testing.T) {
	scene := headless.New()
	q := scheduler.NewQueue(epoch)
	shells := NewShells(scene, q, rand.New(rand.NewSource(1)), ShellOptions{Logger: logging.NewTestLogger()})

	if !shells.Eject(physics.V(0, 1.5, 1), physics.Right) {
		t.Fatalf("expected first ejection to be accepted")
	}
	//1.- A second ejection inside the 100ms cooldown is ignored.
	q.Advance(40 * time.Millisecond)
	if shells.Eject(physics.V(0, 1.5, 1), physics.Right) {
		t.Fatalf("expected ejection inside cooldown to be rejected")
	}
	if shells.Live() != 0 || shells.Pending() != 1 {
		t.Fatalf("shell should still be waiting for its delay")
	}
	q.Advance(10 * time.Millisecond)
	if shells.Live() != 1 || shells.Pending() != 0 {
		t.Fatalf("expected shell after 50ms, live=%d pending=%d", shells.Live(), shells.Pending())
	}
	shell := scene.BodiesNamed("shell")[0]
	if v, ok := scene.Velocity(shell.Handle); !ok || v.X <= 0 {
		t.Fatalf("expected shell to be kicked to the right, got %+v", v)
	}

	q.Advance(50 * time.Millisecond)
	if !shells.Eject(physics.V(0, 1.5, 1), physics.Right) {
		t.Fatalf("expected ejection after the cooldown")
	}
	if shells.Skipped() != 1 {
		t.Fatalf("expected one skipped ejection, got %d", shells.Skipped())
	}
}

func TestShellsEvictOldestAndExpire(t *testing.T) {
	scene := headless.New()
	q := scheduler.NewQueue(epoch)
	shells := NewShells(scene, q, rand.New(rand.NewSource(2)), ShellOptions{Max: 3, Logger: logging.NewTestLogger()})

	for i := 0; i < 4; i++ {
		shells.Eject(physics.Vec3{}, physics.Right)
		q.Advance(100 * time.Millisecond)
	}
	stats := shells.Stats()
	if shells.Live() != 3 || stats.Evicted != 1 {
		t.Fatalf("expected 3 live shells and one eviction, got live=%d stats=%+v", shells.Live(), stats)
	}
	if got := len(scene.BodiesNamed("shell")); got != 3 {
		t.Fatalf("expected evicted shell body to be disposed, %d remain", got)
	}

	q.Advance(DefaultShellLifetime)
	if shells.Live() != 0 || scene.Counts().Impostors != 0 {
		t.Fatalf("expected every shell to expire, counts=%+v", scene.Counts())
	}
}

func TestShellsWithoutPhysicsWarnOnce(t *testing.T) {
	logger := logging.NewTestLogger()
	scene := headless.New(headless.WithoutPhysics())
	q := scheduler.NewQueue(epoch)
	shells := NewShells(scene, q, nil, ShellOptions{Logger: logger})

	for i := 0; i < 3; i++ {
		if shells.Eject(physics.Vec3{}, physics.Right) {
			t.Fatalf("expected ejection to be disabled")
		}
	}
	warnings := 0
	for _, entry := range logger.Entries() {
		if entry.Level == logging.WarnLevel {
			warnings++
		}
	}
	if warnings != 1 {
		t.Fatalf("expected exactly one warning, got %d", warnings)
	}
}

func TestShellsDisposeCancelsPendingEjections(t *testing.T) {
	scene := headless.New()
	q := scheduler.NewQueue(epoch)
	shells := NewShells(scene, q, nil, ShellOptions{Logger: logging.NewTestLogger()})

	shells.Eject(physics.Vec3{}, physics.Right)
	shells.Dispose()
	q.Advance(time.Second)
	if shells.Live() != 0 || scene.Counts().Bodies != 0 {
		t.Fatalf("expected cancelled ejection to create nothing, counts=%+v", scene.Counts())
	}
	if shells.Eject(physics.Vec3{}, physics.Right) {
		t.Fatalf("expected disposed effect to refuse ejections")
	}
}

func TestBloodSprayWithPhysics(t *testing.T) {
	scene := headless.New()
	q := scheduler.NewQueue(epoch)
	blood := NewBlood(scene, q, rand.New(rand.NewSource(3)), BloodOptions{Logger: logging.NewTestLogger()})

	if n := blood.Spray(physics.V(0, 1.8, 10)); n != DefaultDropsPerHit {
		t.Fatalf("expected %d drops, got %d", DefaultDropsPerHit, n)
	}
	if scene.Counts().Impostors != DefaultDropsPerHit {
		t.Fatalf("expected one impostor per drop, got %+v", scene.Counts())
	}
	//1.- Seven hits exceed the cap of 100 drops; the oldest are evicted.
	for i := 0; i < 6; i++ {
		blood.Spray(physics.V(0, 1.8, 10))
	}
	if blood.Live() != DefaultMaxDrops || blood.Stats().Evicted != 5 {
		t.Fatalf("expected cap at 100 with 5 evictions, got live=%d stats=%+v", blood.Live(), blood.Stats())
	}
	q.Advance(DefaultDropLifetime)
	if blood.Live() != 0 || scene.Counts().Bodies != 0 {
		t.Fatalf("expected drops to expire, counts=%+v", scene.Counts())
	}
}

func TestBloodFallsWithoutPhysics(t *testing.T) {
	scene := headless.New(headless.WithoutPhysics())
	q := scheduler.NewQueue(epoch)
	blood := NewBlood(scene, q, rand.New(rand.NewSource(4)), BloodOptions{DropsPerHit: 2, Logger: logging.NewTestLogger()})

	blood.Spray(physics.V(0, 1.8, 10))
	for i := 0; i < 180; i++ {
		blood.Update(time.Second / 60)
	}
	for _, drop := range scene.BodiesNamed("blood") {
		radius := drop.Dimensions.Diameter / 2
		if y := drop.Transform.Position.Y; y < radius-1e-9 || y > radius+1e-9 {
			t.Fatalf("expected drop to rest on the ground, got y=%v radius=%v", y, radius)
		}
	}
	blood.Dispose()
	blood.Update(time.Second / 60)
	if len(blood.falling) != 0 || scene.Counts().Bodies != 0 {
		t.Fatalf("expected dispose to clear drops")
	}
}

func TestImpactStopsThenDisposes(t *testing.T) {
	ctrl := gomock.NewController(t)
	particles := mocks.NewMockParticles(ctrl)
	q := scheduler.NewQueue(epoch)
	impacts := NewImpacts(particles, q, ImpactOptions{Logger: logging.NewTestLogger()})

	//1.- A missing normal falls back to up; stop after 50ms, dispose 500ms later.
	gomock.InOrder(
		particles.EXPECT().SpawnEmitter(gomock.Cond(func(cfg host.EmitterConfig) bool {
			return cfg.Direction == physics.Up
		})).Return(host.EmitterHandle(9)),
		particles.EXPECT().StartEmitter(host.EmitterHandle(9)),
		particles.EXPECT().StopEmitter(host.EmitterHandle(9)),
		particles.EXPECT().DisposeEmitter(host.EmitterHandle(9)),
	)
	impacts.Spawn(physics.V(0, 1, 24.75), physics.Vec3{}, SparkColor)

	q.Advance(ImpactEmitDuration)
	if impacts.Live() != 1 {
		t.Fatalf("burst disposed too early")
	}
	q.Advance(ImpactLinger - time.Millisecond)
	if impacts.Live() != 1 {
		t.Fatalf("burst disposed before lingering")
	}
	q.Advance(time.Millisecond)
	if impacts.Live() != 0 {
		t.Fatalf("expected burst to be disposed")
	}
}

func TestImpactEvictionCancelsStopTimer(t *testing.T) {
	scene := headless.New()
	q := scheduler.NewQueue(epoch)
	impacts := NewImpacts(scene, q, ImpactOptions{Max: 1})

	impacts.Spawn(physics.Vec3{}, physics.Up, SparkColor)
	impacts.Spawn(physics.Vec3{}, physics.Up, SparkColor)
	if impacts.Live() != 1 || scene.Counts().Emitters != 1 {
		t.Fatalf("expected eviction to dispose the first emitter, counts=%+v", scene.Counts())
	}
	//1.- Only the survivor's stop timer and lifetime remain.
	if q.Pending() != 2 {
		t.Fatalf("expected 2 pending timers, got %d", q.Pending())
	}
}

func TestTrailsFadeOut(t *testing.T) {
	scene := headless.New()
	q := scheduler.NewQueue(epoch)
	trails := NewTrails(scene, q, 0, logging.NewTestLogger())

	emitter := scene.SpawnEmitter(host.EmitterConfig{Name: "trail", EmitRate: 100})
	scene.StartEmitter(emitter)
	trails.Fade(emitter)
	if state, _ := scene.Emitter(emitter); state.Running {
		t.Fatalf("expected trail to stop immediately")
	}
	q.Advance(DefaultTrailFade)
	if _, ok := scene.Emitter(emitter); ok || trails.Live() != 0 {
		t.Fatalf("expected trail to be disposed after fading")
	}
	trails.Fade(0)
	if trails.Live() != 0 {
		t.Fatalf("expected zero emitter to be ignored")
	}
}
