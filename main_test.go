package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"shootingrange/rangesim/internal/arena"
	"shootingrange/rangesim/internal/combat"
	"shootingrange/rangesim/internal/config"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/replay"
	"shootingrange/rangesim/internal/telemetry"
)

func testDaemonConfig(replayDir string) *config.Config {
	return &config.Config{
		Address:             "127.0.0.1:0",
		GRPCAddress:         "127.0.0.1:0",
		TickRate:            120,
		MaxCatchUp:          config.DefaultMaxCatchUp,
		InboxSize:           config.DefaultInboxSize,
		Seed:                11,
		IntentMaxAge:        config.DefaultIntentMaxAge,
		AimInterval:         config.DefaultAimInterval,
		LightPoolMax:        config.DefaultLightPoolMax,
		MaxShells:           config.DefaultMaxShells,
		MaxBloodDrops:       config.DefaultMaxBloodDrops,
		TargetCount:         3,
		TargetRespawn:       config.DefaultTargetRespawn,
		ProjectileMaxRange:  config.DefaultProjectileMaxRange,
		EventRetention:      config.DefaultEventRetention,
		ReplayDir:           replayDir,
		ReplayFrameInterval: 4,
		ReplayFlushWindow:   config.DefaultReplayFlushWindow,
		ReplayFlushBurst:    config.DefaultReplayFlushBurst,
		ReplayMaxSessions:   config.DefaultReplayMaxSessions,
		ReplayMaxAge:        config.DefaultReplayMaxAge,
	}
}

// startDaemon boots the full range on ephemeral ports and returns a stop
// function that waits for a clean shutdown.
func startDaemon(t *testing.T, cfg *config.Config) (*daemon, func()) {
	t.Helper()
	d, err := newDaemon(cfg, logging.NewTestLogger())
	if err != nil {
		t.Fatalf("newDaemon: %v", err)
	}
	if err := d.listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.serve(ctx) }()

	stopped := false
	stop := func() {
		if stopped {
			return
		}
		stopped = true
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("serve returned error: %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("daemon did not stop")
		}
	}
	t.Cleanup(stop)
	return d, stop
}

func waitReady(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/readyz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("range never became ready")
}

func TestDaemonServesHTTPAndTelemetry(t *testing.T) {
	d, stop := startDaemon(t, testDaemonConfig(""))
	base, _ := listenerURLs(d.httpLn.Addr().String(), false)
	waitReady(t, base)

	//1.- The snapshot endpoint reflects the running arena.
	resp, err := http.Get(base + "/snapshot")
	if err != nil {
		t.Fatalf("GET /snapshot: %v", err)
	}
	if resp.Header.Get(logging.RequestIDHeader) == "" {
		t.Fatalf("expected a request id header on HTTP responses")
	}
	var snap arena.Snapshot
	err = json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Tick == 0 || snap.ActiveTargets != 3 || snap.Weapon == "" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	//2.- Control docs list every catalog weapon.
	resp, err = http.Get(base + "/api/controls")
	if err != nil {
		t.Fatalf("GET /api/controls: %v", err)
	}
	var docs []ControlDoc
	err = json.NewDecoder(resp.Body).Decode(&docs)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode controls: %v", err)
	}
	catalog, _ := combat.Default()
	if want := len(baseControlDocs) + len(catalog.Names()); len(docs) < want {
		t.Fatalf("expected at least %d control docs, got %d", want, len(docs))
	}

	//3.- The gRPC side answers health checks and snapshots.
	conn, err := grpc.NewClient(d.grpcLn.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc dial: %v", err)
	}
	defer conn.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: telemetry.ServiceName})
	if err != nil || health.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected health %v, %v", health, err)
	}

	stop()
	if d.loop.Running() {
		t.Fatalf("loop still running after shutdown")
	}
}

func TestDaemonWritesReplayBundleOnShutdown(t *testing.T) {
	dir := t.TempDir()
	d, stop := startDaemon(t, testDaemonConfig(dir))
	base, _ := listenerURLs(d.httpLn.Addr().String(), false)
	waitReady(t, base)

	//1.- Let a few frame intervals elapse before stopping.
	deadline := time.Now().Add(5 * time.Second)
	for d.loop.Ticks() < 20 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	stop()

	headers, err := replay.Sessions(dir)
	if err != nil || len(headers) != 1 {
		t.Fatalf("expected one session, got %v (%v)", headers, err)
	}
	if headers[0].Seed != 11 || headers[0].TickRate != 120 || headers[0].FrameInterval != 4 {
		t.Fatalf("unexpected header %+v", headers[0])
	}
	recording, err := replay.Load(filepath.Join(dir, headers[0].SessionID))
	if err != nil {
		t.Fatalf("load recording: %v", err)
	}
	if recording.Manifest == nil || len(recording.Frames) == 0 {
		t.Fatalf("expected a closed recording with frames, got manifest=%v frames=%d", recording.Manifest, len(recording.Frames))
	}
}

func TestNewDaemonRejectsBadReplayDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := writeFile(blocker); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	if _, err := newDaemon(testDaemonConfig(blocker), logging.NewTestLogger()); err == nil {
		t.Fatalf("expected replay dir under a file to fail")
	}
}

func writeFile(path string) error {
	return os.WriteFile(path, []byte("not a directory"), 0o644)
}
