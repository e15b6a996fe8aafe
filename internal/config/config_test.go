package config

import (
	"strings"
	"testing"
	"time"
)

var rangeEnvKeys = []string{
	"RANGE_ADDRESS", "RANGE_GRPC_ADDRESS", "RANGE_ALLOWED_ORIGINS", "RANGE_ADMIN_TOKEN",
	"RANGE_WS_SECRET", "RANGE_INTENT_MAX_AGE", "RANGE_AIM_INTERVAL",
	"RANGE_TICK_RATE", "RANGE_MAX_CATCHUP", "RANGE_INBOX_SIZE", "RANGE_SEED",
	"RANGE_LIGHT_POOL_MAX", "RANGE_MAX_SHELLS", "RANGE_MAX_BLOOD_DROPS", "RANGE_TARGET_COUNT",
	"RANGE_TARGET_RESPAWN", "RANGE_PROJECTILE_MAX_RANGE", "RANGE_EVENT_RETENTION",
	"RANGE_REPLAY_DIR", "RANGE_REPLAY_FRAME_INTERVAL", "RANGE_REPLAY_FLUSH_WINDOW",
	"RANGE_REPLAY_FLUSH_BURST", "RANGE_REPLAY_MAX_SESSIONS", "RANGE_REPLAY_MAX_AGE", "RANGE_LOG_LEVEL", "RANGE_LOG_PATH", "RANGE_LOG_MAX_SIZE_MB",
	"RANGE_LOG_MAX_BACKUPS", "RANGE_LOG_MAX_AGE_DAYS", "RANGE_LOG_COMPRESS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range rangeEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Address != DefaultAddr || cfg.GRPCAddress != DefaultGRPCAddr {
		t.Fatalf("unexpected addresses: http=%q grpc=%q", cfg.Address, cfg.GRPCAddress)
	}
	if cfg.TickRate != DefaultTickRate {
		t.Fatalf("expected tick rate %d, got %d", DefaultTickRate, cfg.TickRate)
	}
	if cfg.LightPoolMax != DefaultLightPoolMax || cfg.MaxShells != DefaultMaxShells || cfg.MaxBloodDrops != DefaultMaxBloodDrops {
		t.Fatalf("unexpected capacities: %+v", cfg)
	}
	if cfg.TargetCount != DefaultTargetCount || cfg.TargetRespawn != DefaultTargetRespawn {
		t.Fatalf("unexpected target settings: count=%d respawn=%v", cfg.TargetCount, cfg.TargetRespawn)
	}
	if cfg.ProjectileMaxRange != DefaultProjectileMaxRange {
		t.Fatalf("expected max range %v, got %v", DefaultProjectileMaxRange, cfg.ProjectileMaxRange)
	}
	if cfg.ReplayDir != "" {
		t.Fatalf("expected replay to be disabled by default, got %q", cfg.ReplayDir)
	}
	if cfg.ReplayMaxSessions != DefaultReplayMaxSessions || cfg.ReplayMaxAge != DefaultReplayMaxAge {
		t.Fatalf("unexpected replay retention: %d %v", cfg.ReplayMaxSessions, cfg.ReplayMaxAge)
	}
	if cfg.Logging.Path != "" || cfg.Logging.Level != DefaultLogLevel || !cfg.Logging.Compress {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.WSSecret != "" || cfg.IntentMaxAge != DefaultIntentMaxAge || cfg.AimInterval != DefaultAimInterval {
		t.Fatalf("unexpected intent settings: secret=%q age=%v aim=%v", cfg.WSSecret, cfg.IntentMaxAge, cfg.AimInterval)
	}
	if got := cfg.TickInterval(); got != time.Second/60 {
		t.Fatalf("expected 60Hz interval, got %v", got)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RANGE_ADDRESS", "127.0.0.1:9000")
	t.Setenv("RANGE_ALLOWED_ORIGINS", "https://range.local, https://ops.local")
	t.Setenv("RANGE_TICK_RATE", "120")
	t.Setenv("RANGE_SEED", "-42")
	t.Setenv("RANGE_MAX_SHELLS", "12")
	t.Setenv("RANGE_TARGET_RESPAWN", "1500ms")
	t.Setenv("RANGE_PROJECTILE_MAX_RANGE", "250.5")
	t.Setenv("RANGE_LOG_COMPRESS", "false")
	t.Setenv("RANGE_REPLAY_DIR", "/tmp/replays")
	t.Setenv("RANGE_WS_SECRET", " s3cret ")
	t.Setenv("RANGE_AIM_INTERVAL", "20ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("unexpected address: %q", cfg.Address)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://ops.local" {
		t.Fatalf("unexpected origins: %#v", cfg.AllowedOrigins)
	}
	if cfg.TickRate != 120 || cfg.TickInterval() != time.Second/120 {
		t.Fatalf("unexpected tick rate %d", cfg.TickRate)
	}
	if cfg.Seed != -42 {
		t.Fatalf("expected seed -42, got %d", cfg.Seed)
	}
	if cfg.MaxShells != 12 {
		t.Fatalf("expected 12 shells, got %d", cfg.MaxShells)
	}
	if cfg.TargetRespawn != 1500*time.Millisecond {
		t.Fatalf("unexpected respawn delay %v", cfg.TargetRespawn)
	}
	if cfg.ProjectileMaxRange != 250.5 {
		t.Fatalf("unexpected max range %v", cfg.ProjectileMaxRange)
	}
	if cfg.Logging.Compress {
		t.Fatalf("expected compression to be disabled")
	}
	if cfg.WSSecret != "s3cret" || cfg.AimInterval != 20*time.Millisecond {
		t.Fatalf("unexpected websocket settings: %q %v", cfg.WSSecret, cfg.AimInterval)
	}
	if cfg.ReplayDir != "/tmp/replays" {
		t.Fatalf("unexpected replay dir %q", cfg.ReplayDir)
	}
}

func TestLoadAggregatesProblems(t *testing.T) {
	clearEnv(t)
	t.Setenv("RANGE_TICK_RATE", "0")
	t.Setenv("RANGE_TARGET_RESPAWN", "soon")
	t.Setenv("RANGE_LOG_COMPRESS", "maybe")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	//1.- Every invalid key is reported, not just the first one encountered.
	for _, key := range []string{"RANGE_TICK_RATE", "RANGE_TARGET_RESPAWN", "RANGE_LOG_COMPRESS"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected error to mention %s, got %v", key, err)
		}
	}
}

func TestLoadRejectsSharedListenAddress(t *testing.T) {
	clearEnv(t)
	t.Setenv("RANGE_ADDRESS", ":9000")
	t.Setenv("RANGE_GRPC_ADDRESS", ":9000")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected shared address to be rejected, got %v", err)
	}
}
