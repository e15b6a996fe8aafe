package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultAddr is the HTTP/websocket listen address.
	DefaultAddr = ":43180"
	// DefaultGRPCAddr is the telemetry gRPC listen address.
	DefaultGRPCAddr = ":43181"
	// DefaultTickRate is the fixed simulation rate in ticks per second.
	DefaultTickRate = 60
	// DefaultMaxCatchUp bounds how many fixed steps one wake-up may execute.
	DefaultMaxCatchUp = 5
	// DefaultInboxSize bounds buffered player intents between ticks.
	DefaultInboxSize = 256

	// DefaultIntentMaxAge rejects player intents older than this on arrival.
	DefaultIntentMaxAge = 250 * time.Millisecond
	// DefaultAimInterval is the minimum spacing between accepted aim updates per player.
	DefaultAimInterval = time.Second / 120
	// DefaultTokenLeeway tolerates clock skew when checking player token expiry.
	DefaultTokenLeeway = 5 * time.Second

	// DefaultLightPoolMax caps pooled muzzle and projectile lights.
	DefaultLightPoolMax = 30
	// DefaultMaxShells caps live ejected shells.
	DefaultMaxShells = 30
	// DefaultMaxBloodDrops caps live blood drops.
	DefaultMaxBloodDrops = 100
	// DefaultTargetCount is the number of range targets.
	DefaultTargetCount = 10
	// DefaultTargetRespawn is the cooldown before a hit target reappears.
	DefaultTargetRespawn = 3 * time.Second
	// DefaultProjectileMaxRange is the distance after which projectiles are retired.
	DefaultProjectileMaxRange = 100.0

	// DefaultEventRetention is how many range events are kept for late subscribers.
	DefaultEventRetention = 1024
	// DefaultReplayFrameInterval is how many ticks separate recorded frames.
	DefaultReplayFrameInterval = 30
	// DefaultReplayFlushWindow bounds how frequently replay flushes may be requested.
	DefaultReplayFlushWindow = time.Minute
	// DefaultReplayFlushBurst sets how many flushes may be requested per window.
	DefaultReplayFlushBurst = 2
	// DefaultReplayMaxSessions caps recordings kept on disk.
	DefaultReplayMaxSessions = 20
	// DefaultReplayMaxAge prunes recordings older than this.
	DefaultReplayMaxAge = 7 * 24 * time.Hour

	// DefaultLogLevel controls log verbosity.
	DefaultLogLevel = "info"
	// DefaultLogMaxSizeMB caps a single log file before rotation.
	DefaultLogMaxSizeMB = 50
	// DefaultLogMaxBackups limits retained rotated log files.
	DefaultLogMaxBackups = 5
	// DefaultLogMaxAgeDays controls how long rotated log files are kept.
	DefaultLogMaxAgeDays = 7
	// DefaultLogCompress toggles gzip compression for rotated log files.
	DefaultLogCompress = true
)

// Config captures all runtime tunables for the range simulator.
type Config struct {
	Address        string
	GRPCAddress    string
	AllowedOrigins []string
	AdminToken     string
	WSSecret       string

	IntentMaxAge time.Duration
	AimInterval  time.Duration

	TickRate   int
	MaxCatchUp int
	InboxSize  int
	Seed       int64

	LightPoolMax       int
	MaxShells          int
	MaxBloodDrops      int
	TargetCount        int
	TargetRespawn      time.Duration
	ProjectileMaxRange float64

	EventRetention      int
	ReplayDir           string
	ReplayFrameInterval int
	ReplayFlushWindow   time.Duration
	ReplayFlushBurst    int
	ReplayMaxSessions   int
	ReplayMaxAge        time.Duration

	Logging LoggingConfig
}

// LoggingConfig captures structured logging options. An empty Path logs to stderr only.
type LoggingConfig struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// TickInterval converts the tick rate into the fixed simulation step.
func (c *Config) TickInterval() time.Duration {
	if c == nil || c.TickRate <= 0 {
		return time.Second / DefaultTickRate
	}
	return time.Second / time.Duration(c.TickRate)
}

// Load reads the configuration from RANGE_* environment variables. Every invalid
// override is reported in the returned error rather than only the first one.
func Load() (*Config, error) {
	cfg := &Config{
		Address:        getString("RANGE_ADDRESS", DefaultAddr),
		GRPCAddress:    getString("RANGE_GRPC_ADDRESS", DefaultGRPCAddr),
		AllowedOrigins: parseList(os.Getenv("RANGE_ALLOWED_ORIGINS")),
		AdminToken:     strings.TrimSpace(os.Getenv("RANGE_ADMIN_TOKEN")),
		WSSecret:       strings.TrimSpace(os.Getenv("RANGE_WS_SECRET")),
		ReplayDir:      strings.TrimSpace(os.Getenv("RANGE_REPLAY_DIR")),
		Logging: LoggingConfig{
			Level: getString("RANGE_LOG_LEVEL", DefaultLogLevel),
			Path:  strings.TrimSpace(os.Getenv("RANGE_LOG_PATH")),
		},
	}

	var env envReader

	//1.- Simulation cadence and intent buffering.
	cfg.TickRate = env.positiveInt("RANGE_TICK_RATE", DefaultTickRate)
	cfg.MaxCatchUp = env.positiveInt("RANGE_MAX_CATCHUP", DefaultMaxCatchUp)
	cfg.InboxSize = env.positiveInt("RANGE_INBOX_SIZE", DefaultInboxSize)
	cfg.Seed = env.integer("RANGE_SEED", 0)
	cfg.IntentMaxAge = env.positiveDuration("RANGE_INTENT_MAX_AGE", DefaultIntentMaxAge)
	cfg.AimInterval = env.positiveDuration("RANGE_AIM_INTERVAL", DefaultAimInterval)

	//2.- Arena capacities.
	cfg.LightPoolMax = env.positiveInt("RANGE_LIGHT_POOL_MAX", DefaultLightPoolMax)
	cfg.MaxShells = env.positiveInt("RANGE_MAX_SHELLS", DefaultMaxShells)
	cfg.MaxBloodDrops = env.positiveInt("RANGE_MAX_BLOOD_DROPS", DefaultMaxBloodDrops)
	cfg.TargetCount = env.nonNegativeInt("RANGE_TARGET_COUNT", DefaultTargetCount)
	cfg.TargetRespawn = env.positiveDuration("RANGE_TARGET_RESPAWN", DefaultTargetRespawn)
	cfg.ProjectileMaxRange = env.positiveFloat("RANGE_PROJECTILE_MAX_RANGE", DefaultProjectileMaxRange)

	//3.- Event fan-out and replay recording.
	cfg.EventRetention = env.positiveInt("RANGE_EVENT_RETENTION", DefaultEventRetention)
	cfg.ReplayFrameInterval = env.positiveInt("RANGE_REPLAY_FRAME_INTERVAL", DefaultReplayFrameInterval)
	cfg.ReplayFlushWindow = env.positiveDuration("RANGE_REPLAY_FLUSH_WINDOW", DefaultReplayFlushWindow)
	cfg.ReplayFlushBurst = env.positiveInt("RANGE_REPLAY_FLUSH_BURST", DefaultReplayFlushBurst)
	cfg.ReplayMaxSessions = env.nonNegativeInt("RANGE_REPLAY_MAX_SESSIONS", DefaultReplayMaxSessions)
	cfg.ReplayMaxAge = env.positiveDuration("RANGE_REPLAY_MAX_AGE", DefaultReplayMaxAge)

	//4.- Logging sinks.
	cfg.Logging.MaxSizeMB = env.positiveInt("RANGE_LOG_MAX_SIZE_MB", DefaultLogMaxSizeMB)
	cfg.Logging.MaxBackups = env.nonNegativeInt("RANGE_LOG_MAX_BACKUPS", DefaultLogMaxBackups)
	cfg.Logging.MaxAgeDays = env.nonNegativeInt("RANGE_LOG_MAX_AGE_DAYS", DefaultLogMaxAgeDays)
	cfg.Logging.Compress = env.flag("RANGE_LOG_COMPRESS", DefaultLogCompress)

	if cfg.Address == cfg.GRPCAddress {
		env.problems = append(env.problems, "RANGE_ADDRESS and RANGE_GRPC_ADDRESS must differ")
	}

	if len(env.problems) > 0 {
		return nil, errors.New(strings.Join(env.problems, "; "))
	}
	return cfg, nil
}

// envReader parses optional overrides and accumulates every problem it finds.
type envReader struct {
	problems []string
}

func (e *envReader) lookup(key string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	return raw, raw != ""
}

func (e *envReader) reject(key, want, raw string) {
	e.problems = append(e.problems, fmt.Sprintf("%s must be %s, got %q", key, want, raw))
}

func (e *envReader) positiveInt(key string, fallback int) int {
	raw, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		e.reject(key, "a positive integer", raw)
		return fallback
	}
	return value
}

func (e *envReader) nonNegativeInt(key string, fallback int) int {
	raw, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		e.reject(key, "a non-negative integer", raw)
		return fallback
	}
	return value
}

func (e *envReader) integer(key string, fallback int64) int64 {
	raw, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		e.reject(key, "an integer", raw)
		return fallback
	}
	return value
}

func (e *envReader) positiveFloat(key string, fallback float64) float64 {
	raw, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		e.reject(key, "a positive number", raw)
		return fallback
	}
	return value
}

func (e *envReader) positiveDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		e.reject(key, "a positive duration", raw)
		return fallback
	}
	return value
}

func (e *envReader) flag(key string, fallback bool) bool {
	raw, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		e.reject(key, "a boolean value", raw)
		return fallback
	}
	return value
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			values = append(values, item)
		}
	}
	return values
}
