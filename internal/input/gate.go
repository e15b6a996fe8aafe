package input

import (
	"maps"
	"sync"
	"time"

	"shootingrange/rangesim/internal/logging"
)

// Clock exposes the current time for rate limiting decisions.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function into a Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (c ClockFunc) Now() time.Time { return c() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config controls the freshness and throughput gates applied to client intents.
type Config struct {
	// MaxAge drops intents whose sent_at lags the server clock by more than this.
	MaxAge time.Duration
	// AimInterval is the minimum gap between two accepted aim updates.
	AimInterval time.Duration
}

// DropReason enumerates why an intent was rejected by the gate.
type DropReason string

const (
	DropReasonNone        DropReason = ""
	DropReasonSequence    DropReason = "sequence"
	DropReasonStale       DropReason = "stale"
	DropReasonRateLimited DropReason = "rate_limit"
)

// Decision summarises whether an intent passed the gate.
type Decision struct {
	Accepted bool
	Reason   DropReason
	Delay    time.Duration
}

type clientState struct {
	lastSequence uint64
	lastAim      time.Time
}

// DropCounters aggregates per-reason drop counts.
type DropCounters struct {
	Sequence    uint64 `json:"sequence"`
	Stale       uint64 `json:"stale"`
	RateLimited uint64 `json:"rate_limited"`
}

// Gate enforces per-client ordering, freshness and aim throughput. Trigger
// edges are never rate limited so a press is never lost without its release.
type Gate struct {
	mu      sync.Mutex
	cfg     Config
	clock   Clock
	logger  *logging.Logger
	clients map[string]*clientState
	drops   map[string]DropCounters
}

// Option customises gate construction.
type Option func(*Gate)

// WithClock overrides the clock used for latency calculations.
func WithClock(clock Clock) Option {
	return func(g *Gate) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// NewGate constructs a gate with the supplied configuration and logger.
func NewGate(cfg Config, logger *logging.Logger, opts ...Option) *Gate {
	cfg.MaxAge = max(cfg.MaxAge, 0)
	cfg.AimInterval = max(cfg.AimInterval, 0)
	if logger == nil {
		logger = logging.L()
	}
	gate := &Gate{
		cfg:     cfg,
		clock:   systemClock{},
		logger:  logger.With(logging.String("component", "intent_gate")),
		clients: make(map[string]*clientState),
		drops:   make(map[string]DropCounters),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(gate)
		}
	}
	return gate
}

// Evaluate applies sequencing, freshness and aim throughput guards. Intents
// without a sequence skip the ordering check.
func (g *Gate) Evaluate(intent Intent) Decision {
	decision := Decision{Accepted: true}
	if g == nil || intent.ClientID == "" {
		return decision
	}
	now := g.clock.Now()
	if !intent.SentAt.IsZero() {
		decision.Delay = max(now.Sub(intent.SentAt), 0)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	state := g.clients[intent.ClientID]
	if state == nil {
		state = &clientState{}
		g.clients[intent.ClientID] = state
	}

	//1.- Ordering: a replayed or reordered sequence is dropped.
	if intent.Sequence != 0 {
		if intent.Sequence <= state.lastSequence {
			return g.rejectLocked(intent, decision, DropReasonSequence)
		}
	}
	//2.- Freshness only applies when the client stamped the intent.
	if g.cfg.MaxAge > 0 && decision.Delay > g.cfg.MaxAge {
		return g.rejectLocked(intent, decision, DropReasonStale)
	}
	//3.- Aim updates are throttled; the newest one wins on the next accepted slot.
	if intent.Type == KindAim && g.cfg.AimInterval > 0 && !state.lastAim.IsZero() && now.Sub(state.lastAim) < g.cfg.AimInterval {
		return g.rejectLocked(intent, decision, DropReasonRateLimited)
	}

	if intent.Sequence != 0 {
		state.lastSequence = intent.Sequence
	}
	if intent.Type == KindAim {
		state.lastAim = now
	}
	return decision
}

func (g *Gate) rejectLocked(intent Intent, decision Decision, reason DropReason) Decision {
	counters := g.drops[intent.ClientID]
	switch reason {
	case DropReasonSequence:
		counters.Sequence++
	case DropReasonStale:
		counters.Stale++
	case DropReasonRateLimited:
		counters.RateLimited++
	}
	g.drops[intent.ClientID] = counters
	g.logger.Debug("intent dropped",
		logging.String("client_id", intent.ClientID),
		logging.String("type", string(intent.Type)),
		logging.String("reason", string(reason)),
	)
	decision.Accepted = false
	decision.Reason = reason
	return decision
}

// Forget clears cached sequencing and metrics for a disconnected client.
func (g *Gate) Forget(clientID string) {
	if g == nil || clientID == "" {
		return
	}
	g.mu.Lock()
	delete(g.clients, clientID)
	delete(g.drops, clientID)
	g.mu.Unlock()
}

// Metrics returns a copy of the per-client drop counters.
func (g *Gate) Metrics() map[string]DropCounters {
	if g == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.drops) == 0 {
		return nil
	}
	return maps.Clone(g.drops)
}
