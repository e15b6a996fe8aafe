package input

import (
	"maps"
	"math"
	"slices"
	"sync"
	"time"

	"shootingrange/rangesim/internal/logging"
)

// ValidationReason identifies why an intent was rejected by the validator.
type ValidationReason string

const (
	ValidationReasonNone           ValidationReason = ""
	ValidationReasonUnknownType    ValidationReason = "unknown_type"
	ValidationReasonAimNotFinite   ValidationReason = "aim_not_finite"
	ValidationReasonPitchRange     ValidationReason = "pitch_range"
	ValidationReasonSlotRange      ValidationReason = "slot_range"
	ValidationReasonUnknownWeapon  ValidationReason = "unknown_weapon"
	ValidationReasonCooldownActive ValidationReason = "cooldown_active"
)

// Constraints configures the validator's value checks and cooldown policy.
type Constraints struct {
	// PitchLimit bounds |pitch| in radians; the arena clamps tighter.
	PitchLimit float64
	// Slots are the number keys bound to weapons.
	Slots []int
	// Weapons are the names a switch may target.
	Weapons            []string
	InvalidBurstLimit  int
	InvalidBurstWindow time.Duration
	CooldownDuration   time.Duration
	MaxCooldownStrikes int
}

// DefaultConstraints provides the baseline for websocket clients.
var DefaultConstraints = Constraints{
	PitchLimit:         math.Pi / 2,
	Slots:              []int{1, 2},
	Weapons:            []string{"assaultRifle", "shotgun"},
	InvalidBurstLimit:  5,
	InvalidBurstWindow: time.Second,
	CooldownDuration:   500 * time.Millisecond,
	MaxCooldownStrikes: 3,
}

// ValidationDecision summarises the result of a Validate call.
type ValidationDecision struct {
	Accepted   bool
	Reason     ValidationReason
	Warn       bool
	Disconnect bool
	Cooldown   time.Duration
}

// ValidationCounters aggregates per-client violation statistics.
type ValidationCounters struct {
	Violations  map[ValidationReason]uint64 `json:"violations,omitempty"`
	Cooldowns   uint64                      `json:"cooldowns"`
	Disconnects uint64                      `json:"disconnects"`
}

// ValidatorOption customises validator construction.
type ValidatorOption func(*Validator)

// WithValidatorClock overrides the clock used to determine cooldown windows.
func WithValidatorClock(clock Clock) ValidatorOption {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// Validator rejects malformed intents and puts clients that keep sending them
// into cooldown; repeated cooldowns ask the caller to disconnect.
type Validator struct {
	mu      sync.Mutex
	cfg     Constraints
	clock   Clock
	logger  *logging.Logger
	clients map[string]*validatorClientState
	metrics map[string]ValidationCounters
}

type validatorClientState struct {
	firstInvalid  time.Time
	invalidCount  int
	cooldownUntil time.Time
	strikes       int
}

// NewValidator builds a validator; zero fields fall back to DefaultConstraints.
func NewValidator(cfg Constraints, logger *logging.Logger, opts ...ValidatorOption) *Validator {
	if cfg.PitchLimit <= 0 {
		cfg.PitchLimit = DefaultConstraints.PitchLimit
	}
	if len(cfg.Slots) == 0 {
		cfg.Slots = DefaultConstraints.Slots
	}
	if len(cfg.Weapons) == 0 {
		cfg.Weapons = DefaultConstraints.Weapons
	}
	if cfg.InvalidBurstLimit <= 0 {
		cfg.InvalidBurstLimit = DefaultConstraints.InvalidBurstLimit
	}
	if cfg.InvalidBurstWindow <= 0 {
		cfg.InvalidBurstWindow = DefaultConstraints.InvalidBurstWindow
	}
	if cfg.CooldownDuration <= 0 {
		cfg.CooldownDuration = DefaultConstraints.CooldownDuration
	}
	if cfg.MaxCooldownStrikes <= 0 {
		cfg.MaxCooldownStrikes = DefaultConstraints.MaxCooldownStrikes
	}
	if logger == nil {
		logger = logging.L()
	}
	validator := &Validator{
		cfg:     cfg,
		clock:   systemClock{},
		logger:  logger.With(logging.String("component", "intent_validator")),
		clients: make(map[string]*validatorClientState),
		metrics: make(map[string]ValidationCounters),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(validator)
		}
	}
	return validator
}

// Validate checks the intent's values and records any violation.
func (v *Validator) Validate(intent Intent) ValidationDecision {
	if v == nil {
		return ValidationDecision{Accepted: true}
	}
	now := v.clock.Now()

	v.mu.Lock()
	defer v.mu.Unlock()
	state := v.clients[intent.ClientID]
	if state == nil {
		state = &validatorClientState{}
		v.clients[intent.ClientID] = state
	}

	if !state.cooldownUntil.IsZero() && now.Before(state.cooldownUntil) {
		return ValidationDecision{Reason: ValidationReasonCooldownActive, Cooldown: state.cooldownUntil.Sub(now)}
	}
	if reason := v.check(intent); reason != ValidationReasonNone {
		return v.registerViolationLocked(intent.ClientID, state, now, reason)
	}
	//1.- A valid intent clears the burst window.
	state.invalidCount = 0
	state.firstInvalid = time.Time{}
	return ValidationDecision{Accepted: true}
}

func (v *Validator) check(intent Intent) ValidationReason {
	switch intent.Type {
	case KindPress, KindRelease:
		return ValidationReasonNone
	case KindAim:
		if math.IsNaN(intent.Yaw) || math.IsInf(intent.Yaw, 0) || math.IsNaN(intent.Pitch) || math.IsInf(intent.Pitch, 0) {
			return ValidationReasonAimNotFinite
		}
		if math.Abs(intent.Pitch) > v.cfg.PitchLimit {
			return ValidationReasonPitchRange
		}
	case KindSlot:
		if !slices.Contains(v.cfg.Slots, intent.Slot) {
			return ValidationReasonSlotRange
		}
	case KindSwitch:
		if !slices.Contains(v.cfg.Weapons, intent.Weapon) {
			return ValidationReasonUnknownWeapon
		}
	default:
		return ValidationReasonUnknownType
	}
	return ValidationReasonNone
}

func (v *Validator) registerViolationLocked(clientID string, state *validatorClientState, now time.Time, reason ValidationReason) ValidationDecision {
	counters := v.metrics[clientID]
	if counters.Violations == nil {
		counters.Violations = make(map[ValidationReason]uint64)
	}
	counters.Violations[reason]++

	decision := ValidationDecision{Reason: reason}
	if state.invalidCount == 0 || now.Sub(state.firstInvalid) > v.cfg.InvalidBurstWindow {
		state.firstInvalid = now
		state.invalidCount = 1
	} else {
		state.invalidCount++
	}
	decision.Warn = v.cfg.InvalidBurstLimit-state.invalidCount == 1

	//1.- A full burst starts a cooldown; too many cooldowns end the session.
	if state.invalidCount >= v.cfg.InvalidBurstLimit {
		state.cooldownUntil = now.Add(v.cfg.CooldownDuration)
		state.invalidCount = 0
		state.firstInvalid = time.Time{}
		state.strikes++
		counters.Cooldowns++
		if state.strikes >= v.cfg.MaxCooldownStrikes {
			decision.Disconnect = true
			counters.Disconnects++
		}
		decision.Cooldown = v.cfg.CooldownDuration
		v.logger.Debug("intent validator cooldown",
			logging.String("client_id", clientID),
			logging.String("reason", string(reason)),
			logging.Int("strikes", state.strikes),
			logging.Duration("cooldown", v.cfg.CooldownDuration),
		)
	}
	v.metrics[clientID] = counters
	return decision
}

// Forget clears all state for the specified client.
func (v *Validator) Forget(clientID string) {
	if v == nil {
		return
	}
	v.mu.Lock()
	delete(v.clients, clientID)
	delete(v.metrics, clientID)
	v.mu.Unlock()
}

// Metrics returns a deep copy of per-client counters.
func (v *Validator) Metrics() map[string]ValidationCounters {
	if v == nil {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.metrics) == 0 {
		return nil
	}
	snapshot := make(map[string]ValidationCounters, len(v.metrics))
	for clientID, counters := range v.metrics {
		counters.Violations = maps.Clone(counters.Violations)
		snapshot[clientID] = counters
	}
	return snapshot
}
