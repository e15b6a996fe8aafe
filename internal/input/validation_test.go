package input

import (
	"math"
	"sync"
	"testing"
	"time"

	"shootingrange/rangesim/internal/logging"
)

type validatorClock struct {
	mu  sync.Mutex
	now time.Time
}

// 1.- Now returns the synthetic time used to drive cooldown calculations deterministically.
func (c *validatorClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// 2.- Advance moves the synthetic clock forward so tests can simulate elapsed time.
func (c *validatorClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestValidatorAcceptsWellFormedIntents(t *testing.T) {
	validator := NewValidator(DefaultConstraints, logging.NewTestLogger(), WithValidatorClock(&validatorClock{now: time.UnixMilli(0)}))
	for _, intent := range []Intent{
		{ClientID: "a", Type: KindPress},
		{ClientID: "a", Type: KindRelease},
		{ClientID: "a", Type: KindAim, Yaw: 7.5, Pitch: -0.4},
		{ClientID: "a", Type: KindSlot, Slot: 2},
		{ClientID: "a", Type: KindSwitch, Weapon: "shotgun"},
	} {
		if decision := validator.Validate(intent); !decision.Accepted {
			t.Fatalf("expected %s to be accepted, got %+v", intent.Type, decision)
		}
	}
}

func TestValidatorRejectsMalformedIntents(t *testing.T) {
	validator := NewValidator(Constraints{InvalidBurstLimit: 100}, logging.NewTestLogger())
	cases := []struct {
		intent Intent
		reason ValidationReason
	}{
		{Intent{ClientID: "b", Type: "reload"}, ValidationReasonUnknownType},
		{Intent{ClientID: "b", Type: KindAim, Yaw: math.NaN()}, ValidationReasonAimNotFinite},
		{Intent{ClientID: "b", Type: KindAim, Pitch: 2}, ValidationReasonPitchRange},
		{Intent{ClientID: "b", Type: KindSlot, Slot: 9}, ValidationReasonSlotRange},
		{Intent{ClientID: "b", Type: KindSwitch, Weapon: "railgun"}, ValidationReasonUnknownWeapon},
	}
	for _, tc := range cases {
		decision := validator.Validate(tc.intent)
		if decision.Accepted || decision.Reason != tc.reason {
			t.Fatalf("expected %s, got %+v", tc.reason, decision)
		}
	}
	if got := validator.Metrics()["b"].Violations[ValidationReasonPitchRange]; got != 1 {
		t.Fatalf("expected one pitch violation, got %d", got)
	}
}

func TestValidatorAppliesCooldownAndDisconnects(t *testing.T) {
	clock := &validatorClock{now: time.UnixMilli(0)}
	cfg := DefaultConstraints
	cfg.InvalidBurstLimit = 3
	cfg.CooldownDuration = 300 * time.Millisecond
	cfg.MaxCooldownStrikes = 2
	validator := NewValidator(cfg, logging.NewTestLogger(), WithValidatorClock(clock))
	bad := Intent{ClientID: "d", Type: KindSlot, Slot: 0}

	//1.- The third violation in the window starts a cooldown and the second warns.
	var decisions []ValidationDecision
	for i := 0; i < cfg.InvalidBurstLimit; i++ {
		decisions = append(decisions, validator.Validate(bad))
	}
	if !decisions[1].Warn || decisions[2].Cooldown != cfg.CooldownDuration || decisions[2].Disconnect {
		t.Fatalf("unexpected burst decisions %+v", decisions)
	}

	//2.- Valid intents are refused while cooling down.
	if decision := validator.Validate(Intent{ClientID: "d", Type: KindPress}); decision.Reason != ValidationReasonCooldownActive {
		t.Fatalf("expected cooldown rejection, got %+v", decision)
	}
	clock.Advance(cfg.CooldownDuration)
	if decision := validator.Validate(Intent{ClientID: "d", Type: KindPress}); !decision.Accepted {
		t.Fatalf("expected acceptance after cooldown, got %+v", decision)
	}

	//3.- A second full burst exhausts the strikes.
	var last ValidationDecision
	for i := 0; i < cfg.InvalidBurstLimit; i++ {
		last = validator.Validate(bad)
	}
	if !last.Disconnect {
		t.Fatalf("expected disconnect after repeated cooldowns, got %+v", last)
	}
	if counters := validator.Metrics()["d"]; counters.Cooldowns != 2 || counters.Disconnects != 1 {
		t.Fatalf("unexpected counters %+v", counters)
	}

	validator.Forget("d")
	if validator.Metrics() != nil {
		t.Fatalf("expected forget to clear metrics")
	}
}

func TestDecodeIntent(t *testing.T) {
	intent, err := DecodeIntent([]byte(`{"type":" AIM ","seq":4,"yaw":1.5,"pitch":-0.2}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if intent.Type != KindAim || intent.Sequence != 4 || intent.Yaw != 1.5 || !intent.Type.Known() {
		t.Fatalf("unexpected intent %+v", intent)
	}
	if _, err := DecodeIntent([]byte(`{"seq":1}`)); err == nil {
		t.Fatalf("expected missing type to fail")
	}
	if _, err := DecodeIntent([]byte(`not json`)); err == nil {
		t.Fatalf("expected malformed payload to fail")
	}
}
