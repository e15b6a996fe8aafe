// Package input decodes and polices player intents arriving over the network.
package input

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind names an intent.
type Kind string

const (
	KindPress   Kind = "press"
	KindRelease Kind = "release"
	KindSwitch  Kind = "switch"
	KindAim     Kind = "aim"
	KindSlot    Kind = "slot"
)

// Known reports whether k is an intent the arena understands.
func (k Kind) Known() bool {
	switch k {
	case KindPress, KindRelease, KindSwitch, KindAim, KindSlot:
		return true
	}
	return false
}

// Intent is one player command queued for the simulation goroutine.
type Intent struct {
	Type     Kind      `json:"type"`
	Sequence uint64    `json:"seq,omitempty"`
	SentAt   time.Time `json:"sent_at,omitempty"`
	Weapon   string    `json:"weapon,omitempty"`
	Slot     int       `json:"slot,omitempty"`
	Yaw      float64   `json:"yaw,omitempty"`
	Pitch    float64   `json:"pitch,omitempty"`
	ClientID string    `json:"-"`
}

// DecodeIntent parses a websocket message into an intent.
func DecodeIntent(raw []byte) (Intent, error) {
	var intent Intent
	if err := json.Unmarshal(raw, &intent); err != nil {
		return Intent{}, fmt.Errorf("decode intent: %w", err)
	}
	intent.Type = Kind(strings.ToLower(strings.TrimSpace(string(intent.Type))))
	if intent.Type == "" {
		return Intent{}, fmt.Errorf("decode intent: missing type")
	}
	intent.Weapon = strings.TrimSpace(intent.Weapon)
	return intent, nil
}
