// Package replayplayer walks a recorded range session in tick order and
// summarises what happened.
package replayplayer

import (
	"fmt"

	"shootingrange/rangesim/internal/arena"
	"shootingrange/rangesim/internal/events"
	"shootingrange/rangesim/internal/replay"
)

// FrameSummary is the slice of a recorded snapshot operators care about.
type FrameSummary struct {
	Tick          uint64 `json:"tick"`
	Weapon        string `json:"weapon"`
	Score         int    `json:"score"`
	Shots         uint64 `json:"shots"`
	Projectiles   int    `json:"projectiles"`
	ActiveTargets int    `json:"active_targets"`
}

// Summary describes one replay bundle.
type Summary struct {
	Header    replay.Header       `json:"header"`
	Manifest  *replay.Manifest    `json:"manifest,omitempty"`
	Complete  bool                `json:"complete"`
	Truncated bool                `json:"truncated"`
	Events    map[events.Kind]int `json:"events"`
	Switches  []string            `json:"switches,omitempty"`
	Frames    []FrameSummary      `json:"frames,omitempty"`
	LastTick  uint64              `json:"last_tick"`
	Score     int                 `json:"score"`
}

// Summarise loads the bundle in dir and replays it in timeline order.
func Summarise(dir string) (*Summary, error) {
	rec, err := replay.Load(dir)
	if err != nil {
		return nil, err
	}
	summary := &Summary{
		Header:    rec.Header,
		Manifest:  rec.Manifest,
		Complete:  rec.Manifest != nil,
		Truncated: rec.Truncated,
		Events:    make(map[events.Kind]int),
	}
	err = rec.Replay(func(entry replay.TimelineEntry) error {
		summary.LastTick = entry.Tick
		if entry.Event != nil {
			return summary.applyEvent(entry.Event)
		}
		return summary.applyFrame(entry.Frame)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *Summary) applyEvent(env *events.Envelope) error {
	s.Events[env.Kind]++
	switch env.Kind {
	case events.KindWeaponSwitched:
		if current, ok := env.Data["current"].(string); ok {
			s.Switches = append(s.Switches, current)
		}
	case events.KindTargetHit:
		//1.- JSON numbers come back as float64.
		if score, ok := env.Data["score"].(float64); ok {
			s.Score = int(score)
		}
	}
	return nil
}

func (s *Summary) applyFrame(frame *replay.Frame) error {
	var snap arena.Snapshot
	if err := frame.Decode(&snap); err != nil {
		return fmt.Errorf("decode frame at tick %d: %w", frame.Tick, err)
	}
	s.Frames = append(s.Frames, FrameSummary{
		Tick:          snap.Tick,
		Weapon:        snap.Weapon,
		Score:         snap.Score,
		Shots:         snap.Shots,
		Projectiles:   snap.Projectiles,
		ActiveTargets: snap.ActiveTargets,
	})
	if snap.Score > s.Score {
		s.Score = snap.Score
	}
	return nil
}
