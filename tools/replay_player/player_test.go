package replayplayer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"shootingrange/rangesim/internal/arena"
	"shootingrange/rangesim/internal/events"
	"shootingrange/rangesim/internal/replay"
)

func recordSession(t *testing.T, closeWriter bool) string {
	t.Helper()
	clock := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	writer, err := replay.NewWriter(t.TempDir(), replay.Metadata{Seed: 9, TickRate: 60, FrameInterval: 2}, clock)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	//1.- Interleave events and frames the way the recorder would.
	envelopes := []*events.Envelope{
		{Sequence: 1, Kind: events.KindWeaponSwitched, Tick: 1, Data: map[string]any{"previous": "assaultRifle", "current": "shotgun"}},
		{Sequence: 2, Kind: events.KindFire, Tick: 2, Data: map[string]any{"weapon": "shotgun"}},
		{Sequence: 3, Kind: events.KindTargetHit, Tick: 3, Data: map[string]any{"weapon": "shotgun", "points": 10, "score": 10}},
	}
	for _, env := range envelopes {
		if err := writer.AppendEvent(env); err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}
	for _, snap := range []arena.Snapshot{
		{Tick: 2, Weapon: "shotgun", Shots: 1, Projectiles: 8, ActiveTargets: 3},
		{Tick: 4, Weapon: "shotgun", Shots: 1, Score: 10, Projectiles: 2, ActiveTargets: 2},
	} {
		payload, err := msgpack.Marshal(&snap)
		if err != nil {
			t.Fatalf("marshal snapshot: %v", err)
		}
		if err := writer.AppendFrame(snap.Tick, payload); err != nil {
			t.Fatalf("AppendFrame: %v", err)
		}
	}
	if closeWriter {
		if err := writer.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	} else if err := writer.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	return writer.Directory()
}

func TestSummariseReplaysBundleInTickOrder(t *testing.T) {
	summary, err := Summarise(recordSession(t, true))
	if err != nil {
		t.Fatalf("Summarise: %v", err)
	}
	if !summary.Complete || summary.Manifest == nil || summary.Manifest.Frames != 2 {
		t.Fatalf("expected a complete bundle, got %+v", summary)
	}
	if summary.Header.Seed != 9 || summary.Header.TickRate != 60 {
		t.Fatalf("unexpected header %+v", summary.Header)
	}
	if summary.Events[events.KindFire] != 1 || summary.Events[events.KindTargetHit] != 1 {
		t.Fatalf("unexpected event counts %+v", summary.Events)
	}
	if len(summary.Switches) != 1 || summary.Switches[0] != "shotgun" {
		t.Fatalf("unexpected switches %+v", summary.Switches)
	}
	if len(summary.Frames) != 2 || summary.Frames[0].Projectiles != 8 || summary.Frames[1].Tick != 4 {
		t.Fatalf("unexpected frames %+v", summary.Frames)
	}
	if summary.Score != 10 || summary.LastTick != 4 {
		t.Fatalf("expected score 10 at tick 4, got %d at %d", summary.Score, summary.LastTick)
	}
}

func TestSummariseToleratesUnclosedBundle(t *testing.T) {
	dir := recordSession(t, false)

	summary, err := Summarise(dir)
	if err != nil {
		t.Fatalf("Summarise: %v", err)
	}
	if summary.Complete || summary.Manifest != nil {
		t.Fatalf("expected an incomplete bundle, got %+v", summary)
	}
	if len(summary.Frames) != 2 {
		t.Fatalf("expected flushed frames to be readable, got %d", len(summary.Frames))
	}
}

func TestSummariseRejectsMissingHeader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a replay"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Summarise(dir); err == nil {
		t.Fatalf("expected an error for a directory without a header")
	}
}
