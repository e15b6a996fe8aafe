package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shootingrange/rangesim/internal/arena"
	"shootingrange/rangesim/internal/events"
	"shootingrange/rangesim/internal/input"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/replay"
	"shootingrange/rangesim/internal/simulation"
)

type stubRange struct {
	mu       sync.Mutex
	snap     *arena.Snapshot
	intents  []input.Intent
	capacity int
}

func (s *stubRange) Snapshot() *arena.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *stubRange) Ready() bool { return s.Snapshot() != nil }

func (s *stubRange) Submit(intent input.Intent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capacity > 0 && len(s.intents) >= s.capacity {
		return false
	}
	s.intents = append(s.intents, intent)
	return true
}

func (s *stubRange) received() []input.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]input.Intent(nil), s.intents...)
}

type stubLimiter struct {
	remaining int
}

func (s *stubLimiter) Allow() bool {
	if s.remaining <= 0 {
		return false
	}
	s.remaining--
	return true
}

type stubFlusher struct {
	err   error
	calls int
}

func (s *stubFlusher) Flush() error {
	s.calls++
	return s.err
}

func (s *stubFlusher) Directory() string { return "/tmp/replays/session" }

func TestLivenessHandlerReturnsJSON(t *testing.T) {
	fixed := time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)
	handlers := NewHandlerSet(Options{Logger: logging.NewTestLogger(), TimeSource: func() time.Time { return fixed }})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)

	handlers.LivenessHandler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var payload struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "alive" || payload.Timestamp != fixed.Format(time.RFC3339Nano) {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestReadinessWaitsForFirstTick(t *testing.T) {
	rng := &stubRange{}
	handlers := NewHandlerSet(Options{Logger: logging.NewTestLogger(), Range: rng})

	//1.- Before the first tick the range reports starting.
	rr := httptest.NewRecorder()
	handlers.ReadinessHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before first tick, got %d", rr.Code)
	}

	//2.- Once a snapshot exists the range is ready and reports its tick.
	rng.snap = &arena.Snapshot{Tick: 42}
	rr = httptest.NewRecorder()
	handlers.ReadinessHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 after first tick, got %d", rr.Code)
	}
	var payload struct {
		Status string `json:"status"`
		Tick   uint64 `json:"tick"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "ok" || payload.Tick != 42 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestSnapshotHandler(t *testing.T) {
	rng := &stubRange{}
	handlers := NewHandlerSet(Options{Logger: logging.NewTestLogger(), Range: rng})

	rr := httptest.NewRecorder()
	handlers.SnapshotHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/snapshot", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without snapshot, got %d", rr.Code)
	}

	rng.snap = &arena.Snapshot{Tick: 7, Score: 30, Weapon: "shotgun"}
	rr = httptest.NewRecorder()
	handlers.SnapshotHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/snapshot", nil))
	var snap arena.Snapshot
	if err := json.NewDecoder(rr.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Tick != 7 || snap.Score != 30 || snap.Weapon != "shotgun" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	rr = httptest.NewRecorder()
	handlers.SnapshotHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/snapshot", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST, got %d", rr.Code)
	}
}

func TestMetricsHandlerOutputsPrometheusFormat(t *testing.T) {
	stream := events.NewStream(events.Config{Retain: 8})
	_, _ = stream.Publish(1, time.Unix(0, 0), events.WeaponSwitched{Previous: "assaultRifle", Current: "shotgun"})
	monitor := simulation.NewTickMonitor(10 * time.Millisecond)
	monitor.Observe(4 * time.Millisecond)
	monitor.Observe(12 * time.Millisecond)
	gate := input.NewGate(input.Config{MaxAge: time.Second}, logging.NewTestLogger())
	gate.Evaluate(input.Intent{ClientID: "c", Type: input.KindPress, Sequence: 2})
	gate.Evaluate(input.Intent{ClientID: "c", Type: input.KindPress, Sequence: 1})

	handlers := NewHandlerSet(Options{
		Logger:       logging.NewTestLogger(),
		Range:        &stubRange{snap: &arena.Snapshot{Tick: 120, Score: 20, Projectiles: 3, LightsInUse: 2}},
		Events:       stream,
		Ticks:        monitor.Snapshot,
		LoopStats:    func() (uint64, uint64) { return 120, 4 },
		Gate:         gate,
		ReplayStats:  func() replay.Stats { return replay.Stats{DroppedFrames: 5} },
		StorageStats: func() replay.StorageStats { return replay.StorageStats{Sessions: 3} },
	})

	rr := httptest.NewRecorder()
	handlers.MetricsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if got := rr.Header().Get("Content-Type"); got != "text/plain; version=0.0.4" {
		t.Fatalf("unexpected content type %q", got)
	}
	body := rr.Body.String()
	for _, substr := range []string{
		"rangesim_tick 120",
		"rangesim_score 20",
		"rangesim_projectiles 3",
		"rangesim_lights_in_use 2",
		"rangesim_events_published_total 1",
		"rangesim_tick_overruns_total 1",
		"rangesim_tick_duration_seconds_count 2",
		"rangesim_ticks_skipped_total 4",
		`rangesim_intents_gated_total{reason="sequence"} 1`,
		"rangesim_replay_dropped_frames_total 5",
		"rangesim_replay_sessions 3",
		"rangesim_websocket_clients 0",
	} {
		if !strings.Contains(body, substr) {
			t.Fatalf("metrics missing %q:\n%s", substr, body)
		}
	}
}

func TestReplayFlushHandlerAuthAndRateLimits(t *testing.T) {
	flusher := &stubFlusher{}
	limiter := &stubLimiter{remaining: 1}
	handlers := NewHandlerSet(Options{
		Logger:      logging.NewTestLogger(),
		Replay:      flusher,
		AdminToken:  "topsecret",
		RateLimiter: limiter,
	})

	makeRequest := func(token string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/replay/flush", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		handlers.ReplayFlushHandler().ServeHTTP(rr, req)
		return rr
	}

	if resp := makeRequest(""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized for missing token, got %d", resp.Code)
	}
	if resp := makeRequest("wrong"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized for wrong token, got %d", resp.Code)
	}

	resp := makeRequest("topsecret")
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for authorised request, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "/tmp/replays/session") {
		t.Fatalf("expected location in body, got %s", resp.Body.String())
	}
	if flusher.calls != 1 {
		t.Fatalf("expected flusher invoked once, got %d", flusher.calls)
	}

	if resp := makeRequest("topsecret"); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limit, got %d", resp.Code)
	}
}

func TestReplayFlushHandlerFailures(t *testing.T) {
	//1.- Without an admin token the endpoint is closed.
	closed := NewHandlerSet(Options{Logger: logging.NewTestLogger(), Replay: &stubFlusher{}})
	rr := httptest.NewRecorder()
	closed.ReplayFlushHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/replay/flush?token=x", nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without admin token, got %d", rr.Code)
	}

	//2.- Recording disabled.
	disabled := NewHandlerSet(Options{Logger: logging.NewTestLogger(), AdminToken: "x"})
	rr = httptest.NewRecorder()
	disabled.ReplayFlushHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/replay/flush?token=x", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with recording disabled, got %d", rr.Code)
	}

	//3.- Flush errors surface as 500.
	failing := NewHandlerSet(Options{Logger: logging.NewTestLogger(), AdminToken: "x", Replay: &stubFlusher{err: errors.New("disk full")}})
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/replay/flush", nil)
	req.Header.Set("X-Admin-Token", "x")
	failing.ReplayFlushHandler().ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on flush failure, got %d", rr.Code)
	}

	//4.- Limiters exposing a wait hint set Retry-After.
	limited := NewHandlerSet(Options{
		Logger:      logging.NewTestLogger(),
		AdminToken:  "x",
		Replay:      &stubFlusher{},
		RateLimiter: NewSlidingWindowLimiter(time.Minute, 1, func() time.Time { return time.Unix(100, 0) }),
	})
	for i := 0; i < 2; i++ {
		rr = httptest.NewRecorder()
		limited.ReplayFlushHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/replay/flush?token=x", nil))
	}
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected 429 with Retry-After 60, got %d %q", rr.Code, rr.Header().Get("Retry-After"))
	}
}
