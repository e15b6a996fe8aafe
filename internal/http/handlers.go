package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"shootingrange/rangesim/internal/arena"
	"shootingrange/rangesim/internal/auth"
	"shootingrange/rangesim/internal/events"
	"shootingrange/rangesim/internal/input"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/replay"
	"shootingrange/rangesim/internal/simulation"
)

// Range is the slice of the arena the HTTP surface depends on. Every method
// is safe to call from request goroutines.
type Range interface {
	Snapshot() *arena.Snapshot
	Ready() bool
	Submit(intent input.Intent) bool
}

// ReplayFlusher forces buffered replay artefacts to disk.
type ReplayFlusher interface {
	Flush() error
	Directory() string
}

// RateLimiter gates how frequently sensitive operations may be invoked.
type RateLimiter interface {
	Allow() bool
}

// Options configures the HandlerSet.
type Options struct {
	Logger *logging.Logger
	Range  Range
	Events *events.Stream

	Ticks     func() simulation.TickMetricsSnapshot
	LoopStats func() (ticks, skipped uint64)

	Replay       ReplayFlusher
	ReplayStats  func() replay.Stats
	StorageStats func() replay.StorageStats

	Gate           *input.Gate
	Validator      *input.Validator
	Verifier       *auth.Verifier
	AllowedOrigins []string
	EventBuffer    int
	TickRate       int

	AdminToken  string
	RateLimiter RateLimiter
	TimeSource  func() time.Time
}

// HandlerSet bundles the range's operator and player handlers.
type HandlerSet struct {
	logger    *logging.Logger
	rng       Range
	events    *events.Stream
	ticks     func() simulation.TickMetricsSnapshot
	loopStats func() (ticks, skipped uint64)

	replay       ReplayFlusher
	replayStats  func() replay.Stats
	storageStats func() replay.StorageStats

	gate        *input.Gate
	validator   *input.Validator
	verifier    *auth.Verifier
	origins     map[string]struct{}
	anyOrigin   bool
	eventBuffer int
	tickRate    int

	adminToken  string
	rateLimiter RateLimiter
	now         func() time.Time
	started     time.Time

	socketsMu sync.Mutex
	sockets   map[string]*socketClient
	closing   bool
	retired   retiredCounters
}

// NewHandlerSet constructs a HandlerSet using the provided options.
func NewHandlerSet(opts Options) *HandlerSet {
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	now := opts.TimeSource
	if now == nil {
		now = time.Now
	}
	buffer := opts.EventBuffer
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	h := &HandlerSet{
		logger:       logger,
		rng:          opts.Range,
		events:       opts.Events,
		ticks:        opts.Ticks,
		loopStats:    opts.LoopStats,
		replay:       opts.Replay,
		replayStats:  opts.ReplayStats,
		storageStats: opts.StorageStats,
		gate:         opts.Gate,
		validator:    opts.Validator,
		verifier:     opts.Verifier,
		origins:      make(map[string]struct{}, len(opts.AllowedOrigins)),
		anyOrigin:    len(opts.AllowedOrigins) == 0,
		eventBuffer:  buffer,
		tickRate:     opts.TickRate,
		adminToken:   strings.TrimSpace(opts.AdminToken),
		rateLimiter:  opts.RateLimiter,
		now:          now,
		started:      now(),
		sockets:      make(map[string]*socketClient),
	}
	for _, origin := range opts.AllowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			h.anyOrigin = true
			continue
		}
		h.origins[strings.ToLower(origin)] = struct{}{}
	}
	return h
}

// Register attaches all handlers to the provided mux.
func (h *HandlerSet) Register(mux *http.ServeMux) {
	if mux == nil {
		return
	}
	mux.HandleFunc("/livez", h.LivenessHandler())
	mux.HandleFunc("/readyz", h.ReadinessHandler())
	mux.HandleFunc("/metrics", h.MetricsHandler())
	mux.HandleFunc("/snapshot", h.SnapshotHandler())
	mux.HandleFunc("/replay/flush", h.ReplayFlushHandler())
	mux.HandleFunc("/ws", h.WebsocketHandler())
}

// LivenessHandler reports that the HTTP server is reachable.
func (h *HandlerSet) LivenessHandler() http.HandlerFunc {
	type response struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, response{
			Status:    "alive",
			Timestamp: h.now().UTC().Format(time.RFC3339Nano),
		})
	}
}

// ReadinessHandler reports ready once the simulation has completed a tick.
func (h *HandlerSet) ReadinessHandler() http.HandlerFunc {
	type response struct {
		Status        string  `json:"status"`
		Message       string  `json:"message,omitempty"`
		UptimeSeconds float64 `json:"uptime_seconds"`
		Tick          uint64  `json:"tick"`
		Clients       int     `json:"clients"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		resp := response{
			Status:        "ok",
			UptimeSeconds: h.now().Sub(h.started).Seconds(),
			Clients:       h.SocketCount(),
		}
		status := http.StatusOK
		switch {
		case h.rng == nil:
			status = http.StatusServiceUnavailable
			resp.Status = "error"
			resp.Message = "range not configured"
		case !h.rng.Ready():
			status = http.StatusServiceUnavailable
			resp.Status = "starting"
			resp.Message = "simulation has not ticked yet"
		default:
			if snap := h.rng.Snapshot(); snap != nil {
				resp.Tick = snap.Tick
			}
		}
		writeJSON(w, status, resp)
	}
}

// SnapshotHandler returns the latest published range snapshot as JSON.
func (h *HandlerSet) SnapshotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var snap *arena.Snapshot
		if h.rng != nil {
			snap = h.rng.Snapshot()
		}
		if snap == nil {
			http.Error(w, "no snapshot published yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// ReplayFlushHandler authorises and forces the active recording to disk.
func (h *HandlerSet) ReplayFlushHandler() http.HandlerFunc {
	type response struct {
		Status   string `json:"status"`
		Location string `json:"location,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := h.requestLogger(r, "replay_flush")
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if h.adminToken == "" {
			reqLogger.Warn("replay flush denied: admin auth disabled")
			http.Error(w, "admin authentication not configured", http.StatusForbidden)
			return
		}
		if !h.authorise(r) {
			reqLogger.Warn("replay flush denied: unauthorized request")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if h.rateLimiter != nil && !h.rateLimiter.Allow() {
			if hinted, ok := h.rateLimiter.(interface{ RetryAfter() time.Duration }); ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(hinted.RetryAfter().Round(time.Second).Seconds())))
			}
			reqLogger.Warn("replay flush denied: rate limit exceeded")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		if h.replay == nil {
			reqLogger.Warn("replay flush denied: recording disabled")
			http.Error(w, "replay recording is disabled", http.StatusServiceUnavailable)
			return
		}
		if err := h.replay.Flush(); err != nil {
			reqLogger.Error("replay flush failed", logging.Error(err))
			http.Error(w, "failed to flush replay", http.StatusInternalServerError)
			return
		}
		reqLogger.Info("replay flushed", logging.String("dir", h.replay.Directory()))
		writeJSON(w, http.StatusAccepted, response{Status: "flushed", Location: h.replay.Directory()})
	}
}

func (h *HandlerSet) authorise(r *http.Request) bool {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	var token string
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		token = strings.TrimSpace(header[7:])
	} else if header != "" {
		token = header
	}
	if token == "" {
		token = strings.TrimSpace(r.Header.Get("X-Admin-Token"))
	}
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("token"))
	}
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) == 1
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// requestLogger prefers the request-scoped logger installed by the logging
// middleware so entries carry the request id.
func (h *HandlerSet) requestLogger(r *http.Request, handler string) *logging.Logger {
	logger := h.logger
	if scoped, ok := logging.Scoped(r.Context()); ok {
		logger = scoped
	}
	return logger.With(
		logging.String("handler", handler),
		logging.String("remote_addr", r.RemoteAddr),
	)
}
