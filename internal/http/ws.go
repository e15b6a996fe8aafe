package httpapi

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"shootingrange/rangesim/internal/events"
	"shootingrange/rangesim/internal/input"
	"shootingrange/rangesim/internal/logging"
)

const (
	defaultEventBuffer = 128
	controlBuffer      = 16
	maxMessageSize     = 4096
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = 30 * time.Second
)

// Outbound frame types written to players.
const (
	FrameHello    = "hello"
	FrameEvent    = "event"
	FrameRejected = "rejected"
)

// Rejection reasons that do not come from the gate or the validator.
const (
	RejectMalformed = "malformed"
	RejectInboxFull = "inbox_full"
)

// Frame is one JSON message sent to a websocket player.
type Frame struct {
	Type     string           `json:"type"`
	ClientID string           `json:"client_id,omitempty"`
	Player   string           `json:"player,omitempty"`
	TickRate int              `json:"tick_rate,omitempty"`
	Event    *events.Envelope `json:"event,omitempty"`
	Sequence uint64           `json:"seq,omitempty"`
	Reason   string           `json:"reason,omitempty"`
}

type socketClient struct {
	id      string
	player  string
	conn    *websocket.Conn
	control chan Frame
	log     *logging.Logger
}

type retiredCounters struct {
	drops       input.DropCounters
	violations  map[input.ValidationReason]uint64
	disconnects uint64
}

// WebsocketHandler upgrades players onto the range: events stream out as JSON
// frames and intent messages flow through the gate and validator into the arena.
func (h *HandlerSet) WebsocketHandler() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		reqLogger := h.requestLogger(r, "websocket")
		if h.rng == nil || h.events == nil {
			http.Error(w, "range not configured", http.StatusServiceUnavailable)
			return
		}
		var player string
		if h.verifier != nil {
			claims, err := h.verifier.Authenticate(r)
			if err != nil {
				reqLogger.Warn("websocket denied: token rejected", logging.Error(err))
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			player = claims.Subject
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			//1.- Upgrade has already written the HTTP error.
			reqLogger.Warn("websocket upgrade failed", logging.Error(err))
			return
		}
		client := &socketClient{
			id:      uuid.NewString(),
			player:  player,
			conn:    conn,
			control: make(chan Frame, controlBuffer),
		}
		client.log = reqLogger.With(logging.String("client_id", client.id), logging.String("player", player))
		if !h.track(client) {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
			_ = conn.Close()
			return
		}
		h.serveSocket(client)
	}
}

func (h *HandlerSet) serveSocket(client *socketClient) {
	ctx, cancel := context.WithCancel(context.Background())
	subscriberID := "ws-" + client.id
	sub, err := h.events.Subscribe(ctx, subscriberID, h.eventBuffer)
	if err != nil {
		cancel()
		client.log.Error("websocket subscribe failed", logging.Error(err))
		h.untrack(client)
		_ = client.conn.Close()
		return
	}
	client.log.Info("player connected")
	client.control <- Frame{Type: FrameHello, ClientID: client.id, Player: client.player, TickRate: h.tickRate}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writePump(ctx, client, sub)
	}()

	h.readPump(client)

	//1.- Stop the writer before dropping per-client state so nothing races the cleanup.
	cancel()
	<-writerDone
	h.events.Forget(subscriberID)
	h.untrack(client)
	_ = client.conn.Close()
	client.log.Info("player disconnected")
}

func (h *HandlerSet) readPump(client *socketClient) {
	conn := client.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				client.log.Debug("websocket read ended", logging.Error(err))
			}
			return
		}
		intent, err := input.DecodeIntent(raw)
		if err != nil {
			h.reject(client, 0, RejectMalformed)
			continue
		}
		intent.ClientID = client.id
		if h.gate != nil {
			if decision := h.gate.Evaluate(intent); !decision.Accepted {
				h.reject(client, intent.Sequence, string(decision.Reason))
				continue
			}
		}
		if h.validator != nil {
			decision := h.validator.Validate(intent)
			if decision.Disconnect {
				client.log.Warn("player disconnected for repeated invalid intents", logging.String("reason", string(decision.Reason)))
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, string(decision.Reason)),
					time.Now().Add(writeWait))
				return
			}
			if !decision.Accepted {
				h.reject(client, intent.Sequence, string(decision.Reason))
				continue
			}
		}
		if !h.rng.Submit(intent) {
			h.reject(client, intent.Sequence, RejectInboxFull)
		}
	}
}

func (h *HandlerSet) writePump(ctx context.Context, client *socketClient, sub *events.Subscription) {
	conn := client.conn
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	feed := sub.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-client.control:
			if err := writeFrame(conn, frame); err != nil {
				_ = conn.Close()
				return
			}
		case env, ok := <-feed:
			if !ok {
				//1.- The subscription was replaced or forgotten; the reader sees the close.
				_ = conn.Close()
				return
			}
			if err := writeFrame(conn, Frame{Type: FrameEvent, Event: env}); err != nil {
				_ = conn.Close()
				return
			}
			_ = sub.Ack(env.Sequence)
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func writeFrame(conn *websocket.Conn, frame Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}

// reject tells the player an intent was refused. Rejections are best effort:
// a full control queue drops them.
func (h *HandlerSet) reject(client *socketClient, seq uint64, reason string) {
	select {
	case client.control <- Frame{Type: FrameRejected, Sequence: seq, Reason: reason}:
	default:
	}
}

func (h *HandlerSet) checkOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" || h.anyOrigin {
		return true
	}
	if _, ok := h.origins[strings.ToLower(strings.TrimRight(origin, "/"))]; ok {
		return true
	}
	//1.- Same-host pages are always allowed.
	parsed, err := url.Parse(origin)
	return err == nil && strings.EqualFold(parsed.Host, r.Host)
}

func (h *HandlerSet) track(client *socketClient) bool {
	h.socketsMu.Lock()
	defer h.socketsMu.Unlock()
	if h.closing {
		return false
	}
	h.sockets[client.id] = client
	return true
}

func (h *HandlerSet) untrack(client *socketClient) {
	//1.- Fold per-client counters into totals before the gate and validator forget them.
	var drops input.DropCounters
	var validation input.ValidationCounters
	if h.gate != nil {
		drops = h.gate.Metrics()[client.id]
		h.gate.Forget(client.id)
	}
	if h.validator != nil {
		validation = h.validator.Metrics()[client.id]
		h.validator.Forget(client.id)
	}

	h.socketsMu.Lock()
	defer h.socketsMu.Unlock()
	delete(h.sockets, client.id)
	h.retired.drops.Sequence += drops.Sequence
	h.retired.drops.Stale += drops.Stale
	h.retired.drops.RateLimited += drops.RateLimited
	if len(validation.Violations) > 0 && h.retired.violations == nil {
		h.retired.violations = make(map[input.ValidationReason]uint64)
	}
	for reason, count := range validation.Violations {
		h.retired.violations[reason] += count
	}
	h.retired.disconnects += validation.Disconnects
}

func (h *HandlerSet) retiredSnapshot() retiredCounters {
	h.socketsMu.Lock()
	defer h.socketsMu.Unlock()
	out := h.retired
	out.violations = maps.Clone(h.retired.violations)
	if out.violations == nil {
		out.violations = make(map[input.ValidationReason]uint64)
	}
	return out
}

// SocketCount reports connected websocket players.
func (h *HandlerSet) SocketCount() int {
	h.socketsMu.Lock()
	defer h.socketsMu.Unlock()
	return len(h.sockets)
}

// CloseSockets disconnects every player and refuses new upgrades. http.Server
// Shutdown does not reach hijacked connections, so the daemon calls this first.
func (h *HandlerSet) CloseSockets() {
	h.socketsMu.Lock()
	h.closing = true
	clients := make([]*socketClient, 0, len(h.sockets))
	for _, client := range h.sockets {
		clients = append(clients, client)
	}
	h.socketsMu.Unlock()

	deadline := time.Now().Add(writeWait)
	for _, client := range clients {
		err := client.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), deadline)
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			client.log.Debug("close frame not delivered", logging.Error(err))
		}
		_ = client.conn.Close()
	}
}
