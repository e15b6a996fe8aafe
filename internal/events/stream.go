// Package events fans range events out to websocket, gRPC and replay
// consumers with per-subscriber acknowledgement and bounded retention.
package events

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Kind enumerates the range events carried by the stream.
type Kind string

const (
	KindFire              Kind = "fire"
	KindTargetHit         Kind = "target_hit"
	KindImpact            Kind = "impact"
	KindProjectileExpired Kind = "projectile_expired"
	KindTargetRespawned   Kind = "target_respawned"
	KindWeaponSwitched    Kind = "weapon_switched"
)

// Envelope carries one event payload together with sequencing metadata.
// Published envelopes are never mutated; subscribers receive clones.
type Envelope struct {
	Sequence uint64         `json:"seq"`
	Kind     Kind           `json:"kind"`
	Tick     uint64         `json:"tick"`
	At       time.Time      `json:"at"`
	Data     map[string]any `json:"data"`
}

// Clone duplicates the top-level payload map.
func (e *Envelope) Clone() *Envelope {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Data = maps.Clone(e.Data)
	return &clone
}

// Struct converts the envelope into a protobuf Struct for gRPC delivery.
func (e *Envelope) Struct() (*structpb.Struct, error) {
	if e == nil {
		return nil, errors.New("nil envelope")
	}
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	return structpb.NewStruct(map[string]any{
		"seq":  e.Sequence,
		"kind": string(e.Kind),
		"tick": e.Tick,
		"at":   e.At.UTC().Format(time.RFC3339Nano),
		"data": data,
	})
}

// Config controls the retention policy for the stream log.
type Config struct {
	// Retain is how many events stay available to Since and late subscribers.
	Retain int
	// MaxBacklog bounds how far an unacknowledged subscriber may hold history
	// past Retain before its oldest pending events are dropped.
	MaxBacklog int
}

const defaultRetention = 1024

// Stats summarises stream activity.
type Stats struct {
	Published   uint64 `json:"published"`
	Delivered   uint64 `json:"delivered"`
	Dropped     uint64 `json:"dropped"`
	Lost        uint64 `json:"lost"`
	Retained    int    `json:"retained"`
	Subscribers int    `json:"subscribers"`
	Active      int    `json:"active"`
	LastSeq     uint64 `json:"last_seq"`
}

// Stream coordinates ordered event delivery with at-least-once semantics per subscriber.
type Stream struct {
	mu          sync.Mutex
	nextSeq     uint64
	retention   int
	backlog     int
	logOrder    []uint64
	logPayloads map[uint64]*Envelope
	subscribers map[string]*subscriberState

	delivered uint64
	dropped   uint64
	lost      uint64
}

// subscriberState persists acknowledgement state between transient connections.
type subscriberState struct {
	id      string
	pending []uint64
	lastAck uint64
	ch      chan *Envelope
	active  bool
}

// Subscription exposes the event channel and acknowledgement helpers for a subscriber.
type Subscription struct {
	id     string
	stream *Stream
	events <-chan *Envelope
	once   sync.Once
}

// ErrOutOfOrderAck signals that a subscriber attempted to acknowledge future sequences.
var ErrOutOfOrderAck = errors.New("ack sequence must match the next pending event")

// NewStream constructs a stream using the provided configuration.
func NewStream(cfg Config) *Stream {
	retention := cfg.Retain
	if retention <= 0 {
		retention = defaultRetention
	}
	backlog := cfg.MaxBacklog
	if backlog < retention {
		backlog = 4 * retention
	}
	return &Stream{
		retention:   retention,
		backlog:     backlog,
		logPayloads: make(map[uint64]*Envelope),
		subscribers: make(map[string]*subscriberState),
	}
}

// Subscribe attaches the logical subscriber to the stream and replays outstanding events.
func (s *Stream) Subscribe(ctx context.Context, subscriberID string, buffer int) (*Subscription, error) {
	if s == nil {
		return nil, errors.New("nil stream")
	}
	if subscriberID == "" {
		return nil, errors.New("subscriber id must be provided")
	}
	if buffer <= 0 {
		buffer = 32
	}

	s.mu.Lock()
	state := s.ensureSubscriberLocked(subscriberID)
	if state.active && state.ch != nil {
		close(state.ch)
	}
	replay := s.collectReplayLocked(state)
	deliveries := s.prepareDeliveriesLocked(replay)
	//1.- Replay is queued before any live event so ordering holds on reconnect.
	ch := make(chan *Envelope, buffer+len(deliveries))
	for _, env := range deliveries {
		ch <- env
	}
	state.ch = ch
	state.active = true
	state.pending = replay
	s.mu.Unlock()

	sub := &Subscription{id: subscriberID, stream: s, events: ch}
	go func() {
		//2.- The subscription lives no longer than the caller's context.
		<-ctx.Done()
		sub.Close()
	}()
	return sub, nil
}

// ID returns the subscriber id.
func (s *Subscription) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Events exposes the ordered delivery channel for the subscriber.
func (s *Subscription) Events() <-chan *Envelope {
	if s == nil {
		return nil
	}
	return s.events
}

// Ack informs the stream that the subscriber processed the given sequence.
func (s *Subscription) Ack(sequence uint64) error {
	if s == nil || s.stream == nil {
		return errors.New("subscription closed")
	}
	return s.stream.ack(s.id, sequence)
}

// Close marks the subscription as inactive while preserving acknowledgement state.
func (s *Subscription) Close() {
	if s == nil || s.stream == nil {
		return
	}
	s.once.Do(func() {
		s.stream.deactivateSubscriber(s.id, s.events)
	})
}

func (s *Stream) ensureSubscriberLocked(subscriberID string) *subscriberState {
	state, ok := s.subscribers[subscriberID]
	if !ok {
		//1.- New subscribers start at the head of the retained log.
		state = &subscriberState{id: subscriberID}
		if len(s.logOrder) > 0 {
			state.lastAck = s.logOrder[0] - 1
		}
		s.subscribers[subscriberID] = state
	}
	return state
}

func (s *Stream) collectReplayLocked(state *subscriberState) []uint64 {
	//1.- When a subscriber reconnects we must replay any sequence greater than lastAck.
	replay := make([]uint64, 0, len(s.logOrder))
	for _, seq := range s.logOrder {
		if seq <= state.lastAck {
			continue
		}
		replay = append(replay, seq)
	}
	return replay
}

func (s *Stream) prepareDeliveriesLocked(sequences []uint64) []*Envelope {
	deliveries := make([]*Envelope, 0, len(sequences))
	for _, seq := range sequences {
		if payload, ok := s.logPayloads[seq]; ok {
			deliveries = append(deliveries, payload.Clone())
		}
	}
	return deliveries
}

// Publish stamps payload with the next sequence and fans it out. It never
// blocks: subscribers whose buffers are full miss the live copy and receive
// it again on resubscribe.
func (s *Stream) Publish(tick uint64, at time.Time, payload Payload) (uint64, error) {
	if s == nil {
		return 0, errors.New("nil stream")
	}
	if payload == nil {
		return 0, errors.New("payload required")
	}
	fields := payload.Fields()
	if fields == nil {
		fields = map[string]any{}
	}
	return s.publishEnvelope(&Envelope{Kind: payload.Kind(), Tick: tick, At: at, Data: fields})
}

func (s *Stream) publishEnvelope(envelope *Envelope) (uint64, error) {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	envelope.Sequence = seq
	s.logPayloads[seq] = envelope
	s.logOrder = append(s.logOrder, seq)

	deliveries := make([]delivery, 0, len(s.subscribers))
	for _, state := range s.subscribers {
		state.pending = append(state.pending, seq)
		if state.active && state.ch != nil {
			deliveries = append(deliveries, delivery{ch: state.ch, payload: envelope.Clone()})
		}
	}
	//1.- Send under the lock so a concurrent Close cannot close a channel mid-send.
	for _, item := range deliveries {
		select {
		case item.ch <- item.payload:
			s.delivered++
		default:
			s.dropped++
		}
	}
	s.enforceRetentionLocked()
	s.mu.Unlock()

	return seq, nil
}

type delivery struct {
	ch      chan<- *Envelope
	payload *Envelope
}

func (s *Stream) enforceRetentionLocked() {
	if len(s.logOrder) <= s.retention {
		return
	}
	//1.- Keep history an unacknowledged subscriber still needs, up to the backlog cap.
	minAck := s.nextSeq
	for _, state := range s.subscribers {
		if state.lastAck < minAck {
			minAck = state.lastAck
		}
	}
	cutoff := s.logOrder[len(s.logOrder)-s.retention-1]
	pruneBefore := minAck
	if cutoff < pruneBefore {
		pruneBefore = cutoff
	}
	if len(s.logOrder) > s.backlog {
		pruneBefore = max(pruneBefore, s.logOrder[len(s.logOrder)-s.backlog-1])
	}
	if pruneBefore == 0 {
		return
	}
	idx := sort.Search(len(s.logOrder), func(i int) bool { return s.logOrder[i] > pruneBefore })
	if idx == 0 {
		return
	}
	for _, seq := range s.logOrder[:idx] {
		delete(s.logPayloads, seq)
	}
	s.logOrder = append([]uint64(nil), s.logOrder[idx:]...)

	//2.- Subscribers that fell past the backlog lose what was pruned.
	for _, state := range s.subscribers {
		if state.lastAck >= pruneBefore {
			continue
		}
		trim := sort.Search(len(state.pending), func(i int) bool { return state.pending[i] > pruneBefore })
		s.lost += uint64(trim)
		state.pending = state.pending[trim:]
		state.lastAck = pruneBefore
	}
}

func (s *Stream) ack(subscriberID string, sequence uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.subscribers[subscriberID]
	if !ok {
		return fmt.Errorf("unknown subscriber %q", subscriberID)
	}
	if len(state.pending) == 0 {
		if sequence <= state.lastAck {
			return nil
		}
		return ErrOutOfOrderAck
	}
	expected := state.pending[0]
	if sequence < expected {
		return nil
	}
	if sequence != expected {
		return ErrOutOfOrderAck
	}
	state.pending = state.pending[1:]
	state.lastAck = sequence
	s.enforceRetentionLocked()
	return nil
}

func (s *Stream) deactivateSubscriber(subscriberID string, events <-chan *Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.subscribers[subscriberID]
	if !ok || state.ch == nil {
		return
	}
	//1.- A resubscribe may already have replaced the channel this subscription owned.
	if (<-chan *Envelope)(state.ch) != events {
		return
	}
	state.active = false
	close(state.ch)
	state.ch = nil
}

// Forget drops a subscriber and its acknowledgement state. Ephemeral
// consumers such as websocket clients call it when they disconnect.
func (s *Stream) Forget(subscriberID string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.subscribers[subscriberID]
	if !ok {
		return
	}
	if state.ch != nil {
		close(state.ch)
	}
	delete(s.subscribers, subscriberID)
}

// Since returns clones of every retained envelope newer than seq.
func (s *Stream) Since(seq uint64) []*Envelope {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := sort.Search(len(s.logOrder), func(i int) bool { return s.logOrder[i] > seq })
	return s.prepareDeliveriesLocked(s.logOrder[idx:])
}

// Stats reports delivery counters.
func (s *Stream) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := Stats{
		Published:   s.nextSeq,
		Delivered:   s.delivered,
		Dropped:     s.dropped,
		Lost:        s.lost,
		Retained:    len(s.logOrder),
		Subscribers: len(s.subscribers),
		LastSeq:     s.nextSeq,
	}
	for _, state := range s.subscribers {
		if state.active {
			stats.Active++
		}
	}
	return stats
}
