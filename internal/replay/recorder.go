package replay

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vmihailenco/msgpack/v5"

	"shootingrange/rangesim/internal/events"
	"shootingrange/rangesim/internal/logging"
)

// DefaultFrameBuffer bounds encoded frames queued between the simulation and the disk.
const DefaultFrameBuffer = 64

// RecorderOptions tunes a recorder.
type RecorderOptions struct {
	FrameBuffer int
	Logger      *logging.Logger
}

// Stats summarises recorder health for monitoring endpoints.
type Stats struct {
	WriterStats
	DroppedFrames uint64 `json:"dropped_frames"`
	WriteErrors   uint64 `json:"write_errors"`
}

type encodedFrame struct {
	tick    uint64
	payload []byte
}

// Recorder follows the event stream and accepts snapshots from the
// simulation goroutine, handing both to a Writer on its own goroutine so
// the tick never waits on the disk.
type Recorder struct {
	writer *Writer
	stream *events.Stream
	frames chan encodedFrame
	log    *logging.Logger

	dropped     atomic.Uint64
	writeErrors atomic.Uint64
}

// NewRecorder wires a writer to the event stream.
func NewRecorder(writer *Writer, stream *events.Stream, opts RecorderOptions) *Recorder {
	buffer := opts.FrameBuffer
	if buffer <= 0 {
		buffer = DefaultFrameBuffer
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	return &Recorder{
		writer: writer,
		stream: stream,
		frames: make(chan encodedFrame, buffer),
		log:    logger.With(logging.String("component", "replay"), logging.String("session", writer.Session())),
	}
}

// RecordFrame encodes snapshot with msgpack and queues it. It never blocks;
// a full queue drops the frame and counts it.
func (r *Recorder) RecordFrame(tick uint64, snapshot any) bool {
	if r == nil {
		return false
	}
	payload, err := msgpack.Marshal(snapshot)
	if err != nil {
		r.writeErrors.Add(1)
		r.log.Warn("replay frame encode failed", logging.Error(err), logging.Uint64("tick", tick))
		return false
	}
	select {
	case r.frames <- encodedFrame{tick: tick, payload: payload}:
		return true
	default:
		r.dropped.Add(1)
		return false
	}
}

// Flush forces buffered artefacts to disk.
func (r *Recorder) Flush() error {
	if r == nil {
		return fmt.Errorf("recorder not configured")
	}
	return r.writer.Flush()
}

// Run writes events and frames until ctx is cancelled, then drains queued
// frames and closes the writer.
func (r *Recorder) Run(ctx context.Context) error {
	sub, err := r.stream.Subscribe(ctx, "replay-"+r.writer.Session(), 256)
	if err != nil {
		return fmt.Errorf("subscribe replay recorder: %w", err)
	}
	r.log.Info("replay recording started", logging.String("dir", r.writer.Directory()))
	feed := sub.Events()
	for {
		select {
		case env, ok := <-feed:
			if !ok {
				feed = nil
				continue
			}
			r.writeEvent(sub, env)
		case frame := <-r.frames:
			r.writeFrame(frame)
		case <-ctx.Done():
			//1.- Drain what the simulation already handed over before closing.
			for {
				select {
				case env, ok := <-feed:
					if !ok {
						feed = nil
						continue
					}
					r.writeEvent(sub, env)
				case frame := <-r.frames:
					r.writeFrame(frame)
				default:
					r.stream.Forget(sub.ID())
					err := r.writer.Close()
					stats := r.Stats()
					r.log.Info("replay recording closed",
						logging.Uint64("events", stats.Events),
						logging.Uint64("frames", stats.Frames),
						logging.Uint64("dropped_frames", stats.DroppedFrames))
					return err
				}
			}
		}
	}
}

func (r *Recorder) writeEvent(sub *events.Subscription, env *events.Envelope) {
	//1.- Ack only what reached the writer.
	if err := r.writer.AppendEvent(env); err != nil {
		r.writeErrors.Add(1)
		r.log.Warn("replay event write failed", logging.Error(err), logging.Uint64("seq", env.Sequence))
		return
	}
	_ = sub.Ack(env.Sequence)
}

func (r *Recorder) writeFrame(frame encodedFrame) {
	if err := r.writer.AppendFrame(frame.tick, frame.payload); err != nil {
		r.writeErrors.Add(1)
		r.log.Warn("replay frame write failed", logging.Error(err), logging.Uint64("tick", frame.tick))
	}
}

// Stats returns the recorder counters.
func (r *Recorder) Stats() Stats {
	if r == nil {
		return Stats{}
	}
	return Stats{
		WriterStats:   r.writer.Stats(),
		DroppedFrames: r.dropped.Load(),
		WriteErrors:   r.writeErrors.Load(),
	}
}

// Directory returns the session directory being written.
func (r *Recorder) Directory() string {
	if r == nil {
		return ""
	}
	return r.writer.Directory()
}
