// Package replay records range sessions to disk as diagnostic bundles: a JSON
// header, a snappy-framed JSONL event log, a zstd stream of msgpack snapshots
// and a closing manifest.
package replay

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"shootingrange/rangesim/internal/events"
)

const (
	headerFile   = "header.json"
	manifestFile = "manifest.json"
	eventsFile   = "events.jsonl.sz"
	framesFile   = "frames.zst"

	// frameHeaderSize is tick (8) + captured unix nanos (8) + payload length (4).
	frameHeaderSize = 20
	// DefaultFlushEvery is how many frames are staged before hitting the zstd stream.
	DefaultFlushEvery = 8
)

// ErrWriterClosed is returned by appends after Close.
var ErrWriterClosed = errors.New("replay writer closed")

// Metadata is the run description stored in header.json.
type Metadata struct {
	Seed            int64
	TickRate        int
	FrameInterval   int
	CatalogChecksum string
}

// Manifest summarises a finished bundle so tooling can locate artefacts.
type Manifest struct {
	Version    int       `json:"version"`
	SessionID  string    `json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`
	ClosedAt   time.Time `json:"closed_at"`
	EventsPath string    `json:"events_path"`
	FramesPath string    `json:"frames_path"`
	Events     uint64    `json:"events"`
	Frames     uint64    `json:"frames"`
	FirstTick  uint64    `json:"first_tick"`
	LastTick   uint64    `json:"last_tick"`
}

// frameBlob stores frame metadata before it is persisted to disk.
type frameBlob struct {
	Tick       uint64
	CapturedAt time.Time
	Payload    []byte
}

// Writer streams range artefacts into one session directory. It is safe for
// concurrent use so operators can flush while the recorder appends.
type Writer struct {
	mu          sync.Mutex
	dir         string
	session     string
	now         func() time.Time
	created     time.Time
	eventFile   *os.File
	eventStream *snappy.Writer
	frameFile   *os.File
	frameStream *zstd.Encoder
	pending     []frameBlob
	flushEvery  int
	events      uint64
	frames      uint64
	firstTick   uint64
	lastTick    uint64
	flushes     uint64
	closed      bool
}

// NewWriter creates <root>/<session-uuid>/, writes the header and opens the
// compressed sinks.
func NewWriter(root string, meta Metadata, clock func() time.Time) (*Writer, error) {
	if root == "" {
		return nil, fmt.Errorf("replay root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}
	session := uuid.NewString()
	path := filepath.Join(root, session)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create replay session: %w", err)
	}
	created := clock().UTC()

	//1.- The header goes down first so a crashed run is still identifiable.
	header := Header{
		SchemaVersion:   HeaderSchemaVersion,
		SessionID:       session,
		Seed:            meta.Seed,
		TickRate:        meta.TickRate,
		FrameInterval:   meta.FrameInterval,
		CatalogChecksum: meta.CatalogChecksum,
		CreatedAt:       created,
		FilePointer:     manifestFile,
	}
	if err := WriteHeader(filepath.Join(path, headerFile), header); err != nil {
		return nil, fmt.Errorf("write replay header: %w", err)
	}

	eventFile, err := os.Create(filepath.Join(path, eventsFile))
	if err != nil {
		return nil, err
	}
	frameFile, err := os.Create(filepath.Join(path, framesFile))
	if err != nil {
		eventFile.Close()
		return nil, err
	}
	frameStream, err := zstd.NewWriter(frameFile)
	if err != nil {
		eventFile.Close()
		frameFile.Close()
		return nil, err
	}

	return &Writer{
		dir:         path,
		session:     session,
		now:         clock,
		created:     created,
		eventFile:   eventFile,
		eventStream: snappy.NewBufferedWriter(eventFile),
		frameFile:   frameFile,
		frameStream: frameStream,
		flushEvery:  DefaultFlushEvery,
	}, nil
}

// Directory exposes the directory backing the replay bundle.
func (w *Writer) Directory() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// Session returns the bundle's session id.
func (w *Writer) Session() string {
	if w == nil {
		return ""
	}
	return w.session
}

// AppendEvent writes one envelope as a JSON line to the compressed event log.
func (w *Writer) AppendEvent(env *events.Envelope) error {
	if w == nil {
		return fmt.Errorf("writer not initialised")
	}
	if env == nil {
		return errors.New("envelope required")
	}
	line, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode event %d: %w", env.Sequence, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	if _, err := w.eventStream.Write(append(line, '\n')); err != nil {
		return err
	}
	w.events++
	return nil
}

// AppendFrame stages an encoded snapshot and writes the batch once
// DefaultFlushEvery frames are pending.
func (w *Writer) AppendFrame(tick uint64, payload []byte) error {
	if w == nil {
		return fmt.Errorf("writer not initialised")
	}
	captured := w.now().UTC()
	clone := append([]byte(nil), payload...)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	if w.frames == 0 {
		w.firstTick = tick
	}
	w.lastTick = tick
	w.frames++
	w.pending = append(w.pending, frameBlob{Tick: tick, CapturedAt: captured, Payload: clone})
	if len(w.pending) >= w.flushEvery {
		return w.flushFramesLocked()
	}
	return nil
}

// Flush forces staged frames and buffered events down to disk.
func (w *Writer) Flush() error {
	if w == nil {
		return fmt.Errorf("writer not initialised")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	return w.flushLocked()
}

func (w *Writer) flushLocked() error {
	if err := w.flushFramesLocked(); err != nil {
		return err
	}
	if err := w.frameStream.Flush(); err != nil {
		return err
	}
	if err := w.eventStream.Flush(); err != nil {
		return err
	}
	w.flushes++
	return nil
}

// flushFramesLocked writes staged frames to the zstd stream; callers must hold the mutex.
func (w *Writer) flushFramesLocked() error {
	//1.- Length-prefixed frames let readers step without decoding payloads.
	header := make([]byte, frameHeaderSize)
	for _, frame := range w.pending {
		binary.LittleEndian.PutUint64(header[0:8], frame.Tick)
		binary.LittleEndian.PutUint64(header[8:16], uint64(frame.CapturedAt.UnixNano()))
		binary.LittleEndian.PutUint32(header[16:20], uint32(len(frame.Payload)))
		if _, err := w.frameStream.Write(header); err != nil {
			return err
		}
		if _, err := w.frameStream.Write(frame.Payload); err != nil {
			return err
		}
	}
	w.pending = w.pending[:0]
	return nil
}

// Close flushes every sink, writes the manifest and releases file handles.
// Later calls are no-ops.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	//1.- Attempt every flush/close and surface the first failure.
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	keep(w.flushFramesLocked())
	keep(w.eventStream.Close())
	keep(w.eventFile.Close())
	keep(w.frameStream.Close())
	keep(w.frameFile.Close())

	//2.- The manifest marks the bundle as complete.
	manifest := Manifest{
		Version:    1,
		SessionID:  w.session,
		CreatedAt:  w.created,
		ClosedAt:   w.now().UTC(),
		EventsPath: eventsFile,
		FramesPath: framesFile,
		Events:     w.events,
		Frames:     w.frames,
		FirstTick:  w.firstTick,
		LastTick:   w.lastTick,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		keep(err)
		return firstErr
	}
	keep(os.WriteFile(filepath.Join(w.dir, manifestFile), append(data, '\n'), 0o644))
	return firstErr
}

// WriterStats reports what the writer has persisted so far.
type WriterStats struct {
	Session string `json:"session"`
	Dir     string `json:"dir"`
	Events  uint64 `json:"events"`
	Frames  uint64 `json:"frames"`
	Flushes uint64 `json:"flushes"`
	Closed  bool   `json:"closed"`
}

// Stats returns the writer counters.
func (w *Writer) Stats() WriterStats {
	if w == nil {
		return WriterStats{}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return WriterStats{
		Session: w.session,
		Dir:     w.dir,
		Events:  w.events,
		Frames:  w.frames,
		Flushes: w.flushes,
		Closed:  w.closed,
	}
}
