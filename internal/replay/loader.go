package replay

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"shootingrange/rangesim/internal/events"
)

// Frame is one recorded snapshot.
type Frame struct {
	Tick       uint64
	CapturedAt time.Time
	Payload    []byte
}

// Decode unmarshals the msgpack snapshot into v.
func (f Frame) Decode(v any) error {
	return msgpack.Unmarshal(f.Payload, v)
}

// TimelineEntry is a single replay datum ready for deterministic iteration.
// Exactly one of Event and Frame is set.
type TimelineEntry struct {
	Tick  uint64
	Type  string
	Event *events.Envelope
	Frame *Frame
}

// Recording is a bundle read back from disk.
type Recording struct {
	Header   Header
	Manifest *Manifest
	Events   []*events.Envelope
	Frames   []Frame
	// Truncated is set when the frame stream ended mid-record, as it does
	// after a crash.
	Truncated bool

	entries []TimelineEntry
}

// Load reads the bundle in dir. A missing manifest is tolerated so
// recordings of runs that never shut down cleanly stay readable.
func Load(dir string) (*Recording, error) {
	if dir == "" {
		return nil, fmt.Errorf("replay path must be provided")
	}
	header, err := ReadHeader(filepath.Join(dir, headerFile))
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	rec := &Recording{Header: header}
	if rec.Manifest, err = ReadManifest(dir); err != nil {
		return nil, err
	}

	if rec.Events, err = readEvents(filepath.Join(dir, eventsFile)); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	if rec.Frames, rec.Truncated, err = readFrames(filepath.Join(dir, framesFile)); err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}
	rec.buildTimeline()
	return rec, nil
}

func readEvents(path string) ([]*events.Envelope, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(snappy.NewReader(file))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var out []*events.Envelope
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var env events.Envelope
		if err := json.Unmarshal(line, &env); err != nil {
			return nil, fmt.Errorf("decode event line %d: %w", len(out)+1, err)
		}
		out = append(out, &env)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return out, nil
}

func readFrames(path string) ([]Frame, bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer file.Close()

	decoder, err := zstd.NewReader(file)
	if err != nil {
		return nil, false, err
	}
	defer decoder.Close()

	var frames []Frame
	header := make([]byte, frameHeaderSize)
	for {
		//1.- A clean EOF between records ends the stream; anything else is a torn write.
		if _, err := io.ReadFull(decoder, header); err != nil {
			return frames, !errors.Is(err, io.EOF), nil
		}
		size := binary.LittleEndian.Uint32(header[16:20])
		payload := make([]byte, size)
		if _, err := io.ReadFull(decoder, payload); err != nil {
			return frames, true, nil
		}
		frames = append(frames, Frame{
			Tick:       binary.LittleEndian.Uint64(header[0:8]),
			CapturedAt: time.Unix(0, int64(binary.LittleEndian.Uint64(header[8:16]))).UTC(),
			Payload:    payload,
		})
	}
}

func (r *Recording) buildTimeline() {
	entries := make([]TimelineEntry, 0, len(r.Events)+len(r.Frames))
	for _, env := range r.Events {
		entries = append(entries, TimelineEntry{Tick: env.Tick, Type: "event", Event: env})
	}
	for i := range r.Frames {
		entries = append(entries, TimelineEntry{Tick: r.Frames[i].Tick, Type: "frame", Frame: &r.Frames[i]})
	}
	//1.- Events of a tick come before the frame that captured its outcome.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Tick == entries[j].Tick {
			return entries[i].Type < entries[j].Type
		}
		return entries[i].Tick < entries[j].Tick
	})
	r.entries = entries
}

// Replay iterates over the timeline in deterministic order.
func (r *Recording) Replay(apply func(TimelineEntry) error) error {
	if r == nil {
		return fmt.Errorf("recording not loaded")
	}
	if apply == nil {
		return fmt.Errorf("replay callback must be provided")
	}
	for _, entry := range r.entries {
		if err := apply(entry); err != nil {
			return err
		}
	}
	return nil
}

// Entries exposes a copy of the timeline.
func (r *Recording) Entries() []TimelineEntry {
	if r == nil {
		return nil
	}
	out := make([]TimelineEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ReadManifest returns the manifest of the bundle in dir, or nil when the
// run never closed it.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &manifest, nil
}

// Sessions lists the session directories under root, newest header first.
func Sessions(root string) ([]Header, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var headers []Header
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		header, err := ReadHeader(filepath.Join(root, entry.Name(), headerFile))
		if err != nil {
			continue
		}
		headers = append(headers, header)
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].CreatedAt.After(headers[j].CreatedAt) })
	return headers, nil
}
