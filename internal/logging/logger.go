package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"shootingrange/rangesim/internal/config"
)

var (
	globalMu     sync.RWMutex
	globalLogger = newDiscardLogger()
)

// Level orders log verbosity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a textual level onto Level, defaulting to info for blanks.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", raw)
	}
}

// Field is one structured attribute attached to an entry.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field { return Field{Key: key, Value: value} }
func Strings(key string, values []string) Field { return Field{Key: key, Value: values} }
func Int(key string, value int) Field { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value.String()} }

// Error renders err under the conventional "error" key.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Entry is a decoded log line captured by test loggers.
type Entry struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// Logger writes one JSON object per line. Child loggers created with With share
// the parent's sink.
type Logger struct {
	level  Level
	sink   *sink
	fields []Field
}

type sink struct {
	mu      sync.Mutex
	out     syncWriter
	entries []Entry
	capture bool
	now     func() time.Time
}

// syncWriter is an io.Writer that can flush to durable storage.
type syncWriter interface {
	io.Writer
	Sync() error
}

type fanout []syncWriter

func (f fanout) Write(p []byte) (int, error) {
	for _, w := range f {
		if _, err := w.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (f fanout) Sync() error {
	var first error
	for _, w := range f {
		if err := w.Sync(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// New builds the process logger. Entries always go to stderr and, when a path is
// configured, to a size-rotated file as well. The result becomes the global logger.
func New(cfg config.LoggingConfig) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	out := fanout{os.Stderr}
	if strings.TrimSpace(cfg.Path) != "" {
		file, err := newRotatingWriter(cfg)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = append(out, file)
	}
	logger := &Logger{
		level:  level,
		sink:   &sink{out: out, now: time.Now},
		fields: []Field{String("service", "rangesim")},
	}
	ReplaceGlobal(logger)
	return logger, nil
}

// NewTestLogger returns a debug-level logger that records entries in memory
// instead of writing them anywhere.
func NewTestLogger() *Logger {
	return &Logger{
		level: DebugLevel,
		sink:  &sink{out: discard{}, capture: true, now: time.Now},
	}
}

func newDiscardLogger() *Logger {
	return &Logger{level: InfoLevel, sink: &sink{out: discard{}, now: time.Now}}
}

// ReplaceGlobal swaps the fallback logger used by nil receivers and L().
func ReplaceGlobal(logger *Logger) {
	if logger == nil {
		return
	}
	globalMu.Lock()
	globalLogger = logger
	globalMu.Unlock()
}

// L returns the process-wide logger.
func L() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// With returns a child logger carrying additional fields.
func (l *Logger) With(fields ...Field) *Logger {
	if l == nil {
		return L().With(fields...)
	}
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{level: l.level, sink: l.sink, fields: merged}
}

// Enabled reports whether entries at level would be written.
func (l *Logger) Enabled(level Level) bool {
	if l == nil {
		return L().Enabled(level)
	}
	return level >= l.level
}

// Sync flushes buffered output.
func (l *Logger) Sync() error {
	if l == nil || l.sink == nil {
		return nil
	}
	return l.sink.out.Sync()
}

// Entries returns a copy of captured entries; only test loggers capture.
func (l *Logger) Entries() []Entry {
	if l == nil || l.sink == nil {
		return nil
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	out := make([]Entry, len(l.sink.entries))
	copy(out, l.sink.entries)
	return out
}

func (l *Logger) Debug(message string, fields ...Field) { l.log(DebugLevel, message, fields) }
func (l *Logger) Info(message string, fields ...Field) { l.log(InfoLevel, message, fields) }
func (l *Logger) Warn(message string, fields ...Field) { l.log(WarnLevel, message, fields) }
func (l *Logger) Error(message string, fields ...Field) { l.log(ErrorLevel, message, fields) }

func (l *Logger) log(level Level, message string, fields []Field) {
	if l == nil {
		L().log(level, message, fields)
		return
	}
	if level < l.level {
		return
	}
	//1.- Later fields override earlier ones so call-site values win over With().
	payload := make(map[string]any, len(l.fields)+len(fields)+3)
	for _, field := range l.fields {
		payload[field.Key] = field.Value
	}
	for _, field := range fields {
		payload[field.Key] = field.Value
	}

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.capture {
		l.sink.entries = append(l.sink.entries, Entry{Level: level, Message: message, Fields: payload})
		return
	}

	//2.- Reserved keys are written last so fields cannot shadow them.
	payload["timestamp"] = l.sink.now().UTC().Format(time.RFC3339Nano)
	payload["level"] = level.String()
	payload["message"] = message
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = l.sink.out.Write(append(data, '\n'))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
func (discard) Sync() error { return nil }
