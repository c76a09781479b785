package logger

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levels = [...]struct {
	name  string
	color string
}{
	DEBUG: {"DEBUG", "\033[36m"},
	INFO:  {"INFO", "\033[32m"},
	WARN:  {"WARN", "\033[33m"},
	ERROR: {"ERROR", "\033[31m"},
}

func (l Level) String() string {
	if l < DEBUG || l > ERROR {
		return "UNKNOWN"
	}
	return levels[l].name
}

// ParseLevel maps a LOG_LEVEL value to a Level. Unknown values are INFO.
func ParseLevel(s string) Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		return WARN
	}
	for l, def := range levels {
		if def.name == s {
			return Level(l)
		}
	}
	return INFO
}

// sink serializes writes from a logger and everything derived from it.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	colors bool
}

// Logger writes printf-style lines with a prefix and sorted key=value
// fields, for example
//
//	2026-10-17 09:00:00.000 INFO  [sequencer] [sequencer.go:71] resumed learner=ana lesson=l1
type Logger struct {
	sink   *sink
	level  Level
	prefix string
	fields map[string]any
}

type Option func(*Logger)

func WithOutput(w io.Writer) Option {
	return func(l *Logger) { l.sink.out = w }
}

func WithLevel(level Level) Option {
	return func(l *Logger) { l.level = level }
}

// WithColors colors the level name with ANSI escapes.
func WithColors(enabled bool) Option {
	return func(l *Logger) { l.sink.colors = enabled }
}

func New(opts ...Option) *Logger {
	l := &Logger{sink: &sink{out: os.Stdout}, level: INFO}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var defaultLogger = New()

// SetDefault replaces the logger returned by Default and by FromContext for
// contexts without one.
func SetDefault(l *Logger) {
	defaultLogger = l
}

func Default() *Logger {
	return defaultLogger
}

func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	child := *l
	child.fields = make(map[string]any, len(l.fields)+len(fields))
	maps.Copy(child.fields, l.fields)
	maps.Copy(child.fields, fields)
	return &child
}

func (l *Logger) WithPrefix(prefix string) *Logger {
	child := *l
	child.prefix = prefix
	return &child
}

func (l *Logger) WithLearner(learnerID string) *Logger {
	return l.WithField("learner", learnerID)
}

func (l *Logger) WithLesson(lessonID string) *Logger {
	return l.WithField("lesson", lessonID)
}

func (l *Logger) Debug(msg string, args ...any) { l.log(DEBUG, msg, args) }
func (l *Logger) Info(msg string, args ...any)  { l.log(INFO, msg, args) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(WARN, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(ERROR, msg, args) }

func (l *Logger) log(level Level, msg string, args []any) {
	if level < l.level {
		return
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05.000 "))
	if l.sink.colors {
		fmt.Fprintf(&sb, "%s%-5s\033[0m ", levels[level].color, level)
	} else {
		fmt.Fprintf(&sb, "%-5s ", level)
	}
	if l.prefix != "" {
		fmt.Fprintf(&sb, "[%s] ", l.prefix)
	}
	// Skip log and the exported level method.
	if _, file, line, ok := runtime.Caller(2); ok {
		fmt.Fprintf(&sb, "[%s:%d] ", file[strings.LastIndex(file, "/")+1:], line)
	}

	if len(args) > 0 {
		fmt.Fprintf(&sb, msg, args...)
	} else {
		sb.WriteString(msg)
	}
	for _, k := range slices.Sorted(maps.Keys(l.fields)) {
		fmt.Fprintf(&sb, " %s=%v", k, l.fields[k])
	}
	sb.WriteByte('\n')

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	io.WriteString(l.sink.out, sb.String())
}

type ctxKey struct{}

// FromContext returns the request or session logger stored in ctx, falling
// back to the default logger.
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
			return l
		}
	}
	return defaultLogger
}

func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}
