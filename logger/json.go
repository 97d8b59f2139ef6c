package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// JSONLogEntry is one line written by the JSON logger.
type JSONLogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
	SpanID    string                 `json:"span_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type jsonLogger struct {
	mu       *sync.Mutex
	out      io.Writer
	now      func() time.Time
	prefixes []string
	traceID  string
	spanID   string
	metadata map[string]interface{}
	logLevel LogLevel
	child    Logger
}

var _ Logger = (*jsonLogger)(nil)

func (c *jsonLogger) clone() *jsonLogger {
	metadata := make(map[string]interface{}, len(c.metadata))
	for k, v := range c.metadata {
		metadata[k] = v
	}
	return &jsonLogger{
		mu:       c.mu,
		out:      c.out,
		now:      c.now,
		prefixes: slices.Clone(c.prefixes),
		traceID:  c.traceID,
		spanID:   c.spanID,
		metadata: metadata,
		logLevel: c.logLevel,
		child:    c.child,
	}
}

// WithContext attaches the trace and span ids of the active span in ctx.
func (c *jsonLogger) WithContext(ctx context.Context) Logger {
	clone := c.clone()
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		clone.traceID = sc.TraceID().String()
		clone.spanID = sc.SpanID().String()
	}
	if clone.child != nil {
		clone.child = clone.child.WithContext(ctx)
	}
	return clone
}

// WithPrefix adds prefix to the component field. Brackets are dropped so "[cache]"
// becomes "cache".
func (c *jsonLogger) WithPrefix(prefix string) Logger {
	clone := c.clone()
	p := strings.Trim(prefix, "[]")
	if !slices.Contains(clone.prefixes, p) {
		clone.prefixes = append(clone.prefixes, p)
	}
	if clone.child != nil {
		clone.child = clone.child.WithPrefix(prefix)
	}
	return clone
}

func (c *jsonLogger) With(metadata map[string]interface{}) Logger {
	clone := c.clone()
	for k, v := range metadata {
		clone.metadata[k] = v
	}
	if clone.child != nil {
		clone.child = clone.child.With(metadata)
	}
	return clone
}

func (c *jsonLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.logLevel && c.logLevel != LevelNone
}

func (c *jsonLogger) log(level LogLevel, msg string, args ...interface{}) {
	if !c.IsLevelEnabled(level) {
		return
	}
	entry := JSONLogEntry{
		Timestamp: c.now().UTC(),
		Severity:  level.String(),
		Message:   fmt.Sprintf(msg, args...),
		Component: strings.Join(c.prefixes, " "),
		TraceID:   c.traceID,
		SpanID:    c.spanID,
	}
	if len(c.metadata) > 0 {
		entry.Metadata = c.metadata
	}
	buf, err := json.Marshal(entry)
	if err != nil {
		buf, _ = json.Marshal(JSONLogEntry{
			Timestamp: entry.Timestamp,
			Severity:  entry.Severity,
			Message:   entry.Message,
			Component: entry.Component,
			Metadata:  map[string]interface{}{"metadata_error": err.Error()},
		})
	}
	buf = append(buf, '\n')
	c.mu.Lock()
	c.out.Write(buf)
	c.mu.Unlock()
}

func (c *jsonLogger) Trace(msg string, args ...interface{}) {
	c.log(LevelTrace, msg, args...)
	if c.child != nil {
		c.child.Trace(msg, args...)
	}
}

func (c *jsonLogger) Debug(msg string, args ...interface{}) {
	c.log(LevelDebug, msg, args...)
	if c.child != nil {
		c.child.Debug(msg, args...)
	}
}

func (c *jsonLogger) Info(msg string, args ...interface{}) {
	c.log(LevelInfo, msg, args...)
	if c.child != nil {
		c.child.Info(msg, args...)
	}
}

func (c *jsonLogger) Warn(msg string, args ...interface{}) {
	c.log(LevelWarn, msg, args...)
	if c.child != nil {
		c.child.Warn(msg, args...)
	}
}

func (c *jsonLogger) Error(msg string, args ...interface{}) {
	c.log(LevelError, msg, args...)
	if c.child != nil {
		c.child.Error(msg, args...)
	}
}

func (c *jsonLogger) Fatal(msg string, args ...interface{}) {
	c.log(LevelError, msg, args...)
	if c.child != nil {
		c.child.Error(msg, args...)
	}
	os.Exit(1)
}

func (c *jsonLogger) Stack(next Logger) Logger {
	clone := c.clone()
	clone.child = next
	return clone
}

// NewJSONLogger returns a Logger writing one JSON object per line to stderr.
func NewJSONLogger(level LogLevel) Logger {
	return NewJSONWriterLogger(os.Stderr, level)
}

// NewJSONWriterLogger returns a JSON logger writing to w.
func NewJSONWriterLogger(w io.Writer, level LogLevel) Logger {
	return &jsonLogger{
		mu:       &sync.Mutex{},
		out:      w,
		now:      time.Now,
		metadata: map[string]interface{}{},
		logLevel: level,
	}
}
