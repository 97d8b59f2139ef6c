package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []JSONLogEntry {
	t.Helper()
	var entries []JSONLogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e JSONLogEntry
		require.NoError(t, json.Unmarshal([]byte(line), &e))
		entries = append(entries, e)
	}
	return entries
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSONWriterLogger(&buf, LevelInfo)
	log.(*jsonLogger).now = func() time.Time { return time.Date(2025, 1, 28, 9, 0, 0, 0, time.UTC) }

	log = log.WithPrefix("[cache]").WithPrefix("[cache]")
	log = WithKV(log, "namespace", "customer.stats")
	log.Debug("hidden")
	log.Info("swept %d expired cache entries", 3)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "INFO", e.Severity)
	assert.Equal(t, "swept 3 expired cache entries", e.Message)
	assert.Equal(t, "cache", e.Component)
	assert.Equal(t, "customer.stats", e.Metadata["namespace"])
	assert.Equal(t, 2025, e.Timestamp.Year())
	assert.Empty(t, e.TraceID)
}

func TestJSONLoggerWithContext(t *testing.T) {
	var buf bytes.Buffer
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log := NewJSONWriterLogger(&buf, LevelTrace).WithContext(ctx)
	log.Trace("cache miss: %s", "customer_detail:id=1")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, sc.TraceID().String(), entries[0].TraceID)
	assert.Equal(t, sc.SpanID().String(), entries[0].SpanID)
}

func TestJSONLoggerStack(t *testing.T) {
	var buf bytes.Buffer
	tl := NewTestLogger()
	log := NewJSONWriterLogger(&buf, LevelWarn).Stack(tl)
	log.Info("only in the test logger")
	log.Error("in both")
	assert.Len(t, decodeLines(t, &buf), 1)
	assert.True(t, tl.Has("INFO", "only in the test logger"))
	assert.True(t, tl.Has("ERROR", "in both"))
}

func TestJSONLoggerBadMetadata(t *testing.T) {
	var buf bytes.Buffer
	log := WithKV(NewJSONWriterLogger(&buf, LevelInfo), "fn", func() {})
	log.Info("still logged")
	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "still logged", entries[0].Message)
	assert.Contains(t, entries[0].Metadata, "metadata_error")
}
