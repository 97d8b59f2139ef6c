package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLevelFromEnv(t *testing.T) {
	tests := []struct {
		name          string
		envValue      string
		expectedLevel LogLevel
	}{
		{name: "trace level", envValue: "trace", expectedLevel: LevelTrace},
		{name: "debug level", envValue: "DEBUG", expectedLevel: LevelDebug},
		{name: "info level", envValue: "info", expectedLevel: LevelInfo},
		{name: "warn level", envValue: "warning", expectedLevel: LevelWarn},
		{name: "error level", envValue: "error", expectedLevel: LevelError},
		{name: "disabled", envValue: "off", expectedLevel: LevelNone},
		{name: "invalid level", envValue: "loud", expectedLevel: LevelInfo},
		{name: "empty", envValue: "", expectedLevel: LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLogLevel, tt.envValue)
			assert.Equal(t, tt.expectedLevel, GetLevelFromEnv())
		})
	}
}

func TestConsoleLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterLogger(&buf, LevelInfo, false)
	log.Debug("hidden %d", 1)
	log.Info("shown %d", 2)
	log.Error("boom")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[INFO ] shown 2")
	assert.Contains(t, out, "[ERROR] boom")
	assert.False(t, log.IsLevelEnabled(LevelDebug))
	assert.True(t, log.IsLevelEnabled(LevelWarn))
}

func TestConsoleLoggerPrefixAndMetadata(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriterLogger(&buf, LevelTrace, false).WithPrefix("[cache]").WithPrefix("[cache]")
	log = WithKV(log, "namespace", "customer.stats")
	log.Trace("miss")
	line := strings.TrimSpace(buf.String())
	assert.Equal(t, 1, strings.Count(line, "[cache]"))
	assert.Contains(t, line, `{"namespace":"customer.stats"}`)
}

func TestConsoleLoggerStack(t *testing.T) {
	var buf bytes.Buffer
	tl := NewTestLogger()
	log := NewWriterLogger(&buf, LevelInfo, false).Stack(tl)
	log.Warn("disk %s", "full")
	assert.Contains(t, buf.String(), "disk full")
	assert.True(t, tl.Has("WARNING", "disk full"))
}

func TestNopLogger(t *testing.T) {
	log := Nop()
	assert.False(t, log.IsLevelEnabled(LevelError))
	log.Error("nothing")
}

func TestTestLoggerMethods(t *testing.T) {
	log := NewTestLogger()
	log.Trace("Trace message %d", 1)
	log.Debug("Debug message")
	log.Info("Info message")
	log.Warn("Warn message")
	log.Error("Error message")
	log.Fatal("Fatal message")

	entries := log.Entries()
	assert.Len(t, entries, 6)
	assert.Equal(t, "TRACE", entries[0].Severity)
	assert.Equal(t, "Trace message 1", entries[0].Formatted())
	assert.Equal(t, []interface{}{1}, entries[0].Arguments)
	assert.Equal(t, "WARNING", entries[3].Severity)
	assert.Equal(t, "FATAL", entries[5].Severity)
	assert.Equal(t, 1, log.Count("ERROR"))
}

func TestTestLoggerWithSharesEntries(t *testing.T) {
	root := NewTestLogger()
	child := root.With(map[string]interface{}{"k": "v"})
	child.Info("from child")
	entries := root.Entries()
	assert.Len(t, entries, 1)
	assert.Equal(t, "v", entries[0].Metadata["k"])
}

func TestTestLoggerConcurrent(t *testing.T) {
	log := NewTestLogger()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Debug("tick")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, log.Count("DEBUG"))
}

func TestNewConsoleLoggerExplicitLevel(t *testing.T) {
	os.Setenv(EnvLogLevel, "trace")
	defer os.Unsetenv(EnvLogLevel)
	log := NewConsoleLogger(LevelError)
	assert.False(t, log.IsLevelEnabled(LevelWarn))
}
