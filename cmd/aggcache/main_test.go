package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agentuity/aggcache/config"
	"github.com/agentuity/aggcache/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvShards, "")
	t.Setenv(config.EnvSweepInterval, "")
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "aggcache.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("shards: 4\nnamespaces:\n  rental.today:\n    ttl: 30s\n"), 0644))

	out, err := execute(t, "config", "--config", fn, "--log-level", "error")
	require.NoError(t, err)
	cfg := config.Default()
	require.NoError(t, cfg.Decode(bytes.NewBufferString(out)))
	assert.Equal(t, 4, cfg.Shards)
	assert.Equal(t, 30*time.Second, cfg.Namespace("rental.today").TTL.Std())
}

func TestConfigCommandInvalid(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "aggcache.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("shards: 5\n"), 0644))
	_, err := execute(t, "config", "--config", fn)
	assert.Error(t, err)
}

func TestConfigCommandUnknownNamespace(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "aggcache.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("namespaces:\n  customer.stat:\n    ttl: 1m\n"), 0644))
	_, err := execute(t, "config", "--config", fn)
	assert.ErrorContains(t, err, "customer.stat")
}

func TestSimulateCommand(t *testing.T) {
	out, err := execute(t, "simulate",
		"--log-level", "error",
		"--workers", "4",
		"--customers", "10",
		"--duration", "200ms",
		"--invalidate-every", "10ms",
		"--compute-delay", "1ms",
		"--output", "json",
	)
	require.NoError(t, err)

	var s summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.NotEmpty(t, s.RunID)
	assert.Positive(t, s.Reads)
	assert.Positive(t, s.Computes)
	assert.LessOrEqual(t, s.Computes, s.Reads+2, "two warm up computations")
	assert.Len(t, s.Report, 10)
	_, ok := s.Report.Lookup(service.NamespaceCustomerDetail)
	assert.True(t, ok)
}

func TestSimulateRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "simulate", "--workers", "0", "--duration", "10ms")
	assert.Error(t, err)
	_, err = execute(t, "simulate", "--duration", "soon")
	assert.Error(t, err)
	_, err = execute(t, "simulate", "--duration", "10ms", "--output", "xml", "--log-level", "error")
	assert.ErrorContains(t, err, "xml")
}

func TestWriteSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	svc, err := service.New(nil, nil)
	require.NoError(t, err)
	require.NoError(t, writeSummary(&buf, "table", summary{RunID: "abc", Report: svc.Stats()}))
	assert.Contains(t, buf.String(), "customer.stats")
	assert.Contains(t, buf.String(), "run abc")
}
