package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/agentuity/aggcache/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFormat(t *testing.T) {
	assert.Equal(t, "json", DefaultFormat("json"))
	if HasTTY {
		assert.Equal(t, "table", DefaultFormat(""))
	} else {
		assert.Equal(t, "yaml", DefaultFormat(""))
	}
}

func TestStatsRows(t *testing.T) {
	report := cache.Report{
		{Name: "customer.stats", TTL: 5 * time.Minute, Total: 3, Valid: 2, Expired: 1, Hits: 3, Misses: 1},
		{Name: "rental.today", TTL: time.Minute, Total: 1, Valid: 1, Evictions: 2},
	}
	rows := StatsRows(report)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"customer.stats", "5m0s", "3", "2", "1", "3", "1", "75.0", "0"}, rows[0])
	assert.Equal(t, []string{"total", "", "4", "3", "1", "3", "1", "75.0", "2"}, rows[2])
	for _, row := range rows {
		assert.Len(t, row, len(StatsHeaders))
	}
}

func TestStatsTable(t *testing.T) {
	var buf bytes.Buffer
	StatsTable(&buf, cache.Report{{Name: "customer.detail", TTL: 10 * time.Minute, Total: 7, Valid: 7}})
	out := buf.String()
	assert.Contains(t, out, "Namespace")
	assert.Contains(t, out, "customer.detail")
	assert.Contains(t, out, "total")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestMessages(t *testing.T) {
	var buf bytes.Buffer
	ShowSuccess(&buf, "swept %d entries", 4)
	ShowWarning(&buf, "warm up failed")
	assert.Contains(t, buf.String(), "swept 4 entries")
	assert.Contains(t, buf.String(), "warm up failed")
}
