package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/agentuity/aggcache/logger"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	entityWidget EntityType = "widget"
	entityGadget EntityType = "gadget"
)

func widgetKey(id int64) string { return BuildKey("widget", Arg("id", id)) }

func newTestRegistry(t *testing.T) (*Registry, *Namespace[string], *Namespace[int], *Namespace[[]string]) {
	t.Helper()
	r := NewRegistry(logger.NewTestLogger())
	detail, err := Register[string](r, "widget.detail", time.Minute)
	require.NoError(t, err)
	stats, err := Register[int](r, "widget.stats", time.Minute)
	require.NoError(t, err)
	search, err := Register[[]string](r, "widget.search", time.Minute)
	require.NoError(t, err)
	require.NoError(t, r.Cascade(entityWidget,
		EntityEdge("widget.detail", widgetKey),
		GlobalEdge("widget.stats", "widget_stats"),
		AllEdge("widget.search"),
	))
	return r, detail, stats, search
}

func TestRegistryDuplicateNamespace(t *testing.T) {
	r := NewRegistry(nil)
	_, err := Register[int](r, "a", time.Minute)
	require.NoError(t, err)
	_, err = Register[string](r, "a", time.Minute)
	assert.True(t, errors.Is(err, ErrDuplicateNamespace))
}

func TestRegistryCascadeValidation(t *testing.T) {
	r := NewRegistry(nil)
	_, err := Register[int](r, "a", time.Minute)
	require.NoError(t, err)
	err = r.Cascade(entityWidget, EntityEdge("missing", widgetKey))
	assert.True(t, errors.Is(err, ErrUnknownNamespace))
	err = r.Cascade(entityWidget, Edge{Namespace: "a", Scope: ScopeEntity})
	assert.Error(t, err)
	assert.Empty(t, r.Edges(entityWidget), "a rejected cascade adds nothing")
	assert.NoError(t, r.Cascade(entityWidget, AllEdge("a")))
}

func TestRegistryInvalidateEntity(t *testing.T) {
	r, detail, stats, search := newTestRegistry(t)
	detail.Put(widgetKey(1), "one")
	detail.Put(widgetKey(2), "two")
	stats.Put("widget_stats", 2)
	search.Put("q=a", []string{"one"})
	search.Put("q=b", []string{"two"})

	removed := r.InvalidateEntity(entityWidget, 1)
	assert.Equal(t, 4, removed)

	_, ok := detail.Get(widgetKey(1))
	assert.False(t, ok)
	_, ok = stats.Get("widget_stats")
	assert.False(t, ok)
	assert.Equal(t, 0, search.Len())
	val, ok := detail.Get(widgetKey(2))
	assert.True(t, ok, "other entities are untouched")
	assert.Equal(t, "two", val)
}

func TestRegistryInvalidateUnknownEntity(t *testing.T) {
	log := logger.NewTestLogger()
	r := NewRegistry(log)
	assert.Equal(t, 0, r.InvalidateEntity(entityGadget, 1))
	assert.True(t, log.Has("WARNING", "gadget"))
}

func TestRegistryInvalidateKey(t *testing.T) {
	r, detail, _, _ := newTestRegistry(t)
	detail.Put("x", "y")
	ok, err := r.Invalidate("widget.detail", "x")
	assert.NoError(t, err)
	assert.True(t, ok)
	_, err = r.Invalidate("nope", "x")
	assert.True(t, errors.Is(err, ErrUnknownNamespace))
}

func TestRegistryClearAllAndStats(t *testing.T) {
	r, detail, stats, search := newTestRegistry(t)
	for i := int64(0); i < 5; i++ {
		detail.Put(widgetKey(i), fmt.Sprint(i))
	}
	stats.Put("widget_stats", 5)
	search.Put("q", nil)

	report := r.Stats()
	require.Len(t, report, 3)
	assert.Equal(t, []string{"widget.detail", "widget.stats", "widget.search"}, r.Namespaces())
	st, ok := report.Lookup("widget.detail")
	require.True(t, ok)
	assert.Equal(t, 5, st.Total)
	assert.Equal(t, 7, report.Totals().Total)
	_, ok = report.Lookup("nope")
	assert.False(t, ok)

	assert.Equal(t, 7, r.ClearAll())
	for _, s := range r.Stats() {
		assert.Equal(t, 0, s.Total, s.Name)
	}
}

func TestRegistrySweepExpired(t *testing.T) {
	clock := newManualClock()
	r := NewRegistry(nil, WithClock(clock.Now))
	a, err := Register[int](r, "a", time.Minute)
	require.NoError(t, err)
	b, err := Register[int](r, "b", 10*time.Minute)
	require.NoError(t, err)
	a.Put("k", 1)
	b.Put("k", 1)
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, r.SweepExpired())
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 1, b.Len())
}

func TestRegistryEntitiesAndEdges(t *testing.T) {
	r, _, _, _ := newTestRegistry(t)
	require.NoError(t, r.Cascade(entityGadget, AllEdge("widget.search")))
	assert.Equal(t, []EntityType{entityGadget, entityWidget}, r.Entities())
	edges := r.Edges(entityWidget)
	require.Len(t, edges, 3)
	assert.Equal(t, ScopeEntity, edges[0].Scope)
	assert.Equal(t, "widget:id=9", edges[0].Key(9))
	assert.Equal(t, "widget_stats", edges[1].Key(9))
	assert.Equal(t, "all", edges[2].Scope.String())
	p, ok := r.Partition("widget.stats")
	require.True(t, ok)
	assert.Equal(t, time.Minute, p.TTL())
}
