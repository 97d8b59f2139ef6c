package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestExecCacheMiss(t *testing.T) {
	ctx := context.Background()
	ns := NewNamespace[string]("test", time.Minute)

	invoked := false
	found, val, err := ns.Exec(ctx, "key", func(ctx context.Context) (string, bool, error) {
		invoked = true
		return "fresh-value", true, nil
	})
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "fresh-value", val)
	assert.True(t, invoked)

	cached, ok := ns.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "fresh-value", cached)
}

func TestExecCacheHit(t *testing.T) {
	ctx := context.Background()
	ns := NewNamespace[string]("test", time.Minute)
	ns.Put("key", "cached-value")

	invoked := false
	found, val, err := ns.Exec(ctx, "key", func(ctx context.Context) (string, bool, error) {
		invoked = true
		return "fresh-value", true, nil
	})
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cached-value", val)
	assert.False(t, invoked)
}

func TestExecInvokerError(t *testing.T) {
	ctx := context.Background()
	ns := NewNamespace[string]("test", time.Minute)

	expectedErr := fmt.Errorf("invoke failed")
	found, val, err := ns.Exec(ctx, "key", func(ctx context.Context) (string, bool, error) {
		return "partial", true, expectedErr
	})
	assert.ErrorIs(t, err, expectedErr)
	assert.False(t, found)
	assert.Equal(t, "", val)
	assert.Equal(t, 0, ns.Len(), "a failed computation is never cached")
}

func TestExecNotFound(t *testing.T) {
	ctx := context.Background()
	ns := NewNamespace[int]("test", time.Minute)
	calls := 0
	for i := 0; i < 2; i++ {
		found, val, err := ns.Exec(ctx, "key", func(ctx context.Context) (int, bool, error) {
			calls++
			return 0, false, nil
		})
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, 0, val)
	}
	assert.Equal(t, 2, calls)
}

func TestExecRecomputesAfterExpiry(t *testing.T) {
	clock := newManualClock()
	ns := NewNamespace[int]("test", time.Minute, WithClock(clock.Now))
	var calls int
	invoke := func(ctx context.Context) (int, bool, error) {
		calls++
		return calls, true, nil
	}
	_, v, _ := ns.Exec(context.Background(), "k", invoke)
	assert.Equal(t, 1, v)
	_, v, _ = ns.Exec(context.Background(), "k", invoke)
	assert.Equal(t, 1, v)
	clock.Advance(61 * time.Second)
	_, v, _ = ns.Exec(context.Background(), "k", invoke)
	assert.Equal(t, 2, v)
}

func TestExecConcurrentMisses(t *testing.T) {
	for _, tc := range []struct {
		name string
		opts []Option
	}{
		{name: "duplicate compute allowed"},
		{name: "single flight", opts: []Option{WithSingleFlight()}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ns := NewNamespace[int]("test", time.Minute, tc.opts...)
			var calls atomic.Int32
			release := make(chan struct{})
			var wg sync.WaitGroup
			results := make([]int, 20)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					found, v, err := ns.Exec(context.Background(), "hot", func(ctx context.Context) (int, bool, error) {
						calls.Add(1)
						<-release
						return 7, true, nil
					})
					assert.NoError(t, err)
					assert.True(t, found)
					results[i] = v
				}(i)
			}
			time.Sleep(20 * time.Millisecond)
			close(release)
			wg.Wait()
			for _, v := range results {
				assert.Equal(t, 7, v)
			}
			val, ok := ns.Get("hot")
			assert.True(t, ok, "no permanent miss")
			assert.Equal(t, 7, val)
			assert.GreaterOrEqual(t, calls.Load(), int32(1))
			if ns.cfg.singleFlight {
				assert.Less(t, calls.Load(), int32(20))
			}
		})
	}
}

func TestExecSingleFlightError(t *testing.T) {
	ns := NewNamespace[int]("test", time.Minute, WithSingleFlight())
	found, _, err := ns.Exec(context.Background(), "k", func(ctx context.Context) (int, bool, error) {
		return 0, false, fmt.Errorf("db down")
	})
	assert.EqualError(t, err, "db down")
	assert.False(t, found)
	assert.Equal(t, 0, ns.Len())
}

func TestExecTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	defer otel.SetTracerProvider(prev)

	ns := NewNamespace[string]("traced", time.Minute)
	invoke := func(ctx context.Context) (string, bool, error) { return "v", true, nil }
	_, _, err := ns.Exec(context.Background(), "k", invoke)
	require.NoError(t, err)
	_, _, err = ns.Exec(context.Background(), "k", invoke)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	hits := make([]bool, 0, 2)
	for _, s := range spans {
		assert.Equal(t, "cache.Exec", s.Name())
		for _, kv := range s.Attributes() {
			switch kv.Key {
			case attribute.Key("cache.namespace"):
				assert.Equal(t, "traced", kv.Value.AsString())
			case attribute.Key("cache.hit"):
				hits = append(hits, kv.Value.AsBool())
			}
		}
	}
	assert.Equal(t, []bool{false, true}, hits)
}
