package cache

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/agentuity/aggcache/cache"

type flightResult[T any] struct {
	found bool
	value T
}

// Exec is a cache-aside helper. It checks the namespace for key first.
// On a hit, it returns the cached value with found=true.
// On a miss, it calls invoke to produce the value. If invoke returns
// found=true, the value is stored and returned with found=true.
// If invoke returns found=false, nothing is cached and found=false is returned.
// An invoke error is returned unchanged and nothing is cached.
//
// Two concurrent misses on the same key both invoke unless the namespace was
// created WithSingleFlight.
func (n *Namespace[T]) Exec(ctx context.Context, key string, invoke Invoker[T]) (bool, T, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "cache.Exec", trace.WithAttributes(
		attribute.String("cache.namespace", n.name),
		attribute.String("cache.key", key),
	))
	defer span.End()

	if val, ok := n.Get(key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return true, val, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	var (
		found bool
		val   T
		err   error
	)
	if n.cfg.singleFlight {
		found, val, err = n.computeShared(ctx, key, invoke)
	} else {
		found, val, err = n.compute(ctx, key, invoke)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var zero T
		return false, zero, err
	}
	return found, val, nil
}

func (n *Namespace[T]) compute(ctx context.Context, key string, invoke Invoker[T]) (bool, T, error) {
	result, ok, err := invoke(ctx)
	if err != nil || !ok {
		var zero T
		return false, zero, err
	}
	n.Put(key, result)
	return true, result, nil
}

func (n *Namespace[T]) computeShared(ctx context.Context, key string, invoke Invoker[T]) (bool, T, error) {
	v, err, shared := n.group.Do(key, func() (interface{}, error) {
		found, val, err := n.compute(ctx, key, invoke)
		return flightResult[T]{found: found, value: val}, err
	})
	if shared {
		n.logger.Trace("shared in-flight computation for %s", key)
	}
	if err != nil {
		var zero T
		return false, zero, err
	}
	r := v.(flightResult[T])
	return r.found, r.value, nil
}
