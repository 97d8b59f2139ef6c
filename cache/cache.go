package cache

import (
	"context"
	"time"

	"github.com/agentuity/aggcache/logger"
	"github.com/cockroachdb/errors"
)

// DefaultTTL is used when a namespace is created with a non-positive TTL.
const DefaultTTL = 5 * time.Minute

// DefaultShards is the number of lock stripes per namespace.
const DefaultShards = 16

var (
	// ErrCacheUnavailable marks internal failures of the cache layer. Errors carrying
	// this mark are logged and treated as a miss, never returned to callers.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrUnknownNamespace is returned when a cascade edge names a namespace that was never registered.
	ErrUnknownNamespace = errors.New("unknown namespace")
	// ErrDuplicateNamespace is returned when two namespaces share a name.
	ErrDuplicateNamespace = errors.New("duplicate namespace")
)

// Clock returns the current time.
type Clock func() time.Time

// config holds the resolved configuration for a namespace.
type config struct {
	clock        Clock
	shards       int
	maxEntries   int
	singleFlight bool
	copyValues   bool
	logger       logger.Logger
}

// Option configures a Namespace.
type Option func(*config)

func defaultConfig() config {
	return config{
		clock:  time.Now,
		shards: DefaultShards,
		logger: logger.Nop(),
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = time.Now
	}
	if cfg.logger == nil {
		cfg.logger = logger.Nop()
	}
	cfg.shards = normalizeShards(cfg.shards)
	return cfg
}

// normalizeShards rounds n up to a power of two.
func normalizeShards(n int) int {
	if n <= 0 {
		n = DefaultShards
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// WithClock overrides the time source used for entry timestamps and expiry checks.
func WithClock(clock Clock) Option {
	return func(c *config) { c.clock = clock }
}

// WithShards sets the number of lock stripes. Rounded up to a power of two.
func WithShards(n int) Option {
	return func(c *config) { c.shards = n }
}

// WithMaxEntries caps the number of entries held by the namespace. Storing a new key
// into a full namespace drops every expired entry first and then evicts the oldest
// entries until one slot is free. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(c *config) { c.maxEntries = n }
}

// WithSingleFlight makes Exec coalesce concurrent misses on the same key into a single invocation.
func WithSingleFlight() Option {
	return func(c *config) { c.singleFlight = true }
}

// WithCopyValues stores and returns deep copies of values, so mutating a value obtained
// from the cache never changes what other readers see. Values must be msgpack encodable.
func WithCopyValues() Option {
	return func(c *config) { c.copyValues = true }
}

// WithLogger sets the logger used by the namespace.
func WithLogger(log logger.Logger) Option {
	return func(c *config) { c.logger = log }
}

// Invoker is a function that produces a value of type T.
// The bool return indicates whether a value was found. Return false to signal
// "not found" without caching a zero value.
type Invoker[T any] func(ctx context.Context) (T, bool, error)

// Sweepable is anything that can drop its expired entries.
type Sweepable interface {
	SweepExpired() int
}
