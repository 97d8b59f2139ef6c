package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/agentuity/aggcache/logger"
	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"
)

type shard[T any] struct {
	mu    sync.RWMutex
	items map[string]*Entry[T]
}

// Namespace is a concurrent key to value store with one fixed TTL. Keys are spread
// over independently locked shards so unrelated keys rarely contend. The zero value
// is not usable; create one with NewNamespace.
type Namespace[T any] struct {
	name     string
	ttl      time.Duration
	cfg      config
	shards   []*shard[T]
	mask     uint64
	capMu    sync.Mutex
	group    singleflight.Group
	logger   logger.Logger

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

var _ Partition = (*Namespace[any])(nil)

// NewNamespace returns an empty namespace whose entries live for ttl.
func NewNamespace[T any](name string, ttl time.Duration, opts ...Option) *Namespace[T] {
	cfg := applyOptions(opts)
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	n := &Namespace[T]{
		name:   name,
		ttl:    ttl,
		cfg:    cfg,
		shards: make([]*shard[T], cfg.shards),
		mask:   uint64(cfg.shards - 1),
		logger: cfg.logger.With(map[string]interface{}{"namespace": name}),
	}
	for i := range n.shards {
		n.shards[i] = &shard[T]{items: make(map[string]*Entry[T])}
	}
	return n
}

// Name returns the registry name of the namespace.
func (n *Namespace[T]) Name() string {
	return n.name
}

// TTL returns the lifetime given to every entry.
func (n *Namespace[T]) TTL() time.Duration {
	return n.ttl
}

func (n *Namespace[T]) shardFor(key string) *shard[T] {
	return n.shards[xxhash.Sum64String(key)&n.mask]
}

func (n *Namespace[T]) unavailable(op string, key string, err error) {
	err = errors.Mark(errors.Wrapf(err, "%s %s/%s", op, n.name, key), ErrCacheUnavailable)
	n.logger.Warn("cache operation failed, treating as miss: %v", err)
}

// Get returns the value stored under key if it has not expired. An expired entry is
// removed on the way out.
func (n *Namespace[T]) Get(key string) (T, bool) {
	var zero T
	s := n.shardFor(key)
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		n.misses.Add(1)
		n.logger.Trace("cache miss: %s", key)
		return zero, false
	}
	if e.IsExpired(n.cfg.clock()) {
		s.mu.Lock()
		// a concurrent Put may already have replaced the expired entry
		if cur, ok := s.items[key]; ok && cur == e {
			delete(s.items, key)
		}
		s.mu.Unlock()
		n.misses.Add(1)
		n.logger.Trace("cache expired: %s", key)
		return zero, false
	}
	val := e.Value()
	if n.cfg.copyValues {
		c, err := copyValue(val)
		if err != nil {
			n.unavailable("get", key, err)
			n.misses.Add(1)
			return zero, false
		}
		val = c
	}
	n.hits.Add(1)
	n.logger.Trace("cache hit: %s", key)
	return val, true
}

// Put stores value under key with the namespace TTL, replacing any previous entry.
// If the value cannot be stored, any previous entry is removed so the key misses.
// Inserts into a capped namespace are serialized.
func (n *Namespace[T]) Put(key string, value T) {
	if n.cfg.copyValues {
		c, err := copyValue(value)
		if err != nil {
			n.unavailable("put", key, err)
			n.Invalidate(key)
			return
		}
		value = c
	}
	now := n.cfg.clock()
	e := newEntryAt(value, n.ttl, now)
	if n.cfg.maxEntries > 0 {
		n.capMu.Lock()
		defer n.capMu.Unlock()
		if !n.contains(key) && n.Len() >= n.cfg.maxEntries {
			n.makeRoom(now)
		}
	}
	s := n.shardFor(key)
	s.mu.Lock()
	s.items[key] = e
	s.mu.Unlock()
	n.logger.Debug("cached %s for %s", key, n.ttl)
}

func (n *Namespace[T]) contains(key string) bool {
	s := n.shardFor(key)
	s.mu.RLock()
	_, ok := s.items[key]
	s.mu.RUnlock()
	return ok
}

// makeRoom frees at least one slot below the cap. Expired entries go first; if the
// namespace is still full the oldest entries are evicted. Caller holds capMu.
func (n *Namespace[T]) makeRoom(now time.Time) {
	total := 0
	for _, s := range n.shards {
		s.mu.Lock()
		for key, e := range s.items {
			if e.IsExpired(now) {
				delete(s.items, key)
			}
		}
		total += len(s.items)
		s.mu.Unlock()
	}
	for total >= n.cfg.maxEntries {
		found, evicted := n.evictOldest()
		if !found {
			return
		}
		if evicted {
			n.evictions.Add(1)
		}
		total--
	}
}

// evictOldest removes the entry with the earliest creation time. evicted is false
// when a concurrent Get or Invalidate removed the candidate first.
func (n *Namespace[T]) evictOldest() (found bool, evicted bool) {
	var (
		victim      *shard[T]
		victimKey   string
		victimEntry *Entry[T]
	)
	for _, s := range n.shards {
		s.mu.RLock()
		for key, e := range s.items {
			if victimEntry == nil || e.createdAt.Before(victimEntry.createdAt) {
				victim, victimKey, victimEntry = s, key, e
			}
		}
		s.mu.RUnlock()
	}
	if victim == nil {
		return false, false
	}
	victim.mu.Lock()
	if cur, ok := victim.items[victimKey]; ok && cur == victimEntry {
		delete(victim.items, victimKey)
		evicted = true
	}
	victim.mu.Unlock()
	if evicted {
		n.logger.Debug("evicted %s", victimKey)
	}
	return true, evicted
}

// Invalidate removes key and reports whether it was present.
func (n *Namespace[T]) Invalidate(key string) bool {
	s := n.shardFor(key)
	s.mu.Lock()
	_, ok := s.items[key]
	if ok {
		delete(s.items, key)
	}
	s.mu.Unlock()
	if ok {
		n.logger.Debug("invalidated %s", key)
	}
	return ok
}

// InvalidateAll removes every entry and returns how many there were.
func (n *Namespace[T]) InvalidateAll() int {
	var removed int
	for _, s := range n.shards {
		s.mu.Lock()
		removed += len(s.items)
		s.items = make(map[string]*Entry[T])
		s.mu.Unlock()
	}
	n.logger.Debug("invalidated all %d entries", removed)
	return removed
}

// SweepExpired removes every entry that is expired at the time of the call.
func (n *Namespace[T]) SweepExpired() int {
	now := n.cfg.clock()
	var removed int
	for _, s := range n.shards {
		s.mu.Lock()
		for key, e := range s.items {
			if e.IsExpired(now) {
				delete(s.items, key)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of physically stored entries, expired or not.
func (n *Namespace[T]) Len() int {
	var total int
	for _, s := range n.shards {
		s.mu.RLock()
		total += len(s.items)
		s.mu.RUnlock()
	}
	return total
}

// Stats returns a point in time health snapshot.
func (n *Namespace[T]) Stats() NamespaceStats {
	now := n.cfg.clock()
	st := NamespaceStats{
		Name:      n.name,
		TTL:       n.ttl,
		Hits:      n.hits.Load(),
		Misses:    n.misses.Load(),
		Evictions: n.evictions.Load(),
	}
	for _, s := range n.shards {
		s.mu.RLock()
		for _, e := range s.items {
			st.Total++
			if e.IsExpired(now) {
				st.Expired++
			} else {
				st.Valid++
			}
		}
		s.mu.RUnlock()
	}
	return st
}
