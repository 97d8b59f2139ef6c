package cache

import (
	"slices"
	"sync"
	"time"

	"github.com/agentuity/aggcache/logger"
	"github.com/cockroachdb/errors"
)

// Partition is the type independent view of a namespace used by the registry.
type Partition interface {
	Name() string
	TTL() time.Duration
	Invalidate(key string) bool
	InvalidateAll() int
	SweepExpired() int
	Len() int
	Stats() NamespaceStats
}

// EntityType names a kind of business entity whose mutation invalidates cached data.
type EntityType string

// Scope selects which entries of a namespace an edge clears.
type Scope int

const (
	// ScopeEntity clears the entry keyed by the mutated entity id.
	ScopeEntity Scope = iota
	// ScopeGlobal clears one fixed shared key, such as an aggregate stats entry.
	ScopeGlobal
	// ScopeAll clears the whole namespace, for entries keyed by query parameters
	// that cannot be derived from the entity id.
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeEntity:
		return "entity"
	case ScopeGlobal:
		return "global"
	case ScopeAll:
		return "all"
	default:
		return "unknown"
	}
}

// KeyFunc derives a namespace key from an entity id.
type KeyFunc func(id int64) string

// Edge is one dependency between an entity type and a namespace.
type Edge struct {
	Namespace string
	Scope     Scope
	Key       KeyFunc
}

// EntityEdge clears key(id) in namespace.
func EntityEdge(namespace string, key KeyFunc) Edge {
	return Edge{Namespace: namespace, Scope: ScopeEntity, Key: key}
}

// GlobalEdge clears the single shared key in namespace.
func GlobalEdge(namespace string, key string) Edge {
	return Edge{Namespace: namespace, Scope: ScopeGlobal, Key: func(int64) string { return key }}
}

// AllEdge clears namespace entirely.
func AllEdge(namespace string) Edge {
	return Edge{Namespace: namespace, Scope: ScopeAll}
}

// Registry owns a fixed set of namespaces and the cascade table describing which
// of their entries depend on which entities.
type Registry struct {
	mu         sync.RWMutex
	order      []string
	namespaces map[string]Partition
	edges      map[EntityType][]Edge
	defaults   []Option
	logger     logger.Logger
}

// NewRegistry returns an empty registry. opts are applied to every namespace created through Register.
func NewRegistry(log logger.Logger, opts ...Option) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		namespaces: make(map[string]Partition),
		edges:      make(map[EntityType][]Edge),
		defaults:   opts,
		logger:     log,
	}
}

// Add registers an existing partition.
func (r *Registry) Add(p Partition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.namespaces[p.Name()]; ok {
		return errors.Wrapf(ErrDuplicateNamespace, "namespace %q", p.Name())
	}
	r.namespaces[p.Name()] = p
	r.order = append(r.order, p.Name())
	return nil
}

// Register creates a namespace with the registry defaults followed by opts and adds it.
func Register[T any](r *Registry, name string, ttl time.Duration, opts ...Option) (*Namespace[T], error) {
	all := make([]Option, 0, len(r.defaults)+len(opts)+1)
	all = append(all, WithLogger(r.logger))
	all = append(all, r.defaults...)
	all = append(all, opts...)
	ns := NewNamespace[T](name, ttl, all...)
	if err := r.Add(ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// Cascade appends edges to the cascade table of entity. Every edge must name a
// registered namespace and entity scoped edges need a key function.
func (r *Registry) Cascade(entity EntityType, edges ...Edge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range edges {
		if _, ok := r.namespaces[e.Namespace]; !ok {
			return errors.Wrapf(ErrUnknownNamespace, "cascade %s -> %q", entity, e.Namespace)
		}
		if e.Scope != ScopeAll && e.Key == nil {
			return errors.Newf("cascade %s -> %q: %s edge without key function", entity, e.Namespace, e.Scope)
		}
	}
	r.edges[entity] = append(r.edges[entity], edges...)
	return nil
}

// InvalidateEntity clears every entry that depends on the entity and returns how
// many entries were removed. When it returns, reads of any of those entries miss
// until they are stored again.
func (r *Registry) InvalidateEntity(entity EntityType, id int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	edges, ok := r.edges[entity]
	if !ok {
		r.logger.Warn("no cascade edges registered for entity %s", entity)
		return 0
	}
	var removed int
	for _, e := range edges {
		p := r.namespaces[e.Namespace]
		switch e.Scope {
		case ScopeAll:
			removed += p.InvalidateAll()
		default:
			if p.Invalidate(e.Key(id)) {
				removed++
			}
		}
	}
	r.logger.Debug("invalidated %d entries for %s %d", removed, entity, id)
	return removed
}

// Invalidate removes one key from the named namespace.
func (r *Registry) Invalidate(namespace string, key string) (bool, error) {
	p, ok := r.Partition(namespace)
	if !ok {
		return false, errors.Wrapf(ErrUnknownNamespace, "namespace %q", namespace)
	}
	return p.Invalidate(key), nil
}

// ClearAll empties every namespace and returns the number of entries dropped.
func (r *Registry) ClearAll() int {
	var removed int
	for _, p := range r.partitions() {
		removed += p.InvalidateAll()
	}
	r.logger.Info("cleared all caches (%d entries)", removed)
	return removed
}

// SweepExpired sweeps every namespace.
func (r *Registry) SweepExpired() int {
	var removed int
	for _, p := range r.partitions() {
		removed += p.SweepExpired()
	}
	return removed
}

// Stats returns the health report of every namespace in registration order.
func (r *Registry) Stats() Report {
	parts := r.partitions()
	report := make(Report, 0, len(parts))
	for _, p := range parts {
		report = append(report, p.Stats())
	}
	return report
}

// Partition looks up a namespace by name.
func (r *Registry) Partition(name string) (Partition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.namespaces[name]
	return p, ok
}

// Namespaces returns namespace names in registration order.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Entities returns every entity type with cascade edges, sorted.
func (r *Registry) Entities() []EntityType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]EntityType, 0, len(r.edges))
	for e := range r.edges {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

// Edges returns the cascade edges of entity.
func (r *Registry) Edges(entity EntityType) []Edge {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.edges[entity])
}

func (r *Registry) partitions() []Partition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Partition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.namespaces[name])
	}
	return out
}
