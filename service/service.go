package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/agentuity/aggcache/cache"
	"github.com/agentuity/aggcache/config"
	"github.com/agentuity/aggcache/logger"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Entity types whose mutation invalidates cached aggregates. Child records carry
// the id of the customer they belong to.
const (
	EntityCustomer              cache.EntityType = "customer"
	EntityCustomerDevice        cache.EntityType = "customer_device"
	EntityCustomerOrder         cache.EntityType = "customer_order"
	EntityCustomerServiceRecord cache.EntityType = "customer_service_record"
	EntityRentalRecord          cache.EntityType = "rental_record"
	EntityManagedDevice         cache.EntityType = "managed_device"
)

// Warmer precomputes hot entries. It is handed the service so it can fill any
// namespace through the typed accessors.
type Warmer func(ctx context.Context, svc *Service) error

type options struct {
	clock     cache.Clock
	cacheOpts []cache.Option
}

// Option configures a Service.
type Option func(*options)

// Namespaces lists every namespace a Service registers, in registration order.
func Namespaces() []string {
	return []string{
		NamespaceCustomerStats,
		NamespaceCustomerFilterOptions,
		NamespaceCustomerDetail,
		NamespaceCustomerDevices,
		NamespaceCustomerOrders,
		NamespaceCustomerServiceRecords,
		NamespaceRentalStats,
		NamespaceRentalChart,
		NamespaceRentalDevices,
		NamespaceRentalToday,
	}
}

// WithClock replaces the time source of every namespace and of date derived keys.
func WithClock(clock cache.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithCacheOptions appends options applied to every namespace.
func WithCacheOptions(opts ...cache.Option) Option {
	return func(o *options) {
		o.cacheOpts = append(o.cacheOpts, opts...)
	}
}

type builder struct {
	registry *cache.Registry
	cfg      *config.Config
	clock    cache.Clock
	err      error
}

func register[T any](b *builder, name string, ttl time.Duration) *cache.Namespace[T] {
	if b.err != nil {
		return nil
	}
	nc := b.cfg.Namespace(name)
	ns, err := cache.Register[T](b.registry, name, nc.TTLOr(ttl), nc.Options()...)
	if err != nil {
		b.err = err
	}
	return ns
}

// Service owns every namespace of the customer and rental read paths together with
// the cascade table that keeps them consistent with writes.
type Service struct {
	registry  *cache.Registry
	sweeper   *cache.Sweeper
	logger    logger.Logger
	customers *CustomerCache
	rentals   *RentalCache
}

// New builds the namespaces and cascade table described by cfg. A nil cfg uses
// config.Default.
func New(cfg *config.Config, log logger.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithPrefix("[cache]")

	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	defaults := []cache.Option{cache.WithShards(cfg.Shards), cache.WithClock(o.clock)}
	defaults = append(defaults, o.cacheOpts...)

	b := &builder{
		registry: cache.NewRegistry(log, defaults...),
		cfg:      cfg,
		clock:    o.clock,
	}
	s := &Service{
		registry:  b.registry,
		logger:    log,
		customers: newCustomerCache(b),
		rentals:   newRentalCache(b),
	}
	if b.err != nil {
		return nil, errors.Wrap(b.err, "register namespaces")
	}
	if err := cfg.ValidateNamespaces(s.registry.Namespaces()); err != nil {
		return nil, err
	}
	cascades := []struct {
		entity cache.EntityType
		edges  []cache.Edge
	}{
		{EntityCustomer, customerEdges()},
		{EntityCustomerDevice, customerEdges()},
		{EntityCustomerOrder, customerEdges()},
		{EntityCustomerServiceRecord, customerEdges()},
		{EntityRentalRecord, rentalRecordEdges()},
		{EntityManagedDevice, managedDeviceEdges()},
	}
	for _, c := range cascades {
		if err := s.registry.Cascade(c.entity, c.edges...); err != nil {
			return nil, errors.Wrap(err, "register cascade")
		}
	}
	s.sweeper = cache.NewSweeper(s.registry, cfg.SweepInterval.Std(), log)
	return s, nil
}

// Customers returns the customer module read paths.
func (s *Service) Customers() *CustomerCache {
	return s.customers
}

// Rentals returns the rental module read paths.
func (s *Service) Rentals() *RentalCache {
	return s.rentals
}

// Registry exposes the underlying namespaces and cascade table.
func (s *Service) Registry() *cache.Registry {
	return s.registry
}

// InvalidateEntity clears every cached entry derived from the entity. Call it after
// the write to the system of record succeeded. A reader that computed its value
// before the write may still store it afterwards; that entry lives at most one TTL.
func (s *Service) InvalidateEntity(entity cache.EntityType, id int64) int {
	return s.registry.InvalidateEntity(entity, id)
}

// InvalidateCustomer clears the detail, related lists and global stats of a customer.
func (s *Service) InvalidateCustomer(id int64) int {
	return s.InvalidateEntity(EntityCustomer, id)
}

// ClearAll empties every namespace.
func (s *Service) ClearAll() int {
	return s.registry.ClearAll()
}

// Stats returns the health report of every namespace.
func (s *Service) Stats() cache.Report {
	return s.registry.Stats()
}

// SweepExpired removes expired entries from every namespace now.
func (s *Service) SweepExpired() int {
	return s.sweeper.Sweep()
}

// Start runs the background sweeper until ctx is done or Close is called.
func (s *Service) Start(ctx context.Context) {
	s.sweeper.Start(ctx)
}

// Close stops the background sweeper.
func (s *Service) Close() error {
	return s.sweeper.Close()
}

// WarmUp runs the warmers concurrently and waits for all of them. A failing warmer
// is logged and does not affect the others. It returns the number of failures.
func (s *Service) WarmUp(ctx context.Context, warmers ...Warmer) int {
	var failed atomic.Int32
	g, ctx := errgroup.WithContext(ctx)
	for i, w := range warmers {
		g.Go(func() error {
			if err := w(ctx, s); err != nil {
				failed.Add(1)
				s.logger.Warn("cache warm up %d failed: %v", i, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	n := int(failed.Load())
	s.logger.Info("cache warm up finished (%d warmers, %d failed)", len(warmers), n)
	return n
}
