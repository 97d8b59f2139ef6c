package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/agentuity/aggcache/cache"
	"github.com/agentuity/aggcache/env"
	"github.com/agentuity/aggcache/logger"
	"github.com/agentuity/aggcache/metrics"
	"github.com/agentuity/aggcache/model"
	"github.com/agentuity/aggcache/service"
	"github.com/agentuity/aggcache/tui"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var entityTypes = []cache.EntityType{
	service.EntityCustomer,
	service.EntityCustomerDevice,
	service.EntityCustomerOrder,
	service.EntityCustomerServiceRecord,
	service.EntityRentalRecord,
	service.EntityManagedDevice,
}

// processRSS returns the resident set size of this process in bytes.
func processRSS() uint64 {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	if info, err := p.MemoryInfo(); err == nil {
		return info.RSS
	}
	// Fallback if gopsutil fails
	return 0
}

// systemMemory returns the total system memory in bytes.
func systemMemory() uint64 {
	if vmStat, err := mem.VirtualMemory(); err == nil {
		return vmStat.Total
	}
	return 0
}

// store stands in for the system of record. Computations are counted so the
// hit ratio of the cache can be compared with the work it saved.
type store struct {
	computes atomic.Int64
	delay    time.Duration
}

func (s *store) compute(ctx context.Context) error {
	s.computes.Add(1)
	if s.delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.delay):
		return nil
	}
}

type simulation struct {
	svc             *service.Service
	store           *store
	logger          logger.Logger
	workers         int
	customers       int
	invalidateEvery time.Duration
	reads           atomic.Int64
	invalidations   atomic.Int64
}

func (s *simulation) read(ctx context.Context, rng *rand.Rand) error {
	id := rng.Int64N(int64(s.customers)) + 1
	c, r := s.svc.Customers(), s.svc.Rentals()
	s.reads.Add(1)
	switch rng.IntN(6) {
	case 0:
		_, _, err := c.DetailCache().Exec(ctx, service.CustomerDetailKey(id), func(ctx context.Context) (model.CustomerDetail, bool, error) {
			if err := s.store.compute(ctx); err != nil {
				return model.CustomerDetail{}, false, err
			}
			return model.CustomerDetail{ID: id, Name: fmt.Sprintf("customer-%d", id), Level: "regular", Status: "active"}, true, nil
		})
		return err
	case 1:
		_, _, err := c.DevicesCache().Exec(ctx, service.CustomerDevicesKey(id), func(ctx context.Context) ([]model.CustomerDevice, bool, error) {
			if err := s.store.compute(ctx); err != nil {
				return nil, false, err
			}
			return []model.CustomerDevice{{ID: fmt.Sprintf("dev-%d", id), Type: "rental", Status: "active"}}, true, nil
		})
		return err
	case 2:
		_, _, err := c.OrdersCache().Exec(ctx, service.CustomerOrdersKey(id), func(ctx context.Context) ([]model.CustomerOrder, bool, error) {
			if err := s.store.compute(ctx); err != nil {
				return nil, false, err
			}
			return []model.CustomerOrder{{ID: fmt.Sprintf("ord-%d", id), Type: "sales", Quantity: 1}}, true, nil
		})
		return err
	case 3:
		_, _, err := c.StatsCache().Exec(ctx, service.CustomerStatsKey, func(ctx context.Context) (model.CustomerStats, bool, error) {
			if err := s.store.compute(ctx); err != nil {
				return model.CustomerStats{}, false, err
			}
			return model.CustomerStats{TotalCustomers: s.customers}, true, nil
		})
		return err
	case 4:
		q := service.DeviceQuery{Page: rng.IntN(5) + 1}
		_, _, err := r.DevicesCache().Exec(ctx, q.Key(), func(ctx context.Context) ([]model.DeviceUtilization, bool, error) {
			if err := s.store.compute(ctx); err != nil {
				return nil, false, err
			}
			return []model.DeviceUtilization{{DeviceID: fmt.Sprintf("YX-%03d", q.Page), CurrentStatus: "rented"}}, true, nil
		})
		return err
	default:
		if _, ok := r.Today(); ok {
			return nil
		}
		if err := s.store.compute(ctx); err != nil {
			return err
		}
		r.PutToday(model.TodayStats{Date: time.Now().Format(time.DateOnly), Orders: rng.IntN(100)})
		return nil
	}
}

func (s *simulation) warmFilterOptions(ctx context.Context, svc *service.Service) error {
	if err := s.store.compute(ctx); err != nil {
		return err
	}
	svc.Customers().PutFilterOptions(model.FilterOptions{
		Levels:   []string{"regular", "vip", "premium"},
		Statuses: []string{"active", "inactive", "suspended"},
	})
	return nil
}

func (s *simulation) warmCustomerStats(ctx context.Context, svc *service.Service) error {
	if err := s.store.compute(ctx); err != nil {
		return err
	}
	svc.Customers().PutStats(model.CustomerStats{TotalCustomers: s.customers})
	return nil
}

func (s *simulation) worker(ctx context.Context, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, uint64(time.Now().UnixNano())))
	for ctx.Err() == nil {
		if err := s.read(ctx, rng); err != nil && ctx.Err() == nil {
			return err
		}
	}
	return nil
}

func (s *simulation) invalidator(ctx context.Context) error {
	if s.invalidateEvery <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	ticker := time.NewTicker(s.invalidateEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			entity := entityTypes[rng.IntN(len(entityTypes))]
			id := rng.Int64N(int64(s.customers)) + 1
			removed := s.svc.InvalidateEntity(entity, id)
			s.invalidations.Add(1)
			s.logger.Debug("invalidated %s %d (%d entries)", entity, id, removed)
		}
	}
}

// run drives the workers and the invalidator until d elapses or ctx is done.
func (s *simulation) run(ctx context.Context, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		seed := uint64(i)
		g.Go(func() error {
			return s.worker(ctx, seed)
		})
	}
	g.Go(func() error {
		return s.invalidator(ctx)
	})
	return g.Wait()
}

type summary struct {
	RunID         string       `json:"run_id" yaml:"run_id"`
	Reads         int64        `json:"reads" yaml:"reads"`
	Computes      int64        `json:"computes" yaml:"computes"`
	Invalidations int64        `json:"invalidations" yaml:"invalidations"`
	Swept         int          `json:"swept" yaml:"swept"`
	RSSBefore     uint64       `json:"rss_before_sweep" yaml:"rss_before_sweep"`
	RSSAfter      uint64       `json:"rss_after_sweep" yaml:"rss_after_sweep"`
	SystemMemory  uint64       `json:"system_memory" yaml:"system_memory"`
	Report        cache.Report `json:"namespaces" yaml:"namespaces"`
}

func writeSummary(w io.Writer, format string, s summary) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		tui.StatsTable(w, s.Report)
		tui.ShowSuccess(w, "run %s: %d reads, %d computes, %d invalidations", s.RunID, s.Reads, s.Computes, s.Invalidations)
		tui.ShowSuccess(w, "swept %d expired entries, rss %d -> %d bytes", s.Swept, s.RSSBefore, s.RSSAfter)
		return nil
	default:
		return errors.Newf("unknown output format %q", format)
	}
}

func serveMetrics(ctx context.Context, log logger.Logger, addr string, svc *service.Service) (func(), error) {
	reg := prometheus.NewRegistry()
	if _, err := metrics.Register(reg, svc); err != nil {
		return nil, errors.Wrap(err, "register cache collector")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %s", addr)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed: %v", err)
		}
	}()
	log.Info("serving metrics on http://%s/metrics", ln.Addr())
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}

func newSimulateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run concurrent readers and writers against a fresh cache and report its health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			workers, err := env.IntFlagOrEnv(cmd, "workers", "AGGCACHE_SIMULATE_WORKERS", 8)
			if err != nil {
				return err
			}
			customers, err := env.IntFlagOrEnv(cmd, "customers", "AGGCACHE_SIMULATE_CUSTOMERS", 100)
			if err != nil {
				return err
			}
			duration, err := env.DurationFlagOrEnv(cmd, "duration", "AGGCACHE_SIMULATE_DURATION", 5*time.Second)
			if err != nil {
				return err
			}
			invalidateEvery, err := env.DurationFlagOrEnv(cmd, "invalidate-every", "AGGCACHE_SIMULATE_INVALIDATE_EVERY", 50*time.Millisecond)
			if err != nil {
				return err
			}
			delay, err := env.DurationFlagOrEnv(cmd, "compute-delay", "AGGCACHE_SIMULATE_COMPUTE_DELAY", time.Millisecond)
			if err != nil {
				return err
			}
			if workers <= 0 || customers <= 0 {
				return errors.New("--workers and --customers must be positive")
			}
			format := tui.DefaultFormat(env.FlagOrEnv(cmd, "output", "AGGCACHE_OUTPUT", ""))

			runID := uuid.New().String()
			log := logger.WithKV(env.NewLogger(cmd), "run", runID)
			ctx := cmd.Context()

			svc, err := service.New(cfg, log)
			if err != nil {
				return err
			}
			defer svc.Close()
			svc.Start(ctx)

			if addr := env.FlagOrEnv(cmd, "metrics-addr", "AGGCACHE_METRICS_ADDR", ""); addr != "" {
				stop, err := serveMetrics(ctx, log, addr, svc)
				if err != nil {
					return err
				}
				defer stop()
			}

			sim := &simulation{
				svc:             svc,
				store:           &store{delay: delay},
				logger:          log,
				workers:         workers,
				customers:       customers,
				invalidateEvery: invalidateEvery,
			}
			if failed := svc.WarmUp(ctx, sim.warmFilterOptions, sim.warmCustomerStats); failed > 0 {
				tui.ShowWarning(cmd.ErrOrStderr(), "%d cache warmers failed", failed)
			}
			log.Info("simulating %d workers over %d customers for %s", workers, customers, duration)
			if err := sim.run(ctx, duration); err != nil {
				return err
			}

			s := summary{
				RunID:         runID,
				Reads:         sim.reads.Load(),
				Computes:      sim.store.computes.Load(),
				Invalidations: sim.invalidations.Load(),
				RSSBefore:     processRSS(),
				SystemMemory:  systemMemory(),
			}
			s.Swept = svc.SweepExpired()
			s.RSSAfter = processRSS()
			s.Report = svc.Stats()
			return writeSummary(cmd.OutOrStdout(), format, s)
		},
	}
	cmd.Flags().String("workers", "", "number of concurrent readers (default 8)")
	cmd.Flags().String("customers", "", "number of distinct customer ids (default 100)")
	cmd.Flags().String("duration", "", "how long to run, e.g. 30s or 2m (default 5s)")
	cmd.Flags().String("invalidate-every", "", "interval between entity invalidations, 0 disables (default 50ms)")
	cmd.Flags().String("compute-delay", "", "simulated cost of one computation (default 1ms)")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	cmd.Flags().String("output", "", "output format: table, yaml or json (default table on a terminal, yaml otherwise)")
	return cmd
}
