package cache

import (
	"context"
	"sync"
	"time"

	"github.com/agentuity/aggcache/logger"
)

// DefaultSweepInterval is used when a sweeper is created with a non-positive interval.
const DefaultSweepInterval = time.Minute

// Sweeper periodically drops expired entries nobody has read since they expired.
// It only reclaims memory; reads re-check expiry on their own.
type Sweeper struct {
	target    Sweepable
	interval  time.Duration
	logger    logger.Logger
	cancel    context.CancelFunc
	waitGroup sync.WaitGroup
	mu        sync.Mutex
	started   bool
	closed    bool
	once      sync.Once
}

// NewSweeper returns a sweeper for target. It does nothing until Start.
func NewSweeper(target Sweepable, interval time.Duration, log logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Sweeper{target: target, interval: interval, logger: log}
}

// Sweep runs one pass now and returns the number of entries removed.
func (s *Sweeper) Sweep() int {
	removed := s.target.SweepExpired()
	if removed > 0 {
		s.logger.Info("swept %d expired cache entries", removed)
	} else {
		s.logger.Debug("sweep found no expired cache entries")
	}
	return removed
}

// Start launches the background loop. It stops when ctx is done or Close is called.
// Calling Start more than once, or after Close, has no effect.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.waitGroup.Add(1)
	go s.run(ctx)
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.waitGroup.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close stops the background loop and waits for it to exit.
func (s *Sweeper) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		cancel := s.cancel
		s.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		s.waitGroup.Wait()
	})
	return nil
}
