// Package weaver provides the frequency weaver service. It acknowledges tune
// events immediately and processes them on a worker pool.
package weaver

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/aether/internal/adapters/mq/queue"
	"github.com/okian/aether/internal/adapters/mq/worker"
	"github.com/okian/aether/internal/domain/model"
	"github.com/okian/aether/pkg/logger"
	"github.com/okian/aether/pkg/metrics"
)

const (
	defaultQueueSize = 10_000
	stopTimeout      = 10 * time.Second
)

// Service implements the weaver's HTTP dependencies.
type Service struct {
	mu sync.RWMutex

	queue *queue.InMemoryQueue
	pool  *worker.Pool

	queueSize   int
	workerCount int

	tuningsMu sync.Mutex
	tunings   map[string]int64
	tuned     atomic.Int64
	dropped   atomic.Int64

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize bounds the number of pending tune events.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration. The logger must be
// initialized first.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:   defaultQueueSize,
		workerCount: runtime.NumCPU(),
		tunings:     make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("weaver")
	}
	return s
}

// Start creates the queue and starts the worker pool. Workers outlive ctx
// cancellation so that Stop can drain them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.HandlerFunc(s.handle))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "weaver service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop closes the queue and waits for the workers to drain it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping weaver service...", logger.Int("pending", s.queue.Len(ctx)))
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "weaver workers did not drain", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "weaver service stopped", logger.Any("tuned", s.tuned.Load()))
}

// Tune accepts e for asynchronous processing. A full or stopped queue drops
// the event; the caller is acknowledged either way.
func (s *Service) Tune(ctx context.Context, e model.TuneEvent) {
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now()
	}

	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()

	if q == nil {
		s.drop(ctx, e, queue.ErrQueueClosed)
		return
	}
	if err := q.Enqueue(ctx, e); err != nil {
		s.drop(ctx, e, err)
	}
}

func (s *Service) drop(ctx context.Context, e model.TuneEvent, err error) {
	s.dropped.Add(1)
	s.logger.Warn(ctx, "tune event dropped",
		logger.String("accountId", e.AccountID),
		logger.String("event", e.Event),
		logger.Error(err),
	)
}

// handle is the worker callback.
func (s *Service) handle(ctx context.Context, e model.TuneEvent) error {
	s.tuningsMu.Lock()
	s.tunings[e.AccountID]++
	count := s.tunings[e.AccountID]
	s.tuningsMu.Unlock()

	s.tuned.Add(1)
	metrics.RecordTuning()
	s.logger.Info(ctx, "tuning for account",
		logger.String("accountId", e.AccountID),
		logger.String("event", e.Event),
		logger.Any("tunings", count),
		logger.String("waited", time.Since(e.ReceivedAt).String()),
	)
	return nil
}

// Tunings returns how many events were processed for accountID.
func (s *Service) Tunings(accountID string) int64 {
	s.tuningsMu.Lock()
	defer s.tuningsMu.Unlock()
	return s.tunings[accountID]
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.tuningsMu.Lock()
	perAccount := make(map[string]int64, len(s.tunings))
	for id, n := range s.tunings {
		perAccount[id] = n
	}
	s.tuningsMu.Unlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"tuned":       s.tuned.Load(),
		"dropped":     s.dropped.Load(),
		"tunings":     perAccount,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(context.Background())
	}
	return stats
}
