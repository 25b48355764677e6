// Package service wires the scoring engine, the submission pipeline and the
// evaluation store into the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ismailopm12/coffeeqc/internal/adapters/mq/queue"
	"github.com/ismailopm12/coffeeqc/internal/adapters/mq/worker"
	"github.com/ismailopm12/coffeeqc/internal/adapters/repository"
	"github.com/ismailopm12/coffeeqc/internal/domain/dedupe"
	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
	"github.com/ismailopm12/coffeeqc/internal/domain/model"
	"github.com/ismailopm12/coffeeqc/internal/domain/scoring"
	"github.com/ismailopm12/coffeeqc/internal/domain/types"
	"github.com/ismailopm12/coffeeqc/pkg/logger"
	"github.com/ismailopm12/coffeeqc/pkg/metrics"
)

const defaultShutdownTimeout = 30 * time.Second

// Service implements the API dependencies for the QC system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	scorer  scoring.Scorer
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	shutdownTimeout time.Duration

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending submissions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission id cache. Zero or negative
// means unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithShutdownTimeout bounds how long Stop waits for the queue to drain.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.shutdownTimeout = d
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

// WithScorer replaces the scoring engine.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithStore replaces the in-memory evaluation store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       10_000,
		dedupeSize:      50_000,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scorer == nil {
		s.scorer = scoring.NewEngine()
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start creates the queue and starts the worker pool. Workers run on a
// context detached from ctx's cancellation so Stop can drain them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.EngineScorer{Engine: s.scorer}, s.store)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "qc service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop closes the queue, waits up to the shutdown timeout for pending
// submissions to be scored, then stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping qc service...")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	if err := s.pool.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain in time", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "qc service stopped", logger.Int64("processed", s.pool.Processed()))
}

// Score evaluates f synchronously without storing the result.
func (s *Service) Score(ctx context.Context, kind intake.Kind, f intake.Fields) (types.Outcome, error) {
	start := time.Now()
	out, err := intake.Evaluate(ctx, s.scorer, kind, f)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordScoringError(string(kind))
		return types.Outcome{}, fmt.Errorf("score %s: %w", kind, err)
	}
	metrics.RecordEvaluationScored(out.Kind)
	metrics.RecordGrade(out.Kind, out.Grade)
	return out, nil
}

// Submit queues sub for asynchronous scoring. It reports duplicate=true,
// without queueing, when the submission id was already accepted. A full
// queue returns ErrBackpressure and forgets the id so it can be retried.
func (s *Service) Submit(ctx context.Context, sub model.Submission) (bool, error) { //nolint:gocritic // hugeParam: queued by value
	if _, err := intake.ParseKind(string(sub.Kind)); err != nil {
		metrics.RecordSubmissionRejected("unknown_kind")
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false, ErrNotStarted
	}

	if s.deduper.SeenAndRecord(ctx, sub.ID) {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission", logger.String("id", sub.ID))
		return true, nil
	}

	if err := s.queue.Enqueue(ctx, sub); err != nil {
		s.deduper.Unrecord(ctx, sub.ID)
		switch {
		case errors.Is(err, queue.ErrFull):
			metrics.RecordSubmissionRejected("backpressure")
			return false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		case errors.Is(err, queue.ErrClosed):
			metrics.RecordSubmissionRejected("stopped")
			return false, fmt.Errorf("%w: %w", ErrStopped, err)
		default:
			metrics.RecordSubmissionRejected("cancelled")
			return false, err
		}
	}
	s.logger.Debug(ctx, "submission queued",
		logger.String("id", sub.ID),
		logger.String("kind", string(sub.Kind)),
	)
	return false, nil
}

// Get returns a stored evaluation by submission id.
func (s *Service) Get(ctx context.Context, id string) (types.Evaluation, error) {
	return s.store.Get(ctx, id)
}

// Top returns the n best-scoring evaluations of kind.
func (s *Service) Top(ctx context.Context, kind intake.Kind, n int) ([]types.Evaluation, error) {
	return s.store.Top(ctx, string(kind), n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"dedupeEntries": s.deduper.Size(),
		"evaluations":   s.store.Count(ctx),
	}

	if s.pool != nil {
		stats["processed"] = s.pool.Processed()
		stats["failed"] = s.pool.Failed()
	}
	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}
	metrics.UpdateRepositoryRecordsTotal(s.store.Count(ctx))

	return stats
}
