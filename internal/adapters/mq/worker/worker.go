package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
	"github.com/ismailopm12/coffeeqc/internal/domain/model"
	"github.com/ismailopm12/coffeeqc/internal/domain/scoring"
	"github.com/ismailopm12/coffeeqc/internal/domain/types"
	"github.com/ismailopm12/coffeeqc/pkg/logger"
	"github.com/ismailopm12/coffeeqc/pkg/metrics"
)

const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerStopGrace         = time.Second
)

// Submission is what workers read off the queue.
type Submission = model.Submission

// Recorder persists scored evaluations.
type Recorder interface {
	Save(ctx context.Context, e types.Evaluation) error
}

// Scorer turns a submission into an outcome.
type Scorer interface {
	Score(ctx context.Context, s Submission) (types.Outcome, error)
}

// EngineScorer adapts a scoring engine to Scorer via intake normalisation.
type EngineScorer struct {
	Engine scoring.Scorer
}

// Score implements Scorer.
func (e EngineScorer) Score(ctx context.Context, s Submission) (types.Outcome, error) { //nolint:gocritic // hugeParam: read only
	return intake.Evaluate(ctx, e.Engine, s.Kind, s.Fields)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker processes submissions until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown signals the worker to stop and waits for it.
	Shutdown(ctx context.Context) error
}

type counters struct {
	processed atomic.Int64
	failed    atomic.Int64
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	scorer   Scorer
	recorder Recorder
	name     string
	now      func() time.Time
	counters *counters

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, scorer Scorer, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		scorer:   scorer,
		recorder: recorder,
		name:     "worker",
		now:      func() time.Time { return time.Now().UTC() },
		counters: &counters{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	ch := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			if err := w.process(ctx, s); err != nil {
				w.counters.failed.Add(1)
				w.logger.Error(ctx, "error processing submission", logger.String("id", s.ID), logger.Error(err))
				continue
			}
			w.counters.processed.Add(1)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, s Submission) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	metrics.AddWorkerActive(1)
	start := time.Now()
	defer func() {
		metrics.AddWorkerActive(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	scoreStart := time.Now()
	out, err := w.scorer.Score(ctx, s)
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordScoringError(string(s.Kind))
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "scoring_error")
		metrics.RecordErrorByType("scoring_error", "high")
		return fmt.Errorf("score submission %s: %w", s.ID, err)
	}

	e := types.Evaluation{ID: s.ID, SampleID: s.SampleID, Outcome: out, ScoredAt: w.now()}
	if err := w.recorder.Save(ctx, e); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "repository_error")
		metrics.RecordErrorByType("repository_error", "high")
		return fmt.Errorf("save evaluation %s: %w", s.ID, err)
	}

	metrics.RecordEvaluationScored(out.Kind)
	metrics.RecordGrade(out.Kind, out.Grade)
	w.logger.Debug(ctx, "submission scored",
		logger.String("id", s.ID),
		logger.String("kind", out.Kind),
		logger.String("grade", out.Grade),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *counters
	logger   logger.Logger
}

// NewPool creates a new worker pool. workerCount < 1 selects a default
// based on the CPU count.
func NewPool(workerCount int, q Queue, scorer Scorer, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		counters: &counters{},
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewInMemoryWorker(q, scorer, recorder,
			WithName("worker-"+strconv.Itoa(i)),
			withCounters(p.counters),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of submissions scored and saved.
func (p *Pool) Processed() int64 { return p.counters.processed.Load() }

// Failed returns the number of submissions that could not be scored or saved.
func (p *Pool) Failed() int64 { return p.counters.failed.Load() }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and waits for the workers to drain it. Workers
// still running when ctx expires are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			stopCtx, cancel := context.WithTimeout(context.Background(), workerStopGrace)
			err := w.Shutdown(stopCtx)
			cancel()
			if err != nil {
				p.logger.Warn(ctx, "worker shutdown failed", logger.Int("worker_id", i), logger.Error(err))
			}
		}
	}
	p.logger.Info(ctx, "worker pool stopped", logger.Int64("processed", p.Processed()))
	return ctx.Err()
}
