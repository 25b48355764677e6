package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	worker "github.com/ismailopm12/coffeeqc/internal/adapters/mq/worker"
	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
	model "github.com/ismailopm12/coffeeqc/internal/domain/model"
	"github.com/ismailopm12/coffeeqc/internal/domain/scoring"
	"github.com/ismailopm12/coffeeqc/internal/domain/types"
	logging "github.com/ismailopm12/coffeeqc/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing.
type mockQueue struct {
	ch chan worker.Submission
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan worker.Submission, 200)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan worker.Submission {
	return mq.ch
}

func (mq *mockQueue) Close() error {
	close(mq.ch)
	return nil
}

func (mq *mockQueue) add(s worker.Submission) { //nolint:gocritic // hugeParam: passed by value for channel semantics
	mq.ch <- s
}

type mockScorer struct {
	mu     sync.RWMutex
	errors map[string]error
}

func newMockScorer() *mockScorer {
	return &mockScorer{errors: make(map[string]error)}
}

func (ms *mockScorer) Score(ctx context.Context, s worker.Submission) (types.Outcome, error) { //nolint:gocritic // hugeParam: read only
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if err, ok := ms.errors[s.ID]; ok {
		return types.Outcome{}, err
	}
	score := intake.Number(s.Fields["score"])
	return types.Outcome{Kind: string(s.Kind), Score: &score, Grade: "B", Recommendations: []string{}}, nil
}

func (ms *mockScorer) setError(id string, err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.errors[id] = err
}

type mockRecorder struct {
	mu     sync.RWMutex
	saved  map[string]types.Evaluation
	errors map[string]error
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{saved: make(map[string]types.Evaluation), errors: make(map[string]error)}
}

func (mr *mockRecorder) Save(ctx context.Context, e types.Evaluation) error { //nolint:gocritic // hugeParam: stored by value
	mr.mu.Lock()
	defer mr.mu.Unlock()
	if err, ok := mr.errors[e.ID]; ok {
		return err
	}
	mr.saved[e.ID] = e
	return nil
}

func (mr *mockRecorder) setError(id string, err error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.errors[id] = err
}

func (mr *mockRecorder) get(id string) (types.Evaluation, bool) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	e, ok := mr.saved[id]
	return e, ok
}

func (mr *mockRecorder) count() int {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return len(mr.saved)
}

func submission(id string, score float64) worker.Submission {
	return model.NewSubmission(id, intake.KindCupping, "lot-7", intake.Fields{"score": score})
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		scorer := newMockScorer()
		recorder := newMockRecorder()
		fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		w := worker.NewInMemoryWorker(q, scorer, recorder,
			worker.WithName("test-worker"),
			worker.WithClock(func() time.Time { return fixed }),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a submission is queued", func() {
			q.add(submission("s-1", 86))

			convey.Convey("Then the evaluation is recorded", func() {
				convey.So(waitFor(func() bool { _, ok := recorder.get("s-1"); return ok }), convey.ShouldBeTrue)
				e, _ := recorder.get("s-1")
				convey.So(*e.Outcome.Score, convey.ShouldEqual, 86.0)
				convey.So(e.SampleID, convey.ShouldEqual, "lot-7")
				convey.So(e.ScoredAt, convey.ShouldEqual, fixed)
			})
		})

		convey.Convey("When scoring fails", func() {
			scorer.setError("s-2", errors.New("scoring error"))
			q.add(submission("s-2", 80))
			q.add(submission("s-3", 81))

			convey.Convey("Then that submission is skipped and the next is processed", func() {
				convey.So(waitFor(func() bool { _, ok := recorder.get("s-3"); return ok }), convey.ShouldBeTrue)
				_, ok := recorder.get("s-2")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When saving fails", func() {
			recorder.setError("s-4", errors.New("store error"))
			q.add(submission("s-4", 80))
			q.add(submission("s-5", 82))

			convey.Convey("Then the worker keeps going", func() {
				convey.So(waitFor(func() bool { _, ok := recorder.get("s-5"); return ok }), convey.ShouldBeTrue)
				_, ok := recorder.get("s-4")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.Convey("Then it stops gracefully and a second call is harmless", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}

func TestEngineScorer(t *testing.T) {
	convey.Convey("Given the engine adapter", t, func() {
		s := worker.EngineScorer{Engine: scoring.NewEngine()}

		convey.Convey("When a roast submission is scored", func() {
			out, err := s.Score(context.Background(), model.NewSubmission("r-1", intake.KindRoast, "", intake.Fields{
				"first_crack_time": 150, "development_time": 45, "drop_temp": 200,
			}))

			convey.Convey("Then the roast outcome is returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out.RoastLevel, convey.ShouldEqual, "Medium Roast")
				convey.So(out.Score, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the kind is unknown", func() {
			_, err := s.Score(context.Background(), model.NewSubmission("x", intake.Kind("tea"), "", nil))

			convey.Convey("Then ErrUnknownKind is returned", func() {
				convey.So(errors.Is(err, intake.ErrUnknownKind), convey.ShouldBeTrue)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a new WorkerPool", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		scorer := newMockScorer()
		recorder := newMockRecorder()

		convey.Convey("When creating a worker pool with default count", func() {
			pool := worker.NewPool(0, q, scorer, recorder)

			convey.Convey("Then it sizes itself from the CPU count", func() {
				convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When a started pool processes submissions", func() {
			pool := worker.NewPool(4, q, scorer, recorder)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			const total = 100
			var wg sync.WaitGroup
			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func(p int) {
					defer wg.Done()
					for j := 0; j < total/5; j++ {
						q.add(submission(fmt.Sprintf("s-%d-%d", p, j), float64(80+j%10)))
					}
				}(i)
			}
			wg.Wait()

			convey.Convey("Then all are recorded and counted", func() {
				convey.So(waitFor(func() bool { return recorder.count() == total }), convey.ShouldBeTrue)
				convey.So(waitFor(func() bool { return pool.Processed() == total }), convey.ShouldBeTrue)
				convey.So(pool.Failed(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a pool is shut down with pending work", func() {
			pool := worker.NewPool(2, q, scorer, recorder)
			for i := 0; i < 10; i++ {
				q.add(submission(fmt.Sprintf("p-%d", i), 85))
			}
			scorer.setError("p-3", errors.New("bad sample"))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool.Start(ctx)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer shutdownCancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then the queue is drained before the workers exit", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(recorder.count(), convey.ShouldEqual, 9)
				convey.So(pool.Processed(), convey.ShouldEqual, 9)
				convey.So(pool.Failed(), convey.ShouldEqual, 1)
			})
		})
	})
}
