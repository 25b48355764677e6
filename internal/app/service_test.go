package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ismailopm12/coffeeqc/internal/adapters/repository"
	service "github.com/ismailopm12/coffeeqc/internal/app"
	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
	"github.com/ismailopm12/coffeeqc/internal/domain/model"
	"github.com/ismailopm12/coffeeqc/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func uniform(v float64) intake.Fields {
	f := intake.Fields{}
	for _, k := range []string{"fragrance_aroma", "flavor", "aftertaste", "acidity", "body", "balance", "uniformity", "clean_cup", "sweetness", "overall"} {
		f[k] = v
	}
	return f
}

// eventually polls cond for up to two seconds.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithDedupeSize(1000),
			service.WithShutdownTimeout(time.Second),
		)

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it reports the configuration and not started", func() {
				So(stats["started"], ShouldEqual, false)
				So(stats["workerCount"], ShouldEqual, 2)
				So(stats["queueSize"], ShouldEqual, 100)
				So(stats["evaluations"], ShouldEqual, 0)
			})
		})

		Convey("When submitting before Start", func() {
			_, err := svc.Submit(context.Background(), model.NewSubmission("s-1", intake.KindCupping, "", uniform(8)))

			Convey("Then ErrNotStarted is returned", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When started, stopped and started again", func() {
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			svc.Stop()
			So(svc.GetStats()["started"], ShouldEqual, false)
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then submissions are accepted again", func() {
				dup, err := svc.Submit(ctx, model.NewSubmission("again", intake.KindQuality, "", uniform(9)))
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			})
		})
	})
}

func TestService_Score(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When a cupping record is scored synchronously", func() {
			out, err := svc.Score(ctx, intake.KindCupping, uniform(9))

			Convey("Then the outcome is returned and nothing is stored", func() {
				So(err, ShouldBeNil)
				So(*out.Score, ShouldEqual, 90.0)
				So(out.Grade, ShouldEqual, "Outstanding")
				So(svc.GetStats()["evaluations"], ShouldEqual, 0)
			})
		})

		Convey("When the kind is unknown", func() {
			_, err := svc.Score(ctx, intake.Kind("tea"), uniform(9))

			Convey("Then ErrUnknownKind is returned", func() {
				So(errors.Is(err, intake.ErrUnknownKind), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Score(cctx, intake.KindQuality, uniform(9))

			Convey("Then the cancellation is surfaced", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(service.WithWorkerCount(4), service.WithShutdownTimeout(2*time.Second))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When quality submissions are queued", func() {
			for i, v := range []float64{9, 7, 8} {
				_, err := svc.Submit(ctx, model.NewSubmission(fmt.Sprintf("q-%d", i), intake.KindQuality, "lot-1", uniform(v)))
				So(err, ShouldBeNil)
			}

			Convey("Then they are scored, stored and ranked", func() {
				So(eventually(func() bool { return svc.GetStats()["evaluations"] == 3 }), ShouldBeTrue)

				e, err := svc.Get(ctx, "q-0")
				So(err, ShouldBeNil)
				So(*e.Outcome.Score, ShouldEqual, 93.0)
				So(e.SampleID, ShouldEqual, "lot-1")

				top, err := svc.Top(ctx, intake.KindQuality, 2)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 2)
				So(top[0].ID, ShouldEqual, "q-0")
				So(top[1].ID, ShouldEqual, "q-2")
			})
		})

		Convey("When the same submission id is sent twice", func() {
			sub := model.NewSubmission("dup-1", intake.KindCupping, "", uniform(8))
			first, err1 := svc.Submit(ctx, sub)
			second, err2 := svc.Submit(ctx, sub)

			Convey("Then the second is reported as a duplicate", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
			})
		})

		Convey("When a roast submission is queued", func() {
			_, err := svc.Submit(ctx, model.NewSubmission("r-1", intake.KindRoast, "", intake.Fields{
				"first_crack_time": 150, "development_time": 45, "drop_temp": 232,
			}))
			So(err, ShouldBeNil)

			Convey("Then it can be fetched but not ranked", func() {
				So(eventually(func() bool { _, err := svc.Get(ctx, "r-1"); return err == nil }), ShouldBeTrue)
				e, _ := svc.Get(ctx, "r-1")
				So(e.Outcome.RoastLevel, ShouldEqual, "Dark Roast")
				_, err := svc.Top(ctx, intake.KindRoast, 5)
				So(errors.Is(err, repository.ErrUnranked), ShouldBeTrue)
			})
		})

		Convey("When the kind is unknown", func() {
			_, err := svc.Submit(ctx, model.NewSubmission("x-1", intake.Kind("tea"), "", nil))

			Convey("Then it is rejected before dedupe", func() {
				So(errors.Is(err, intake.ErrUnknownKind), ShouldBeTrue)
				So(svc.GetStats()["dedupeEntries"], ShouldEqual, int64(0))
			})
		})

		Convey("When an unknown id is fetched", func() {
			_, err := svc.Get(ctx, "missing")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Backpressure(t *testing.T) {
	Convey("Given a service with one worker and a tiny queue", t, func() {
		svc := service.New(service.WithWorkerCount(1), service.WithQueueSize(2), service.WithShutdownTimeout(time.Second))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When many submissions arrive at once", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			rejected := 0
			for i := 0; i < 200; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := svc.Submit(ctx, model.NewSubmission(fmt.Sprintf("b-%d", i), intake.KindCupping, "", uniform(8)))
					if errors.Is(err, service.ErrBackpressure) {
						mu.Lock()
						rejected++
						mu.Unlock()
					}
				}(i)
			}
			wg.Wait()

			Convey("Then rejected ids are forgotten so they can be retried", func() {
				stats := svc.GetStats()
				So(stats["dedupeEntries"], ShouldEqual, int64(200-rejected))
			})
		})
	})
}
