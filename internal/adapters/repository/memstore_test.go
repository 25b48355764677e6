package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ismailopm12/coffeeqc/internal/adapters/repository"
	"github.com/ismailopm12/coffeeqc/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func scored(id, kind string, score float64) types.Evaluation {
	return types.Evaluation{
		ID:       id,
		Outcome:  types.Outcome{Kind: kind, Score: &score, Recommendations: []string{}},
		ScoredAt: time.Now().UTC(),
	}
}

func ids(list []types.Evaluation) []string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func TestMemStore(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := repository.NewMemStore()

		Convey("Then it counts zero and lookups fail", func() {
			So(s.Count(ctx), ShouldEqual, 0)
			_, err := s.Get(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When cupping evaluations are saved out of order", func() {
			So(s.Save(ctx, scored("c", "cupping", 84.5)), ShouldBeNil)
			So(s.Save(ctx, scored("a", "cupping", 91)), ShouldBeNil)
			So(s.Save(ctx, scored("b", "cupping", 84.5)), ShouldBeNil)
			So(s.Save(ctx, scored("q", "quality", 99)), ShouldBeNil)

			Convey("Then Top orders by score desc, then id asc", func() {
				top, err := s.Top(ctx, "cupping", 10)
				So(err, ShouldBeNil)
				So(ids(top), ShouldResemble, []string{"a", "b", "c"})
			})

			Convey("Then Top truncates to the limit", func() {
				top, err := s.Top(ctx, "cupping", 2)
				So(err, ShouldBeNil)
				So(ids(top), ShouldResemble, []string{"a", "b"})
			})

			Convey("Then kinds are ranked separately", func() {
				top, err := s.Top(ctx, "quality", 10)
				So(err, ShouldBeNil)
				So(ids(top), ShouldResemble, []string{"q"})
				So(s.Count(ctx), ShouldEqual, 4)
			})

			Convey("When an evaluation is saved again with a new score", func() {
				So(s.Save(ctx, scored("c", "cupping", 95)), ShouldBeNil)

				Convey("Then it moves and is not duplicated", func() {
					top, _ := s.Top(ctx, "cupping", 10)
					So(ids(top), ShouldResemble, []string{"c", "a", "b"})
					So(s.Count(ctx), ShouldEqual, 4)
				})
			})
		})

		Convey("When a roast evaluation is saved", func() {
			ratio := 0.3
			e := types.Evaluation{ID: "r1", Outcome: types.Outcome{Kind: "roast", DevelopmentRatio: &ratio}}
			So(s.Save(ctx, e), ShouldBeNil)

			Convey("Then it can be fetched but not ranked", func() {
				got, err := s.Get(ctx, "r1")
				So(err, ShouldBeNil)
				So(*got.Outcome.DevelopmentRatio, ShouldEqual, 0.3)
				_, err = s.Top(ctx, "roast", 5)
				So(errors.Is(err, repository.ErrUnranked), ShouldBeTrue)
			})
		})

		Convey("When the limit is not positive", func() {
			_, err := s.Top(ctx, "cupping", 0)

			Convey("Then ErrInvalidLimit is returned", func() {
				So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)
			})
		})

		Convey("When the id is empty", func() {
			Convey("Then Save fails", func() {
				So(s.Save(ctx, scored("", "cupping", 80)), ShouldNotBeNil)
			})
		})

		Convey("When Top results are modified by the caller", func() {
			So(s.Save(ctx, scored("a", "cupping", 80)), ShouldBeNil)
			top, _ := s.Top(ctx, "cupping", 1)
			top[0].ID = "mutated"

			Convey("Then the store is unaffected", func() {
				again, _ := s.Top(ctx, "cupping", 1)
				So(again[0].ID, ShouldEqual, "a")
			})
		})
	})
}

func TestMemStoreConcurrency(t *testing.T) {
	Convey("Given concurrent writers and readers", t, func() {
		ctx := context.Background()
		s := repository.NewMemStore()
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					_ = s.Save(ctx, scored(fmt.Sprintf("e-%d-%d", w, i), "cupping", float64(i)))
					_, _ = s.Top(ctx, "cupping", 5)
				}
			}(w)
		}
		wg.Wait()

		Convey("Then every evaluation is stored and ordering holds", func() {
			So(s.Count(ctx), ShouldEqual, 400)
			top, err := s.Top(ctx, "cupping", 400)
			So(err, ShouldBeNil)
			for i := 1; i < len(top); i++ {
				So(*top[i-1].Outcome.Score, ShouldBeGreaterThanOrEqualTo, *top[i].Outcome.Score)
			}
		})
	})
}
