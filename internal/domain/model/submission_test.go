package model_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
	model "github.com/ismailopm12/coffeeqc/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestNewSubmission(t *testing.T) {
	convey.Convey("Given submission inputs", t, func() {
		fields := intake.Fields{"flavor": 8}

		convey.Convey("When an id is supplied", func() {
			s := model.NewSubmission("sub-1", intake.KindCupping, "lot-7", fields)

			convey.Convey("Then it is kept", func() {
				convey.So(s.ID, convey.ShouldEqual, "sub-1")
				convey.So(s.Kind, convey.ShouldEqual, intake.KindCupping)
				convey.So(s.SampleID, convey.ShouldEqual, "lot-7")
				convey.So(s.ReceivedAt.IsZero(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the id is blank", func() {
			a := model.NewSubmission("", intake.KindRoast, "", fields)
			b := model.NewSubmission("", intake.KindRoast, "", fields)

			convey.Convey("Then distinct UUIDs are generated", func() {
				_, err := uuid.Parse(a.ID)
				convey.So(err, convey.ShouldBeNil)
				convey.So(a.ID, convey.ShouldNotEqual, b.ID)
			})
		})
	})
}
