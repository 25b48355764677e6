package scoring_test

import (
	"context"
	"errors"
	"testing"

	scoring "github.com/ismailopm12/coffeeqc/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCuppingProfile_Score(t *testing.T) {
	Convey("Given the standalone cupping profile", t, func() {
		p := scoring.CuppingProfile

		Convey("When every attribute is 5 and there are no defects", func() {
			res := p.Score(scoring.CuppingInput{Attributes: scoring.Uniform(5)})

			Convey("Then the score is 50.0 and below standard", func() {
				So(res.Score, ShouldEqual, 50.0)
				So(res.Grade, ShouldEqual, "Below Standard")
				So(res.Recommendations, ShouldHaveLength, 2)
			})
		})

		Convey("When every attribute is 9 and there are no defects", func() {
			res := p.Score(scoring.CuppingInput{Attributes: scoring.Uniform(9)})

			Convey("Then the score is 90.0 and outstanding", func() {
				So(res.Score, ShouldEqual, 90.0)
				So(res.Grade, ShouldEqual, "Outstanding")
				So(res.Quality, ShouldNotBeEmpty)
			})
		})

		Convey("When defects are recorded", func() {
			res := p.Score(scoring.CuppingInput{Attributes: scoring.Uniform(9), Defects: 2})

			Convey("Then each defect costs two points", func() {
				So(res.Score, ShouldEqual, 86.0)
				So(res.Grade, ShouldEqual, "Excellent")
			})
		})

		Convey("When scores sit exactly on the thresholds", func() {
			cases := map[float64]string{90: "Outstanding", 85: "Excellent", 80: "Good", 75: "Fair", 74.9: "Below Standard"}
			for total, grade := range cases {
				in := scoring.CuppingInput{Attributes: scoring.Uniform(0)}
				in.FragranceAroma = total
				So(p.Score(in).Grade, ShouldEqual, grade)
			}
		})

		Convey("When acidity, body and flavor are all low on an otherwise high record", func() {
			in := scoring.CuppingInput{Attributes: scoring.Uniform(10)}
			in.Acidity, in.Body, in.Flavor = 3, 3, 3
			res := p.Score(in)

			Convey("Then all three advisories are present together", func() {
				So(res.Recommendations, ShouldContain, scoring.AdviceProcessing)
				So(res.Recommendations, ShouldContain, scoring.AdviceRoastAdjustment)
				So(res.Recommendations, ShouldContain, scoring.AdviceFlavorDevelopment)
				So(res.Recommendations, ShouldHaveLength, 5)
			})
		})

		Convey("When more than three defects are recorded", func() {
			res := p.Score(scoring.CuppingInput{Attributes: scoring.Uniform(8), Defects: 4})

			Convey("Then a sorting advisory follows the band defaults", func() {
				So(res.Recommendations[len(res.Recommendations)-1], ShouldEqual, scoring.AdviceDefectSorting)
			})
		})

		Convey("When inputs are out of the conventional range", func() {
			res := p.Score(scoring.CuppingInput{Attributes: scoring.Uniform(12), Defects: -1})

			Convey("Then nothing is clamped", func() {
				So(res.Score, ShouldEqual, 122.0)
				So(res.Grade, ShouldEqual, "Outstanding")
			})
		})

		Convey("When the same input is scored twice", func() {
			in := scoring.CuppingInput{Attributes: scoring.Uniform(6.5), Defects: 5}
			in.Acidity = 2

			Convey("Then the results are identical", func() {
				So(p.Score(in), ShouldResemble, p.Score(in))
			})
		})
	})
}

func TestQualityProfile_Score(t *testing.T) {
	Convey("Given the combined quality profile", t, func() {
		p := scoring.QualityProfile

		Convey("When every attribute is 9 with no defects", func() {
			res := p.Score(scoring.CuppingInput{Attributes: scoring.Uniform(9)})

			Convey("Then the blended score is 93.0 and grade A", func() {
				So(res.Score, ShouldEqual, 93.0)
				So(res.Grade, ShouldEqual, "A")
				So(res.Quality, ShouldEqual, "Exceptional")
			})
		})

		Convey("When primary and secondary defects are recorded", func() {
			res := p.Score(scoring.CuppingInput{Attributes: scoring.Uniform(8), PrimaryDefects: 2, SecondaryDefects: 4})

			Convey("Then both the cup penalty and the green score apply", func() {
				// cup = 80 - (4 + 4) = 72; green = 100 - (2 + 2) = 96
				So(res.Score, ShouldEqual, 79.2)
				So(res.Grade, ShouldEqual, "C")
			})
		})

		Convey("When moisture, primary defects and acidity all trip their rules", func() {
			in := scoring.CuppingInput{Attributes: scoring.Uniform(7), PrimaryDefects: 6, Moisture: 12.5}
			in.Acidity = 3
			res := p.Score(in)

			Convey("Then the advisories appear in rule order after the defaults", func() {
				So(res.Recommendations, ShouldHaveLength, 5)
				So(res.Recommendations[2:], ShouldResemble, []string{
					scoring.AdviceDrying,
					scoring.AdvicePrimarySorting,
					scoring.AdviceProcessing,
				})
			})
		})

		Convey("When moisture is exactly 12", func() {
			res := p.Score(scoring.CuppingInput{Attributes: scoring.Uniform(8), Moisture: 12})

			Convey("Then no drying advisory is produced", func() {
				So(res.Recommendations, ShouldNotContain, scoring.AdviceDrying)
			})
		})

		Convey("When body and flavor are low", func() {
			in := scoring.CuppingInput{Attributes: scoring.Uniform(8)}
			in.Body, in.Flavor = 1, 1
			res := p.Score(in)

			Convey("Then the cupping-only rules do not apply", func() {
				So(res.Recommendations, ShouldNotContain, scoring.AdviceRoastAdjustment)
				So(res.Recommendations, ShouldNotContain, scoring.AdviceFlavorDevelopment)
			})
		})

		Convey("When blending lands on the band boundaries", func() {
			So(p.Bands.Classify(80).Grade, ShouldEqual, "B")
			So(p.Bands.Classify(79.9).Grade, ShouldEqual, "C")
			So(p.Bands.Classify(60).Grade, ShouldEqual, "D")
			So(p.Bands.Classify(-20).Grade, ShouldEqual, "E")
		})
	})
}

func TestEvaluationProfile_Score(t *testing.T) {
	Convey("Given the evaluation form profile", t, func() {
		p := scoring.EvaluationProfile

		Convey("When the record is strong", func() {
			res := p.Score(scoring.CuppingInput{Attributes: scoring.Uniform(8.25), Defects: 1})

			Convey("Then only the rounded score is produced", func() {
				So(res.Score, ShouldEqual, 80.5)
				So(res.Grade, ShouldBeEmpty)
				So(res.Recommendations, ShouldBeEmpty)
			})
		})

		Convey("When defects outweigh the attributes", func() {
			res := p.Score(scoring.CuppingInput{Attributes: scoring.Uniform(1), Defects: 20})

			Convey("Then the score is floored at zero", func() {
				So(res.Score, ShouldEqual, 0.0)
			})
		})
	})
}

func TestMonotonicity(t *testing.T) {
	Convey("Given a baseline cupping record", t, func() {
		base := scoring.CuppingInput{Attributes: scoring.Uniform(7), Defects: 1, PrimaryDefects: 1, SecondaryDefects: 1}
		profiles := []*scoring.Profile{scoring.CuppingProfile, scoring.QualityProfile, scoring.EvaluationProfile}

		Convey("When a single attribute increases", func() {
			for _, p := range profiles {
				higher := base
				higher.Sweetness += 1.5
				So(p.Score(higher).Score, ShouldBeGreaterThanOrEqualTo, p.Score(base).Score)
			}
		})

		Convey("When defect counts increase", func() {
			for _, p := range profiles {
				worse := base
				worse.Defects += 2
				worse.PrimaryDefects += 2
				worse.SecondaryDefects += 2
				So(p.Score(worse).Score, ShouldBeLessThanOrEqualTo, p.Score(base).Score)
			}
		})

		Convey("When defect counts are far beyond any real sample", func() {
			for _, p := range profiles {
				huge := base
				huge.Defects = 1e20
				huge.PrimaryDefects = 1e20
				huge.SecondaryDefects = 1e20
				So(p.Score(huge).Score, ShouldBeLessThanOrEqualTo, p.Score(base).Score)
			}
		})
	})
}

func TestBandTable_Classify(t *testing.T) {
	Convey("Given an empty band table", t, func() {
		var table scoring.BandTable

		Convey("Then classification returns the zero band", func() {
			So(table.Classify(50), ShouldResemble, scoring.Band{})
		})
	})
}

func TestEngine(t *testing.T) {
	Convey("Given a scoring engine", t, func() {
		e := scoring.NewEngine()

		Convey("When the context is live", func() {
			res, err := e.ScoreCupping(context.Background(), scoring.CuppingProfile, scoring.CuppingInput{Attributes: scoring.Uniform(9)})

			Convey("Then it delegates to the profile", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 90.0)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := e.ScoreCupping(ctx, scoring.CuppingProfile, scoring.CuppingInput{})
			_, roastErr := e.ScoreRoast(ctx, scoring.RoastInput{})

			Convey("Then it returns the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				So(errors.Is(roastErr, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
