package scoring_test

import (
	"testing"

	scoring "github.com/okian/bounceland/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWeekScore(t *testing.T) {
	Convey("Given roster counts", t, func() {
		Convey("When computing the week score", func() {
			So(scoring.WeekScore(0, 0), ShouldEqual, 0.0)
			So(scoring.WeekScore(3, 1), ShouldEqual, 3.5)
			So(scoring.WeekScore(20, 10), ShouldEqual, 25.0)
		})

		Convey("Then the score never decreases when counts grow", func() {
			for full := 0; full < 20; full++ {
				for half := 0; half < 20; half++ {
					base := scoring.WeekScore(full, half)
					So(scoring.WeekScore(full+1, half), ShouldBeGreaterThan, base)
					So(scoring.WeekScore(full, half+1), ShouldBeGreaterThan, base)
				}
			}
		})
	})
}

func TestBucket(t *testing.T) {
	Convey("Given the default thresholds", t, func() {
		Convey("Then boundaries are inclusive", func() {
			So(scoring.Bucket(0), ShouldEqual, scoring.Normal)
			So(scoring.Bucket(30), ShouldEqual, scoring.Normal)
			So(scoring.Bucket(30.01), ShouldEqual, scoring.Warning)
			So(scoring.Bucket(50), ShouldEqual, scoring.Warning)
			So(scoring.Bucket(51), ShouldEqual, scoring.Critical)
		})

		Convey("Then the indicator follows the bucket", func() {
			So(scoring.Indicator(12), ShouldEqual, "🟢")
			So(scoring.Indicator(40.5), ShouldEqual, "🟠")
			So(scoring.Indicator(77), ShouldEqual, "🔴")
		})
	})

	Convey("Given the meal thresholds", t, func() {
		So(scoring.Meal.Bucket(25), ShouldEqual, scoring.Normal)
		So(scoring.Meal.Bucket(26), ShouldEqual, scoring.Warning)
		So(scoring.Meal.Bucket(50), ShouldEqual, scoring.Warning)
		So(scoring.Meal.Bucket(51), ShouldEqual, scoring.Critical)
	})

	Convey("Given custom thresholds", t, func() {
		th := scoring.Thresholds{NormalMax: 10, WarningMax: 20}

		Convey("Then each field bounds its own bucket", func() {
			So(th.Bucket(10), ShouldEqual, scoring.Normal)
			So(th.Bucket(10.5), ShouldEqual, scoring.Warning)
			So(th.Bucket(20), ShouldEqual, scoring.Warning)
			So(th.Bucket(20.5), ShouldEqual, scoring.Critical)
		})
	})

	Convey("Given severities", t, func() {
		So(scoring.Normal.String(), ShouldEqual, "normal")
		So(scoring.Critical.Block(), ShouldEqual, "🟥")
		So(scoring.Warning.Circle(), ShouldEqual, "🟠")
	})
}

func TestVisualBar(t *testing.T) {
	Convey("Given attendance counts", t, func() {
		Convey("When the count is below a half block", func() {
			So(scoring.VisualBar(0), ShouldEqual, "")
			So(scoring.VisualBar(4), ShouldEqual, "")
		})

		Convey("When the count has a remainder of at least five", func() {
			So(scoring.VisualBar(5), ShouldEqual, "🟢")
			So(scoring.VisualBar(27), ShouldEqual, "🟩🟩🟢")
		})

		Convey("When the running total crosses thresholds", func() {
			So(scoring.VisualBar(30), ShouldEqual, "🟩🟩🟩")
			So(scoring.VisualBar(35), ShouldEqual, "🟩🟩🟩🟠")
			So(scoring.VisualBar(50), ShouldEqual, "🟩🟩🟩🟧🟧")
			So(scoring.VisualBar(64), ShouldEqual, "🟩🟩🟩🟧🟧🟥")
			So(scoring.VisualBar(55), ShouldEqual, "🟩🟩🟩🟧🟧🔴")
		})
	})

	Convey("Given fractional scores", t, func() {
		Convey("Then bar length rounds half to even", func() {
			So(scoring.BarLength(4.5), ShouldEqual, 4)
			So(scoring.BarLength(5.5), ShouldEqual, 6)
			So(scoring.BarLength(26.5), ShouldEqual, 26)
			So(scoring.BarLength(27.5), ShouldEqual, 28)
		})
	})
}
