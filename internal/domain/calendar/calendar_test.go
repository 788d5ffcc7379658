package calendar_test

import (
	"testing"
	"time"

	"github.com/okian/bounceland/internal/domain/calendar"
	. "github.com/smartystreets/goconvey/convey"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSeasonWeeks(t *testing.T) {
	Convey("Given today in 2026", t, func() {
		weeks := calendar.SeasonWeeksFor(date(2026, time.March, 14))

		Convey("Then the season starts on the first Monday on or after Nov 1", func() {
			So(weeks[0], ShouldEqual, date(2026, time.November, 2))
			So(weeks[0].Weekday(), ShouldEqual, time.Monday)
		})

		Convey("Then the season ends on the last Monday not after Apr 30 of the next year", func() {
			last := weeks[len(weeks)-1]
			So(last, ShouldEqual, date(2027, time.April, 26))
		})

		Convey("Then weeks are strictly increasing with 7-day spacing", func() {
			for i := 1; i < len(weeks); i++ {
				So(weeks[i].Sub(weeks[i-1]), ShouldEqual, 7*24*time.Hour)
			}
		})
	})

	Convey("Given Nov 1 falls on a Monday", t, func() {
		weeks := calendar.SeasonWeeksFor(date(2027, time.January, 1))

		Convey("Then Nov 1 is the first week", func() {
			So(weeks[0], ShouldEqual, date(2027, time.November, 1))
		})
	})

	Convey("Given a calendar with a fixed clock", t, func() {
		cal := calendar.New(calendar.WithClock(func() time.Time {
			return time.Date(2026, time.October, 15, 23, 30, 0, 0, time.UTC)
		}), calendar.WithLocation(time.UTC))

		Convey("Then it derives the season from the clock", func() {
			So(cal.Today(), ShouldEqual, date(2026, time.October, 15))
			ids := cal.SeasonWeekIDs()
			So(ids[0], ShouldEqual, "2026-11-02")
			So(len(ids), ShouldEqual, len(cal.SeasonWeeks()))
		})
	})
}

func TestLabels(t *testing.T) {
	Convey("Given week start dates", t, func() {
		Convey("When formatting the week label", func() {
			So(calendar.WeekLabel(date(2026, time.November, 2)), ShouldEqual, "02.11.-08.11.")
			So(calendar.WeekLabel(date(2026, time.December, 28)), ShouldEqual, "28.12.-03.01.")
		})

		Convey("When formatting the month index label", func() {
			So(calendar.MonthIndexLabel(date(2026, time.November, 2)), ShouldEqual, "Nov1")
			So(calendar.MonthIndexLabel(date(2026, time.November, 9)), ShouldEqual, "Nov2")
			So(calendar.MonthIndexLabel(date(2026, time.December, 7)), ShouldEqual, "Dec1")
			So(calendar.MonthIndexLabel(date(2026, time.November, 30)), ShouldEqual, "Nov5")
		})

		Convey("When the date is not a Monday", func() {
			So(calendar.MonthIndexLabel(date(2026, time.November, 1)), ShouldEqual, "Nov1")
			So(calendar.MonthIndexLabel(date(2026, time.November, 11)), ShouldEqual, "Nov2")
		})

		Convey("When rendering a label from a week id", func() {
			So(calendar.WeekLabelForID("2026-11-09"), ShouldEqual, "09.11.-15.11.")
			So(calendar.WeekLabelForID("garbage"), ShouldEqual, "garbage")
		})
	})
}

func TestWeekID(t *testing.T) {
	Convey("Given a Monday", t, func() {
		monday := date(2026, time.November, 2)

		Convey("Then its id round trips", func() {
			id := calendar.WeekID(monday)
			So(id, ShouldEqual, "2026-11-02")
			parsed, err := calendar.ParseWeekID(id)
			So(err, ShouldBeNil)
			So(parsed, ShouldEqual, monday)
		})

		Convey("Then malformed ids are rejected", func() {
			_, err := calendar.ParseWeekID("02.11.-08.11.")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestNextWeekDays(t *testing.T) {
	Convey("Given a Saturday", t, func() {
		days := calendar.NextWeekDays(date(2026, time.October, 17))

		Convey("Then the next week runs Monday through Sunday", func() {
			So(days, ShouldHaveLength, 7)
			So(days[0], ShouldEqual, date(2026, time.October, 19))
			So(days[6], ShouldEqual, date(2026, time.October, 25))
			So(days[6].Weekday(), ShouldEqual, time.Sunday)
		})
	})

	Convey("Given a Monday", t, func() {
		days := calendar.NextWeekDays(date(2026, time.October, 19))

		Convey("Then the following Monday starts the week", func() {
			So(days[0], ShouldEqual, date(2026, time.October, 26))
		})
	})
}
