package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/bounceland/internal/adapters/scheduler"
	"github.com/okian/bounceland/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func noop(context.Context) error { return nil }

func TestSpec(t *testing.T) {
	Convey("Given a day and a time", t, func() {
		Convey("When the day is an abbreviation", func() {
			spec, err := scheduler.Spec("sat", 18, 0)
			So(err, ShouldBeNil)
			So(spec, ShouldEqual, "0 18 * * sat")
		})

		Convey("When the day is spelled out or numeric", func() {
			spec, err := scheduler.Spec(" Sunday ", 9, 30)
			So(err, ShouldBeNil)
			So(spec, ShouldEqual, "30 9 * * sun")

			spec, err = scheduler.Spec("1", 7, 5)
			So(err, ShouldBeNil)
			So(spec, ShouldEqual, "5 7 * * 1")
		})

		Convey("When the input is invalid", func() {
			_, err := scheduler.Spec("someday", 18, 0)
			So(errors.Is(err, scheduler.ErrInvalidDay), ShouldBeTrue)
			_, err = scheduler.Spec("sat", 24, 0)
			So(errors.Is(err, scheduler.ErrInvalidTime), ShouldBeTrue)
			_, err = scheduler.Spec("sat", 18, 60)
			So(errors.Is(err, scheduler.ErrInvalidTime), ShouldBeTrue)
		})
	})
}

func TestScheduler(t *testing.T) {
	Convey("Given a Saturday 18:00 Berlin schedule", t, func() {
		s, err := scheduler.New("sat", 18, 0, noop,
			scheduler.WithTimezone("Europe/Berlin"),
			scheduler.WithLogger(logger.NewNop()))
		So(err, ShouldBeNil)
		So(s.Expression(), ShouldEqual, "0 18 * * sat")

		Convey("Then the next activation is the coming Saturday evening in Berlin", func() {
			berlin, err := time.LoadLocation("Europe/Berlin")
			So(err, ShouldBeNil)
			// Wednesday
			from := time.Date(2026, time.November, 4, 12, 0, 0, 0, berlin)
			next := s.Next(from)
			So(next.Equal(time.Date(2026, time.November, 7, 18, 0, 0, 0, berlin)), ShouldBeTrue)
			So(next.Weekday(), ShouldEqual, time.Saturday)
		})

		Convey("Then starting and cancelling does not fire the job", func() {
			ctx, cancel := context.WithCancel(context.Background())
			s.Start(ctx)
			cancel()
		})
	})

	Convey("Given an unknown timezone", t, func() {
		_, err := scheduler.New("sat", 18, 0, noop, scheduler.WithTimezone("Mars/Olympus"), scheduler.WithLogger(logger.NewNop()))
		So(errors.Is(err, scheduler.ErrInvalidTimezone), ShouldBeTrue)
	})
}
