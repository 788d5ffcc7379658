package meal_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/bounceland/internal/domain/calendar"
	"github.com/okian/bounceland/internal/domain/meal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPoll(t *testing.T) {
	Convey("Given a fresh poll for next week", t, func() {
		days := calendar.NextWeekDays(time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC))
		p := meal.NewPoll()
		p.Restore(meal.Fresh(days))

		Convey("Then it has seven empty days", func() {
			snap := p.Snapshot()
			So(snap.Days, ShouldHaveLength, 7)
			So(snap.Days[0].Name, ShouldEqual, "Monday")
			So(snap.Days[0].Date, ShouldEqual, "19.10.2026")
			So(snap.Days[6].Name, ShouldEqual, "Sunday")
		})

		Convey("Then the text lists every day with a dash", func() {
			text := p.Text()
			So(text, ShouldStartWith, meal.Header)
			So(text, ShouldContainSubstring, "🟩 *Monday* — 0\n–\n\n")
		})

		Convey("When a user toggles a day", func() {
			joined, err := p.Toggle("Tuesday", "Alice")
			So(err, ShouldBeNil)
			So(joined, ShouldBeTrue)

			Convey("Then they are listed and their button is checked", func() {
				So(p.Counts()["Tuesday"], ShouldEqual, 1)
				So(p.Text(), ShouldContainSubstring, "🟩 *Tuesday* — 1\n- Alice\n\n")
				v := p.View("Alice")
				So(v.Buttons[1].Label, ShouldEqual, "✅ Tuesday (20.10.2026)")
				So(v.Buttons[0].Label, ShouldEqual, "⬜ Monday (19.10.2026)")
				So(p.View("").Buttons[1].Selected, ShouldBeFalse)
			})

			Convey("And toggling again removes them", func() {
				joined, err := p.Toggle("Tuesday", "Alice")
				So(err, ShouldBeNil)
				So(joined, ShouldBeFalse)
				So(p.Counts()["Tuesday"], ShouldEqual, 0)
			})
		})

		Convey("When a day is crowded", func() {
			for i := 0; i < 26; i++ {
				_, err := p.Toggle("Friday", fmt.Sprintf("u%d", i))
				So(err, ShouldBeNil)
			}
			So(p.Text(), ShouldContainSubstring, "🟧 *Friday* — 26")
		})

		Convey("When the day is unknown", func() {
			_, err := p.Toggle("Funday", "Alice")
			So(errors.Is(err, meal.ErrUnknownDay), ShouldBeTrue)
		})
	})
}
