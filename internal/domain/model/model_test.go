package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/bounceland/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDatasetDocument(t *testing.T) {
	Convey("Given a document written by the original bot", t, func() {
		raw := `{"users":{"11":{"name":"Alice","username":"@a","modes":["Van"],"weeks":{"2026-11-02":"Full week"}}},
			"weeks":{"2026-11-02":{"Full week":["11"],"Half week":[]}}}`

		Convey("When decoded and normalised", func() {
			var ds model.Dataset
			So(json.Unmarshal([]byte(raw), &ds), ShouldBeNil)
			ds.Normalize([]string{"2026-11-02", "2026-11-09"})

			Convey("Then defaults are filled in", func() {
				So(ds.SchemaVersion, ShouldEqual, model.SchemaVersion)
				So(ds.Users["11"].Weeks["2026-11-02"], ShouldEqual, model.FullWeek)
				So(ds.Weeks["2026-11-02"].NotReally, ShouldNotBeNil)
				So(ds.Weeks["2026-11-09"].Full, ShouldBeEmpty)
				So(ds.WeekIDs(), ShouldResemble, []string{"2026-11-02", "2026-11-09"})
			})

			Convey("Then roster categories keep their original names", func() {
				out, err := json.Marshal(ds.Weeks["2026-11-02"])
				So(err, ShouldBeNil)
				So(string(out), ShouldEqual, `{"Full week":["11"],"Half week":[],"Not really":[]}`)
			})
		})
	})

	Convey("Given choices", t, func() {
		So(model.FullWeek.Weight(), ShouldEqual, 1.0)
		So(model.HalfWeek.Weight(), ShouldEqual, 0.5)
		So(model.NotReally.Valid(), ShouldBeFalse)
		So(model.Choice("").Weight(), ShouldEqual, 0.0)
	})

	Convey("Given a cloned dataset", t, func() {
		ds := model.NewDataset([]string{"2026-11-02"})
		ds.Users["1"] = model.NewUser("A", "")
		c := ds.Clone()
		c.Users["1"].Modes = append(c.Users["1"].Modes, "Car")
		c.Weeks["2026-11-02"].Add(model.FullWeek, "1")

		Convey("Then the original is untouched", func() {
			So(ds.Users["1"].Modes, ShouldBeEmpty)
			So(ds.Weeks["2026-11-02"].Full, ShouldBeEmpty)
		})
	})
}

func TestMessageRef(t *testing.T) {
	Convey("Given message id documents", t, func() {
		Convey("When the id is numeric", func() {
			var ref model.MessageRef
			So(json.Unmarshal([]byte(`{"message_id": 1234}`), &ref), ShouldBeNil)
			So(ref.MessageID, ShouldEqual, "1234")
			So(ref.SchemaVersion, ShouldEqual, model.SchemaVersion)
		})

		Convey("When the id is a string", func() {
			var ref model.MessageRef
			So(json.Unmarshal([]byte(`{"schema_version":1,"message_id":"abc"}`), &ref), ShouldBeNil)
			So(ref.MessageID, ShouldEqual, "abc")
		})

		Convey("When the id is missing", func() {
			var ref model.MessageRef
			So(json.Unmarshal([]byte(`{}`), &ref), ShouldBeNil)
			So(ref.MessageID, ShouldBeEmpty)
		})

		Convey("When the id is malformed", func() {
			var ref model.MessageRef
			So(json.Unmarshal([]byte(`{"message_id": true}`), &ref), ShouldNotBeNil)
		})
	})
}

func TestMealPollDocument(t *testing.T) {
	Convey("Given a legacy meal document", t, func() {
		raw := `{"polls":{"Tuesday":["Bob"],"Monday":["Alice"],"Sunday":[]}}`

		Convey("When decoded", func() {
			var p model.MealPoll
			So(json.Unmarshal([]byte(raw), &p), ShouldBeNil)
			p.Normalize()

			Convey("Then days are ordered by weekday", func() {
				So(p.Days, ShouldHaveLength, 3)
				So(p.Days[0].Name, ShouldEqual, "Monday")
				So(p.Days[1].Users, ShouldResemble, []string{"Bob"})
				So(p.Days[2].Name, ShouldEqual, "Sunday")
				day, ok := p.Day("Tuesday")
				So(ok, ShouldBeTrue)
				So(day.Users, ShouldResemble, []string{"Bob"})
			})
		})
	})
}
