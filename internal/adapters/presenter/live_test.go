package presenter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/bounceland/internal/adapters/mq/worker"
	"github.com/okian/bounceland/internal/adapters/presenter"
	"github.com/okian/bounceland/internal/adapters/repository"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLive(t *testing.T) {
	ctx := context.Background()

	Convey("Given a live presenter over a file store", t, func() {
		store, err := repository.NewFileStore(t.TempDir())
		So(err, ShouldBeNil)
		ids := []string{"msg-1", "msg-2"}
		next := 0
		live := presenter.NewLive(store,
			presenter.WithLogger(logger.NewNop()),
			presenter.WithDestination(model.PollMeal, -100, 7),
			presenter.WithIDGenerator(func() string { id := ids[next]; next++; return id }))

		Convey("When publishing before anything was posted", func() {
			err := live.Publish(ctx, model.Update{Poll: model.PollMeal, Text: "x"})
			So(errors.Is(err, worker.ErrNotPosted), ShouldBeTrue)
			_, ok := live.Latest(model.PollMeal)
			So(ok, ShouldBeFalse)
		})

		Convey("When a poll is posted", func() {
			id, err := live.Post(ctx, model.Update{Poll: model.PollMeal, Text: "first"})
			So(err, ShouldBeNil)
			So(id, ShouldEqual, "msg-1")

			Convey("Then the message id is persisted", func() {
				var ref model.MessageRef
				found, err := store.Load(ctx, repository.KeyMealMessage, &ref)
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
				So(ref.MessageID, ShouldEqual, "msg-1")
			})

			Convey("And publishing edits that message", func() {
				So(live.Publish(ctx, model.Update{Poll: model.PollMeal, Text: "second"}), ShouldBeNil)
				u, ok := live.Latest(model.PollMeal)
				So(ok, ShouldBeTrue)
				So(u.Text, ShouldEqual, "second")
				So(u.MessageID, ShouldEqual, "msg-1")
				So(u.Destination, ShouldResemble, model.Destination{ChatID: -100, ThreadID: 7})
			})

			Convey("And a restarted presenter knows the message", func() {
				again := presenter.NewLive(store, presenter.WithLogger(logger.NewNop()))
				So(again.Restore(ctx), ShouldBeNil)
				id, ok := again.MessageID(model.PollMeal)
				So(ok, ShouldBeTrue)
				So(id, ShouldEqual, "msg-1")
				So(again.Publish(ctx, model.Update{Poll: model.PollMeal}), ShouldBeNil)
			})

			Convey("And reposting replaces the live message", func() {
				id, err := live.Post(ctx, model.Update{Poll: model.PollMeal, Text: "new week"})
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "msg-2")
			})
		})

		Convey("When the poll is unknown", func() {
			_, err := live.Post(ctx, model.Update{Poll: "weather"})
			So(errors.Is(err, presenter.ErrUnknownPoll), ShouldBeTrue)
		})
	})
}
