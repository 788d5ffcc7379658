package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/bounceland/internal/adapters/mq/queue"
	worker "github.com/okian/bounceland/internal/adapters/mq/worker"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/internal/domain/throttle"
	logging "github.com/okian/bounceland/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type stubRenderer struct {
	err error
}

func (r stubRenderer) Render(_ context.Context, poll model.Poll) (model.Update, error) {
	if r.err != nil {
		return model.Update{}, r.err
	}
	return model.Update{Poll: poll, Text: "rendered " + string(poll)}, nil
}

type recordingPresenter struct {
	mu      sync.Mutex
	updates []model.Update
	err     error
}

func (p *recordingPresenter) Publish(_ context.Context, u model.Update) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.updates = append(p.updates, u)
	return nil
}

func (p *recordingPresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updates)
}

func TestWorkerProcess(t *testing.T) {
	ctx := context.Background()
	log := logging.NewNop()

	Convey("Given a worker with a presenter", t, func() {
		presenter := &recordingPresenter{}
		q := queue.NewInMemoryQueue()

		Convey("When a job is processed", func() {
			w := worker.NewWorker(q, stubRenderer{}, presenter, worker.WithLogger(log))
			err := w.Process(ctx, queue.Job{ID: "1", Poll: model.PollBounceland})

			Convey("Then the rendered view is published", func() {
				So(err, ShouldBeNil)
				So(presenter.updates, ShouldHaveLength, 1)
				So(presenter.updates[0].Text, ShouldEqual, "rendered bounceland")
			})
		})

		Convey("When refreshes come faster than the interval", func() {
			now := time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)
			limiter := throttle.New(
				throttle.WithClock(func() time.Time { return now }),
				throttle.WithInterval(string(model.PollMeal), 5*time.Second),
			)
			w := worker.NewWorker(q, stubRenderer{}, presenter, worker.WithLogger(log), worker.WithLimiter(limiter))

			So(w.Process(ctx, queue.Job{Poll: model.PollMeal}), ShouldBeNil)
			So(w.Process(ctx, queue.Job{Poll: model.PollMeal}), ShouldBeNil)
			So(w.Process(ctx, queue.Job{Poll: model.PollBounceland}), ShouldBeNil)
			now = now.Add(6 * time.Second)
			So(w.Process(ctx, queue.Job{Poll: model.PollMeal}), ShouldBeNil)

			Convey("Then only the throttled poll is suppressed", func() {
				So(presenter.count(), ShouldEqual, 3)
			})
		})

		Convey("When a burst is throttled with trailing refreshes enabled", func() {
			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			limiter := throttle.New(throttle.WithInterval(string(model.PollBounceland), 150*time.Millisecond))
			w := worker.NewWorker(q, stubRenderer{}, presenter,
				worker.WithLogger(log),
				worker.WithLimiter(limiter),
				worker.WithTrailingRefresh(q),
			)

			So(w.Process(ctx, queue.Job{Poll: model.PollBounceland}), ShouldBeNil)
			So(w.Process(ctx, queue.Job{Poll: model.PollBounceland}), ShouldBeNil)
			So(w.Process(ctx, queue.Job{Poll: model.PollBounceland}), ShouldBeNil)
			So(presenter.count(), ShouldEqual, 1)
			go w.Run(runCtx)

			Convey("Then one trailing refresh is published after the interval", func() {
				deadline := time.Now().Add(2 * time.Second)
				for presenter.count() < 2 && time.Now().Before(deadline) {
					time.Sleep(10 * time.Millisecond)
				}
				So(presenter.count(), ShouldEqual, 2)

				time.Sleep(300 * time.Millisecond)
				So(presenter.count(), ShouldEqual, 2)
			})
		})

		Convey("When rendering fails", func() {
			w := worker.NewWorker(q, stubRenderer{err: errors.New("boom")}, presenter, worker.WithLogger(log))
			err := w.Process(ctx, queue.Job{Poll: model.PollMeal})
			So(err, ShouldNotBeNil)
			So(presenter.count(), ShouldEqual, 0)
		})

		Convey("When the poll was never posted", func() {
			presenter.err = worker.ErrNotPosted
			w := worker.NewWorker(q, stubRenderer{}, presenter, worker.WithLogger(log))
			So(w.Process(ctx, queue.Job{Poll: model.PollMeal}), ShouldBeNil)
		})

		Convey("When publishing fails", func() {
			presenter.err = errors.New("offline")
			w := worker.NewWorker(q, stubRenderer{}, presenter, worker.WithLogger(log))
			So(w.Process(ctx, queue.Job{Poll: model.PollMeal}), ShouldNotBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool on a queue with jobs", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		presenter := &recordingPresenter{}
		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		pool := worker.NewPool(3, q, stubRenderer{}, presenter, worker.WithLogger(logging.NewNop()))
		pool.Start(ctx)

		for i := 0; i < 10; i++ {
			So(q.Enqueue(ctx, queue.Job{Poll: model.PollBounceland}), ShouldBeNil)
		}

		Convey("When the pool shuts down", func() {
			err := pool.Shutdown(ctx)

			Convey("Then every queued job was published", func() {
				So(err, ShouldBeNil)
				So(presenter.count(), ShouldEqual, 10)
			})
		})
	})

	Convey("Given a pool with a pending trailing refresh", t, func() {
		ctx := context.Background()
		presenter := &recordingPresenter{}
		q := queue.NewInMemoryQueue()
		limiter := throttle.New(throttle.WithInterval(string(model.PollMeal), 200*time.Millisecond))
		pool := worker.NewPool(1, q, stubRenderer{}, presenter,
			worker.WithLogger(logging.NewNop()),
			worker.WithLimiter(limiter),
			worker.WithTrailingRefresh(q),
		)
		pool.Start(ctx)
		So(q.Enqueue(ctx, queue.Job{Poll: model.PollMeal}), ShouldBeNil)
		So(q.Enqueue(ctx, queue.Job{Poll: model.PollMeal}), ShouldBeNil)

		Convey("When the pool shuts down before the interval ends", func() {
			time.Sleep(50 * time.Millisecond)
			So(pool.Shutdown(ctx), ShouldBeNil)

			Convey("Then the pending refresh is cancelled", func() {
				time.Sleep(300 * time.Millisecond)
				So(presenter.count(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a pool whose context is cancelled", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		q := queue.NewInMemoryQueue()
		w := worker.NewWorker(q, stubRenderer{}, &recordingPresenter{}, worker.WithLogger(logging.NewNop()))
		go w.Run(ctx)
		cancel()

		Convey("Then the worker stops", func() {
			select {
			case <-w.Done():
			case <-time.After(time.Second):
				t.Fatal("worker did not stop")
			}
		})
	})
}
