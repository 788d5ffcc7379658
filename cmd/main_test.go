package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/okian/bounceland/internal/adapters/http/api"
	"github.com/okian/bounceland/internal/adapters/repository"
	"github.com/okian/bounceland/internal/adapters/scheduler"
	"github.com/okian/bounceland/internal/config"
	"github.com/okian/bounceland/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New(context.Background())
	cfg.DataDir = t.TempDir()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "bounceland.db")
	return cfg
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given a default configuration", t, func() {
		cfg := testConfig(t)

		convey.Convey("When the file backend is selected", func() {
			store, err := openStore(cfg)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()

			convey.Convey("Then a file store is returned", func() {
				_, ok := store.(*repository.FileStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the sqlite backend is selected", func() {
			cfg.StorageBackend = config.StorageSQLite
			store, err := openStore(cfg)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()

			convey.Convey("Then a sqlite store is returned", func() {
				_, ok := store.(*repository.SQLiteStore)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})
}

func TestMealScheduler(t *testing.T) {
	convey.Convey("Given the default meal poll settings", t, func() {
		cfg := testConfig(t)
		store, err := openStore(cfg)
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = store.Close() }()
		svc := newService(cfg, store, logger.NewNop())

		convey.Convey("When the scheduler is built", func() {
			s, err := newMealScheduler(cfg, svc, logger.NewNop())

			convey.Convey("Then it fires on Saturday evening", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(s.Expression(), convey.ShouldEqual, "0 18 * * sat")
			})
		})

		convey.Convey("When the day is not a weekday", func() {
			cfg.MealPollDay = "someday"
			_, err := newMealScheduler(cfg, svc, logger.NewNop())

			convey.Convey("Then building fails", func() {
				convey.So(errors.Is(err, scheduler.ErrInvalidDay), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the timezone is unknown", func() {
			cfg.SchedulerTimezone = "Mars/Olympus_Mons"
			_, err := newMealScheduler(cfg, svc, logger.NewNop())

			convey.Convey("Then building fails", func() {
				convey.So(errors.Is(err, scheduler.ErrInvalidTimezone), convey.ShouldBeTrue)
			})
		})
	})
}

func TestMux(t *testing.T) {
	convey.Convey("Given a started service behind the mux", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		store, err := openStore(cfg)
		convey.So(err, convey.ShouldBeNil)
		defer func() { _ = store.Close() }()

		svc := newService(cfg, store, logger.NewNop())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := newMux(ctx, svc)
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		convey.Convey("Then every surface is reachable", func() {
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/bounceland/summary").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/meal/summary").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/polls/").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then a live poll is missing until posted", func() {
			convey.So(get("/live/bounceland").Code, convey.ShouldEqual, http.StatusNotFound)

			req := httptest.NewRequest(http.MethodPost, "/bounceland/post", nil)
			req.Header.Set(api.CallerHeader, "anyone")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)

			convey.So(get("/live/bounceland").Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}
