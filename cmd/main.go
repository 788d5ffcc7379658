package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/okian/bounceland/internal/adapters/http/api"
	"github.com/okian/bounceland/internal/adapters/http/site"
	"github.com/okian/bounceland/internal/adapters/http/swagger"
	"github.com/okian/bounceland/internal/adapters/repository"
	"github.com/okian/bounceland/internal/adapters/scheduler"
	service "github.com/okian/bounceland/internal/app"
	"github.com/okian/bounceland/internal/config"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "bounceland exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "closing store failed", logger.Error(err))
		}
	}()

	svc := newService(cfg, store, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(ctx, "service shutdown failed", logger.Error(err))
		}
	}()

	mealPoll, err := newMealScheduler(cfg, svc, log)
	if err != nil {
		return err
	}
	mealPoll.Start(ctx)
	log.Info(ctx, "meal poll scheduled",
		logger.String("cron", mealPoll.Expression()),
		logger.String("timezone", cfg.SchedulerTimezone),
		logger.Any("next", mealPoll.Next(time.Now())))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// openStore opens the document store selected by cfg.StorageBackend.
func openStore(cfg *config.Config) (repository.DocumentStore, error) {
	switch cfg.StorageBackend {
	case config.StorageSQLite:
		return repository.OpenSQLite(cfg.SQLitePath)
	default:
		return repository.NewFileStore(cfg.DataDir)
	}
}

func newService(cfg *config.Config, store repository.DocumentStore, log logger.Logger) *service.Service {
	return service.New(store,
		service.WithLogger(log.Named("service")),
		service.WithOwner(cfg.OwnerID),
		service.WithDestination(model.PollBounceland, cfg.ChatID, cfg.ThreadIDBounceland),
		service.WithDestination(model.PollMeal, cfg.ChatID, cfg.ThreadIDMeal),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithRefreshIntervals(cfg.BouncelandUpdateInterval(), cfg.MealUpdateInterval()),
	)
}

// newMealScheduler reposts the meal poll for the following week.
func newMealScheduler(cfg *config.Config, svc *service.Service, log logger.Logger) (*scheduler.Scheduler, error) {
	return scheduler.New(cfg.MealPollDay, cfg.MealPollHour, cfg.MealPollMinute,
		func(ctx context.Context) error {
			_, err := svc.PostMealPoll(ctx)
			return err
		},
		scheduler.WithTimezone(cfg.SchedulerTimezone),
		scheduler.WithLogger(log.Named("scheduler")),
	)
}

// newMux registers the API, the docs and the poll pages.
func newMux(ctx context.Context, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return mux
}
