// Package service implements the Bounceland and meal polls on top of the
// domain packages and provides the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bounceland/internal/adapters/mq/queue"
	"github.com/okian/bounceland/internal/adapters/mq/worker"
	"github.com/okian/bounceland/internal/adapters/presenter"
	"github.com/okian/bounceland/internal/adapters/repository"
	"github.com/okian/bounceland/internal/domain/attendance"
	"github.com/okian/bounceland/internal/domain/calendar"
	"github.com/okian/bounceland/internal/domain/dedupe"
	"github.com/okian/bounceland/internal/domain/meal"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/internal/domain/throttle"
	"github.com/okian/bounceland/pkg/logger"
	"github.com/okian/bounceland/pkg/metrics"
)

const (
	defaultWorkerCount     = 2
	defaultQueueSize       = 1024
	defaultDedupeSize      = 10000
	defaultMetricsInterval = 15 * time.Second
	defaultHeartbeat       = time.Minute
)

// Service owns both polls. Mutations of a poll are serialized from the
// in-memory change through persistence; reads go straight to the domain
// stores.
type Service struct {
	mu sync.RWMutex

	// Core components
	documents  repository.DocumentStore
	calendar   *calendar.Calendar
	attendance *attendance.Store
	meal       *meal.Poll
	deduper    dedupe.Deduper
	live       *presenter.Live
	refreshes  queue.Queue
	workerPool *worker.Pool

	// bounceland and meal writes are serialized independently
	bouncelandWrites sync.Mutex
	mealWrites       sync.Mutex

	// Configuration
	ownerID            string
	workerCount        int
	queueSize          int
	dedupeSize         int
	bouncelandInterval time.Duration
	mealInterval       time.Duration
	heartbeat          time.Duration
	metricsInterval    time.Duration
	destinations       map[model.Poll]model.Destination

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service persisting its documents in documents.
func New(documents repository.DocumentStore, opts ...Option) *Service {
	s := &Service{
		documents:       documents,
		workerCount:     defaultWorkerCount,
		queueSize:       defaultQueueSize,
		dedupeSize:      defaultDedupeSize,
		heartbeat:       defaultHeartbeat,
		metricsInterval: defaultMetricsInterval,
		destinations:    map[model.Poll]model.Destination{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.calendar == nil {
		s.calendar = calendar.New()
	}

	s.attendance = attendance.NewStore(s.calendar.SeasonWeekIDs())
	s.meal = meal.NewPoll()
	s.deduper = dedupe.New(dedupe.WithMaxSize(s.dedupeSize))
	liveOpts := []presenter.Option{presenter.WithLogger(s.logger.Named("presenter"))}
	for poll, d := range s.destinations {
		liveOpts = append(liveOpts, presenter.WithDestination(poll, d.ChatID, d.ThreadID))
	}
	s.live = presenter.NewLive(documents, liveOpts...)
	return s
}

// Start loads the persisted documents, creating missing ones, and starts the
// refresh workers and background loops.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting bounceland service...")

	if err := s.loadBounceland(ctx); err != nil {
		return err
	}
	if err := s.loadMeal(ctx); err != nil {
		return err
	}
	if err := s.live.Restore(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.refreshes = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	limiter := throttle.New(
		throttle.WithInterval(string(model.PollBounceland), s.bouncelandInterval),
		throttle.WithInterval(string(model.PollMeal), s.mealInterval),
	)
	s.workerPool = worker.NewPool(s.workerCount, s.refreshes, s, s.live,
		worker.WithLimiter(limiter),
		worker.WithTrailingRefresh(s.refreshes),
		worker.WithLogger(s.logger.Named("worker")),
	)
	s.workerPool.Start(runCtx)

	s.updateDomainMetrics()
	go s.metricsLoop(runCtx)
	if s.heartbeat > 0 {
		go s.heartbeatLoop(runCtx)
	}

	s.started = true
	s.logger.Info(ctx, "bounceland service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("users", s.attendance.UserCount()),
	)
	return nil
}

// Stop drains the refresh queue and stops the background loops.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping bounceland service...")

	err := s.workerPool.Shutdown(ctx)
	s.cancel()
	s.started = false

	s.logger.Info(ctx, "bounceland service stopped")
	return err
}

func (s *Service) loadBounceland(ctx context.Context) error {
	weekIDs := s.calendar.SeasonWeekIDs()
	var ds model.Dataset
	found, err := s.documents.Load(ctx, repository.KeyBounceland, &ds)
	if err != nil {
		return fmt.Errorf("load bounceland: %w", err)
	}
	if !found {
		fresh := model.NewDataset(weekIDs)
		if err := s.documents.Save(ctx, repository.KeyBounceland, fresh); err != nil {
			return fmt.Errorf("create bounceland: %w", err)
		}
		s.attendance.Reset(weekIDs)
		s.logger.Info(ctx, "created empty bounceland dataset", logger.Int("weeks", len(weekIDs)))
		return nil
	}
	s.attendance.Restore(&ds, weekIDs)
	return nil
}

func (s *Service) loadMeal(ctx context.Context) error {
	var mp model.MealPoll
	found, err := s.documents.Load(ctx, repository.KeyMeal, &mp)
	if err != nil {
		return fmt.Errorf("load meal poll: %w", err)
	}
	if !found {
		empty := meal.Fresh(nil)
		if err := s.documents.Save(ctx, repository.KeyMeal, empty); err != nil {
			return fmt.Errorf("create meal poll: %w", err)
		}
		s.meal.Restore(empty)
		return nil
	}
	s.meal.Restore(&mp)
	return nil
}

// stageBounceland applies mutate to a copy of the dataset, saves the copy and
// only then installs it. On error the store is left as it was. Callers hold
// bouncelandWrites.
func (s *Service) stageBounceland(ctx context.Context, mutate func(*attendance.Store) error) error {
	weekIDs := s.calendar.SeasonWeekIDs()
	staged := attendance.NewStore(nil)
	staged.Restore(s.attendance.Snapshot(), weekIDs)
	if err := mutate(staged); err != nil {
		return err
	}

	ds := staged.Snapshot()
	if err := s.documents.Save(ctx, repository.KeyBounceland, ds); err != nil {
		return fmt.Errorf("save bounceland: %w", err)
	}
	s.attendance.Restore(ds, weekIDs)
	return nil
}

// stageMeal is stageBounceland for the meal poll. Callers hold mealWrites.
func (s *Service) stageMeal(ctx context.Context, mutate func(*meal.Poll) error) error {
	staged := meal.NewPoll()
	staged.Restore(s.meal.Snapshot())
	if err := mutate(staged); err != nil {
		return err
	}

	mp := staged.Snapshot()
	if err := s.documents.Save(ctx, repository.KeyMeal, mp); err != nil {
		return fmt.Errorf("save meal poll: %w", err)
	}
	s.meal.Restore(mp)
	return nil
}

// refresh queues a re-render of poll. A full queue drops the job; the next
// one renders the latest state anyway.
func (s *Service) refresh(ctx context.Context, poll model.Poll, userID, reason string) {
	s.mu.RLock()
	q := s.refreshes
	s.mu.RUnlock()
	if q == nil {
		return
	}

	err := q.Enqueue(ctx, queue.Job{
		ID:         uuid.NewString(),
		Poll:       poll,
		UserID:     userID,
		Reason:     reason,
		EnqueuedAt: time.Now(),
	})
	switch {
	case err == nil:
	case errors.Is(err, queue.ErrFull):
		metrics.RecordRefresh(string(poll), "dropped")
		s.logger.Debug(ctx, "refresh dropped, queue full", logger.String("poll", string(poll)))
	default:
		s.logger.Warn(ctx, "refresh not queued", logger.String("poll", string(poll)), logger.Error(err))
	}
}

func (s *Service) authorize(caller string) error {
	if s.ownerID != "" && caller != s.ownerID {
		return ErrForbidden
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"dedupeCount": s.deduper.Size(),
		"users":       s.attendance.UserCount(),
		"weeks":       len(s.attendance.WeekScores()),
		"mealDays":    len(s.meal.Counts()),
	}
	if s.refreshes != nil {
		stats["queueLength"] = s.refreshes.Len()
	}
	for _, poll := range model.Polls {
		if id, ok := s.live.MessageID(poll); ok {
			stats[string(poll)+"MessageId"] = id
		}
	}
	return stats
}
