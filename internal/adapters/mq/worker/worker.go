// Package worker renders queued refresh jobs and publishes them to the presentation layer.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/bounceland/internal/adapters/mq/queue"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/pkg/logger"
	"github.com/okian/bounceland/pkg/metrics"
)

const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 10 * time.Second
)

// ErrNotPosted is returned by a Presenter when the poll has no live message yet.
var ErrNotPosted = errors.New("poll has no live message")

// Queue is where workers take jobs from.
type Queue interface {
	Dequeue(ctx context.Context) (queue.Job, error)
}

// Renderer produces the neutral view of a poll.
type Renderer interface {
	Render(ctx context.Context, poll model.Poll) (model.Update, error)
}

// Presenter shows a rendered poll to the group.
type Presenter interface {
	Publish(ctx context.Context, u model.Update) error
}

// Limiter decides whether a poll may be refreshed now.
type Limiter interface {
	Allow(key string) bool
	Remaining(key string) time.Duration
}

type unlimited struct{}

func (unlimited) Allow(string) bool { return true }

func (unlimited) Remaining(string) time.Duration { return 0 }

// Enqueuer puts a job back on the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, j queue.Job) error
}

// ReasonTrailing marks a refresh queued when a throttle interval ends.
const ReasonTrailing = "trailing"

// trailer keeps at most one deferred refresh per poll, so the last change of
// a burst is rendered once the interval ends.
type trailer struct {
	queue   Enqueuer
	mu      sync.Mutex
	pending map[model.Poll]*time.Timer
	stopped bool
}

func newTrailer(q Enqueuer) *trailer {
	return &trailer{queue: q, pending: map[model.Poll]*time.Timer{}}
}

// schedule requeues j after wait. It reports false when a refresh of the
// same poll is already pending.
func (t *trailer) schedule(j queue.Job, wait time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	if _, ok := t.pending[j.Poll]; ok {
		return false
	}
	t.pending[j.Poll] = time.AfterFunc(wait, func() {
		t.mu.Lock()
		delete(t.pending, j.Poll)
		stopped := t.stopped
		t.mu.Unlock()
		if stopped {
			return
		}

		j.Reason = ReasonTrailing
		j.EnqueuedAt = time.Now()
		if err := t.queue.Enqueue(context.Background(), j); err != nil && !errors.Is(err, queue.ErrClosed) {
			metrics.RecordRefresh(string(j.Poll), "dropped")
		}
	})
	return true
}

func (t *trailer) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for poll, timer := range t.pending {
		timer.Stop()
		delete(t.pending, poll)
	}
}

// Worker consumes refresh jobs one at a time.
type Worker struct {
	name      string
	queue     Queue
	renderer  Renderer
	presenter Presenter
	limiter   Limiter
	trailer   *trailer
	logger    logger.Logger
	done      chan struct{}
}

// NewWorker creates a worker.
func NewWorker(q Queue, r Renderer, p Presenter, opts ...Option) *Worker {
	w := &Worker{
		name:      "worker",
		queue:     q,
		renderer:  r,
		presenter: p,
		limiter:   unlimited{},
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until the queue is closed and drained or ctx is done.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	for {
		j, err := w.queue.Dequeue(ctx)
		if err != nil {
			if !errors.Is(err, queue.ErrClosed) && ctx.Err() == nil {
				w.logger.Error(ctx, "dequeue failed", logger.Error(err))
			}
			return
		}
		if err := w.Process(ctx, j); err != nil {
			w.logger.Warn(ctx, "refresh failed",
				logger.String("job_id", j.ID),
				logger.String("poll", string(j.Poll)),
				logger.Error(err))
		}
	}
}

// Done is closed when Run returns.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Process renders and publishes the poll of j unless the limiter suppresses
// it. A suppressed refresh is deferred to the end of the interval when
// trailing refreshes are enabled and none is pending for the poll.
func (w *Worker) Process(ctx context.Context, j queue.Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	poll := string(j.Poll)
	if !w.limiter.Allow(poll) {
		if w.trailer != nil && w.trailer.schedule(j, w.limiter.Remaining(poll)) {
			metrics.RecordRefresh(poll, "deferred")
			w.logger.Debug(ctx, "refresh deferred", logger.String("poll", poll), logger.String("reason", j.Reason))
			return nil
		}
		metrics.RecordRefresh(poll, "throttled")
		w.logger.Debug(ctx, "refresh throttled", logger.String("poll", poll), logger.String("reason", j.Reason))
		return nil
	}

	u, err := w.renderer.Render(ctx, j.Poll)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "render_error")
		return fmt.Errorf("render %s: %w", poll, err)
	}
	if err := w.presenter.Publish(ctx, u); err != nil {
		if errors.Is(err, ErrNotPosted) {
			metrics.RecordRefresh(poll, "skipped")
			return nil
		}
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "publish_error")
		return fmt.Errorf("publish %s: %w", poll, err)
	}
	metrics.RecordRefresh(poll, "published")
	return nil
}

// Pool runs several workers on one queue.
type Pool struct {
	workers []*Worker
	queue   Queue
	trailer *trailer
	logger  logger.Logger
	wg      sync.WaitGroup
}

// NewPool creates count workers sharing q, r, p and the options.
func NewPool(count int, q Queue, r Renderer, p Presenter, opts ...Option) *Pool {
	if count < 1 {
		count = defaultWorkerCount
	}
	pool := &Pool{
		workers: make([]*Worker, count),
		queue:   q,
	}
	for i := range pool.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewWorker(q, r, p, wopts...)
	}
	pool.logger = pool.workers[0].logger
	pool.trailer = pool.workers[0].trailer
	return pool
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	metrics.UpdateWorkerCount(len(p.workers))
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Shutdown cancels pending trailing refreshes, closes the queue and waits
// for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if p.trailer != nil {
		p.trailer.stop()
	}
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timeout := time.NewTimer(poolShutdownTimeout)
	defer timeout.Stop()
	select {
	case <-done:
		metrics.UpdateWorkerCount(0)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown: %w", ctx.Err())
	case <-timeout.C:
		return errors.New("worker shutdown timed out")
	}
}
