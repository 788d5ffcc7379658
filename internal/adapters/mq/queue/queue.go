// Package queue buffers refresh jobs between interactions and the render workers.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/pkg/metrics"
)

const defaultCapacity = 1024

// Job asks the workers to re-render a live poll.
type Job struct {
	ID         string
	Poll       model.Poll
	UserID     string
	Reason     string
	EnqueuedAt time.Time
}

// Queue accepts jobs without blocking and hands them to consumers.
type Queue interface {
	// Enqueue adds j, failing with ErrFull or ErrClosed instead of blocking.
	Enqueue(ctx context.Context, j Job) error
	// Dequeue blocks until a job is available, the queue is closed and
	// drained (ErrClosed), or ctx is done.
	Dequeue(ctx context.Context) (Job, error)
	Len() int
	Close() error
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return err
	}
	if j.EnqueuedAt.IsZero() {
		j.EnqueuedAt = time.Now()
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		q.observe()
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue(ctx context.Context) (Job, error) {
	select {
	case j, ok := <-q.jobs:
		if !ok {
			return Job{}, ErrClosed
		}
		metrics.RecordQueueDequeue()
		q.observe()
		return j, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Len returns the number of waiting jobs.
func (q *InMemoryQueue) Len() int {
	return len(q.jobs)
}

// Close stops accepting jobs. Waiting jobs can still be dequeued.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) observe() {
	size := len(q.jobs)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
