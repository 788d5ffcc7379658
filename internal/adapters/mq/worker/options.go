package worker

import (
	"github.com/okian/bounceland/pkg/logger"
)

// Option applies a configuration option to a Worker.
type Option func(*Worker)

// WithName sets the worker name used in logs.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithLimiter throttles refreshes per poll.
func WithLimiter(l Limiter) Option {
	return func(w *Worker) {
		if l != nil {
			w.limiter = l
		}
	}
}

// WithTrailingRefresh requeues a throttled refresh on q when its interval
// ends. Workers built from the same option share the pending set.
func WithTrailingRefresh(q Enqueuer) Option {
	t := newTrailer(q)
	return func(w *Worker) {
		if q != nil {
			w.trailer = t
		}
	}
}
