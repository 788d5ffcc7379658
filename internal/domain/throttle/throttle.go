// Package throttle limits how often a keyed action may run.
package throttle

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// Option applies a configuration option to the Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock.
func WithClock(clock Clock) Option {
	return func(l *Limiter) {
		if clock != nil {
			l.now = clock
		}
	}
}

// WithInterval sets the minimum spacing for key.
func WithInterval(key string, interval time.Duration) Option {
	return func(l *Limiter) {
		l.intervals[key] = interval
	}
}

// Limiter allows an action per key at most once per interval. Keys without
// an interval are never limited.
type Limiter struct {
	mu        sync.Mutex
	now       Clock
	intervals map[string]time.Duration
	last      map[string]time.Time
}

// New creates a limiter.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		now:       time.Now,
		intervals: map[string]time.Duration{},
		last:      map[string]time.Time{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow reports whether the action for key may run now and, if so, records it.
// An action is allowed when strictly more than the interval has passed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	interval := l.intervals[key]
	if interval <= 0 {
		return true
	}
	now := l.now()
	if last, ok := l.last[key]; ok && now.Sub(last) <= interval {
		return false
	}
	l.last[key] = now
	return true
}

// Remaining returns how long until Allow would next succeed for key, or zero
// when it would succeed now.
func (l *Limiter) Remaining(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	interval := l.intervals[key]
	last, ok := l.last[key]
	if interval <= 0 || !ok {
		return 0
	}
	elapsed := l.now().Sub(last)
	if elapsed > interval {
		return 0
	}
	return interval - elapsed + time.Nanosecond
}

// Reset forgets the last run of key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.last, key)
	l.mu.Unlock()
}
