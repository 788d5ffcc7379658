package service

import (
	"time"

	"github.com/okian/bounceland/internal/domain/calendar"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithOwner restricts administrative operations to ownerID. An empty id
// disables the check.
func WithOwner(ownerID string) Option {
	return func(s *Service) {
		s.ownerID = ownerID
	}
}

// WithCalendar sets the season calendar.
func WithCalendar(c *calendar.Calendar) Option {
	return func(s *Service) {
		if c != nil {
			s.calendar = c
		}
	}
}

// WithDestination sets the chat thread the live message of poll is shown in.
func WithDestination(poll model.Poll, chatID, threadID int64) Option {
	return func(s *Service) {
		s.destinations[poll] = model.Destination{ChatID: chatID, ThreadID: threadID}
	}
}

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the refresh queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many request ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithRefreshIntervals sets the minimum spacing between live message edits.
func WithRefreshIntervals(bounceland, meal time.Duration) Option {
	return func(s *Service) {
		s.bouncelandInterval = bounceland
		s.mealInterval = meal
	}
}

// WithHeartbeat sets the interval of the liveness log line. Zero disables it.
func WithHeartbeat(interval time.Duration) Option {
	return func(s *Service) {
		s.heartbeat = interval
	}
}

// WithMetricsInterval sets how often domain gauges are refreshed.
func WithMetricsInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.metricsInterval = interval
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
