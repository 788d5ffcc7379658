// Package scheduler triggers the weekly meal poll on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/bounceland/pkg/logger"
	"github.com/okian/bounceland/pkg/metrics"
)

var (
	// ErrInvalidDay is returned for a day of week cron cannot understand.
	ErrInvalidDay = errors.New("invalid day of week")
	// ErrInvalidTime is returned for an hour or minute out of range.
	ErrInvalidTime = errors.New("invalid time of day")
	// ErrInvalidTimezone is returned when the location cannot be loaded.
	ErrInvalidTimezone = errors.New("invalid timezone")
)

var dayNames = map[string]string{
	"mon": "mon", "monday": "mon",
	"tue": "tue", "tuesday": "tue",
	"wed": "wed", "wednesday": "wed",
	"thu": "thu", "thursday": "thu",
	"fri": "fri", "friday": "fri",
	"sat": "sat", "saturday": "sat",
	"sun": "sun", "sunday": "sun",
}

// Job is the work fired on every tick.
type Job func(ctx context.Context) error

// Option applies a configuration option to a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTimezone sets the IANA location the schedule is evaluated in.
func WithTimezone(name string) Option {
	return func(s *Scheduler) { s.timezone = name }
}

// Scheduler runs a single job weekly at a fixed day and time.
type Scheduler struct {
	spec     string
	timezone string
	job      Job
	logger   logger.Logger

	cron     *cron.Cron
	schedule cron.Schedule
}

// Spec builds the five field cron expression for day at hour:minute.
func Spec(day string, hour, minute int) (string, error) {
	d, ok := dayNames[strings.ToLower(strings.TrimSpace(day))]
	if !ok {
		n, err := strconv.Atoi(strings.TrimSpace(day))
		if err != nil || n < 0 || n > 6 {
			return "", fmt.Errorf("%w: %q", ErrInvalidDay, day)
		}
		d = strconv.Itoa(n)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, d), nil
}

// New creates a scheduler firing job every week on day at hour:minute.
func New(day string, hour, minute int, job Job, opts ...Option) (*Scheduler, error) {
	spec, err := Spec(day, hour, minute)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{spec: spec, timezone: "UTC", job: job}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("scheduler")
	}

	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidTimezone, s.timezone, err)
	}
	s.schedule, err = cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", spec, err)
	}
	s.cron = cron.New(cron.WithLocation(loc))
	return s, nil
}

// Expression returns the cron expression in use.
func (s *Scheduler) Expression() string { return s.spec }

// Next returns the first activation after t in the configured timezone.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.cron.Location()))
}

// Start registers the job and runs the cron loop until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Schedule(s.schedule, cron.FuncJob(func() { s.fire(ctx) }))
	s.cron.Start()
	s.logger.Info(ctx, "scheduler started",
		logger.String("spec", s.spec),
		logger.String("timezone", s.timezone),
		logger.String("next", s.Next(time.Now()).Format(time.RFC3339)))

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		s.logger.Info(context.Background(), "scheduler stopped")
	}()
}

func (s *Scheduler) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Info(ctx, "scheduled job firing", logger.String("spec", s.spec))
	if err := s.job(ctx); err != nil {
		metrics.RecordErrorByComponent("scheduler", "job_failed")
		s.logger.Error(ctx, "scheduled job failed", logger.Error(err))
	}
}
