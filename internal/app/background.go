package service

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/bounceland/pkg/logger"
	"github.com/okian/bounceland/pkg/metrics"
)

func (s *Service) metricsLoop(ctx context.Context) {
	ticker := time.NewTicker(s.metricsInterval)
	defer ticker.Stop()

	var lastNumGC uint32
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.updateDomainMetrics()

			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
			if m.NumGC > lastNumGC {
				metrics.RecordSystemGCPauseTime(float64(m.PauseNs[(m.NumGC+255)%256]) / 1e6)
				lastNumGC = m.NumGC
			}
		}
	}
}

func (s *Service) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.logger.Info(ctx, "alive, waiting for interactions",
				logger.Int("users", s.attendance.UserCount()))
		}
	}
}

func (s *Service) updateDomainMetrics() {
	s.updateBouncelandMetrics()
	s.updateMealMetrics()
}

func (s *Service) updateBouncelandMetrics() {
	metrics.UpdateUsersTotal(s.attendance.UserCount())
	metrics.ResetWeekScores()
	for week, score := range s.attendance.WeekScores() {
		metrics.UpdateWeekScore(week, score)
	}
}

func (s *Service) updateMealMetrics() {
	for day, n := range s.meal.Counts() {
		metrics.UpdateMealCount(day, n)
	}
}
