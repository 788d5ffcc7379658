package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bounceland/pkg/logger"
)

const percentageMultiplier = 100

// Run executes a complete simulation against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting bounceland simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("interactions", cfg.Interactions),
		logger.Float64("duplicateRate", cfg.DuplicateRate),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	client := NewClient(cfg.BaseURL, cfg.Timeout)

	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	before, err := fetchDataset(ctx, client)
	if err != nil {
		return stats, fmt.Errorf("dataset retrieval failed: %w", err)
	}
	weekIDs := before.WeekIDs()
	if len(weekIDs) == 0 {
		return stats, ErrNoWeeks
	}

	users := userIDs(uuid.NewString()[:8], cfg.Users)
	presses := generatePresses(ctx, cfg, users, weekIDs, stats)

	submitPresses(ctx, cfg, client, presses, stats)
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("simulation interrupted: %w", err)
	}

	after, err := fetchDataset(ctx, client)
	if err != nil {
		return stats, fmt.Errorf("dataset retrieval failed: %w", err)
	}
	stats.UsersVerified, err = verifyDataset(ctx, after, users, presses)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if err != nil {
		return stats, fmt.Errorf("result verification failed: %w", err)
	}
	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, c *Client) error {
	logger.Get().Info(ctx, "checking service health")
	// The probe answers with the metrics exposition; any 200 is healthy.
	if err := c.Get(ctx, "/healthz", nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, pressesPerSecond float64
	if stats.PressesSubmitted > 0 {
		successRate = float64(stats.Applied+stats.Duplicates) / float64(stats.PressesSubmitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		pressesPerSecond = float64(stats.PressesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("pressesGenerated", stats.PressesGenerated),
		logger.Int("pressesSubmitted", stats.PressesSubmitted),
		logger.Int("applied", stats.Applied),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed),
		logger.Int("usersVerified", stats.UsersVerified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("pressesPerSecond", pressesPerSecond))
}
