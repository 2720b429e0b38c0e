package stores

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultPruneSchedule runs retention once an hour.
const DefaultPruneSchedule = "@hourly"

// Prune deletes traces older than maxAge and logs the result.
func Prune(ctx context.Context, store TraceStore, maxAge time.Duration, logger *log.Logger) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	n, err := store.PruneOlderThan(ctx, cutoff)
	if err != nil {
		if logger != nil {
			logger.Printf("trace retention failed: %v", err)
		}
		return 0, err
	}
	if logger != nil && n > 0 {
		logger.Printf("pruned %d traces older than %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}

// StartRetention schedules Prune on a standard cron spec (or descriptor like
// "@hourly") and starts the scheduler. Stop the returned cron on shutdown.
func StartRetention(store TraceStore, schedule string, maxAge time.Duration, logger *log.Logger) (*cron.Cron, error) {
	if maxAge <= 0 {
		return nil, fmt.Errorf("trace retention must be positive, got %s", maxAge)
	}
	if schedule == "" {
		schedule = DefaultPruneSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, _ = Prune(ctx, store, maxAge, logger)
	}); err != nil {
		return nil, fmt.Errorf("failed to schedule trace retention: %w", err)
	}
	c.Start()
	return c, nil
}
