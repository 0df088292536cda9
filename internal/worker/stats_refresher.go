package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/StrafeZ/quality-inspector-app/internal/repository"
	"github.com/StrafeZ/quality-inspector-app/internal/service"
)

type cohortSource interface {
	ListRecentCohorts(ctx context.Context, since time.Time) ([]repository.Cohort, error)
}

type statsComputer interface {
	CohortStats(ctx context.Context, style, color string) (service.CohortStats, error)
}

type statsCache interface {
	Set(ctx context.Context, key string, value any) error
}

// StatsRefresher periodically recomputes statistics for cohorts with recent
// inspection activity and warms the cache with the result. Read paths stay
// correct without it; it only keeps frequently viewed dashboards cheap.
type StatsRefresher struct {
	cohorts  cohortSource
	stats    statsComputer
	cache    statsCache
	interval time.Duration
	window   time.Duration
	log      *zap.Logger
}

// NewStatsRefresher creates the refresher.
func NewStatsRefresher(cohorts cohortSource, stats statsComputer, cache statsCache, interval, window time.Duration, log *zap.Logger) *StatsRefresher {
	return &StatsRefresher{
		cohorts:  cohorts,
		stats:    stats,
		cache:    cache,
		interval: interval,
		window:   window,
		log:      log,
	}
}

// Run starts the refresh loop and should be launched in its own goroutine.
func (w *StatsRefresher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("stats refresher shutting down")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsRefresher) refresh(ctx context.Context) {
	cohorts, err := w.cohorts.ListRecentCohorts(ctx, time.Now().Add(-w.window))
	if err != nil {
		w.log.Warn("list recent cohorts failed", zap.Error(err))
		return
	}
	for _, cohort := range cohorts {
		stats, err := w.stats.CohortStats(ctx, cohort.Style, cohort.Color)
		if err != nil {
			w.log.Warn("compute cohort stats failed",
				zap.String("style", cohort.Style), zap.String("color", cohort.Color), zap.Error(err))
			continue
		}
		key := service.KeyCohortStats(cohort.Style, cohort.Color)
		if err := w.cache.Set(ctx, key, stats); err != nil {
			w.log.Warn("warm stats cache failed", zap.String("key", key), zap.Error(err))
		}
	}
}
