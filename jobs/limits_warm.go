package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/okean-yachts/okean-cpq/internal/jobs"
	"github.com/okean-yachts/okean-cpq/internal/pricing/limits"
)

// LimitsWarmJob refreshes the discount limit cache so pricing decisions never
// wait on a cold fetch.
type LimitsWarmJob struct {
	Cache   *limits.Cache
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLimitsWarmJob wires dependencies for the warmup handler.
func NewLimitsWarmJob(cache *limits.Cache, logger *slog.Logger, metrics *jobmetrics.Metrics) *LimitsWarmJob {
	return &LimitsWarmJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes TaskTypeLimitsWarm tasks.
func (j *LimitsWarmJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Cache == nil {
		return errors.New("limits warm: handler not configured")
	}

	tracker := j.metrics().Track(TaskTypeLimitsWarm)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	j.Cache.Invalidate()
	set := j.Cache.Get(ctx)
	j.logger().Info("limit cache warmed",
		slog.Float64("base_max", set.Base.NoApprovalMax),
		slog.Float64("options_max", set.Options.NoApprovalMax))
	return resultErr
}

func (j *LimitsWarmJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeLimitsWarm))
	}
	return slog.Default().With(slog.String("job", TaskTypeLimitsWarm))
}

func (j *LimitsWarmJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
