package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/tasktrack/tasktrack/internal/jobs"
	"github.com/tasktrack/tasktrack/internal/stats"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Warmer recomputes and stores the statistics summary.
type Warmer interface {
	Warm(ctx context.Context) (stats.Summary, error)
}

// StatsWarmupJob pre-populates the admin statistics cache.
type StatsWarmupJob struct {
	Stats   Warmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
	clock   func() time.Time
}

// NewStatsWarmupJob wires dependencies for the warmup handler.
func NewStatsWarmupJob(warmer Warmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *StatsWarmupJob {
	return &StatsWarmupJob{
		Stats:   warmer,
		Logger:  logger,
		Metrics: metrics,
		Timeout: 30 * time.Second,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes stats warmup tasks.
func (j *StatsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Stats == nil {
		return errors.New("stats warmup: handler not configured")
	}
	var payload StatsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Trigger == "" {
		payload.Trigger = "cron"
	}

	tracker := j.metrics().Track(TaskStatsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("trigger", payload.Trigger))
	start := j.now()

	runCtx, cancel := context.WithTimeout(ctx, j.Timeout)
	defer cancel()
	sum, err := j.Stats.Warm(runCtx)
	if err != nil {
		resultErr = err
		logger.Error("warm todo stats", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed stats warmup",
		slog.Int("todos", sum.Total),
		slog.Int("owners", len(sum.ByUser)),
		slog.Duration("duration", j.now().Sub(start)))
	return resultErr
}

func (j *StatsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStatsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskStatsWarmup))
}

func (j *StatsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *StatsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
