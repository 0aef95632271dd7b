package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatsWarmup recomputes the cached todo statistics.
	TaskStatsWarmup = "stats:warmup"
)

// StatsWarmupPayload describes why a warmup was requested.
type StatsWarmupPayload struct {
	Trigger string `json:"trigger"`
}

// NewStatsWarmupTask constructs an Asynq task.
func NewStatsWarmupTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(StatsWarmupPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatsWarmup, data), nil
}
