package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPermissionsWarmup refreshes cached permission sets.
	TaskPermissionsWarmup = "permissions:warmup"

	warmupJobName = "permissions_warmup"
)

// PermissionsWarmupPayload scopes a warmup run. An empty Actors list warms
// every actor known to the store and rotates the cache version first.
type PermissionsWarmupPayload struct {
	Actors []string `json:"actors,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// NewPermissionsWarmupTask builds the asynq task for a warmup run.
func NewPermissionsWarmupTask(payload PermissionsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jobs: marshal warmup payload: %w", err)
	}
	return asynq.NewTask(TaskPermissionsWarmup, data, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
