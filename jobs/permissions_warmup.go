package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-comercial/internal/jobs"
	"github.com/odyssey-erp/odyssey-comercial/internal/permissions"
)

// PermissionWarmer is the part of the permission service the warmup job drives.
type PermissionWarmer interface {
	Warm(ctx context.Context) (int, error)
	Reload(ctx context.Context, actor string) (permissions.Set, error)
}

// PermissionsWarmupJob reloads permission sets into the shared cache. Named
// actors are read from storage even when a cached copy exists.
type PermissionsWarmupJob struct {
	warmer  PermissionWarmer
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewPermissionsWarmupJob wires the warmup handler.
func NewPermissionsWarmupJob(warmer PermissionWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *PermissionsWarmupJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionsWarmupJob{warmer: warmer, logger: logger, metrics: metrics}
}

// Handle processes TaskPermissionsWarmup tasks.
func (j *PermissionsWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.warmer == nil {
		return errors.New("permissions warmup: handler not configured")
	}
	var payload PermissionsWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("permissions warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	tracker := j.metrics.Track(warmupJobName)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger.With(slog.String("reason", payload.Reason))
	if len(payload.Actors) == 0 {
		warmed, err := j.warmer.Warm(ctx)
		tracker.Processed(warmed)
		if err != nil {
			logger.Error("warm permission cache", slog.Int("warmed", warmed), slog.Any("error", err))
			return err
		}
		logger.Info("permission cache warmed", slog.Int("warmed", warmed))
		return nil
	}

	warmed := 0
	for _, actor := range payload.Actors {
		if _, err := j.warmer.Reload(ctx, actor); err != nil {
			if errors.Is(err, permissions.ErrNotFound) {
				logger.Warn("skip unknown actor", slog.String("actor", actor))
				continue
			}
			tracker.Processed(warmed)
			logger.Error("warm actor permissions", slog.String("actor", actor), slog.Any("error", err))
			return err
		}
		warmed++
	}
	tracker.Processed(warmed)
	logger.Info("permission cache warmed", slog.Int("warmed", warmed), slog.Int("requested", len(payload.Actors)))
	return nil
}
