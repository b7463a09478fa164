package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sitetrack/sitetrack/internal/warehouse"
)

// TaskMirrorResync re-primes the Redis stock mirror from the database.
const TaskMirrorResync = "warehouse:mirror_resync"

// NewMirrorResyncTask constructs the scheduled task.
func NewMirrorResyncTask() *asynq.Task {
	return asynq.NewTask(TaskMirrorResync, nil, asynq.Queue(QueueDefault))
}

// MirrorResyncJob walks warehouse stock and rewrites every mirror key,
// bounding how long the mirror can stay stale after a Redis outage.
type MirrorResyncJob struct {
	store  warehouse.Store
	mirror *warehouse.Mirror
	logger *slog.Logger
}

// NewMirrorResyncJob constructs the job.
func NewMirrorResyncJob(store warehouse.Store, mirror *warehouse.Mirror, logger *slog.Logger) *MirrorResyncJob {
	return &MirrorResyncJob{store: store, mirror: mirror, logger: logger}
}

// Handle processes one resync task.
func (j *MirrorResyncJob) Handle(ctx context.Context, _ *asynq.Task) error {
	start := time.Now()
	items, err := j.store.List(ctx)
	if err != nil {
		return err
	}
	synced := 0
	for _, item := range items {
		if err := j.mirror.Sync(ctx, item.ProductID, item.Quantity); err != nil {
			j.logger.Warn("mirror resync item",
				slog.Int64("product_id", item.ProductID),
				slog.Any("error", err))
			continue
		}
		synced++
	}
	j.logger.Info("mirror resync",
		slog.Int("items", synced),
		slog.Duration("took", time.Since(start)))
	return nil
}
