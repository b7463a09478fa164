package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotCache stores reconciled snapshots per project in Redis.
// Entries are invalidated on every ledger write, so a hit is always
// consistent with the log. Cache failures degrade to recomputation.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewSnapshotCache constructs a RedisSnapshotCache.
func NewSnapshotCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisSnapshotCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSnapshotCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached snapshots, if present.
func (c *RedisSnapshotCache) Get(ctx context.Context, projectID int64) ([]Snapshot, bool) {
	data, err := c.client.Get(ctx, c.key(projectID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("snapshot cache get", slog.Any("error", err))
		}
		return nil, false
	}
	var snapshots []Snapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		c.logger.Warn("snapshot cache decode", slog.Any("error", err))
		return nil, false
	}
	return snapshots, true
}

// Set stores snapshots for a project.
func (c *RedisSnapshotCache) Set(ctx context.Context, projectID int64, snapshots []Snapshot) {
	data, err := json.Marshal(snapshots)
	if err != nil {
		c.logger.Warn("snapshot cache encode", slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, c.key(projectID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("snapshot cache set", slog.Any("error", err))
	}
}

// Invalidate drops the cached snapshots for a project.
func (c *RedisSnapshotCache) Invalidate(ctx context.Context, projectID int64) {
	if err := c.client.Del(ctx, c.key(projectID)).Err(); err != nil {
		c.logger.Warn("snapshot cache invalidate", slog.Any("error", err))
	}
}

func (c *RedisSnapshotCache) key(projectID int64) string {
	return "project_inventory:" + strconv.FormatInt(projectID, 10)
}
