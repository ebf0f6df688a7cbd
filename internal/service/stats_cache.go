package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// StatsCache - redis-backed cache for per-user stats. A miss or a redis
// failure just falls through to the database, so lookups never fail because
// of the cache.
type StatsCache struct {
	logger *slog.Logger
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(logger *slog.Logger, client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{
		logger: logger.With("component", "stats_cache"),
		client: client,
		ttl:    ttl,
	}
}

func statsKey(userID int64) string {
	return fmt.Sprintf("stats:user:%d", userID)
}

func (that *StatsCache) Get(ctx context.Context, userID int64) (*entity.UserStats, bool) {
	response, err := that.client.Get(ctx, statsKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		that.logger.Warn("could not read stats from cache", "user_id", userID, "error", err)
		return nil, false
	}

	var stats entity.UserStats
	if err = json.Unmarshal([]byte(response), &stats); err != nil {
		that.logger.Warn("could not unmarshal cached stats", "user_id", userID, "error", err)
		return nil, false
	}

	return &stats, true
}

func (that *StatsCache) Set(ctx context.Context, userID int64, stats *entity.UserStats) {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		that.logger.Warn("could not marshal stats", "user_id", userID, "error", err)
		return
	}

	if err = that.client.Set(ctx, statsKey(userID), statsJSON, that.ttl).Err(); err != nil {
		that.logger.Warn("could not cache stats", "user_id", userID, "error", err)
	}
}

// Invalidate - drops cached stats, e.g. once a game of those users completes.
func (that *StatsCache) Invalidate(ctx context.Context, userIDs ...int64) {
	if len(userIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		keys = append(keys, statsKey(userID))
	}

	if err := that.client.Del(ctx, keys...).Err(); err != nil {
		that.logger.Warn("could not invalidate stats cache", "error", err)
	}
}
