package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const followCountsKeyPrefix = "social:follow_counts:"

// CountCache caches the follower/following totals of a user.
type CountCache interface {
	// Get returns (counts, true, nil) on hit and (zero, false, nil) on miss.
	Get(ctx context.Context, userID uint) (models.FollowCounts, bool, error)
	Set(ctx context.Context, counts models.FollowCounts) error
	Invalidate(ctx context.Context, userIDs ...uint) error
}

// RedisCountCache stores counts as a hash per user.
type RedisCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCountCache(client *redis.Client, ttl time.Duration) *RedisCountCache {
	return &RedisCountCache{client: client, ttl: ttl}
}

func followCountsKey(userID uint) string {
	return followCountsKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

func (c *RedisCountCache) Get(ctx context.Context, userID uint) (models.FollowCounts, bool, error) {
	vals, err := c.client.HMGet(ctx, followCountsKey(userID), "followers", "following").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.FollowCounts{}, false, nil
		}
		return models.FollowCounts{}, false, fmt.Errorf("redis get follow counts: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return models.FollowCounts{}, false, nil
	}

	followers, err := parseCount(vals[0])
	if err != nil {
		return models.FollowCounts{}, false, err
	}
	following, err := parseCount(vals[1])
	if err != nil {
		return models.FollowCounts{}, false, err
	}
	return models.FollowCounts{UserID: userID, Followers: followers, Following: following}, true, nil
}

func (c *RedisCountCache) Set(ctx context.Context, counts models.FollowCounts) error {
	key := followCountsKey(counts.UserID)
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "followers", counts.Followers, "following", counts.Following)
		if c.ttl > 0 {
			p.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set follow counts: %w", err)
	}
	return nil
}

func (c *RedisCountCache) Invalidate(ctx context.Context, userIDs ...uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = followCountsKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis invalidate follow counts: %w", err)
	}
	return nil
}

func parseCount(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected follow count type %T", v)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse follow count: %w", err)
	}
	return n, nil
}

// NopCountCache always misses. Used when Redis is not configured.
type NopCountCache struct{}

func (NopCountCache) Get(context.Context, uint) (models.FollowCounts, bool, error) {
	return models.FollowCounts{}, false, nil
}

func (NopCountCache) Set(context.Context, models.FollowCounts) error { return nil }

func (NopCountCache) Invalidate(context.Context, ...uint) error { return nil }

var (
	_ CountCache = (*RedisCountCache)(nil)
	_ CountCache = NopCountCache{}
)
