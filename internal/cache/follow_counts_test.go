package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCountCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCountCache(client, time.Minute), mr
}

func TestRedisCountCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	_, found, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, models.FollowCounts{UserID: 1, Followers: 5, Following: 2}))
	got, found, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.FollowCounts{UserID: 1, Followers: 5, Following: 2}, got)
	assert.Equal(t, time.Minute, mr.TTL("social:follow_counts:1"))

	require.NoError(t, c.Invalidate(ctx, 1, 2))
	_, found, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCountCacheCorruptValue(t *testing.T) {
	c, mr := newTestCache(t)
	mr.HSet("social:follow_counts:9", "followers", "many", "following", "1")

	_, _, err := c.Get(context.Background(), 9)
	assert.Error(t, err)
}

func TestNopCountCacheAlwaysMisses(t *testing.T) {
	var c CountCache = NopCountCache{}
	require.NoError(t, c.Set(context.Background(), models.FollowCounts{UserID: 1, Followers: 3}))
	_, found, err := c.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, found)
}
