package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Status  string `json:"status"`
	SavedTo string `json:"saved_to"`
}

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewRedisCache(rdb)
}

func TestRedisCache_SetGetDel(t *testing.T) {
	ctx := context.Background()
	_, c := setupMiniRedis(t)

	require.NoError(t, c.SetJSON(ctx, "job:1", payload{Status: "done", SavedTo: "/n.md"}, time.Minute))

	var got payload
	hit, err := c.GetJSON(ctx, "job:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "done", got.Status)

	require.NoError(t, c.Del(ctx, "job:1"))
	hit, err = c.GetJSON(ctx, "job:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, c := setupMiniRedis(t)

	require.NoError(t, c.SetJSON(ctx, "job:2", payload{Status: "queued"}, time.Second))
	mr.FastForward(2 * time.Second)

	var got payload
	hit, err := c.GetJSON(ctx, "job:2", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisCache_CorruptValueIsMiss(t *testing.T) {
	ctx := context.Background()
	mr, c := setupMiniRedis(t)
	require.NoError(t, mr.Set("scribely:job:3", "{not json"))

	var got payload
	hit, err := c.GetJSON(ctx, "job:3", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists("scribely:job:3"))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetJSON(ctx, "k", payload{Status: "processing"}, time.Minute))

	var got payload
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "processing", got.Status)

	now = now.Add(2 * time.Minute)
	hit, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.SetJSON(ctx, "forever", payload{Status: "done"}, 0))
	require.NoError(t, c.Del(ctx, "forever"))
	hit, _ = c.GetJSON(ctx, "forever", &got)
	assert.False(t, hit)
}

func TestRedisCache_KeysArePrefixed(t *testing.T) {
	mr, c := setupMiniRedis(t)
	require.NoError(t, c.SetJSON(context.Background(), "job:4", payload{Status: "done"}, time.Minute))
	assert.True(t, mr.Exists("scribely:job:4"))
	assert.False(t, mr.Exists("job:4"))
}
