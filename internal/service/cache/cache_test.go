package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type payload struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func newRedisService(t *testing.T) (*RedisService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisService(client, zap.NewNop()), mr
}

func TestRedisServiceRoundTrip(t *testing.T) {
	svc, mr := newRedisService(t)
	ctx := context.Background()

	var got payload
	found, err := svc.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, svc.Set(ctx, "k", payload{Name: "kim", Score: 82}, time.Minute))
	assert.True(t, mr.Exists("insight:cache:k"))

	found, err = svc.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "kim", Score: 82}, got)

	mr.FastForward(2 * time.Minute)
	found, err = svc.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisServiceDel(t *testing.T) {
	svc, mr := newRedisService(t)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "k", payload{Name: "a"}, 0))
	require.NoError(t, svc.Del(ctx, "k"))
	assert.False(t, mr.Exists("insight:cache:k"))
}

func TestRedisServiceErrorsWhenServerGone(t *testing.T) {
	svc, mr := newRedisService(t)
	mr.Close()

	_, err := svc.Get(context.Background(), "k", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get failed")
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(RedisConfig{Host: mr.Host(), Port: mustPort(t, mr)}, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return port
}

func TestMemoryServiceTTL(t *testing.T) {
	svc := NewMemoryService()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "short", payload{Name: "a"}, time.Minute))
	require.NoError(t, svc.Set(ctx, "forever", payload{Name: "b"}, 0))

	var got payload
	found, err := svc.Get(ctx, "short", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a", got.Name)

	now = now.Add(time.Minute)
	found, _ = svc.Get(ctx, "short", &got)
	assert.False(t, found)

	require.NoError(t, svc.Set(ctx, "short2", payload{}, time.Second))
	now = now.Add(time.Hour)
	assert.Equal(t, 1, svc.Sweep())
	assert.Equal(t, 1, svc.Len())
}

func TestMemoryServiceReturnsCopies(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	value := &payload{Name: "kim"}
	require.NoError(t, svc.Set(ctx, "k", value, 0))
	value.Name = "changed"

	var got payload
	_, err := svc.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.Equal(t, "kim", got.Name)
}
