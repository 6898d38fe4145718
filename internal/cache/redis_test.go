package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/lawlens/internal/model"
)

func newMockRedis(t *testing.T) (*RedisCache, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return NewRedisCache(db, "test:", time.Hour), mock
}

func TestRedisCache_GetHit(t *testing.T) {
	c, mock := newMockRedis(t)
	mock.ExpectGet("test:k").SetVal("value")

	got, ok := c.Get(context.Background(), "k")
	require.True(t, ok)
	assert.Equal(t, "value", string(got))
}

func TestRedisCache_GetMiss(t *testing.T) {
	c, mock := newMockRedis(t)
	mock.ExpectGet("test:k").RedisNil()

	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestRedisCache_GetError(t *testing.T) {
	c, mock := newMockRedis(t)
	mock.ExpectGet("test:k").SetErr(errors.New("connection refused"))

	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestRedisCache_SetDefaultTTL(t *testing.T) {
	c, mock := newMockRedis(t)
	mock.ExpectSet("test:k", []byte("v"), time.Hour).SetVal("OK")

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
}

func TestRedisCache_SetError(t *testing.T) {
	c, mock := newMockRedis(t)
	mock.ExpectSet("test:k", []byte("v"), time.Minute).SetErr(errors.New("oom"))

	err := c.Set(context.Background(), "k", []byte("v"), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set")
}

func TestRedisCache_TTL(t *testing.T) {
	c, mock := newMockRedis(t)
	mock.ExpectTTL("test:k").SetVal(90 * time.Second)
	mock.ExpectTTL("test:persistent").SetVal(-1)
	mock.ExpectTTL("test:missing").SetVal(-2)

	remaining, ok := c.TTL(context.Background(), "k")
	require.True(t, ok)
	assert.Equal(t, 90*time.Second, remaining)

	remaining, ok = c.TTL(context.Background(), "persistent")
	require.True(t, ok)
	assert.Zero(t, remaining)

	_, ok = c.TTL(context.Background(), "missing")
	assert.False(t, ok)
}

func TestRedisCache_Delete(t *testing.T) {
	c, mock := newMockRedis(t)
	mock.ExpectDel("test:k").SetVal(1)

	require.NoError(t, c.Delete(context.Background(), "k"))
}

func TestRedisCache_ClearScansPrefix(t *testing.T) {
	c, mock := newMockRedis(t)
	mock.ExpectScan(0, "test:*", 100).SetVal([]string{"test:a", "test:b"}, 7)
	mock.ExpectDel("test:a", "test:b").SetVal(2)
	mock.ExpectScan(7, "test:*", 100).SetVal(nil, 0)

	require.NoError(t, c.Clear(context.Background()))
}

func TestRedisCache_Ping(t *testing.T) {
	c, mock := newMockRedis(t)
	mock.ExpectPing().SetVal("PONG")

	assert.NoError(t, c.Ping(context.Background()))
}

// TestRedisCache_Live runs against a real server when LAWLENS_TEST_REDIS_ADDR is set.
func TestRedisCache_Live(t *testing.T) {
	addr := os.Getenv("LAWLENS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LAWLENS_TEST_REDIS_ADDR not set")
	}

	c := NewRedisCacheFromConfig(model.CacheConfig{RedisAddr: addr, Prefix: "lawlens-test:", TTL: time.Minute})
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "live", []byte("v"), time.Minute))
	got, ok := c.Get(ctx, "live")
	require.True(t, ok)
	assert.Equal(t, "v", string(got))
	require.NoError(t, c.Clear(ctx))
}
