package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 集成测试需要 TEST_REDIS_ADDR 指向可用的 Redis
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("需要Redis服务器，跳过测试")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis 不可用: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestLedgerKey(t *testing.T) {
	assert.Equal(t, "cdr:processed:abc", ledgerKey("abc"))
}

func TestNewLedger_DefaultTTL(t *testing.T) {
	l := NewLedger(nil, zap.NewNop(), 0, "test")
	assert.Equal(t, DefaultLedgerTTL, l.ttl)
}

func TestLedger_EmptyKey(t *testing.T) {
	l := NewLedger(nil, zap.NewNop(), time.Minute, "test")
	_, err := l.Claim(context.Background(), "")
	assert.ErrorIs(t, err, errEmptyKey)
	assert.ErrorIs(t, l.Release(context.Background(), ""), errEmptyKey)
}

func TestLedger_ClaimOnce(t *testing.T) {
	rdb := testRedis(t)
	l := NewLedger(rdb, zap.NewNop(), time.Minute, "test")
	ctx := context.Background()
	digest := uuid.NewString()
	t.Cleanup(func() { _ = l.Release(ctx, digest) })

	first, err := l.Claim(ctx, digest)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := l.Claim(ctx, digest)
	require.NoError(t, err)
	assert.False(t, again)

	seen, err := l.Seen(ctx, digest)
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, l.Release(ctx, digest))
	first, err = l.Claim(ctx, digest)
	require.NoError(t, err)
	assert.True(t, first, "released key can be claimed again")
}
