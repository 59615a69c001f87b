package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_TokenExpiresNatively(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedisClient(t)
	s := NewRedisStore(client, "sg:", 0, logger.NewNopLogger())

	require.NoError(t, s.BlockToken(ctx, "jti-1", time.Now().Add(time.Minute)))
	assert.True(t, mr.Exists("sg:token:jti-1"))

	blocked, err := s.IsTokenBlocked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, blocked)

	mr.FastForward(2 * time.Minute)
	blocked, err = s.IsTokenBlocked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, blocked)

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRedisStore_ExpiredTokenNotWritten(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedisClient(t)
	s := NewRedisStore(client, "sg:", 0, logger.NewNopLogger())

	require.NoError(t, s.BlockToken(ctx, "old", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists("sg:token:old"))
}

func TestRedisStore_UserMarker(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedisClient(t)
	s := NewRedisStore(client, "sg:", time.Hour, logger.NewNopLogger())

	_, ok, err := s.UserInvalidatedAt(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.UnixMilli(1_700_000_000_123)
	require.NoError(t, s.InvalidateUser(ctx, "u", at))

	got, ok, err := s.UserInvalidatedAt(ctx, "u")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(got))
	assert.Equal(t, time.Hour, mr.TTL("sg:user:u"))

	mr.FastForward(time.Hour)
	_, ok, err = s.UserInvalidatedAt(ctx, "u")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_CorruptMarker(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedisClient(t)
	s := NewRedisStore(client, "sg:", 0, logger.NewNopLogger())

	require.NoError(t, mr.Set("sg:user:u", "garbage"))
	_, _, err := s.UserInvalidatedAt(ctx, "u")
	assert.Error(t, err)
}

func TestRedisStore_StatsAndClearRespectPrefix(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestRedisClient(t)
	s := NewRedisStore(client, "sg:", 0, logger.NewNopLogger())

	require.NoError(t, mr.Set("unrelated", "1"))
	for _, id := range []string{"a", "b"} {
		require.NoError(t, s.BlockToken(ctx, id, time.Now().Add(time.Hour)))
	}
	require.NoError(t, s.InvalidateUser(ctx, "u", time.Now()))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{BlockedTokensCount: 2, InvalidatedUsersCount: 1}, stats)

	require.NoError(t, s.Clear(ctx))
	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
	assert.True(t, mr.Exists("unrelated"))
	assert.NoError(t, s.Close())
}

func TestRedisStore_ConnectionFailure(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	s := NewRedisStore(client, "sg:", 0, logger.NewNopLogger())
	mr.Close()

	_, err = s.IsTokenBlocked(ctx, "a")
	assert.Error(t, err)
	assert.Error(t, s.BlockToken(ctx, "a", time.Now().Add(time.Hour)))
	_, err = s.Stats(ctx)
	assert.Error(t, err)

	// the registry denies rather than allowing through
	r := newTestRegistry(s)
	err = r.Check(ctx, &Claims{TokenID: "a", Subject: "u", IssuedAt: time.Now()})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestNewStore(t *testing.T) {
	client, _ := newTestRedisClient(t)

	s, err := NewStore(Config{Storage: StorageMemory}, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(Config{Storage: StorageRedis, RedisKeyPrefix: "x:"}, client, logger.NewNopLogger())
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)

	_, err = NewStore(Config{Storage: StorageRedis}, nil, nil)
	assert.Error(t, err)

	_, err = NewStore(Config{Storage: "etcd"}, nil, nil)
	assert.Error(t, err)
}
