package revocation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const scanBatch = 500

// RedisStore shares the registries between instances through Redis.
// Token entries carry a TTL up to the token's exp, so Redis expires them
// natively. User markers store unix milliseconds.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	markerTTL time.Duration
	logger    *logger.CtxZapLogger
}

// NewRedisStore does not take ownership of client; Close leaves it open.
func NewRedisStore(client redis.UniversalClient, keyPrefix string, markerTTL time.Duration, log *logger.CtxZapLogger) *RedisStore {
	if log == nil {
		log = logger.GetLogger("revocation")
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		markerTTL: markerTTL,
		logger:    log,
	}
}

func (s *RedisStore) BlockToken(ctx context.Context, id string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// already dead, and a zero TTL would mean "never expire" to Redis
		return nil
	}

	key := s.tokenKey(id)
	if err := s.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		s.logger.ErrorCtx(ctx, "failed to block token", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("block token: %w", err)
	}
	s.logger.DebugCtx(ctx, "token blocked", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (s *RedisStore) IsTokenBlocked(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, s.tokenKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) InvalidateUser(ctx context.Context, userID string, at time.Time) error {
	key := s.userKey(userID)
	value := strconv.FormatInt(at.UnixMilli(), 10)
	if err := s.client.Set(ctx, key, value, s.markerTTL).Err(); err != nil {
		s.logger.ErrorCtx(ctx, "failed to invalidate user", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("invalidate user: %w", err)
	}
	return nil
}

func (s *RedisStore) UserInvalidatedAt(ctx context.Context, userID string) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, s.userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get user marker: %w", err)
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse user marker %q: %w", raw, err)
	}
	return time.UnixMilli(ms), true, nil
}

// Stats scans the key space. SCAN may return a key twice while Redis is
// rehashing, so counts are approximate on a busy server.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	tokens, err := s.countKeys(ctx, s.tokenKey("*"))
	if err != nil {
		return Stats{}, err
	}
	users, err := s.countKeys(ctx, s.userKey("*"))
	if err != nil {
		return Stats{}, err
	}
	return Stats{BlockedTokensCount: tokens, InvalidatedUsersCount: users}, nil
}

// Sweep is a no-op: Redis expires keys itself.
func (s *RedisStore) Sweep(context.Context) (int, error) {
	return 0, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	for _, pattern := range []string{s.tokenKey("*"), s.userKey("*")} {
		if err := s.scan(ctx, pattern, func(keys []string) error {
			return s.client.Del(ctx, keys...).Err()
		}); err != nil {
			return fmt.Errorf("clear %s: %w", pattern, err)
		}
	}
	return nil
}

func (s *RedisStore) Close() error {
	return nil
}

func (s *RedisStore) countKeys(ctx context.Context, pattern string) (int, error) {
	total := 0
	err := s.scan(ctx, pattern, func(keys []string) error {
		total += len(keys)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", pattern, err)
	}
	return total, nil
}

func (s *RedisStore) scan(ctx context.Context, pattern string, fn func([]string) error) error {
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *RedisStore) tokenKey(id string) string {
	return s.keyPrefix + "token:" + id
}

func (s *RedisStore) userKey(userID string) string {
	return s.keyPrefix + "user:" + userID
}
