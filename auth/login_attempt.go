package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/redis/go-redis/v9"
)

// LoginAttemptStore counts failed logins per username. Each increment
// extends the window to ttl from now.
type LoginAttemptStore interface {
	GetAttempts(ctx context.Context, username string) (int, error)
	IncrementAttempts(ctx context.Context, username string, ttl time.Duration) (int, error)
	ResetAttempts(ctx context.Context, username string) error
	IsLocked(ctx context.Context, username string, maxAttempts int) (bool, error)
	Close() error
}

// RedisLoginAttemptStore keeps one counter key per username.
type RedisLoginAttemptStore struct {
	client redis.UniversalClient
	prefix string
	logger *logger.CtxZapLogger
}

func NewRedisLoginAttemptStore(client redis.UniversalClient, prefix string, log *logger.CtxZapLogger) *RedisLoginAttemptStore {
	return &RedisLoginAttemptStore{
		client: client,
		prefix: prefix,
		logger: log,
	}
}

func (s *RedisLoginAttemptStore) GetAttempts(ctx context.Context, username string) (int, error) {
	val, err := s.client.Get(ctx, s.prefix+username).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(val)
}

func (s *RedisLoginAttemptStore) IncrementAttempts(ctx context.Context, username string, ttl time.Duration) (int, error) {
	key := s.prefix + username
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (s *RedisLoginAttemptStore) ResetAttempts(ctx context.Context, username string) error {
	return s.client.Del(ctx, s.prefix+username).Err()
}

func (s *RedisLoginAttemptStore) IsLocked(ctx context.Context, username string, maxAttempts int) (bool, error) {
	attempts, err := s.GetAttempts(ctx, username)
	if err != nil {
		return false, err
	}
	return attempts >= maxAttempts, nil
}

// Close leaves the shared client open.
func (s *RedisLoginAttemptStore) Close() error {
	return nil
}

// MemoryLoginAttemptStore drops expired records when they are next touched.
type MemoryLoginAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]attemptRecord
	now      func() time.Time
}

type attemptRecord struct {
	count     int
	expiresAt time.Time
}

func NewMemoryLoginAttemptStore() *MemoryLoginAttemptStore {
	return &MemoryLoginAttemptStore{
		attempts: make(map[string]attemptRecord),
		now:      time.Now,
	}
}

func (s *MemoryLoginAttemptStore) GetAttempts(_ context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.attempts[username]
	if !ok {
		return 0, nil
	}
	if !s.now().Before(record.expiresAt) {
		delete(s.attempts, username)
		return 0, nil
	}
	return record.count, nil
}

func (s *MemoryLoginAttemptStore) IncrementAttempts(_ context.Context, username string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	record, ok := s.attempts[username]
	if !ok || !now.Before(record.expiresAt) {
		record = attemptRecord{}
	}
	record.count++
	record.expiresAt = now.Add(ttl)
	s.attempts[username] = record
	return record.count, nil
}

func (s *MemoryLoginAttemptStore) ResetAttempts(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, username)
	return nil
}

func (s *MemoryLoginAttemptStore) IsLocked(ctx context.Context, username string, maxAttempts int) (bool, error) {
	attempts, err := s.GetAttempts(ctx, username)
	if err != nil {
		return false, err
	}
	return attempts >= maxAttempts, nil
}

func (s *MemoryLoginAttemptStore) Close() error {
	return nil
}

// NewLoginAttemptStore returns nil when throttling is disabled.
func NewLoginAttemptStore(cfg LoginAttemptConfig, client redis.UniversalClient, log *logger.CtxZapLogger) (LoginAttemptStore, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Storage {
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis client is required for redis storage")
		}
		return NewRedisLoginAttemptStore(client, cfg.RedisKeyPrefix, log), nil
	case "memory", "":
		return NewMemoryLoginAttemptStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage)
	}
}
