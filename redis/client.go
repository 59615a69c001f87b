// Package redis builds the Redis client shared by the revocation store and
// the login attempt store.
package redis

import (
	"context"
	"fmt"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewClient connects according to cfg and pings once. metrics may be nil.
// The caller owns the returned client and must Close it.
func NewClient(ctx context.Context, cfg Config, metrics *Metrics, log *logger.CtxZapLogger) (redis.UniversalClient, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis config: %w", err)
	}
	if log == nil {
		log = logger.GetLogger("redis")
	}

	var client redis.UniversalClient
	switch cfg.Mode {
	case "cluster":
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        cfg.Addrs,
			Password:     cfg.Password,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	default:
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Addrs[0],
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			MaxRetries:   cfg.MaxRetries,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	}
	if metrics != nil {
		client.AddHook(NewMetricsHook(metrics))
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.DebugCtx(ctx, "redis connected",
		zap.String("mode", cfg.Mode),
		zap.Strings("addrs", cfg.Addrs))
	return client, nil
}
