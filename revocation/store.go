package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/redis/go-redis/v9"
)

// Stats is the cardinality of the two registries.
type Stats struct {
	BlockedTokensCount    int `json:"blockedTokensCount"`
	InvalidatedUsersCount int `json:"invalidatedUsersCount"`
}

// Store holds blocked token ids and per-user invalidation markers.
// Implementations must treat entries past their expiry as absent even
// before Sweep removes them.
type Store interface {
	// BlockToken records id until expiresAt.
	BlockToken(ctx context.Context, id string, expiresAt time.Time) error

	IsTokenBlocked(ctx context.Context, id string) (bool, error)

	// InvalidateUser overwrites the marker for userID.
	InvalidateUser(ctx context.Context, userID string, at time.Time) error

	// UserInvalidatedAt returns the marker for userID, ok=false if none.
	UserInvalidatedAt(ctx context.Context, userID string) (at time.Time, ok bool, err error)

	// Stats counts live entries only.
	Stats(ctx context.Context) (Stats, error)

	// Sweep deletes expired entries and returns how many were removed.
	Sweep(ctx context.Context) (int, error)

	// Clear removes everything.
	Clear(ctx context.Context) error

	Close() error
}

// NewStore builds the store selected by cfg. client is only needed for
// the redis storage.
func NewStore(cfg Config, client redis.UniversalClient, log *logger.CtxZapLogger) (Store, error) {
	switch cfg.Storage {
	case StorageMemory, "":
		return NewMemoryStore(WithMarkerTTL(cfg.UserMarkerTTL)), nil
	case StorageRedis:
		if client == nil {
			return nil, fmt.Errorf("revocation storage %q requires a redis client", cfg.Storage)
		}
		return NewRedisStore(client, cfg.RedisKeyPrefix, cfg.UserMarkerTTL, log), nil
	default:
		return nil, fmt.Errorf("unknown revocation storage %q", cfg.Storage)
	}
}
