package health

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisChecker pings the shared Redis client.
func RedisChecker(client redis.UniversalClient) Checker {
	return CheckerFunc("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// Pinger is implemented by the revocation registry.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RevocationChecker performs a read against the revocation store.
func RevocationChecker(p Pinger) Checker {
	return CheckerFunc("revocation", p.Ping)
}
