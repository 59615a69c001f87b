package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func validToken(t *testing.T, jti, sub string, iat time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": iat.Unix(),
		"exp": iat.Add(time.Hour).Unix(),
	}
	if jti != "" {
		claims["jti"] = jti
	}
	return signToken(t, claims)
}

// storeFactories lets the registry tests run against every store.
func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"redis": func(t *testing.T) Store {
			client, _ := newTestRedisClient(t)
			return NewRedisStore(client, "test:revocation:", 0, logger.NewNopLogger())
		},
	}
}

type failingStore struct {
	*MemoryStore
	err error
}

func (s *failingStore) IsTokenBlocked(context.Context, string) (bool, error) {
	return false, s.err
}

func (s *failingStore) UserInvalidatedAt(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, s.err
}

func (s *failingStore) BlockToken(context.Context, string, time.Time) error {
	return s.err
}

func (s *failingStore) InvalidateUser(context.Context, string, time.Time) error {
	return s.err
}

var errBoom = errors.New("boom")
