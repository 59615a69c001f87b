package di

import (
	"github.com/KOMKZ/yogan-sessionguard/auth"
	"github.com/KOMKZ/yogan-sessionguard/csrf"
	"github.com/KOMKZ/yogan-sessionguard/health"
	"github.com/KOMKZ/yogan-sessionguard/jwt"
	"github.com/KOMKZ/yogan-sessionguard/middleware"
	"github.com/KOMKZ/yogan-sessionguard/revocation"
	"github.com/KOMKZ/yogan-sessionguard/telemetry"
	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
)

// RegisterProviders registers every component provider, lazily, by
// dependency layer.
func RegisterProviders(injector do.Injector, c Components, opts Options) {
	// Layer 0: telemetry
	do.Provide(injector, ProvideTelemetryManager(c.Telemetry, opts.TelemetryOptions...))
	do.Provide(injector, ProvideMetricsRegistry)

	// Layer 1: infrastructure
	do.Provide(injector, ProvideRedisClient(c, opts.RedisClient))
	do.Provide(injector, ProvideRevocationStore(c.Revocation))

	// Layer 2: security components
	do.Provide(injector, ProvideRevocationRegistry(c.Revocation))
	do.Provide(injector, ProvideSweeper(c.Revocation))
	do.Provide(injector, ProvideTokenManager(c.JWT))
	do.Provide(injector, ProvideCSRFGuard(c.CSRF))

	// Layer 3: auth
	do.Provide(injector, ProvideAuthMetrics(c.Auth))
	do.Provide(injector, ProvidePasswordService(c.Auth))
	do.Provide(injector, ProvideUserStore(c.Auth))
	do.Provide(injector, ProvideAuthService(c.Auth))

	// Layer 4: transport
	do.Provide(injector, ProvideHTTPMetrics(c.HTTPMetrics))
	do.Provide(injector, ProvideHealth(c.Health))
}

// Container is the resolved set of components the HTTP layer needs.
type Container struct {
	Telemetry   *telemetry.Manager
	Redis       goredis.UniversalClient
	Revocation  *revocation.Registry
	Sweeper     *revocation.Sweeper
	Tokens      jwt.TokenManager
	CSRF        *csrf.Guard
	Auth        *auth.Service
	HTTPMetrics *middleware.HTTPMetrics
	Health      *health.Aggregator
}

// Resolve invokes every provider so configuration errors surface at startup.
func Resolve(injector do.Injector) (*Container, error) {
	var (
		c   Container
		err error
	)
	if c.Telemetry, err = do.Invoke[*telemetry.Manager](injector); err != nil {
		return nil, err
	}
	if c.Redis, err = do.Invoke[goredis.UniversalClient](injector); err != nil {
		return nil, err
	}
	if c.Revocation, err = do.Invoke[*revocation.Registry](injector); err != nil {
		return nil, err
	}
	if c.Sweeper, err = do.Invoke[*revocation.Sweeper](injector); err != nil {
		return nil, err
	}
	if c.Tokens, err = do.Invoke[jwt.TokenManager](injector); err != nil {
		return nil, err
	}
	if c.CSRF, err = do.Invoke[*csrf.Guard](injector); err != nil {
		return nil, err
	}
	if c.Auth, err = do.Invoke[*auth.Service](injector); err != nil {
		return nil, err
	}
	if c.HTTPMetrics, err = do.Invoke[*middleware.HTTPMetrics](injector); err != nil {
		return nil, err
	}
	if c.Health, err = do.Invoke[*health.Aggregator](injector); err != nil {
		return nil, err
	}
	return &c, nil
}
