package di

import (
	"context"

	"github.com/KOMKZ/yogan-sessionguard/auth"
	"github.com/KOMKZ/yogan-sessionguard/csrf"
	"github.com/KOMKZ/yogan-sessionguard/health"
	"github.com/KOMKZ/yogan-sessionguard/jwt"
	"github.com/KOMKZ/yogan-sessionguard/logger"
	"github.com/KOMKZ/yogan-sessionguard/middleware"
	"github.com/KOMKZ/yogan-sessionguard/redis"
	"github.com/KOMKZ/yogan-sessionguard/revocation"
	"github.com/KOMKZ/yogan-sessionguard/telemetry"
	goredis "github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"
)

// Options tunes provider behaviour that does not belong in config files.
type Options struct {
	TelemetryOptions []telemetry.ManagerOption
	// RedisClient replaces the client built from config, e.g. a miniredis one.
	RedisClient goredis.UniversalClient
}

// moduleLogger prefers an injected logger.Manager over the global one.
func moduleLogger(i do.Injector, module string) *logger.CtxZapLogger {
	if mgr, err := do.Invoke[*logger.Manager](i); err == nil && mgr != nil {
		return mgr.GetLogger(module)
	}
	return logger.GetLogger(module)
}

// ProvideTelemetryManager starts the tracer and meter providers.
func ProvideTelemetryManager(cfg telemetry.Config, opts ...telemetry.ManagerOption) func(do.Injector) (*telemetry.Manager, error) {
	return func(i do.Injector) (*telemetry.Manager, error) {
		mgr := telemetry.NewManager(cfg, moduleLogger(i, "telemetry"), opts...)
		if err := mgr.Start(context.Background()); err != nil {
			return nil, err
		}
		return mgr, nil
	}
}

func ProvideMetricsRegistry(i do.Injector) (*telemetry.MetricsRegistry, error) {
	mgr, err := do.Invoke[*telemetry.Manager](i)
	if err != nil {
		return nil, err
	}
	return mgr.Registry(), nil
}

// registerMetrics attaches a provider to the registry when one is available.
func registerMetrics(i do.Injector, p telemetry.MetricsProvider) error {
	reg, err := do.Invoke[*telemetry.MetricsRegistry](i)
	if err != nil || reg == nil {
		return nil
	}
	return reg.Register(p)
}

// ProvideRedisClient builds the shared client. It yields nil when no store
// is backed by Redis.
func ProvideRedisClient(c Components, override goredis.UniversalClient) func(do.Injector) (goredis.UniversalClient, error) {
	return func(i do.Injector) (goredis.UniversalClient, error) {
		if !c.NeedsRedis() {
			return nil, nil
		}
		if override != nil {
			return override, nil
		}
		metrics := redis.NewMetrics(c.Redis.Metrics)
		if err := registerMetrics(i, metrics); err != nil {
			return nil, err
		}
		return redis.NewClient(context.Background(), c.Redis, metrics, moduleLogger(i, "redis"))
	}
}

func ProvideRevocationStore(cfg revocation.Config) func(do.Injector) (revocation.Store, error) {
	return func(i do.Injector) (revocation.Store, error) {
		client, err := do.Invoke[goredis.UniversalClient](i)
		if err != nil {
			return nil, err
		}
		return revocation.NewStore(cfg, client, moduleLogger(i, "revocation"))
	}
}

func ProvideRevocationRegistry(cfg revocation.Config) func(do.Injector) (*revocation.Registry, error) {
	return func(i do.Injector) (*revocation.Registry, error) {
		store, err := do.Invoke[revocation.Store](i)
		if err != nil {
			return nil, err
		}
		metrics := revocation.NewMetrics(cfg.Metrics)
		if err := registerMetrics(i, metrics); err != nil {
			return nil, err
		}
		return revocation.NewRegistry(store,
			revocation.WithLogger(moduleLogger(i, "revocation")),
			revocation.WithMetrics(metrics),
		), nil
	}
}

func ProvideSweeper(cfg revocation.Config) func(do.Injector) (*revocation.Sweeper, error) {
	return func(i do.Injector) (*revocation.Sweeper, error) {
		registry, err := do.Invoke[*revocation.Registry](i)
		if err != nil {
			return nil, err
		}
		return revocation.NewSweeper(registry, cfg.SweepInterval, moduleLogger(i, "revocation")), nil
	}
}

func ProvideTokenManager(cfg jwt.Config) func(do.Injector) (jwt.TokenManager, error) {
	return func(i do.Injector) (jwt.TokenManager, error) {
		metrics := jwt.NewMetrics(cfg.Metrics)
		if err := registerMetrics(i, metrics); err != nil {
			return nil, err
		}
		return jwt.NewTokenManager(&cfg, metrics, moduleLogger(i, "jwt"))
	}
}

func ProvideCSRFGuard(cfg csrf.Config) func(do.Injector) (*csrf.Guard, error) {
	return func(i do.Injector) (*csrf.Guard, error) {
		metrics := csrf.NewMetrics(cfg.Metrics)
		if err := registerMetrics(i, metrics); err != nil {
			return nil, err
		}
		return csrf.NewGuard(cfg,
			csrf.WithLogger(moduleLogger(i, "csrf")),
			csrf.WithMetrics(metrics),
		)
	}
}

func ProvideAuthMetrics(cfg auth.Config) func(do.Injector) (*auth.Metrics, error) {
	return func(i do.Injector) (*auth.Metrics, error) {
		metrics := auth.NewMetrics(cfg.Metrics)
		if err := registerMetrics(i, metrics); err != nil {
			return nil, err
		}
		return metrics, nil
	}
}

func ProvidePasswordService(cfg auth.Config) func(do.Injector) (*auth.PasswordService, error) {
	return func(i do.Injector) (*auth.PasswordService, error) {
		metrics, err := do.Invoke[*auth.Metrics](i)
		if err != nil {
			return nil, err
		}
		return auth.NewPasswordService(cfg.Password.Policy, cfg.Password.BcryptCost, metrics), nil
	}
}

// ProvideUserStore seeds the in-memory user store from config.
func ProvideUserStore(cfg auth.Config) func(do.Injector) (auth.UserStore, error) {
	return func(i do.Injector) (auth.UserStore, error) {
		passwords, err := do.Invoke[*auth.PasswordService](i)
		if err != nil {
			return nil, err
		}
		return auth.NewMemoryUserStoreFromSeeds(cfg.Users, passwords)
	}
}

func ProvideAuthService(cfg auth.Config) func(do.Injector) (*auth.Service, error) {
	return func(i do.Injector) (*auth.Service, error) {
		users, err := do.Invoke[auth.UserStore](i)
		if err != nil {
			return nil, err
		}
		tokens, err := do.Invoke[jwt.TokenManager](i)
		if err != nil {
			return nil, err
		}
		registry, err := do.Invoke[*revocation.Registry](i)
		if err != nil {
			return nil, err
		}
		passwords, err := do.Invoke[*auth.PasswordService](i)
		if err != nil {
			return nil, err
		}
		metrics, err := do.Invoke[*auth.Metrics](i)
		if err != nil {
			return nil, err
		}
		client, err := do.Invoke[goredis.UniversalClient](i)
		if err != nil {
			return nil, err
		}

		log := moduleLogger(i, "auth")
		opts := []auth.ServiceOption{
			auth.WithLogger(log),
			auth.WithMetrics(metrics),
			auth.WithPasswordService(passwords),
		}

		attempts, err := auth.NewLoginAttemptStore(cfg.LoginAttempt, client, log)
		if err != nil {
			return nil, err
		}
		if attempts != nil {
			opts = append(opts, auth.WithLoginAttemptStore(attempts))
		}

		return auth.NewService(cfg, users, tokens, registry, opts...), nil
	}
}

func ProvideHTTPMetrics(cfg middleware.HTTPMetricsConfig) func(do.Injector) (*middleware.HTTPMetrics, error) {
	return func(i do.Injector) (*middleware.HTTPMetrics, error) {
		metrics := middleware.NewHTTPMetrics(cfg)
		if err := registerMetrics(i, metrics); err != nil {
			return nil, err
		}
		return metrics, nil
	}
}

// ProvideHealth checks the revocation store and, when configured, Redis.
func ProvideHealth(cfg health.Config) func(do.Injector) (*health.Aggregator, error) {
	return func(i do.Injector) (*health.Aggregator, error) {
		registry, err := do.Invoke[*revocation.Registry](i)
		if err != nil {
			return nil, err
		}
		client, err := do.Invoke[goredis.UniversalClient](i)
		if err != nil {
			return nil, err
		}

		agg := health.NewAggregator(cfg.Timeout, moduleLogger(i, "health"))
		agg.Register(health.RevocationChecker(registry))
		if client != nil {
			agg.Register(health.RedisChecker(client))
		}
		return agg, nil
	}
}
