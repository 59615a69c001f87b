package di

import (
	"github.com/KOMKZ/yogan-sessionguard/auth"
	"github.com/KOMKZ/yogan-sessionguard/csrf"
	"github.com/KOMKZ/yogan-sessionguard/health"
	"github.com/KOMKZ/yogan-sessionguard/jwt"
	"github.com/KOMKZ/yogan-sessionguard/middleware"
	"github.com/KOMKZ/yogan-sessionguard/redis"
	"github.com/KOMKZ/yogan-sessionguard/revocation"
	"github.com/KOMKZ/yogan-sessionguard/telemetry"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Components holds the configuration of every injectable component.
type Components struct {
	CSRF        csrf.Config                  `mapstructure:"csrf"`
	JWT         jwt.Config                   `mapstructure:"jwt"`
	Revocation  revocation.Config            `mapstructure:"revocation"`
	Redis       redis.Config                 `mapstructure:"redis"`
	Auth        auth.Config                  `mapstructure:"auth"`
	Telemetry   telemetry.Config             `mapstructure:"telemetry"`
	HTTPMetrics middleware.HTTPMetricsConfig `mapstructure:"http_metrics"`
	Health      health.Config                `mapstructure:"health"`
}

// DefaultComponents starts from each package's defaults so that booleans
// such as jwt.security.enable_jti keep their default when unset.
// Component metrics default to on; nothing is exported unless telemetry is
// enabled as well.
func DefaultComponents() Components {
	c := Components{
		CSRF:        csrf.DefaultConfig(),
		JWT:         jwt.DefaultConfig(),
		Revocation:  revocation.DefaultConfig(),
		Redis:       redis.DefaultConfig(),
		Auth:        auth.DefaultConfig(),
		Telemetry:   telemetry.DefaultConfig(),
		HTTPMetrics: middleware.HTTPMetricsConfig{Enabled: true},
		Health:      health.DefaultConfig(),
	}
	c.CSRF.Metrics.Enabled = true
	c.JWT.Metrics.Enabled = true
	c.Revocation.Metrics.Enabled = true
	c.Redis.Metrics.Enabled = true
	c.Auth.Metrics.Enabled = true
	return c
}

func (c *Components) ApplyDefaults() {
	c.CSRF.ApplyDefaults()
	c.JWT.ApplyDefaults()
	c.Revocation.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	c.Health.ApplyDefaults()
}

// NeedsRedis reports whether any configured store is backed by Redis.
func (c Components) NeedsRedis() bool {
	if c.Revocation.Storage == revocation.StorageRedis {
		return true
	}
	return c.Auth.LoginAttempt.Enabled && c.Auth.LoginAttempt.Storage == "redis"
}

func (c Components) Validate() error {
	return validation.Errors{
		"csrf":       c.CSRF.Validate(),
		"jwt":        c.JWT.Validate(),
		"revocation": c.Revocation.Validate(),
		"redis":      c.validateRedis(),
		"auth":       c.Auth.Validate(),
		"telemetry":  c.Telemetry.Validate(),
		"health":     c.Health.Validate(),
	}.Filter()
}

func (c Components) validateRedis() error {
	if !c.NeedsRedis() {
		return nil
	}
	return c.Redis.Validate()
}
